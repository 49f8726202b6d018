// Package reconcile recomputes user karma from the content tables and
// repairs rows that drifted from the incremental counters.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/agora-social/agora/internal/karma"
	"github.com/agora-social/agora/internal/store"
	"github.com/agora-social/agora/pkg/config"
	"github.com/agora-social/agora/pkg/logging"
	"github.com/agora-social/agora/pkg/telemetry"
)

// Report summarizes one reconciliation pass
type Report struct {
	Scanned  int
	Repaired int
}

// Reconciler periodically verifies karma = sum of received vote scores
// plus one per authored post or comment.
type Reconciler struct {
	store     store.Store
	batchSize int
	interval  time.Duration
	logger    *zap.Logger
	repairs   metric.Int64Counter
}

// New creates a reconciler
func New(st store.Store, cfg config.ReconcilerConfig) *Reconciler {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 200
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Reconciler{
		store:     st,
		batchSize: batch,
		interval:  interval,
		logger:    logging.WithComponent("reconciler"),
		repairs:   telemetry.Counter("agora.karma.repairs", "User karma rows corrected by the reconciler"),
	}
}

// Run executes passes until ctx is cancelled
func (r *Reconciler) Run(ctx context.Context) error {
	r.logger.Info("Starting karma reconciler", zap.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			report, err := r.Pass(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.logger.Error("Reconcile pass failed", zap.Error(err))
			} else {
				r.logger.Info("Reconcile pass complete",
					zap.Int("scanned", report.Scanned),
					zap.Int("repaired", report.Repaired))
			}
			r.wait(ctx)
		}
	}
}

// Pass walks every user once in id order
func (r *Reconciler) Pass(ctx context.Context) (Report, error) {
	var report Report
	after := uuid.Nil

	for {
		users, err := r.store.Users().ListAfter(ctx, after, r.batchSize)
		if err != nil {
			return report, fmt.Errorf("failed to list users after %s: %w", after, err)
		}
		for _, u := range users {
			repaired, err := r.reconcileUser(ctx, u.ID)
			if err != nil {
				return report, err
			}
			report.Scanned++
			if repaired {
				report.Repaired++
			}
			after = u.ID
		}
		if len(users) < r.batchSize {
			return report, nil
		}
	}
}

// Expected computes the karma a user should hold
func Expected(ctx context.Context, repo store.Repository, userID uuid.UUID) (int, error) {
	postScore, postCount, err := repo.Posts().AuthorTotals(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum posts: %w", err)
	}
	commentScore, commentCount, err := repo.Comments().AuthorTotals(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum comments: %w", err)
	}
	return int(postScore+commentScore) + karma.AuthorshipBonus*int(postCount+commentCount), nil
}

// reconcileUser locks the user row first so concurrent vote transactions,
// which lock the target and then update the author, serialize behind it.
func (r *Reconciler) reconcileUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	repaired := false
	err := r.store.Transaction(ctx, func(tx store.Repository) error {
		u, err := tx.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to lock user %s: %w", userID, err)
		}
		if u == nil {
			return nil
		}
		want, err := Expected(ctx, tx, userID)
		if err != nil {
			return err
		}
		if want == u.Karma {
			return nil
		}
		if err := tx.Users().SetKarma(ctx, userID, want); err != nil {
			return fmt.Errorf("failed to set karma: %w", err)
		}
		r.logger.Warn("Karma drift repaired",
			zap.String("user", u.Username),
			zap.Int("stored", u.Karma),
			zap.Int("expected", want))
		repaired = true
		return nil
	})
	if err == nil && repaired {
		r.repairs.Add(ctx, 1)
	}
	return repaired, err
}

func (r *Reconciler) wait(ctx context.Context) {
	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
