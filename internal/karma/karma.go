// Package karma maintains the per-user reputation total. Every change is
// applied through a store.UserRepository, so callers decide the transaction.
package karma

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
	"github.com/agora-social/agora/pkg/telemetry"
)

// AuthorshipBonus is credited once per post or comment created. Deleting the
// content does not take it back.
const AuthorshipBonus = 1

// Delta is the karma change for the content author when a voter moves from
// prev to next. It is the difference of the two directions' score values,
// so any sequence of transitions telescopes to the final direction's value.
func Delta(prev, next models.Direction) int {
	return next.Value() - prev.Value()
}

// Reason labels a karma adjustment in metrics.
type Reason string

const (
	ReasonAuthored Reason = "authored"
	ReasonVote     Reason = "vote"
)

// Accumulator applies karma changes. The adjustments counter is not touched
// by the On* methods since they run inside the caller's transaction; callers
// report with Record once it commits.
type Accumulator struct {
	adjustments metric.Int64Counter
}

// NewAccumulator creates an accumulator reporting to the global meter.
func NewAccumulator() *Accumulator {
	return newAccumulator(telemetry.Counter("agora.karma.adjustments", "Karma adjustments applied, by reason"))
}

func newAccumulator(adjustments metric.Int64Counter) *Accumulator {
	return &Accumulator{adjustments: adjustments}
}

// OnContentAuthored credits the authorship bonus.
func (a *Accumulator) OnContentAuthored(ctx context.Context, users store.UserRepository, authorID uuid.UUID) error {
	if err := users.AddKarma(ctx, authorID, AuthorshipBonus); err != nil {
		return fmt.Errorf("failed to credit authorship karma: %w", err)
	}
	return nil
}

// OnVoteApplied moves the author's karma by the transition delta and
// returns it. A zero delta writes nothing.
func (a *Accumulator) OnVoteApplied(ctx context.Context, users store.UserRepository, authorID uuid.UUID, prev, next models.Direction) (int, error) {
	delta := Delta(prev, next)
	if delta == 0 {
		return 0, nil
	}
	if err := users.AddKarma(ctx, authorID, delta); err != nil {
		return 0, fmt.Errorf("failed to apply vote karma: %w", err)
	}
	return delta, nil
}

// Record counts one committed adjustment.
func (a *Accumulator) Record(ctx context.Context, reason Reason) {
	a.adjustments.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(reason))))
}
