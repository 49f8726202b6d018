// Package voting implements the toggle vote ledger for posts and comments.
package voting

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/karma"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
	"github.com/agora-social/agora/pkg/logging"
	"github.com/agora-social/agora/pkg/telemetry"
)

// ChangeListener is told about every committed ledger change, e.g. to drop
// cached listings that embed the target's score.
type ChangeListener interface {
	VoteChanged(ctx context.Context, targetType models.TargetType, targetID, postID uuid.UUID)
}

// Service applies votes.
type Service struct {
	store         store.Store
	karma         *karma.Accumulator
	allowSelfVote bool
	listener      ChangeListener
	votes         metric.Int64Counter
	logger        *zap.Logger
}

// NewService creates a vote service. listener may be nil.
func NewService(st store.Store, acc *karma.Accumulator, allowSelfVote bool, listener ChangeListener) *Service {
	return &Service{
		store:         st,
		karma:         acc,
		allowSelfVote: allowSelfVote,
		listener:      listener,
		votes:         telemetry.Counter("agora.votes.applied", "Votes applied, by target and outcome"),
		logger:        logging.WithComponent("voting"),
	}
}

// target is the part of a post or comment the ledger needs.
type target struct {
	authorID uuid.UUID
	postID   uuid.UUID
	up       int
	down     int
}

func loadTarget(ctx context.Context, tx store.Repository, targetType models.TargetType, id uuid.UUID) (*target, error) {
	switch targetType {
	case models.TargetPost:
		p, err := tx.Posts().GetForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load post: %w", err)
		}
		if p == nil || p.IsDeleted {
			return nil, apperr.NotFound("post %s not found", id)
		}
		return &target{authorID: p.AuthorID, postID: p.ID, up: p.Upvotes, down: p.Downvotes}, nil
	case models.TargetComment:
		c, err := tx.Comments().GetForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load comment: %w", err)
		}
		if c == nil || c.IsDeleted {
			return nil, apperr.NotFound("comment %s not found", id)
		}
		return &target{authorID: c.AuthorID, postID: c.PostID, up: c.Upvotes, down: c.Downvotes}, nil
	}
	return nil, apperr.Invalid("unknown target type %q", targetType)
}

func addCounts(ctx context.Context, tx store.Repository, targetType models.TargetType, id uuid.UUID, up, down int) error {
	if targetType == models.TargetPost {
		return tx.Posts().AddVoteCounts(ctx, id, up, down)
	}
	return tx.Comments().AddVoteCounts(ctx, id, up, down)
}

// ApplyVote toggles voterID's vote on the target. The ledger row, the
// target's counters and the author's karma change in one transaction.
func (s *Service) ApplyVote(ctx context.Context, targetType models.TargetType, targetID, voterID uuid.UUID, direction models.Direction) (*Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "voting.apply")
	defer span.End()

	if !targetType.Valid() {
		return nil, apperr.Invalid("unknown target type %q", targetType)
	}
	if !direction.Valid() {
		return nil, apperr.Invalid("direction must be up or down")
	}

	var (
		result *Result
		postID uuid.UUID
	)
	err := s.store.Transaction(ctx, func(tx store.Repository) error {
		t, err := loadTarget(ctx, tx, targetType, targetID)
		if err != nil {
			return err
		}
		if !s.allowSelfVote && t.authorID == voterID {
			return apperr.Forbidden("voting on your own content is not allowed")
		}
		postID = t.postID

		vote, err := tx.Votes().Get(ctx, targetType, targetID, voterID)
		if err != nil {
			return fmt.Errorf("failed to load vote: %w", err)
		}
		prev := models.DirectionNone
		if vote != nil {
			prev = vote.Direction
		}
		next := Transition(prev, direction)

		switch {
		case next == models.DirectionNone:
			err = tx.Votes().Delete(ctx, vote)
		case vote == nil:
			err = tx.Votes().Create(ctx, &models.Vote{
				ID:         models.NewID(),
				TargetType: targetType,
				TargetID:   targetID,
				VoterID:    voterID,
				Direction:  next,
			})
		default:
			vote.Direction = next
			err = tx.Votes().Update(ctx, vote)
		}
		if err != nil {
			return err
		}

		upDelta, downDelta := counterDeltas(prev, next)
		if err := addCounts(ctx, tx, targetType, targetID, upDelta, downDelta); err != nil {
			return fmt.Errorf("failed to update vote counters: %w", err)
		}

		delta, err := s.karma.OnVoteApplied(ctx, tx.Users(), t.authorID, prev, next)
		if err != nil {
			return err
		}

		result = newResult(t.up+upDelta, t.down+downDelta, next, delta)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.KarmaDelta != 0 {
		s.karma.Record(ctx, karma.ReasonVote)
	}
	s.votes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("target", string(targetType)),
		attribute.Bool("retracted", !result.Upvoted && !result.Downvoted),
	))
	logging.FromContext(ctx, s.logger).Debug("Vote applied",
		zap.String("target_type", string(targetType)),
		zap.String("target_id", targetID.String()),
		zap.Int("score", result.VoteScore),
		zap.Int("karma_delta", result.KarmaDelta))

	if s.listener != nil {
		s.listener.VoteChanged(ctx, targetType, targetID, postID)
	}
	return result, nil
}

// Directions returns voterID's current direction on each of ids.
func (s *Service) Directions(ctx context.Context, voterID uuid.UUID, targetType models.TargetType, ids []uuid.UUID) (map[uuid.UUID]models.Direction, error) {
	if voterID == uuid.Nil || len(ids) == 0 {
		return map[uuid.UUID]models.Direction{}, nil
	}
	return s.store.Votes().Directions(ctx, voterID, targetType, ids)
}
