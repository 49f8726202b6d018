// Package follows manages the follower graph.
package follows

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/notify"
	"github.com/agora-social/agora/internal/store"
	"github.com/agora-social/agora/pkg/logging"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Service manages follows.
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService creates a follow service
func NewService(st store.Store) *Service {
	return &Service{store: st, logger: logging.WithComponent("follows")}
}

// Follow makes followerID follow followingID. It reports whether a new
// relationship was created; following twice is a no-op.
func (s *Service) Follow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	if followerID == followingID {
		return false, apperr.Invalid("cannot follow yourself")
	}

	created := false
	err := s.store.Transaction(ctx, func(tx store.Repository) error {
		target, err := tx.Users().GetByID(ctx, followingID)
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if target == nil {
			return apperr.NotFound("user %s not found", followingID)
		}

		exists, err := tx.Follows().Exists(ctx, followerID, followingID)
		if err != nil {
			return fmt.Errorf("failed to check follow: %w", err)
		}
		if exists {
			return nil
		}

		if err := tx.Follows().Create(ctx, &models.Follow{FollowerID: followerID, FollowingID: followingID}); err != nil {
			return err
		}
		if err := tx.Users().AddFollowCounts(ctx, followingID, 1, 0); err != nil {
			return fmt.Errorf("failed to update follower count: %w", err)
		}
		if err := tx.Users().AddFollowCounts(ctx, followerID, 0, 1); err != nil {
			return fmt.Errorf("failed to update following count: %w", err)
		}
		created = true
		return notify.OnFollow(ctx, tx, followerID, followingID)
	})
	if apperr.KindOf(err) == apperr.KindConflict {
		// A concurrent request created the same follow.
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if created {
		s.logger.Debug("Follow created",
			zap.String("follower", followerID.String()),
			zap.String("following", followingID.String()))
	}
	return created, nil
}

// Unfollow removes the relationship. It reports whether one existed.
func (s *Service) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	removed := false
	err := s.store.Transaction(ctx, func(tx store.Repository) error {
		ok, err := tx.Follows().Delete(ctx, followerID, followingID)
		if err != nil {
			return fmt.Errorf("failed to delete follow: %w", err)
		}
		if !ok {
			return nil
		}
		if err := tx.Users().AddFollowCounts(ctx, followingID, -1, 0); err != nil {
			return fmt.Errorf("failed to update follower count: %w", err)
		}
		if err := tx.Users().AddFollowCounts(ctx, followerID, 0, -1); err != nil {
			return fmt.Errorf("failed to update following count: %w", err)
		}
		removed = true
		return nil
	})
	return removed, err
}

// Followers returns a page of the users following userID.
func (s *Service) Followers(ctx context.Context, userID uuid.UUID, page, limit int) (*store.Page[models.Follow], error) {
	page, q := store.Window(page, limit, defaultLimit, maxLimit)
	items, total, err := s.store.Follows().ListFollowers(ctx, userID, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return store.NewPage(items, page, q.Limit, total), nil
}

// Following returns a page of the users userID follows.
func (s *Service) Following(ctx context.Context, userID uuid.UUID, page, limit int) (*store.Page[models.Follow], error) {
	page, q := store.Window(page, limit, defaultLimit, maxLimit)
	items, total, err := s.store.Follows().ListFollowing(ctx, userID, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	return store.NewPage(items, page, q.Limit, total), nil
}
