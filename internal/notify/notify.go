// Package notify records and serves user notifications.
package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
	"github.com/agora-social/agora/pkg/logging"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// OnReply notifies the author of the replied-to content. parent is nil for a
// top-level comment, in which case the post author is notified. Nobody is
// notified about their own reply.
func OnReply(ctx context.Context, tx store.Repository, actorID uuid.UUID, post *models.Post, parent *models.Comment, commentID uuid.UUID) error {
	n := &models.Notification{
		ID:        models.NewID(),
		ActorID:   actorID,
		PostID:    &post.ID,
		CommentID: &commentID,
	}
	if parent == nil {
		n.RecipientID = post.AuthorID
		n.Type = models.NotifyTypeReply
	} else {
		n.RecipientID = parent.AuthorID
		n.Type = models.NotifyTypeReplyComment
	}
	if n.RecipientID == actorID {
		return nil
	}
	if err := tx.Notifications().Create(ctx, n); err != nil {
		return fmt.Errorf("failed to record reply notification: %w", err)
	}
	return nil
}

// OnFollow notifies followedID that actorID started following them.
func OnFollow(ctx context.Context, tx store.Repository, actorID, followedID uuid.UUID) error {
	n := &models.Notification{
		ID:          models.NewID(),
		RecipientID: followedID,
		ActorID:     actorID,
		Type:        models.NotifyTypeFollow,
	}
	if err := tx.Notifications().Create(ctx, n); err != nil {
		return fmt.Errorf("failed to record follow notification: %w", err)
	}
	return nil
}

// Service serves a user's notifications.
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService creates a notification service
func NewService(st store.Store) *Service {
	return &Service{store: st, logger: logging.WithComponent("notify")}
}

// List returns a page of userID's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) (*store.Page[models.Notification], error) {
	page, q := store.Window(page, limit, defaultLimit, maxLimit)
	items, total, err := s.store.Notifications().List(ctx, userID, unreadOnly, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return store.NewPage(items, page, q.Limit, total), nil
}

// UnreadCount returns how many notifications userID has not read.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.Notifications().CountUnread(ctx, userID)
}

// MarkRead marks ids read, or everything when ids is empty.
func (s *Service) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	changed, err := s.store.Notifications().MarkRead(ctx, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	s.logger.Debug("Notifications marked read",
		zap.String("user_id", userID.String()),
		zap.Int64("changed", changed))
	return changed, nil
}
