package db

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
)

// FollowRepository provides follow-related database operations
type FollowRepository struct {
	*Repository
}

// Exists reports whether follower follows following
func (r *FollowRepository) Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a follow
func (r *FollowRepository) Create(ctx context.Context, follow *models.Follow) error {
	return createErr(r.db.WithContext(ctx).Create(follow).Error, "follow")
}

// Delete removes a follow
func (r *FollowRepository) Delete(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	return res.RowsAffected > 0, res.Error
}

func (r *FollowRepository) list(ctx context.Context, column string, userID uuid.UUID, page store.PageQuery) ([]*models.Follow, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Follow{}).Where(column+" = ?", userID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var follows []*models.Follow
	if err := query.Order("created_at DESC").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&follows).Error; err != nil {
		return nil, 0, err
	}
	return follows, total, nil
}

// ListFollowers lists the users following userID
func (r *FollowRepository) ListFollowers(ctx context.Context, userID uuid.UUID, page store.PageQuery) ([]*models.Follow, int64, error) {
	return r.list(ctx, "following_id", userID, page)
}

// ListFollowing lists the users userID follows
func (r *FollowRepository) ListFollowing(ctx context.Context, userID uuid.UUID, page store.PageQuery) ([]*models.Follow, int64, error) {
	return r.list(ctx, "follower_id", userID, page)
}

// NotificationRepository provides notification-related database operations
type NotificationRepository struct {
	*Repository
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = models.NewID()
	}
	return createErr(r.db.WithContext(ctx).Create(n).Error, "notification")
}

// List lists a recipient's notifications, newest first
func (r *NotificationRepository) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page store.PageQuery) ([]*models.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []*models.Notification
	if err := query.Order("created_at DESC").
		Order("id DESC").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// CountUnread counts unread notifications
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks notifications read
func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	res := query.Update("is_read", true)
	return res.RowsAffected, res.Error
}
