package db

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agora-social/agora/internal/models"
)

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	found, err := first(r.db.WithContext(ctx), &user, "id = ?", id)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// GetForUpdate retrieves a user and locks the row
func (r *UserRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	found, err := first(r.forUpdate(ctx), &user, "id = ?", id)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// GetByIDs retrieves multiple users
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error) {
	var users []*models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	found, err := first(r.db.WithContext(ctx).Where("username = ?", username), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// GetByProvider retrieves a user by external identity
func (r *UserRepository) GetByProvider(ctx context.Context, provider, providerID string) (*models.User, error) {
	var user models.User
	found, err := first(r.db.WithContext(ctx).
		Where("auth_provider = ? AND provider_id = ?", provider, providerID), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = models.NewID()
	}
	return createErr(r.db.WithContext(ctx).Create(user).Error, "user")
}

// AddKarma adds delta to the stored karma in a single statement
func (r *UserRepository) AddKarma(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("karma", gorm.Expr("karma + ?", delta)).Error
}

// SetKarma overwrites the stored karma
func (r *UserRepository) SetKarma(ctx context.Context, id uuid.UUID, karma int) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("karma", karma).Error
}

// AddFollowCounts adjusts the denormalized follow counters
func (r *UserRepository) AddFollowCounts(ctx context.Context, id uuid.UUID, followers, following int) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"follower_count":  gorm.Expr("follower_count + ?", followers),
			"following_count": gorm.Expr("following_count + ?", following),
		}).Error
}

// ListAfter pages through users in id order
func (r *UserRepository) ListAfter(ctx context.Context, after uuid.UUID, limit int) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).
		Where("id > ?", after).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
