package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered member. Karma is a running total and may go negative.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	Username       string    `gorm:"type:varchar(64);uniqueIndex;not null;column:username" json:"username"`
	Karma          int       `gorm:"not null;default:0;column:karma" json:"karma"`
	FollowerCount  int       `gorm:"not null;default:0;column:follower_count" json:"follower_count"`
	FollowingCount int       `gorm:"not null;default:0;column:following_count" json:"following_count"`
	IsAdmin        bool      `gorm:"not null;default:false;column:is_admin" json:"is_admin"`
	AuthProvider   string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_users_provider;column:auth_provider" json:"-"`
	ProviderID     string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_provider;column:provider_id" json:"-"`
	CreatedAt      time.Time `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
