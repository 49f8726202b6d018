package models

import (
	"time"

	"github.com/google/uuid"
)

// Follow represents a follow relationship
type Follow struct {
	FollowerID  uuid.UUID `gorm:"type:uuid;primaryKey;column:follower_id" json:"follower_id"`
	FollowingID uuid.UUID `gorm:"type:uuid;primaryKey;index;column:following_id" json:"following_id"`
	CreatedAt   time.Time `gorm:"not null;column:created_at" json:"created_at"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "follows"
}
