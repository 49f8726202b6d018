package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification represents a notification
type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifs_recipient,priority:1;column:recipient_id" json:"recipient_id"`
	ActorID     uuid.UUID  `gorm:"type:uuid;not null;column:actor_id" json:"actor_id"`
	Type        int16      `gorm:"type:smallint;not null;column:type_id" json:"type"`
	PostID      *uuid.UUID `gorm:"type:uuid;column:post_id" json:"post_id,omitempty"`
	CommentID   *uuid.UUID `gorm:"type:uuid;column:comment_id" json:"comment_id,omitempty"`
	IsRead      bool       `gorm:"not null;default:false;column:is_read" json:"is_read"`
	CreatedAt   time.Time  `gorm:"not null;index:idx_notifs_recipient,priority:2;column:created_at" json:"created_at"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// Notification type constants
const (
	NotifyTypeReply        int16 = 12
	NotifyTypeReplyComment int16 = 13
	NotifyTypeFollow       int16 = 15
)

// NotifyTypeName maps type ids to the names used in API responses.
var NotifyTypeName = map[int16]string{
	NotifyTypeReply:        "reply",
	NotifyTypeReplyComment: "reply_comment",
	NotifyTypeFollow:       "follow",
}
