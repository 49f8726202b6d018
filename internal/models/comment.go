package models

import (
	"time"

	"github.com/google/uuid"
)

// DeletedPlaceholder replaces the content of soft-deleted posts and comments.
const DeletedPlaceholder = "[deleted]"

// Comment is a node in a post's comment tree. Only the parent pointer is
// stored; children are found by querying on parent_id.
type Comment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	PostID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_comments_post_parent,priority:1;column:post_id" json:"post_id"`
	AuthorID  uuid.UUID  `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index:idx_comments_post_parent,priority:2;index:idx_comments_parent_created,priority:1;column:parent_id" json:"parent_id,omitempty"`
	Content   string     `gorm:"type:text;not null;column:content" json:"content"`
	Upvotes   int        `gorm:"not null;default:0;column:upvotes" json:"upvotes"`
	Downvotes int        `gorm:"not null;default:0;column:downvotes" json:"downvotes"`
	IsDeleted bool       `gorm:"not null;default:false;column:is_deleted" json:"is_deleted"`
	IsEdited  bool       `gorm:"not null;default:false;column:is_edited" json:"is_edited"`
	EditedAt  *time.Time `gorm:"column:edited_at" json:"edited_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null;index:idx_comments_parent_created,priority:2;column:created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}

// Score is the net vote score.
func (c *Comment) Score() int {
	return c.Upvotes - c.Downvotes
}

// IsTopLevel reports whether the comment replies directly to its post.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}
