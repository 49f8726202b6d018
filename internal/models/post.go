package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a top-level submission. Upvotes and Downvotes mirror the vote
// ledger rows targeting the post.
type Post struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	AuthorID     uuid.UUID  `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`
	Title        string     `gorm:"type:varchar(300);not null;column:title" json:"title"`
	Content      string     `gorm:"type:text;not null;column:content" json:"content"`
	Upvotes      int        `gorm:"not null;default:0;column:upvotes" json:"upvotes"`
	Downvotes    int        `gorm:"not null;default:0;column:downvotes" json:"downvotes"`
	CommentCount int        `gorm:"not null;default:0;column:comment_count" json:"comment_count"`
	IsDeleted    bool       `gorm:"not null;default:false;index;column:is_deleted" json:"is_deleted"`
	IsEdited     bool       `gorm:"not null;default:false;column:is_edited" json:"is_edited"`
	EditedAt     *time.Time `gorm:"column:edited_at" json:"edited_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;index;column:created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// Score is the net vote score.
func (p *Post) Score() int {
	return p.Upvotes - p.Downvotes
}
