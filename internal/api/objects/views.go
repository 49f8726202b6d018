// Package objects renders domain rows into API response objects.
package objects

import (
	"time"

	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/models"
)

// Author is the public summary of a member shown next to content
type Author struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Karma    int       `json:"karma"`
}

// Profile is a member's public profile
type Profile struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Karma          int       `json:"karma"`
	FollowerCount  int       `json:"follower_count"`
	FollowingCount int       `json:"following_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// Post is a post as returned by the API
type Post struct {
	ID           uuid.UUID        `json:"id"`
	Author       *Author          `json:"author,omitempty"`
	Title        string           `json:"title"`
	Content      string           `json:"content"`
	Upvotes      int              `json:"upvotes"`
	Downvotes    int              `json:"downvotes"`
	Score        int              `json:"score"`
	CommentCount int              `json:"comment_count"`
	IsDeleted    bool             `json:"is_deleted"`
	IsEdited     bool             `json:"is_edited"`
	EditedAt     *time.Time       `json:"edited_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	MyVote       models.Direction `json:"my_vote,omitempty"`
}

// Comment is a comment as returned by the API. Tree fields are set only
// when the comment was rendered as part of a thread.
type Comment struct {
	ID             uuid.UUID        `json:"id"`
	PostID         uuid.UUID        `json:"post_id"`
	ParentID       *uuid.UUID       `json:"parent_id,omitempty"`
	Author         *Author          `json:"author,omitempty"`
	Content        string           `json:"content"`
	Upvotes        int              `json:"upvotes"`
	Downvotes      int              `json:"downvotes"`
	Score          int              `json:"score"`
	IsDeleted      bool             `json:"is_deleted"`
	IsEdited       bool             `json:"is_edited"`
	EditedAt       *time.Time       `json:"edited_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	MyVote         models.Direction `json:"my_vote,omitempty"`
	Depth          int              `json:"depth"`
	ReplyCount     int              `json:"reply_count"`
	Collapsed      bool             `json:"collapsed,omitempty"`
	HasMoreReplies bool             `json:"has_more_replies,omitempty"`
	Replies        []*Comment       `json:"replies,omitempty"`
}

// Notification is a notification as returned by the API
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Actor     *Author    `json:"actor,omitempty"`
	PostID    *uuid.UUID `json:"post_id,omitempty"`
	CommentID *uuid.UUID `json:"comment_id,omitempty"`
	IsRead    bool       `json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewAuthor summarizes u. Nil in, nil out.
func NewAuthor(u *models.User) *Author {
	if u == nil {
		return nil
	}
	return &Author{ID: u.ID, Username: u.Username, Karma: u.Karma}
}

// NewProfile renders a member's profile
func NewProfile(u *models.User) *Profile {
	return &Profile{
		ID:             u.ID,
		Username:       u.Username,
		Karma:          u.Karma,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
		CreatedAt:      u.CreatedAt,
	}
}

func newPost(p *models.Post) *Post {
	return &Post{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Upvotes:      p.Upvotes,
		Downvotes:    p.Downvotes,
		Score:        p.Score(),
		CommentCount: p.CommentCount,
		IsDeleted:    p.IsDeleted,
		IsEdited:     p.IsEdited,
		EditedAt:     p.EditedAt,
		CreatedAt:    p.CreatedAt,
	}
}

func newComment(c *models.Comment) *Comment {
	return &Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		Upvotes:   c.Upvotes,
		Downvotes: c.Downvotes,
		Score:     c.Score(),
		IsDeleted: c.IsDeleted,
		IsEdited:  c.IsEdited,
		EditedAt:  c.EditedAt,
		CreatedAt: c.CreatedAt,
	}
}
