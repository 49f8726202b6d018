// Package store declares the persistence contract shared by the postgres
// repository and the in-memory store. Single-row reads return (nil, nil)
// when the row does not exist.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/models"
)

// Sort is a listing order for posts and top-level comments.
type Sort string

const (
	// SortTop orders by net score descending, newest first on ties.
	SortTop Sort = "top"
	// SortNew orders by creation time descending.
	SortNew Sort = "new"
)

// ParseSort maps a client value to a Sort; empty means SortTop.
func ParseSort(s string) (Sort, bool) {
	switch Sort(s) {
	case "", SortTop:
		return SortTop, true
	case SortNew:
		return SortNew, true
	}
	return "", false
}

// PageQuery is an offset window. Offset is zero based.
type PageQuery struct {
	Offset int
	Limit  int
}

// UserRepository provides user persistence.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByProvider(ctx context.Context, provider, providerID string) (*models.User, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	// AddKarma applies delta atomically.
	AddKarma(ctx context.Context, id uuid.UUID, delta int) error
	SetKarma(ctx context.Context, id uuid.UUID, karma int) error
	AddFollowCounts(ctx context.Context, id uuid.UUID, followers, following int) error
	// ListAfter returns up to limit users with id > after, ordered by id.
	ListAfter(ctx context.Context, after uuid.UUID, limit int) ([]*models.User, error)
}

// PostRepository provides post persistence.
type PostRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Post, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	// List returns non-deleted posts in sort order and the total count.
	List(ctx context.Context, sort Sort, page PageQuery) ([]*models.Post, int64, error)
	AddVoteCounts(ctx context.Context, id uuid.UUID, up, down int) error
	AddCommentCount(ctx context.Context, id uuid.UUID, delta int) error
	// AuthorTotals sums upvotes-downvotes over every post by author and
	// counts them, deleted posts included.
	AuthorTotals(ctx context.Context, authorID uuid.UUID) (score int64, count int64, err error)
}

// CommentRepository provides comment persistence. Listing queries return
// visible comments only: a deleted comment stays visible while at least one
// reply points at it.
type CommentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	ListTopLevel(ctx context.Context, postID uuid.UUID, sort Sort, page PageQuery) ([]*models.Comment, int64, error)
	// ListReplies returns direct children of parentID ordered by creation
	// time ascending.
	ListReplies(ctx context.Context, parentID uuid.UUID, limit int) ([]*models.Comment, error)
	// CountReplies returns the number of visible direct children per parent.
	CountReplies(ctx context.Context, parentIDs []uuid.UUID) (map[uuid.UUID]int, error)
	AddVoteCounts(ctx context.Context, id uuid.UUID, up, down int) error
	AuthorTotals(ctx context.Context, authorID uuid.UUID) (score int64, count int64, err error)
}

// VoteRepository provides vote ledger persistence.
type VoteRepository interface {
	Get(ctx context.Context, targetType models.TargetType, targetID, voterID uuid.UUID) (*models.Vote, error)
	// Create fails with an apperr Conflict when the voter already holds a row.
	Create(ctx context.Context, vote *models.Vote) error
	Update(ctx context.Context, vote *models.Vote) error
	Delete(ctx context.Context, vote *models.Vote) error
	// Directions returns the voter's direction for each voted target in ids.
	Directions(ctx context.Context, voterID uuid.UUID, targetType models.TargetType, ids []uuid.UUID) (map[uuid.UUID]models.Direction, error)
}

// FollowRepository provides follow persistence.
type FollowRepository interface {
	Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	Create(ctx context.Context, follow *models.Follow) error
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	ListFollowers(ctx context.Context, userID uuid.UUID, page PageQuery) ([]*models.Follow, int64, error)
	ListFollowing(ctx context.Context, userID uuid.UUID, page PageQuery) ([]*models.Follow, int64, error)
}

// NotificationRepository provides notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page PageQuery) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	// MarkRead marks the given notifications read, or all of them when ids
	// is empty, and returns the number changed.
	MarkRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error)
}

// Repository groups the per-entity repositories.
type Repository interface {
	Users() UserRepository
	Posts() PostRepository
	Comments() CommentRepository
	Votes() VoteRepository
	Follows() FollowRepository
	Notifications() NotificationRepository
}

// Store is a Repository that can run transactions.
type Store interface {
	Repository
	// Transaction runs fn against a transactional Repository. Returning an
	// error from fn rolls every write back.
	Transaction(ctx context.Context, fn func(tx Repository) error) error
	Health(ctx context.Context) error
}
