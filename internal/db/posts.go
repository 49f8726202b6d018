package db

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
)

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	found, err := first(r.db.WithContext(ctx), &post, "id = ?", id)
	if err != nil || !found {
		return nil, err
	}
	return &post, nil
}

// GetForUpdate retrieves a post and locks the row
func (r *PostRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	found, err := first(r.forUpdate(ctx), &post, "id = ?", id)
	if err != nil || !found {
		return nil, err
	}
	return &post, nil
}

// GetByIDs retrieves multiple posts
func (r *PostRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Post, error) {
	var posts []*models.Post
	if len(ids) == 0 {
		return posts, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == uuid.Nil {
		post.ID = models.NewID()
	}
	return createErr(r.db.WithContext(ctx).Create(post).Error, "post")
}

// Update updates a post
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// List returns live posts in the requested order
func (r *PostRepository) List(ctx context.Context, sort store.Sort, page store.PageQuery) ([]*models.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{}).Where("is_deleted = ?", false).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*models.Post
	if err := orderBy(query, sort).
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// AddVoteCounts adjusts the denormalized vote counters
func (r *PostRepository) AddVoteCounts(ctx context.Context, id uuid.UUID, up, down int) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"upvotes":   gorm.Expr("upvotes + ?", up),
			"downvotes": gorm.Expr("downvotes + ?", down),
		}).Error
}

// AddCommentCount adjusts the denormalized comment counter
func (r *PostRepository) AddCommentCount(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("comment_count", gorm.Expr("comment_count + ?", delta)).Error
}

type authorTotals struct {
	Score int64
	Count int64
}

// AuthorTotals sums the net score and counts every post by author
func (r *PostRepository) AuthorTotals(ctx context.Context, authorID uuid.UUID) (int64, int64, error) {
	var t authorTotals
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Select("COALESCE(SUM(upvotes - downvotes), 0) AS score, COUNT(*) AS count").
		Where("author_id = ?", authorID).
		Scan(&t).Error
	return t.Score, t.Count, err
}

// orderBy applies a listing sort to a posts or comments query
func orderBy(query *gorm.DB, sort store.Sort) *gorm.DB {
	switch sort {
	case store.SortNew:
		return query.Order("created_at DESC").Order("id DESC")
	default:
		return query.Order("(upvotes - downvotes) DESC").Order("created_at DESC").Order("id DESC")
	}
}
