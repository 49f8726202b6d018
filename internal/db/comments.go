package db

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
)

// visibleComment keeps live comments and deleted comments with at least one
// live descendant. A deleted comment whose replies are all deleted is hidden
// along with them.
const visibleComment = `(comments.is_deleted = false OR EXISTS (
	WITH RECURSIVE descendants AS (
		SELECT child.id, child.is_deleted FROM comments AS child WHERE child.parent_id = comments.id
		UNION ALL
		SELECT c.id, c.is_deleted FROM comments AS c JOIN descendants AS d ON c.parent_id = d.id
	)
	SELECT 1 FROM descendants WHERE descendants.is_deleted = false
))`

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	found, err := first(r.db.WithContext(ctx), &comment, "id = ?", id)
	if err != nil || !found {
		return nil, err
	}
	return &comment, nil
}

// GetForUpdate retrieves a comment and locks the row
func (r *CommentRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	found, err := first(r.forUpdate(ctx), &comment, "id = ?", id)
	if err != nil || !found {
		return nil, err
	}
	return &comment, nil
}

// Create creates a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = models.NewID()
	}
	return createErr(r.db.WithContext(ctx).Create(comment).Error, "comment")
}

// Update updates a comment
func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// ListTopLevel lists the visible root comments of a post
func (r *CommentRepository) ListTopLevel(ctx context.Context, postID uuid.UUID, sort store.Sort, page store.PageQuery) ([]*models.Comment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("comments.post_id = ? AND comments.parent_id IS NULL", postID).
		Where(visibleComment).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*models.Comment
	if err := orderBy(query, sort).
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// ListReplies lists visible direct replies in creation order
func (r *CommentRepository) ListReplies(ctx context.Context, parentID uuid.UUID, limit int) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Where("comments.parent_id = ?", parentID).
		Where(visibleComment).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

type replyCount struct {
	ParentID uuid.UUID
	Count    int
}

// CountReplies counts visible direct replies per parent
func (r *CommentRepository) CountReplies(ctx context.Context, parentIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(parentIDs))
	if len(parentIDs) == 0 {
		return counts, nil
	}

	var rows []replyCount
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("comments.parent_id AS parent_id, COUNT(*) AS count").
		Where("comments.parent_id IN ?", parentIDs).
		Where(visibleComment).
		Group("comments.parent_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ParentID] = row.Count
	}
	return counts, nil
}

// AddVoteCounts adjusts the denormalized vote counters
func (r *CommentRepository) AddVoteCounts(ctx context.Context, id uuid.UUID, up, down int) error {
	return r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"upvotes":   gorm.Expr("upvotes + ?", up),
			"downvotes": gorm.Expr("downvotes + ?", down),
		}).Error
}

// AuthorTotals sums the net score and counts every comment by author
func (r *CommentRepository) AuthorTotals(ctx context.Context, authorID uuid.UUID) (int64, int64, error) {
	var t authorTotals
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("COALESCE(SUM(upvotes - downvotes), 0) AS score, COUNT(*) AS count").
		Where("author_id = ?", authorID).
		Scan(&t).Error
	return t.Score, t.Count, err
}
