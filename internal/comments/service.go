// Package comments implements the per-post comment tree: creation, edits,
// soft deletion and ordered, depth-limited retrieval.
package comments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/cache"
	"github.com/agora-social/agora/internal/karma"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/notify"
	"github.com/agora-social/agora/internal/store"
	"github.com/agora-social/agora/pkg/config"
	"github.com/agora-social/agora/pkg/logging"
	"github.com/agora-social/agora/pkg/telemetry"
)

// CreateInput describes a new comment. ParentID is nil for a top-level
// comment.
type CreateInput struct {
	PostID   uuid.UUID
	AuthorID uuid.UUID
	Content  string
	ParentID *uuid.UUID
}

// Service manages comment trees.
type Service struct {
	store   store.Store
	karma   *karma.Accumulator
	pages   *pageCache
	cfg     config.CommentsConfig
	created metric.Int64Counter
	logger  *zap.Logger
}

// NewService creates a comment service. c may be nil.
func NewService(st store.Store, acc *karma.Accumulator, c *cache.Cache, cfg config.CommentsConfig) *Service {
	logger := logging.WithComponent("comments")
	return &Service{
		store:   st,
		karma:   acc,
		pages:   &pageCache{cache: c, logger: logger},
		cfg:     cfg,
		created: telemetry.Counter("agora.comments.created", "Comments created"),
		logger:  logger,
	}
}

// Get returns a comment, deleted or not.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := s.store.Comments().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	if c == nil {
		return nil, apperr.NotFound("comment %s not found", id)
	}
	return c, nil
}

// Create adds a comment to a post. The post, and the parent when given,
// must exist and not be deleted; the parent must belong to the same post.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "comments.create")
	defer span.End()

	content, err := NormalizeContent(in.Content)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        models.NewID(),
		PostID:    in.PostID,
		AuthorID:  in.AuthorID,
		ParentID:  in.ParentID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	err = s.store.Transaction(ctx, func(tx store.Repository) error {
		post, err := tx.Posts().GetByID(ctx, in.PostID)
		if err != nil {
			return fmt.Errorf("failed to load post: %w", err)
		}
		if post == nil || post.IsDeleted {
			return apperr.NotFound("post %s not found", in.PostID)
		}

		var parent *models.Comment
		if in.ParentID != nil {
			parent, err = tx.Comments().GetByID(ctx, *in.ParentID)
			if err != nil {
				return fmt.Errorf("failed to load parent comment: %w", err)
			}
			if parent == nil || parent.IsDeleted || parent.PostID != in.PostID {
				return apperr.NotFound("parent comment %s not found", *in.ParentID)
			}
		}

		if err := tx.Comments().Create(ctx, comment); err != nil {
			return err
		}
		if err := tx.Posts().AddCommentCount(ctx, post.ID, 1); err != nil {
			return fmt.Errorf("failed to update comment count: %w", err)
		}
		if err := s.karma.OnContentAuthored(ctx, tx.Users(), in.AuthorID); err != nil {
			return err
		}
		return notify.OnReply(ctx, tx, in.AuthorID, post, parent, comment.ID)
	})
	if err != nil {
		return nil, err
	}

	s.pages.invalidate(ctx, comment.PostID)
	s.created.Add(ctx, 1)
	s.karma.Record(ctx, karma.ReasonAuthored)
	logging.FromContext(ctx, s.logger).Debug("Comment created",
		zap.String("comment_id", comment.ID.String()),
		zap.String("post_id", comment.PostID.String()),
		zap.Bool("reply", comment.ParentID != nil))

	return comment, nil
}

// Edit replaces the content of a live comment in place.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, newContent string) (*models.Comment, error) {
	content, err := NormalizeContent(newContent)
	if err != nil {
		return nil, err
	}

	var comment *models.Comment
	err = s.store.Transaction(ctx, func(tx store.Repository) error {
		c, err := tx.Comments().GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load comment: %w", err)
		}
		if c == nil || c.IsDeleted {
			return apperr.NotFound("comment %s not found", id)
		}

		editedAt := time.Now().UTC()
		c.Content = content
		c.IsEdited = true
		c.EditedAt = &editedAt
		if err := tx.Comments().Update(ctx, c); err != nil {
			return fmt.Errorf("failed to save comment: %w", err)
		}
		comment = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.pages.invalidate(ctx, comment.PostID)
	return comment, nil
}

// SoftDelete hides a comment's content behind the placeholder. The row and
// its links stay, so replies remain reachable. Deleting twice is a no-op.
func (s *Service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	var postID uuid.UUID
	err := s.store.Transaction(ctx, func(tx store.Repository) error {
		c, err := tx.Comments().GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load comment: %w", err)
		}
		if c == nil {
			return apperr.NotFound("comment %s not found", id)
		}
		postID = c.PostID
		if c.IsDeleted {
			return nil
		}

		c.IsDeleted = true
		c.Content = models.DeletedPlaceholder
		if err := tx.Comments().Update(ctx, c); err != nil {
			return fmt.Errorf("failed to save comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.pages.invalidate(ctx, postID)
	return nil
}

// GetTopLevelComments returns one page of a post's root comments.
func (s *Service) GetTopLevelComments(ctx context.Context, postID uuid.UUID, sort store.Sort, page, limit int) (*store.Page[models.Comment], error) {
	ctx, span := telemetry.StartSpan(ctx, "comments.top_level")
	defer span.End()

	if sort != store.SortTop && sort != store.SortNew {
		return nil, apperr.Invalid("unknown sort %q", sort)
	}

	post, err := s.store.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return nil, apperr.NotFound("post %s not found", postID)
	}

	page, q := store.Window(page, limit, s.cfg.DefaultLimit, s.cfg.MaxLimit)

	cached, gen, ok := s.pages.get(ctx, postID, sort, q)
	if ok {
		return cached, nil
	}

	items, total, err := s.store.Comments().ListTopLevel(ctx, postID, sort, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	result := store.NewPage(items, page, q.Limit, total)
	s.pages.put(ctx, postID, gen, sort, q, result)
	return result, nil
}

// GetReplies returns up to limit direct replies of a comment in creation
// order. The parent may itself be deleted.
func (s *Service) GetReplies(ctx context.Context, commentID uuid.UUID, limit int) ([]*models.Comment, error) {
	if _, err := s.Get(ctx, commentID); err != nil {
		return nil, err
	}
	_, q := store.Window(1, limit, s.cfg.DefaultLimit, s.cfg.MaxLimit)
	replies, err := s.store.Comments().ListReplies(ctx, commentID, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}
	return replies, nil
}

// VoteChanged drops cached pages when a comment's score moves.
func (s *Service) VoteChanged(ctx context.Context, targetType models.TargetType, targetID, postID uuid.UUID) {
	if targetType == models.TargetComment {
		s.pages.invalidate(ctx, postID)
	}
}
