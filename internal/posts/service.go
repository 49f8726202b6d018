// Package posts manages top-level submissions.
package posts

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/karma"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
	"github.com/agora-social/agora/pkg/config"
	"github.com/agora-social/agora/pkg/logging"
	"github.com/agora-social/agora/pkg/telemetry"
)

const (
	MaxTitleLength   = 300
	MaxContentLength = 40000
)

// Service manages posts.
type Service struct {
	store   store.Store
	karma   *karma.Accumulator
	cfg     config.CommentsConfig
	created metric.Int64Counter
	logger  *zap.Logger
}

// NewService creates a post service. Listing limits reuse the comment
// paging bounds.
func NewService(st store.Store, acc *karma.Accumulator, cfg config.CommentsConfig) *Service {
	return &Service{
		store:   st,
		karma:   acc,
		cfg:     cfg,
		created: telemetry.Counter("agora.posts.created", "Posts created"),
		logger:  logging.WithComponent("posts"),
	}
}

func normalize(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(title); n == 0 || n > MaxTitleLength {
		return "", "", apperr.Invalid("title must be 1-%d characters", MaxTitleLength)
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", "", apperr.Invalid("content exceeds %d characters", MaxContentLength)
	}
	return title, content, nil
}

// Create publishes a post and credits the author.
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, title, content string) (*models.Post, error) {
	title, content, err := normalize(title, content)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:        models.NewID(),
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	err = s.store.Transaction(ctx, func(tx store.Repository) error {
		if err := tx.Posts().Create(ctx, post); err != nil {
			return err
		}
		return s.karma.OnContentAuthored(ctx, tx.Users(), authorID)
	})
	if err != nil {
		return nil, err
	}

	s.created.Add(ctx, 1)
	s.karma.Record(ctx, karma.ReasonAuthored)
	logging.FromContext(ctx, s.logger).Debug("Post created", zap.String("post_id", post.ID.String()))
	return post, nil
}

// Get returns a post. Deleted posts are returned with their placeholder.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := s.store.Posts().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if p == nil {
		return nil, apperr.NotFound("post %s not found", id)
	}
	return p, nil
}

// List returns a page of live posts.
func (s *Service) List(ctx context.Context, sort store.Sort, page, limit int) (*store.Page[models.Post], error) {
	if sort != store.SortTop && sort != store.SortNew {
		return nil, apperr.Invalid("unknown sort %q", sort)
	}
	page, q := store.Window(page, limit, s.cfg.DefaultLimit, s.cfg.MaxLimit)
	items, total, err := s.store.Posts().List(ctx, sort, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return store.NewPage(items, page, q.Limit, total), nil
}

// Edit replaces the title and content of a live post.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, title, content string) (*models.Post, error) {
	title, content, err := normalize(title, content)
	if err != nil {
		return nil, err
	}

	var post *models.Post
	err = s.store.Transaction(ctx, func(tx store.Repository) error {
		p, err := tx.Posts().GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load post: %w", err)
		}
		if p == nil || p.IsDeleted {
			return apperr.NotFound("post %s not found", id)
		}
		editedAt := time.Now().UTC()
		p.Title = title
		p.Content = content
		p.IsEdited = true
		p.EditedAt = &editedAt
		if err := tx.Posts().Update(ctx, p); err != nil {
			return fmt.Errorf("failed to save post: %w", err)
		}
		post = p
		return nil
	})
	return post, err
}

// SoftDelete hides a post. Its comments stay in place.
func (s *Service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return s.store.Transaction(ctx, func(tx store.Repository) error {
		p, err := tx.Posts().GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load post: %w", err)
		}
		if p == nil {
			return apperr.NotFound("post %s not found", id)
		}
		if p.IsDeleted {
			return nil
		}
		p.IsDeleted = true
		p.Content = models.DeletedPlaceholder
		if err := tx.Posts().Update(ctx, p); err != nil {
			return fmt.Errorf("failed to save post: %w", err)
		}
		return nil
	})
}
