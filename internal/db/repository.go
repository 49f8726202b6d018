package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/store"
)

const uniqueViolation = "23505"

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ store.Store = (*Repository)(nil)

func (r *Repository) Users() store.UserRepository     { return &UserRepository{Repository: r} }
func (r *Repository) Posts() store.PostRepository     { return &PostRepository{Repository: r} }
func (r *Repository) Comments() store.CommentRepository {
	return &CommentRepository{Repository: r}
}
func (r *Repository) Votes() store.VoteRepository     { return &VoteRepository{Repository: r} }
func (r *Repository) Follows() store.FollowRepository { return &FollowRepository{Repository: r} }
func (r *Repository) Notifications() store.NotificationRepository {
	return &NotificationRepository{Repository: r}
}

// Transaction runs fn inside a database transaction.
func (r *Repository) Transaction(ctx context.Context, fn func(tx store.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// Health pings the underlying connection pool.
func (r *Repository) Health(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) forUpdate(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

// first loads one row into dest, returning found=false instead of
// gorm.ErrRecordNotFound.
func first(q *gorm.DB, dest interface{}, conds ...interface{}) (bool, error) {
	if err := q.First(dest, conds...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// createErr maps unique violations to apperr Conflict.
func createErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return apperr.Wrap(apperr.KindConflict, err, "%s already exists", what)
	}
	return fmt.Errorf("failed to create %s: %w", what, err)
}
