// Package users resolves external identities to members and serves
// profiles.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/cache"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
	"github.com/agora-social/agora/pkg/logging"
)

const (
	identityTTL       = 24 * time.Hour
	maxUsernameLength = 32
	maxUsernameTries  = 100
	maxCreateAttempts = 3
)

// Identity is what the identity provider knows about a caller.
type Identity struct {
	Provider   string
	ProviderID string
	Username   string
}

// Service manages users.
type Service struct {
	store  store.Store
	cache  *cache.Cache
	logger *zap.Logger
}

// NewService creates a user service. c may be nil.
func NewService(st store.Store, c *cache.Cache) *Service {
	return &Service{store: st, cache: c, logger: logging.WithComponent("users")}
}

func identityKey(id Identity) string {
	return "users:identity:" + cache.HashKey(id.Provider, id.ProviderID)
}

// Ensure returns the member for an identity, creating it on first sight.
func (s *Service) Ensure(ctx context.Context, id Identity) (*models.User, error) {
	if id.Provider == "" || id.ProviderID == "" {
		return nil, apperr.Unauthorized("identity is incomplete")
	}

	if raw, err := s.cache.Get(ctx, identityKey(id)); err == nil {
		if userID, err := uuid.Parse(raw); err == nil {
			if u, err := s.store.Users().GetByID(ctx, userID); err == nil && u != nil {
				return u, nil
			}
		}
	}

	u, err := s.store.Users().GetByProvider(ctx, id.Provider, id.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		u, err = s.create(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	if err := s.cache.Set(ctx, identityKey(id), u.ID.String(), identityTTL); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		s.logger.Debug("Failed to memoize identity", zap.Error(err))
	}
	return u, nil
}

func (s *Service) create(ctx context.Context, id Identity) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		user, err = s.insert(ctx, id)
		if apperr.KindOf(err) != apperr.KindConflict {
			break
		}
		// Either a concurrent first login for the same identity won, or another
		// identity took the username between the check and the insert.
		existing, getErr := s.store.Users().GetByProvider(ctx, id.Provider, id.ProviderID)
		if getErr == nil && existing != nil {
			return existing, nil
		}
		s.logger.Debug("Username taken during registration, retrying",
			zap.String("provider", id.Provider),
			zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("provider", user.AuthProvider))
	return user, nil
}

func (s *Service) insert(ctx context.Context, id Identity) (*models.User, error) {
	user := &models.User{
		ID:           models.NewID(),
		AuthProvider: id.Provider,
		ProviderID:   id.ProviderID,
	}
	err := s.store.Transaction(ctx, func(tx store.Repository) error {
		username, err := uniqueUsername(ctx, tx.Users(), sanitizeUsername(id.Username))
		if err != nil {
			return err
		}
		user.Username = username
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func sanitizeUsername(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if r == '@' {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		name = "user"
	}
	if runes := []rune(name); len(runes) > maxUsernameLength-4 {
		name = string(runes[:maxUsernameLength-4])
	}
	return name
}

func uniqueUsername(ctx context.Context, users store.UserRepository, base string) (string, error) {
	username := base
	for i := 1; i <= maxUsernameTries; i++ {
		existing, err := users.GetByUsername(ctx, username)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if existing == nil {
			return username, nil
		}
		username = fmt.Sprintf("%s%d", base, i)
	}
	return "", apperr.Conflict("no free username for %q", base)
}

// Get returns a member by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user %s not found", id)
	}
	return u, nil
}

// GetByUsername returns a member by username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user %q not found", username)
	}
	return u, nil
}

// GetMany returns the members with the given ids keyed by id. Unknown ids
// are skipped.
func (s *Service) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	users, err := s.store.Users().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	out := make(map[uuid.UUID]*models.User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
