package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/models"
)

type userRepo struct{ s *Store }

func (r userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.d.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.GetByID(ctx, id)
}

func (r userRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.d.users[id]; ok {
			out = append(out, &u)
		}
	}
	return out, nil
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.d.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) GetByProvider(ctx context.Context, provider, providerID string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.d.users {
		if u.AuthProvider == provider && u.ProviderID == providerID {
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) Create(ctx context.Context, user *models.User) error {
	defer r.s.lockWrite()()
	for _, u := range r.s.d.users {
		if u.Username == user.Username {
			return apperr.Conflict("username %q is taken", user.Username)
		}
		if u.AuthProvider == user.AuthProvider && u.ProviderID == user.ProviderID {
			return apperr.Conflict("identity already registered")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = models.NewID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now()
	}
	user.UpdatedAt = user.CreatedAt
	r.s.d.users[user.ID] = *user
	return nil
}

func (r userRepo) update(id uuid.UUID, fn func(u *models.User)) error {
	defer r.s.lockWrite()()
	u, ok := r.s.d.users[id]
	if !ok {
		return apperr.NotFound("user %s not found", id)
	}
	fn(&u)
	u.UpdatedAt = now()
	r.s.d.users[id] = u
	return nil
}

func (r userRepo) AddKarma(ctx context.Context, id uuid.UUID, delta int) error {
	return r.update(id, func(u *models.User) { u.Karma += delta })
}

func (r userRepo) SetKarma(ctx context.Context, id uuid.UUID, karma int) error {
	return r.update(id, func(u *models.User) { u.Karma = karma })
}

func (r userRepo) AddFollowCounts(ctx context.Context, id uuid.UUID, followers, following int) error {
	return r.update(id, func(u *models.User) {
		u.FollowerCount += followers
		u.FollowingCount += following
	})
}

func (r userRepo) ListAfter(ctx context.Context, after uuid.UUID, limit int) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.User
	for _, u := range r.s.d.users {
		if lessID(after, u.ID) {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
