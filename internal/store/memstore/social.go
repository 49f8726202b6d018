package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
)

type followRepo struct{ s *Store }

func (r followRepo) Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.d.follows[followKey{followerID, followingID}]
	return ok, nil
}

func (r followRepo) Create(ctx context.Context, follow *models.Follow) error {
	defer r.s.lockWrite()()
	k := followKey{follow.FollowerID, follow.FollowingID}
	if _, ok := r.s.d.follows[k]; ok {
		return apperr.Conflict("already following")
	}
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = now()
	}
	r.s.d.follows[k] = *follow
	return nil
}

func (r followRepo) Delete(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	defer r.s.lockWrite()()
	k := followKey{followerID, followingID}
	if _, ok := r.s.d.follows[k]; !ok {
		return false, nil
	}
	delete(r.s.d.follows, k)
	return true, nil
}

func (r followRepo) list(match func(f models.Follow) bool, page store.PageQuery) ([]*models.Follow, int64) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Follow
	for _, f := range r.s.d.follows {
		if match(f) {
			f := f
			out = append(out, &f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, page), int64(len(out))
}

func (r followRepo) ListFollowers(ctx context.Context, userID uuid.UUID, page store.PageQuery) ([]*models.Follow, int64, error) {
	out, total := r.list(func(f models.Follow) bool { return f.FollowingID == userID }, page)
	return out, total, nil
}

func (r followRepo) ListFollowing(ctx context.Context, userID uuid.UUID, page store.PageQuery) ([]*models.Follow, int64, error) {
	out, total := r.list(func(f models.Follow) bool { return f.FollowerID == userID }, page)
	return out, total, nil
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	defer r.s.lockWrite()()
	if n.ID == uuid.Nil {
		n.ID = models.NewID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now()
	}
	r.s.d.notifications[n.ID] = *n
	return nil
}

func (r notificationRepo) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page store.PageQuery) ([]*models.Notification, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.s.d.notifications {
		if n.RecipientID == recipientID && (!unreadOnly || !n.IsRead) {
			n := n
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return lessID(out[j].ID, out[i].ID)
	})
	return window(out, page), int64(len(out)), nil
}

func (r notificationRepo) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, n := range r.s.d.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r notificationRepo) MarkRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error) {
	defer r.s.lockWrite()()
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var changed int64
	for id, n := range r.s.d.notifications {
		if n.RecipientID != recipientID || n.IsRead {
			continue
		}
		if len(ids) > 0 && !want[id] {
			continue
		}
		n.IsRead = true
		r.s.d.notifications[id] = n
		changed++
	}
	return changed, nil
}
