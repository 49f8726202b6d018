package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
)

type commentRepo struct{ s *Store }

func (r commentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.d.comments[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r commentRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return r.GetByID(ctx, id)
}

func (r commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	defer r.s.lockWrite()()
	if comment.ID == uuid.Nil {
		comment.ID = models.NewID()
	}
	if _, ok := r.s.d.comments[comment.ID]; ok {
		return apperr.Conflict("comment %s already exists", comment.ID)
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now()
	}
	comment.UpdatedAt = comment.CreatedAt
	r.s.d.comments[comment.ID] = *comment
	return nil
}

func (r commentRepo) Update(ctx context.Context, comment *models.Comment) error {
	defer r.s.lockWrite()()
	if _, ok := r.s.d.comments[comment.ID]; !ok {
		return apperr.NotFound("comment %s not found", comment.ID)
	}
	comment.UpdatedAt = now()
	r.s.d.comments[comment.ID] = *comment
	return nil
}

// visibleSet reports which comments are listed: live ones, and deleted ones
// with a live descendant. Callers hold mu.
func (r commentRepo) visibleSet() map[uuid.UUID]bool {
	children := make(map[uuid.UUID][]uuid.UUID)
	for _, c := range r.s.d.comments {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	shown := make(map[uuid.UUID]bool, len(r.s.d.comments))
	done := make(map[uuid.UUID]bool, len(r.s.d.comments))
	var walk func(id uuid.UUID) bool
	walk = func(id uuid.UUID) bool {
		if done[id] {
			return shown[id]
		}
		done[id] = true
		v := !r.s.d.comments[id].IsDeleted
		for _, child := range children[id] {
			if walk(child) {
				v = true
			}
		}
		shown[id] = v
		return v
	}
	for id := range r.s.d.comments {
		walk(id)
	}
	return shown
}

func (r commentRepo) ListTopLevel(ctx context.Context, postID uuid.UUID, by store.Sort, page store.PageQuery) ([]*models.Comment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	shown := r.visibleSet()
	var keys []scored
	for _, c := range r.s.d.comments {
		if c.PostID == postID && c.ParentID == nil && shown[c.ID] {
			keys = append(keys, scored{id: c.ID, score: c.Score(), created: c.CreatedAt})
		}
	}
	sortByScore(keys, by)
	all := make([]*models.Comment, len(keys))
	for i, k := range keys {
		c := r.s.d.comments[k.id]
		all[i] = &c
	}
	return window(all, page), int64(len(all)), nil
}

func (r commentRepo) ListReplies(ctx context.Context, parentID uuid.UUID, limit int) ([]*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	shown := r.visibleSet()
	out := []*models.Comment{}
	for _, c := range r.s.d.comments {
		if c.ParentID != nil && *c.ParentID == parentID && shown[c.ID] {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return lessID(out[i].ID, out[j].ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r commentRepo) CountReplies(ctx context.Context, parentIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(parentIDs))
	for _, id := range parentIDs {
		want[id] = true
	}
	shown := r.visibleSet()
	out := make(map[uuid.UUID]int)
	for _, c := range r.s.d.comments {
		if c.ParentID != nil && want[*c.ParentID] && shown[c.ID] {
			out[*c.ParentID]++
		}
	}
	return out, nil
}

func (r commentRepo) AddVoteCounts(ctx context.Context, id uuid.UUID, up, down int) error {
	defer r.s.lockWrite()()
	c, ok := r.s.d.comments[id]
	if !ok {
		return apperr.NotFound("comment %s not found", id)
	}
	c.Upvotes += up
	c.Downvotes += down
	r.s.d.comments[id] = c
	return nil
}

func (r commentRepo) AuthorTotals(ctx context.Context, authorID uuid.UUID) (int64, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var score, count int64
	for _, c := range r.s.d.comments {
		if c.AuthorID == authorID {
			score += int64(c.Score())
			count++
		}
	}
	return score, count, nil
}
