package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
)

type postRepo struct{ s *Store }

func (r postRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.d.posts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r postRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return r.GetByID(ctx, id)
}

func (r postRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.d.posts[id]; ok {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r postRepo) Create(ctx context.Context, post *models.Post) error {
	defer r.s.lockWrite()()
	if post.ID == uuid.Nil {
		post.ID = models.NewID()
	}
	if _, ok := r.s.d.posts[post.ID]; ok {
		return apperr.Conflict("post %s already exists", post.ID)
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now()
	}
	post.UpdatedAt = post.CreatedAt
	r.s.d.posts[post.ID] = *post
	return nil
}

func (r postRepo) Update(ctx context.Context, post *models.Post) error {
	defer r.s.lockWrite()()
	if _, ok := r.s.d.posts[post.ID]; !ok {
		return apperr.NotFound("post %s not found", post.ID)
	}
	post.UpdatedAt = now()
	r.s.d.posts[post.ID] = *post
	return nil
}

func (r postRepo) List(ctx context.Context, by store.Sort, page store.PageQuery) ([]*models.Post, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	keys := make([]scored, 0, len(r.s.d.posts))
	for _, p := range r.s.d.posts {
		if !p.IsDeleted {
			keys = append(keys, scored{id: p.ID, score: p.Score(), created: p.CreatedAt})
		}
	}
	sortByScore(keys, by)
	all := make([]*models.Post, len(keys))
	for i, k := range keys {
		p := r.s.d.posts[k.id]
		all[i] = &p
	}
	return window(all, page), int64(len(all)), nil
}

func (r postRepo) adjust(id uuid.UUID, fn func(p *models.Post)) error {
	defer r.s.lockWrite()()
	p, ok := r.s.d.posts[id]
	if !ok {
		return apperr.NotFound("post %s not found", id)
	}
	fn(&p)
	r.s.d.posts[id] = p
	return nil
}

func (r postRepo) AddVoteCounts(ctx context.Context, id uuid.UUID, up, down int) error {
	return r.adjust(id, func(p *models.Post) {
		p.Upvotes += up
		p.Downvotes += down
	})
}

func (r postRepo) AddCommentCount(ctx context.Context, id uuid.UUID, delta int) error {
	return r.adjust(id, func(p *models.Post) { p.CommentCount += delta })
}

func (r postRepo) AuthorTotals(ctx context.Context, authorID uuid.UUID) (int64, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var score, count int64
	for _, p := range r.s.d.posts {
		if p.AuthorID == authorID {
			score += int64(p.Score())
			count++
		}
	}
	return score, count, nil
}
