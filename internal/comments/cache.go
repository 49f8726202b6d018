package comments

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agora-social/agora/internal/cache"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
)

const pageTTL = 30 * time.Second

// pageCache holds top-level comment pages in Redis. Each post has a
// generation counter that is bumped on every write touching the post's
// comments, which orphans all of its cached pages at once.
type pageCache struct {
	cache  *cache.Cache
	logger *zap.Logger
}

func generationKey(postID uuid.UUID) string {
	return "comments:gen:" + postID.String()
}

func (p *pageCache) generation(ctx context.Context, postID uuid.UUID) (string, bool) {
	gen, err := p.cache.Get(ctx, generationKey(postID))
	switch {
	case err == nil:
		return gen, true
	case errors.Is(err, cache.ErrMiss):
		return "0", true
	case errors.Is(err, cache.ErrCacheDisabled):
		return "", false
	default:
		p.logger.Debug("Comment cache generation lookup failed", zap.Error(err))
		return "", false
	}
}

func pageKey(postID uuid.UUID, gen string, sort store.Sort, q store.PageQuery) string {
	return "comments:page:" + cache.HashKey(postID.String(), gen, string(sort),
		strconv.Itoa(q.Offset), strconv.Itoa(q.Limit))
}

func (p *pageCache) get(ctx context.Context, postID uuid.UUID, sort store.Sort, q store.PageQuery) (*store.Page[models.Comment], string, bool) {
	gen, ok := p.generation(ctx, postID)
	if !ok {
		return nil, "", false
	}
	var page store.Page[models.Comment]
	if err := p.cache.GetJSON(ctx, pageKey(postID, gen, sort, q), &page); err != nil {
		return nil, gen, false
	}
	return &page, gen, true
}

func (p *pageCache) put(ctx context.Context, postID uuid.UUID, gen string, sort store.Sort, q store.PageQuery, page *store.Page[models.Comment]) {
	if gen == "" {
		return
	}
	if err := p.cache.SetJSON(ctx, pageKey(postID, gen, sort, q), page, pageTTL); err != nil {
		p.logger.Debug("Failed to cache comment page", zap.Error(err))
	}
}

func (p *pageCache) invalidate(ctx context.Context, postID uuid.UUID) {
	if _, err := p.cache.Incr(ctx, generationKey(postID)); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		p.logger.Warn("Failed to invalidate comment pages", zap.String("post_id", postID.String()), zap.Error(err))
	}
}
