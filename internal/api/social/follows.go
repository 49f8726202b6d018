package social

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/api/objects"
	"github.com/agora-social/agora/internal/api/params"
	"github.com/agora-social/agora/internal/auth"
	"github.com/agora-social/agora/internal/follows"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
)

// FollowsAPI provides follow methods
type FollowsAPI struct {
	follows *follows.Service
	loader  *objects.Loader
}

// NewFollowsAPI creates a new follows API
func NewFollowsAPI(svc *follows.Service, loader *objects.Loader) *FollowsAPI {
	return &FollowsAPI{follows: svc, loader: loader}
}

type followParams struct {
	UserID uuid.UUID `json:"user_id"`
}

type followListParams struct {
	UserID uuid.UUID `json:"user_id"`
	Page   int       `json:"page"`
	Limit  int       `json:"limit"`
}

// Follow handles follows.follow
func (a *FollowsAPI) Follow(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	user, err := auth.RequireUser(c)
	if err != nil {
		return nil, err
	}
	var p followParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}
	if err := params.RequireID("user_id", p.UserID); err != nil {
		return nil, err
	}

	created, err := a.follows.Follow(c.Request.Context(), user.ID, p.UserID)
	if err != nil {
		return nil, err
	}
	return gin.H{"following": true, "created": created}, nil
}

// Unfollow handles follows.unfollow
func (a *FollowsAPI) Unfollow(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	user, err := auth.RequireUser(c)
	if err != nil {
		return nil, err
	}
	var p followParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}
	if err := params.RequireID("user_id", p.UserID); err != nil {
		return nil, err
	}

	removed, err := a.follows.Unfollow(c.Request.Context(), user.ID, p.UserID)
	if err != nil {
		return nil, err
	}
	return gin.H{"following": false, "removed": removed}, nil
}

// Followers handles follows.followers
func (a *FollowsAPI) Followers(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	var p followListParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}
	if err := params.RequireID("user_id", p.UserID); err != nil {
		return nil, err
	}

	page, err := a.follows.Followers(c.Request.Context(), p.UserID, p.Page, p.Limit)
	if err != nil {
		return nil, err
	}
	return a.members(c, page, func(f *models.Follow) uuid.UUID { return f.FollowerID })
}

// Following handles follows.following
func (a *FollowsAPI) Following(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	var p followListParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}
	if err := params.RequireID("user_id", p.UserID); err != nil {
		return nil, err
	}

	page, err := a.follows.Following(c.Request.Context(), p.UserID, p.Page, p.Limit)
	if err != nil {
		return nil, err
	}
	return a.members(c, page, func(f *models.Follow) uuid.UUID { return f.FollowingID })
}

func (a *FollowsAPI) members(c *gin.Context, page *store.Page[models.Follow], side func(*models.Follow) uuid.UUID) (*store.Page[objects.Author], error) {
	ids := make([]uuid.UUID, len(page.Items))
	for i, f := range page.Items {
		ids[i] = side(f)
	}
	items, err := a.loader.Members(c.Request.Context(), ids)
	if err != nil {
		return nil, err
	}
	return objects.MapPage(page, items), nil
}
