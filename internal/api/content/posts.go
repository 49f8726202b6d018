package content

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/api/objects"
	"github.com/agora-social/agora/internal/api/params"
	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/auth"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/posts"
	"github.com/agora-social/agora/internal/store"
)

// PostsAPI provides post methods
type PostsAPI struct {
	posts  *posts.Service
	loader *objects.Loader
}

// NewPostsAPI creates a new posts API
func NewPostsAPI(svc *posts.Service, loader *objects.Loader) *PostsAPI {
	return &PostsAPI{posts: svc, loader: loader}
}

type postIDParams struct {
	ID uuid.UUID `json:"id"`
}

type createPostParams struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type editPostParams struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
}

type listParams struct {
	Sort  string `json:"sort"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

func parseSort(raw string) (store.Sort, error) {
	sort, ok := store.ParseSort(raw)
	if !ok {
		return "", apperr.Invalid("unknown sort %q", raw)
	}
	return sort, nil
}

// Create handles posts.create
func (a *PostsAPI) Create(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	user, err := auth.RequireUser(c)
	if err != nil {
		return nil, err
	}
	var p createPostParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}

	post, err := a.posts.Create(c.Request.Context(), user.ID, p.Title, p.Content)
	if err != nil {
		return nil, err
	}
	return a.loader.Post(c.Request.Context(), user, post)
}

// Get handles posts.get
func (a *PostsAPI) Get(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	var p postIDParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}
	if err := params.RequireID("id", p.ID); err != nil {
		return nil, err
	}

	post, err := a.posts.Get(c.Request.Context(), p.ID)
	if err != nil {
		return nil, err
	}
	viewer, _ := auth.CurrentUser(c)
	return a.loader.Post(c.Request.Context(), viewer, post)
}

// List handles posts.list
func (a *PostsAPI) List(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	var p listParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}
	sort, err := parseSort(p.Sort)
	if err != nil {
		return nil, err
	}

	page, err := a.posts.List(c.Request.Context(), sort, p.Page, p.Limit)
	if err != nil {
		return nil, err
	}
	viewer, _ := auth.CurrentUser(c)
	items, err := a.loader.Posts(c.Request.Context(), viewer, page.Items)
	if err != nil {
		return nil, err
	}
	return objects.MapPage(page, items), nil
}

// Edit handles posts.edit
func (a *PostsAPI) Edit(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	user, err := auth.RequireUser(c)
	if err != nil {
		return nil, err
	}
	var p editPostParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}
	if err := a.authorize(c, user, p.ID); err != nil {
		return nil, err
	}

	post, err := a.posts.Edit(c.Request.Context(), p.ID, p.Title, p.Content)
	if err != nil {
		return nil, err
	}
	return a.loader.Post(c.Request.Context(), user, post)
}

// Delete handles posts.delete
func (a *PostsAPI) Delete(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	user, err := auth.RequireUser(c)
	if err != nil {
		return nil, err
	}
	var p postIDParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}
	if err := a.authorize(c, user, p.ID); err != nil {
		return nil, err
	}

	if err := a.posts.SoftDelete(c.Request.Context(), p.ID); err != nil {
		return nil, err
	}
	return gin.H{"deleted": true}, nil
}

func (a *PostsAPI) authorize(c *gin.Context, user *models.User, id uuid.UUID) error {
	if err := params.RequireID("id", id); err != nil {
		return err
	}
	post, err := a.posts.Get(c.Request.Context(), id)
	if err != nil {
		return err
	}
	if !auth.CanModify(user, post.AuthorID) {
		return apperr.Forbidden("only the author can change this post")
	}
	return nil
}
