// Package social serves profile, follow and notification methods.
package social

import (
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/api/objects"
	"github.com/agora-social/agora/internal/api/params"
	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/auth"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/users"
)

// UsersAPI provides profile methods
type UsersAPI struct {
	users *users.Service
}

// NewUsersAPI creates a new users API
func NewUsersAPI(svc *users.Service) *UsersAPI {
	return &UsersAPI{users: svc}
}

type getUserParams struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Get handles users.get by id or username
func (a *UsersAPI) Get(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	var p getUserParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}

	var (
		u   *models.User
		err error
	)
	switch {
	case p.ID != uuid.Nil:
		u, err = a.users.Get(c.Request.Context(), p.ID)
	case strings.TrimSpace(p.Username) != "":
		u, err = a.users.GetByUsername(c.Request.Context(), strings.TrimSpace(p.Username))
	default:
		return nil, apperr.Invalid("missing required parameter: id or username")
	}
	if err != nil {
		return nil, err
	}
	return objects.NewProfile(u), nil
}

// Me handles users.me
func (a *UsersAPI) Me(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	user, err := auth.RequireUser(c)
	if err != nil {
		return nil, err
	}
	// Re-read so counters reflect writes made since the token was resolved.
	fresh, err := a.users.Get(c.Request.Context(), user.ID)
	if err != nil {
		return nil, err
	}
	return objects.NewProfile(fresh), nil
}
