package social

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/api/objects"
	"github.com/agora-social/agora/internal/api/params"
	"github.com/agora-social/agora/internal/auth"
	"github.com/agora-social/agora/internal/notify"
)

// NotificationsAPI provides the caller's notification methods
type NotificationsAPI struct {
	notify *notify.Service
	loader *objects.Loader
}

// NewNotificationsAPI creates a new notifications API
func NewNotificationsAPI(svc *notify.Service, loader *objects.Loader) *NotificationsAPI {
	return &NotificationsAPI{notify: svc, loader: loader}
}

type listNotificationsParams struct {
	UnreadOnly bool `json:"unread_only"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
}

type markReadParams struct {
	IDs []uuid.UUID `json:"ids"`
}

// List handles notifications.list
func (a *NotificationsAPI) List(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	user, err := auth.RequireUser(c)
	if err != nil {
		return nil, err
	}
	var p listNotificationsParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}

	page, err := a.notify.List(c.Request.Context(), user.ID, p.UnreadOnly, p.Page, p.Limit)
	if err != nil {
		return nil, err
	}
	items, err := a.loader.Notifications(c.Request.Context(), page.Items)
	if err != nil {
		return nil, err
	}
	return objects.MapPage(page, items), nil
}

// UnreadCount handles notifications.unread_count
func (a *NotificationsAPI) UnreadCount(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	user, err := auth.RequireUser(c)
	if err != nil {
		return nil, err
	}
	n, err := a.notify.UnreadCount(c.Request.Context(), user.ID)
	if err != nil {
		return nil, err
	}
	return gin.H{"unread": n}, nil
}

// MarkRead handles notifications.mark_read. Without ids every notification
// is marked.
func (a *NotificationsAPI) MarkRead(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	user, err := auth.RequireUser(c)
	if err != nil {
		return nil, err
	}
	var p markReadParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}

	changed, err := a.notify.MarkRead(c.Request.Context(), user.ID, p.IDs)
	if err != nil {
		return nil, err
	}
	return gin.H{"marked": changed}, nil
}
