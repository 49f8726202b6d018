package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agora-social/agora/internal/api/content"
	"github.com/agora-social/agora/internal/api/objects"
	"github.com/agora-social/agora/internal/api/social"
	"github.com/agora-social/agora/internal/cache"
	"github.com/agora-social/agora/internal/comments"
	"github.com/agora-social/agora/internal/follows"
	"github.com/agora-social/agora/internal/notify"
	"github.com/agora-social/agora/internal/posts"
	"github.com/agora-social/agora/internal/store"
	"github.com/agora-social/agora/internal/users"
	"github.com/agora-social/agora/internal/voting"
	"github.com/agora-social/agora/pkg/logging"
)

// Services bundles what the API methods call into
type Services struct {
	Store         store.Store
	Cache         *cache.Cache
	Votes         *voting.Service
	Posts         *posts.Service
	Comments      *comments.Service
	Users         *users.Service
	Follows       *follows.Service
	Notifications *notify.Service
}

// Router sets up API routes
type Router struct {
	handler  *JSONRPCHandler
	services Services
	logger   *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(services Services) *Router {
	router := &Router{
		handler:  NewJSONRPCHandler(),
		services: services,
		logger:   logging.WithComponent("api-router"),
	}

	router.registerMethods()
	router.logger.Info("API methods registered", zap.Int("count", router.handler.Methods()))

	return router
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	engine.POST("/", r.handler.Handle)
	engine.POST("/rpc", r.handler.Handle)
}

// registerMethods registers all API methods
func (r *Router) registerMethods() {
	s := r.services
	loader := objects.NewLoader(s.Users, s.Votes)

	r.handler.RegisterMethod("agora.health", r.health)

	votes := content.NewVotesAPI(s.Votes)
	r.handler.RegisterMethod("votes.apply", votes.Apply)

	postsAPI := content.NewPostsAPI(s.Posts, loader)
	r.handler.RegisterMethod("posts.create", postsAPI.Create)
	r.handler.RegisterMethod("posts.get", postsAPI.Get)
	r.handler.RegisterMethod("posts.list", postsAPI.List)
	r.handler.RegisterMethod("posts.edit", postsAPI.Edit)
	r.handler.RegisterMethod("posts.delete", postsAPI.Delete)

	commentsAPI := content.NewCommentsAPI(s.Comments, loader)
	r.handler.RegisterMethod("comments.create", commentsAPI.Create)
	r.handler.RegisterMethod("comments.edit", commentsAPI.Edit)
	r.handler.RegisterMethod("comments.delete", commentsAPI.Delete)
	r.handler.RegisterMethod("comments.list", commentsAPI.List)
	r.handler.RegisterMethod("comments.replies", commentsAPI.Replies)
	r.handler.RegisterMethod("comments.thread", commentsAPI.Thread)
	r.handler.RegisterMethod("comments.expand", commentsAPI.Expand)

	usersAPI := social.NewUsersAPI(s.Users)
	r.handler.RegisterMethod("users.get", usersAPI.Get)
	r.handler.RegisterMethod("users.me", usersAPI.Me)

	followsAPI := social.NewFollowsAPI(s.Follows, loader)
	r.handler.RegisterMethod("follows.follow", followsAPI.Follow)
	r.handler.RegisterMethod("follows.unfollow", followsAPI.Unfollow)
	r.handler.RegisterMethod("follows.followers", followsAPI.Followers)
	r.handler.RegisterMethod("follows.following", followsAPI.Following)

	notificationsAPI := social.NewNotificationsAPI(s.Notifications, loader)
	r.handler.RegisterMethod("notifications.list", notificationsAPI.List)
	r.handler.RegisterMethod("notifications.unread_count", notificationsAPI.UnreadCount)
	r.handler.RegisterMethod("notifications.mark_read", notificationsAPI.MarkRead)
}

// status probes the store and, when configured, the cache
func (r *Router) status(ctx context.Context) (gin.H, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	healthy := true
	result := gin.H{"service": "agora-api"}

	if err := r.services.Store.Health(ctx); err != nil {
		r.logger.Warn("Store health check failed", zap.Error(err))
		result["store"] = "down"
		healthy = false
	} else {
		result["store"] = "ok"
	}

	switch err := r.services.Cache.Health(ctx); err {
	case nil:
		result["cache"] = "ok"
	case cache.ErrCacheDisabled:
		result["cache"] = "disabled"
	default:
		r.logger.Warn("Cache health check failed", zap.Error(err))
		result["cache"] = "down"
	}

	if healthy {
		result["status"] = "OK"
	} else {
		result["status"] = "DEGRADED"
	}
	return result, healthy
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	result, healthy := r.status(c.Request.Context())
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, result)
}

// health handles agora.health
func (r *Router) health(c *gin.Context, params json.RawMessage) (interface{}, error) {
	result, _ := r.status(c.Request.Context())
	return result, nil
}
