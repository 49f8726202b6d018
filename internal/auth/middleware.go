package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/users"
	"github.com/agora-social/agora/pkg/logging"
)

const userKey = "agora.user"

// Ensurer resolves an identity to a member, creating it if needed
type Ensurer interface {
	Ensure(ctx context.Context, id users.Identity) (*models.User, error)
}

// Middleware authenticates requests that carry a bearer token. Requests
// without one pass through anonymously; a bad token is rejected with 401.
func Middleware(v *Verifier, ensurer Ensurer) gin.HandlerFunc {
	logger := logging.WithComponent("auth")

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		claims, err := v.Verify(strings.TrimSpace(token))
		if err != nil {
			logger.Debug("Token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, err := ensurer.Ensure(c.Request.Context(), claims.Identity())
		if err != nil {
			logger.Error("Failed to resolve caller", zap.String("provider", claims.Provider), zap.Error(err))
			status := http.StatusInternalServerError
			if apperr.KindOf(err) == apperr.KindUnauthorized {
				status = http.StatusUnauthorized
			}
			c.AbortWithStatusJSON(status, gin.H{"error": "failed to resolve user"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated member, if any
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}

// RequireUser returns the authenticated member or an Unauthorized error
func RequireUser(c *gin.Context) (*models.User, error) {
	u, ok := CurrentUser(c)
	if !ok {
		return nil, apperr.Unauthorized("authentication required")
	}
	return u, nil
}

// CanModify reports whether u may edit or delete content written by authorID
func CanModify(u *models.User, authorID uuid.UUID) bool {
	return u != nil && (u.IsAdmin || u.ID == authorID)
}
