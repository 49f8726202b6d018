package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/users"
	"github.com/agora-social/agora/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testIdentity = users.Identity{Provider: "github", ProviderID: "4242", Username: "octo"}

func TestIssueVerify(t *testing.T) {
	v := NewVerifier(config.AuthConfig{JWTSecret: "s3cret", Issuer: "agora", TokenTTL: time.Hour})

	token, err := v.Issue(testIdentity)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, testIdentity, claims.Identity())
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier(config.AuthConfig{JWTSecret: "s3cret", Issuer: "agora", TokenTTL: time.Hour})
	good, err := v.Issue(testIdentity)
	require.NoError(t, err)

	other := NewVerifier(config.AuthConfig{JWTSecret: "different", Issuer: "agora", TokenTTL: time.Hour})
	forged, err := other.Issue(testIdentity)
	require.NoError(t, err)

	wrongIssuer := NewVerifier(config.AuthConfig{JWTSecret: "s3cret", Issuer: "elsewhere", TokenTTL: time.Hour})
	foreign, err := wrongIssuer.Issue(testIdentity)
	require.NoError(t, err)

	expiredV := NewVerifier(config.AuthConfig{JWTSecret: "s3cret", Issuer: "agora", TokenTTL: time.Hour})
	expiredV.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredV.Issue(testIdentity)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Provider: "github"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", forged},
		{"wrong issuer", foreign},
		{"expired", expired},
		{"unsigned", none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.Error(t, err)
		})
	}

	_, err = v.Verify(good)
	assert.NoError(t, err)
}

func TestDisabledVerifier(t *testing.T) {
	v := NewVerifier(config.AuthConfig{})
	assert.False(t, v.Enabled())
	_, err := v.Issue(testIdentity)
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = v.Verify("x")
	assert.ErrorIs(t, err, ErrDisabled)
}

type fakeEnsurer struct {
	user  *models.User
	calls int
}

func (f *fakeEnsurer) Ensure(ctx context.Context, id users.Identity) (*models.User, error) {
	f.calls++
	return f.user, nil
}

func TestMiddleware(t *testing.T) {
	v := NewVerifier(config.AuthConfig{JWTSecret: "s3cret", Issuer: "agora", TokenTTL: time.Hour})
	token, err := v.Issue(testIdentity)
	require.NoError(t, err)

	member := &models.User{ID: uuid.New(), Username: "octo"}
	ensurer := &fakeEnsurer{user: member}

	engine := gin.New()
	engine.Use(Middleware(v, ensurer))
	engine.GET("/", func(c *gin.Context) {
		if u, ok := CurrentUser(c); ok {
			c.String(http.StatusOK, u.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"anonymous", "", http.StatusOK, "anonymous"},
		{"valid", "Bearer " + token, http.StatusOK, "octo"},
		{"bad scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"bad token", "Bearer abc", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
	assert.Equal(t, 1, ensurer.calls)
}

func TestCanModify(t *testing.T) {
	author := uuid.New()
	assert.True(t, CanModify(&models.User{ID: author}, author))
	assert.True(t, CanModify(&models.User{ID: uuid.New(), IsAdmin: true}, author))
	assert.False(t, CanModify(&models.User{ID: uuid.New()}, author))
	assert.False(t, CanModify(nil, author))
}
