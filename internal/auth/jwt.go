// Package auth verifies bearer tokens and attaches the calling member to
// the request.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agora-social/agora/internal/users"
	"github.com/agora-social/agora/pkg/config"
)

// ErrDisabled is returned when no signing secret is configured
var ErrDisabled = errors.New("token verification is disabled")

// Claims carries the external identity of the caller. Subject holds the
// provider's user id.
type Claims struct {
	Provider string `json:"provider"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// Identity converts the claims to a user identity
func (c *Claims) Identity() users.Identity {
	return users.Identity{
		Provider:   c.Provider,
		ProviderID: c.Subject,
		Username:   c.Username,
	}
}

// Verifier issues and validates HMAC-signed tokens
type Verifier struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewVerifier creates a verifier. An empty secret yields a verifier that
// rejects every token.
func NewVerifier(cfg config.AuthConfig) *Verifier {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Verifier{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Enabled reports whether a secret is configured
func (v *Verifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// Issue signs a token for an identity
func (v *Verifier) Issue(id users.Identity) (string, error) {
	if !v.Enabled() {
		return "", ErrDisabled
	}
	now := v.now()
	claims := &Claims{
		Provider: id.Provider,
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   id.ProviderID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Verify parses a token and checks its signature, issuer and lifetime
func (v *Verifier) Verify(token string) (*Claims, error) {
	if !v.Enabled() {
		return nil, ErrDisabled
	}

	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Provider == "" || claims.Subject == "" {
		return nil, errors.New("token is missing identity claims")
	}
	return claims, nil
}
