// Package middleware provides gin middleware for resolving caller identity
// and enforcing page restrictions on served routes.
package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/kart-io/gatekeeper/internal/gatekeeper/engine"
)

// identityKey is the gin context key under which the resolved identity is stored.
const identityKey = "gatekeeper.identity"

// IdentityClaims are the JWT claims issued by the CRM for its users.
type IdentityClaims struct {
	jwt.RegisteredClaims
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Identity resolves the caller from a Bearer token in the Authorization
// header. A missing, malformed, or expired token yields the anonymous
// identity rather than a 401: access decisions treat unauthenticated
// callers as first-class subjects, and the decision ladder itself decides
// whether they may proceed.
func Identity(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		c.Set(identityKey, resolveIdentity(c.GetHeader("Authorization"), key))
		c.Next()
	}
}

func resolveIdentity(header string, key []byte) engine.Identity {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return engine.Anonymous
	}

	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, prefix), claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return engine.Anonymous
	}

	username := claims.Username
	if username == "" {
		username = claims.Subject
	}

	return engine.Identity{
		UserID:        claims.UserID,
		Username:      engine.NormalizeUsername(username),
		Role:          claims.Role,
		Authenticated: true,
	}
}

// FromContext returns the identity resolved by the Identity middleware.
// Routes without the middleware see the anonymous identity.
func FromContext(c *gin.Context) engine.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(engine.Identity); ok {
			return id
		}
	}
	return engine.Anonymous
}
