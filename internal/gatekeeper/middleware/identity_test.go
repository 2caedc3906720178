package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/gatekeeper/internal/gatekeeper/engine"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func capturedIdentity(t *testing.T, authHeader string) engine.Identity {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var got engine.Identity
	r := gin.New()
	r.Use(Identity(testSecret))
	r.GET("/probe", func(c *gin.Context) {
		got = FromContext(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return got
}

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestIdentity_ValidToken(t *testing.T) {
	token := sign(t, jwt.MapClaims{
		"user_id":  uint64(7),
		"username": "  Alice  ",
		"role":     "tax_preparer",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	id := capturedIdentity(t, "Bearer "+token)
	assert.True(t, id.Authenticated)
	assert.Equal(t, uint64(7), id.UserID)
	assert.Equal(t, "alice", id.Username, "username is normalized on entry")
	assert.Equal(t, "tax_preparer", id.Role)
}

func TestIdentity_SubjectFallback(t *testing.T) {
	token := sign(t, jwt.MapClaims{
		"sub": "Bob",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	id := capturedIdentity(t, "Bearer "+token)
	assert.True(t, id.Authenticated)
	assert.Equal(t, "bob", id.Username)
}

func TestIdentity_AnonymousFallbacks(t *testing.T) {
	expired := sign(t, jwt.MapClaims{
		"username": "alice",
		"exp":      time.Now().Add(-time.Hour).Unix(),
	}, testSecret)
	wrongKey := sign(t, jwt.MapClaims{
		"username": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}, "another-secret-key-of-decent-length")

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not a bearer token", "Basic abc123"},
		{"malformed token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong signing key", "Bearer " + wrongKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := capturedIdentity(t, tt.header)
			assert.Equal(t, engine.Anonymous, id)
		})
	}
}
