package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kart-io/gatekeeper/internal/gatekeeper/biz"
	"github.com/kart-io/gatekeeper/internal/gatekeeper/router"
	"github.com/kart-io/gatekeeper/internal/gatekeeper/store"
	"github.com/kart-io/gatekeeper/internal/model"
	"github.com/kart-io/gatekeeper/pkg/cache"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestEngine(t *testing.T) (*gin.Engine, store.Factory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	factory := store.NewFactory(db)
	require.NoError(t, factory.AutoMigrate())

	access := biz.NewAccessService(
		factory.Restrictions(),
		cache.NewMemory[string, biz.Selection](),
		biz.NopAuditor{},
		biz.DefaultRuleTTL,
	)
	restrictions := biz.NewRestrictionService(factory.Restrictions(), access)

	engine := router.New(router.Config{
		Access:       access,
		Restrictions: restrictions,
		Audits:       factory.Audits(),
		JWTSecret:    testSecret,
	})
	return engine, factory
}

func mintToken(t *testing.T, username, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":      username,
		"username": username,
		"role":     role,
		"user_id":  42,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func seedPageRule(t *testing.T, factory store.Factory, r *model.PageRestriction) {
	t.Helper()
	require.NoError(t, factory.Restrictions().CreatePage(t.Context(), r))
}

func TestCheckEndpoint(t *testing.T) {
	engine, factory := newTestEngine(t)
	seedPageRule(t, factory, &model.PageRestriction{
		RoutePath:    "/admin/*",
		BlockedRoles: model.StringList{"client"},
		IsActive:     true,
	})

	t.Run("anonymous caller is denied", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/v1/access/check", "",
			map[string]string{"route": "/admin/users"})
		require.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		var result struct {
			Allowed bool   `json:"allowed"`
			Reason  string `json:"reason"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.False(t, result.Allowed)
		assert.Equal(t, "not_authenticated", result.Reason)
	})

	t.Run("blocked role is denied", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/v1/access/check", mintToken(t, "carol", "client"),
			map[string]string{"route": "/admin/users"})
		env := decodeEnvelope(t, w)
		var result struct {
			Allowed bool   `json:"allowed"`
			Reason  string `json:"reason"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.False(t, result.Allowed)
		assert.Equal(t, "blocked_role", result.Reason)
	})

	t.Run("other roles pass", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/v1/access/check", mintToken(t, "root", "admin"),
			map[string]string{"route": "/admin/users"})
		env := decodeEnvelope(t, w)
		var result struct {
			Allowed bool   `json:"allowed"`
			Reason  string `json:"reason"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.True(t, result.Allowed)
		assert.Equal(t, "authenticated", result.Reason)
	})

	t.Run("garbage token falls back to anonymous", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/v1/access/check", "not-a-jwt",
			map[string]string{"route": "/admin/users"})
		require.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		var result struct {
			Reason string `json:"reason"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.Equal(t, "not_authenticated", result.Reason)
	})

	t.Run("missing route is rejected", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/v1/access/check", "", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCheckBatchEndpoint(t *testing.T) {
	engine, factory := newTestEngine(t)
	seedPageRule(t, factory, &model.PageRestriction{
		RoutePath:    "/reports/*",
		AllowedRoles: model.StringList{"admin"},
		IsActive:     true,
	})

	w := doJSON(t, engine, http.MethodPost, "/v1/access/check-batch", mintToken(t, "dan", "tax_preparer"),
		map[string]interface{}{"routes": []string{"/reports/q3", "/home"}})
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var results map[string]struct {
		Allowed bool   `json:"allowed"`
		Reason  string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &results))
	assert.False(t, results["/reports/q3"].Allowed)
	assert.Equal(t, "no_permission", results["/reports/q3"].Reason)
	assert.True(t, results["/home"].Allowed)
	assert.Equal(t, "no_restriction", results["/home"].Reason)
}

func TestNavigationEndpoint(t *testing.T) {
	engine, factory := newTestEngine(t)
	seedPageRule(t, factory, &model.PageRestriction{
		RoutePath:   "/internal/tools",
		HideFromNav: true,
		IsActive:    true,
	})

	w := doJSON(t, engine, http.MethodPost, "/v1/access/navigation", mintToken(t, "root", "admin"),
		map[string]interface{}{"routes": []string{"/home", "/internal/tools"}})
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var result struct {
		Routes []string `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, []string{"/home"}, result.Routes)
}

func TestContentFilterEndpoint(t *testing.T) {
	engine, factory := newTestEngine(t)
	require.NoError(t, factory.Restrictions().CreateContent(t.Context(), &model.ContentRestriction{
		ContentType:  "widget",
		ContentKey:   "revenue",
		AllowedRoles: model.StringList{"admin"},
		IsActive:     true,
	}))

	w := doJSON(t, engine, http.MethodPost, "/v1/access/content-filter", mintToken(t, "carol", "client"),
		map[string]interface{}{"content_type": "widget", "keys": []string{"revenue", "welcome"}})
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var result struct {
		Keys []string `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, []string{"welcome"}, result.Keys)
}

func TestRestrictionEndpoints_RequireAdmin(t *testing.T) {
	engine, _ := newTestEngine(t)

	body := map[string]interface{}{"route_path": "/admin/*", "blocked_roles": []string{"client"}}

	t.Run("anonymous gets 401", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/v1/restrictions/pages", "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non-admin gets 403", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/v1/restrictions/pages", mintToken(t, "carol", "client"), body)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin can create", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/v1/restrictions/pages", mintToken(t, "root", "admin"), body)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRestrictionCreate_FlushesRuleCache(t *testing.T) {
	engine, _ := newTestEngine(t)
	admin := mintToken(t, "root", "admin")

	// Prime the cache with "no restriction" for the route.
	w := doJSON(t, engine, http.MethodPost, "/v1/access/check", admin,
		map[string]string{"route": "/billing"})
	env := decodeEnvelope(t, w)
	var result struct {
		Reason string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Equal(t, "no_restriction", result.Reason)

	// Creating a rule must invalidate the cached selection immediately.
	w = doJSON(t, engine, http.MethodPost, "/v1/restrictions/pages", admin,
		map[string]interface{}{"route_path": "/billing", "blocked_roles": []string{"admin"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/v1/access/check", admin,
		map[string]string{"route": "/billing"})
	env = decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "blocked_role", result.Reason)
}

func TestRestrictionUpdateAndDelete(t *testing.T) {
	engine, _ := newTestEngine(t)
	admin := mintToken(t, "root", "admin")

	w := doJSON(t, engine, http.MethodPost, "/v1/restrictions/pages", admin,
		map[string]interface{}{"route_path": "/secret", "blocked_roles": []string{"client"}})
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var created struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotZero(t, created.ID)

	idPath := "/v1/restrictions/pages/" + itoa(created.ID)

	t.Run("partial update keeps other fields", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPut, idPath, admin,
			map[string]interface{}{"priority": 7})
		require.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		var updated struct {
			Priority     int      `json:"priority"`
			BlockedRoles []string `json:"blocked_roles"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &updated))
		assert.Equal(t, 7, updated.Priority)
		assert.Equal(t, []string{"client"}, updated.BlockedRoles)
	})

	t.Run("delete then 404", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodDelete, idPath, admin, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, engine, http.MethodGet, idPath, admin, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func itoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}
