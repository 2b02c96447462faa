package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(store utils.RevocationStore) *gin.Engine {
	r := gin.New()
	auth := r.Group("/", AuthMiddleware(store))
	auth.GET("/me", func(c *gin.Context) {
		id, role, _ := CurrentAccount(c)
		c.JSON(http.StatusOK, gin.H{"account_id": id, "role": role})
	})
	auth.GET("/admin", RequireRoles(ManagementRoles...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r *gin.Engine, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(token string) func(*http.Request) {
	return func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }
}

func TestAuthMiddleware(t *testing.T) {
	store := utils.NewMemoryRevocationStore()
	r := protectedRouter(store)

	customerToken, err := utils.GenerateToken(7, string(models.RoleCustomer))
	require.NoError(t, err)
	adminToken, err := utils.GenerateToken(1, string(models.RoleAdmin))
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", bearer("not-a-jwt")).Code)

	w := get(r, "/me", bearer(customerToken))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"account_id":7,"role":"CUSTOMER"}`, w.Body.String())

	// cookie and query string carry the same token
	w = get(r, "/me", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: customerToken})
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, get(r, "/me?token="+customerToken, nil).Code)

	assert.Equal(t, http.StatusForbidden, get(r, "/admin", bearer(customerToken)).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/admin", bearer(adminToken)).Code)

	claims, err := utils.ParseToken(customerToken)
	require.NoError(t, err)
	require.NoError(t, store.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", bearer(customerToken)).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/admin", bearer(adminToken)).Code)
}

func TestOptionalAuth(t *testing.T) {
	r := gin.New()
	r.GET("/", OptionalAuth(nil), func(c *gin.Context) {
		_, role, ok := CurrentAccount(c)
		c.JSON(http.StatusOK, gin.H{"signed_in": ok, "role": role})
	})

	assert.JSONEq(t, `{"signed_in":false,"role":""}`, get(r, "/", nil).Body.String())
	assert.JSONEq(t, `{"signed_in":false,"role":""}`, get(r, "/", bearer("garbage")).Body.String())

	token, err := utils.GenerateToken(3, string(models.RoleTechnician))
	require.NoError(t, err)
	assert.JSONEq(t, `{"signed_in":true,"role":"TECHNICIAN"}`, get(r, "/", bearer(token)).Body.String())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, 60)
	now := time.Now()
	assert.True(t, rl.allow("10.0.0.1", now))
	assert.True(t, rl.allow("10.0.0.1", now))
	assert.False(t, rl.allow("10.0.0.1", now))
	assert.True(t, rl.allow("10.0.0.2", now), "limits are per IP")
	assert.True(t, rl.allow("10.0.0.1", now.Add(61*time.Second)), "the window slides")
}

func TestStrictRateLimiter(t *testing.T) {
	r := gin.New()
	r.POST("/login", NewStrictRateLimiter(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, "attempt %d", i+1)
	}
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
