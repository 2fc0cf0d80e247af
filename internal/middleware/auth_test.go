package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shukrishariff-oms/pms-istmo/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuth = middleware.AuthConfig{Secret: "test-secret", Issuer: "pms-istmo"}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.AuthMiddleware(testAuth))
	r.GET("/whoami", func(c *gin.Context) {
		userID, _ := middleware.GetUserIDFromContext(c)
		role, _ := middleware.GetRoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user": userID, "role": role})
	})
	r.GET("/finance-only", middleware.RequireRole(middleware.RoleFinance, middleware.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(t *testing.T, r http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	token, err := middleware.IssueToken(testAuth, "user-1", middleware.RoleHOD, time.Hour)
	require.NoError(t, err)

	w := do(t, r, "/whoami", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"user-1","role":"hod"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(t, r, "/whoami", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, "/whoami", "garbage").Code)

	expired, err := middleware.IssueToken(testAuth, "user-1", middleware.RoleHOD, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, "/whoami", expired).Code)

	foreign, err := middleware.IssueToken(middleware.AuthConfig{Secret: "test-secret", Issuer: "someone-else"}, "user-1", middleware.RoleHOD, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, "/whoami", foreign).Code)

	unknownRole, err := middleware.IssueToken(testAuth, "user-1", middleware.Role("superuser"), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, "/whoami", unknownRole).Code)
}

func TestRequireRole(t *testing.T) {
	r := newRouter()

	finance, err := middleware.IssueToken(testAuth, "f-1", middleware.RoleFinance, time.Hour)
	require.NoError(t, err)
	staff, err := middleware.IssueToken(testAuth, "s-1", middleware.RoleStaff, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, do(t, r, "/finance-only", finance).Code)
	assert.Equal(t, http.StatusForbidden, do(t, r, "/finance-only", staff).Code)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lim, err := middleware.NewIPRateLimiter("2-M")
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.RateLimit(lim))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(t, r, "/ping", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, "/ping", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, r, "/ping", "").Code)

	_, err = middleware.NewIPRateLimiter("lots")
	assert.Error(t, err)
}
