package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthyfries/reviewsite/config"
	"github.com/healthyfries/reviewsite/middleware"
	"github.com/healthyfries/reviewsite/models"
	"github.com/healthyfries/reviewsite/utils"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.SetForTest(config.AppConfig{JWTSecret: "test-secret"})

	r := gin.New()
	r.GET("/user", middleware.AuthRequired(), func(c *gin.Context) {
		utils.Success(c, gin.H{"username": c.GetString(middleware.ContextUsernameKey)})
	})
	r.GET("/admin", middleware.AuthRequired(), middleware.AdminRequired(), func(c *gin.Context) {
		utils.Success(c, nil)
	})
	return r
}

func doGet(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredRejectsMissingHeader(t *testing.T) {
	r := setupRouter(t)
	w := doGet(r, "/user", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredRejectsMalformedHeader(t *testing.T) {
	r := setupRouter(t)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/user", "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/user", "Bearer ").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/user", "Bearer not-a-jwt").Code)
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	r := setupRouter(t)
	token, err := utils.GenerateToken(7, "sam", models.RoleUser, time.Hour)
	require.NoError(t, err)

	w := doGet(r, "/user", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sam")
}

func TestAuthRequiredRejectsExpiredToken(t *testing.T) {
	r := setupRouter(t)
	token, err := utils.GenerateToken(7, "sam", models.RoleUser, -time.Minute)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/user", "Bearer "+token).Code)
}

func TestAuthRequiredRejectsRevokedToken(t *testing.T) {
	r := setupRouter(t)
	token, err := utils.GenerateToken(7, "sam", models.RoleUser, time.Hour)
	require.NoError(t, err)

	utils.BlacklistToken(token, time.Now().Add(time.Hour))
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/user", "Bearer "+token).Code)
}

func TestAdminRequiredRejectsReaderRole(t *testing.T) {
	r := setupRouter(t)
	token, err := utils.GenerateToken(7, "sam", models.RoleUser, time.Hour)
	require.NoError(t, err)

	w := doGet(r, "/admin", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	// The body carries a redirect hint for the front end.
	assert.Contains(t, w.Body.String(), `"redirect":"/"`)
}

func TestAdminRequiredAcceptsAdminRole(t *testing.T) {
	r := setupRouter(t)
	token, err := utils.GenerateToken(1, "root", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doGet(r, "/admin", "Bearer "+token).Code)
}
