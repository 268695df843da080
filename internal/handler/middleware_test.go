package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketline/ticketline/internal/dto"
	"github.com/ticketline/ticketline/internal/repository"
	"github.com/ticketline/ticketline/internal/service"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth := service.NewAuthService(
		repository.NewMemoryVendorRepository(),
		repository.NewMemoryCustomerRepository(),
		&service.AuthServiceConfig{
			JWTSecret:     "test-secret",
			AdminEmail:    "admin@ticketline.local",
			AdminPassword: "admin",
		},
	)

	router := gin.New()
	router.GET("/open", AuthRequired(auth), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	router.GET("/admin", AuthRequired(auth, service.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString("role")})
	})
	return router, auth
}

func adminToken(t *testing.T, auth service.AuthService) string {
	t.Helper()
	resp, err := auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "admin@ticketline.local",
		Password: "admin",
	})
	require.NoError(t, err)
	return resp.AccessToken
}

func TestAuthRequiredMissingToken(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredInvalidToken(t *testing.T) {
	router, _ := setupAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredValidToken(t *testing.T) {
	router, auth := setupAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, auth))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin")
}

func TestAuthRequiredRoleCheck(t *testing.T) {
	router, auth := setupAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, auth))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
