package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter(t *testing.T, svc *JWTService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/", JWTAuthMiddleware(svc))
	g.GET("/me", func(c *gin.Context) {
		id, username, role := GetCurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "username": username, "role": role})
	})
	g.GET("/admin", RoleAuthMiddleware(string(user.RoleAdmin)), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func doRequest(r http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	svc, err := NewJWTService("secreto", time.Hour)
	require.NoError(t, err)
	r := newProtectedRouter(t, svc)

	token, _, err := svc.GenerateToken(&user.User{ID: "u1", Username: "ana", Role: user.RoleVendedor})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"sin header", "", http.StatusUnauthorized, "TOKEN_REQUIRED"},
		{"formato inválido", "Token " + token, http.StatusUnauthorized, "INVALID_TOKEN_FORMAT"},
		{"token inválido", "Bearer basura", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token válido", "Bearer " + token, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, "/me", tt.header)
			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Contains(t, w.Body.String(), tt.code)
				assert.Contains(t, w.Body.String(), `"ok":false`)
			} else {
				assert.Contains(t, w.Body.String(), `"username":"ana"`)
			}
		})
	}
}

func TestRoleAuthMiddleware(t *testing.T) {
	svc, err := NewJWTService("secreto", time.Hour)
	require.NoError(t, err)
	r := newProtectedRouter(t, svc)

	vendor, _, err := svc.GenerateToken(&user.User{ID: "u1", Role: user.RoleVendedor})
	require.NoError(t, err)
	admin, _, err := svc.GenerateToken(&user.User{ID: "u2", Role: user.RoleAdmin})
	require.NoError(t, err)

	w := doRequest(r, "/admin", "Bearer "+vendor)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")

	w = doRequest(r, "/admin", "Bearer "+admin)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
