package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/dto"
)

// Claves del contexto de gin con los datos del usuario autenticado
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextUserRole = "user_role"
)

const (
	kindAuthentication = "AUTHENTICATION_ERROR"
	kindAuthorization  = "AUTHORIZATION_ERROR"
)

// JWTAuthMiddleware valida el token Bearer y guarda las claims en el contexto
func JWTAuthMiddleware(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				"TOKEN_REQUIRED", kindAuthentication, "se requiere autenticación",
			))
			return
		}

		// Formato "Bearer <token>"
		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				"INVALID_TOKEN_FORMAT", kindAuthentication, "use el formato 'Bearer <token>'",
			))
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(tokenParts[1]))
		if err != nil {
			code, message := "INVALID_TOKEN", "token inválido"
			if errors.Is(err, ErrExpiredToken) {
				code, message = "EXPIRED_TOKEN", "token expirado"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, kindAuthentication, message))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextUserRole, claims.Role)

		c.Next()
	}
}

// RoleAuthMiddleware deja pasar solo a los roles indicados
func RoleAuthMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ContextUserRole)
		if userRole == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				"TOKEN_REQUIRED", kindAuthentication, "se requiere autenticación",
			))
			return
		}

		for _, r := range roles {
			if userRole == r {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
			"FORBIDDEN", kindAuthorization, "no tiene permiso para acceder a este recurso",
		))
	}
}

// GetCurrentUser obtiene id, nombre de usuario y rol del contexto
func GetCurrentUser(c *gin.Context) (string, string, string) {
	return c.GetString(ContextUserID), c.GetString(ContextUsername), c.GetString(ContextUserRole)
}
