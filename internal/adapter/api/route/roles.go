package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/domain/user"
	"github.com/hugohenrick/verduleria-api/pkg/auth"
)

func adminOnly() gin.HandlerFunc {
	return auth.RoleAuthMiddleware(string(user.RoleAdmin))
}
