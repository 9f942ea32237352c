package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/controller"
)

// SetupAuthRoutes configura las rutas de autenticación y alta inicial
func SetupAuthRoutes(router *gin.RouterGroup, authController *controller.AuthController, authMW gin.HandlerFunc) {
	authRouter := router.Group("/auth")
	{
		// Sin autenticación
		authRouter.POST("/login", authController.Login)

		authRouter.GET("/me", authMW, authController.Me)
	}

	// Solo funciona mientras no exista un administrador
	router.POST("/setup/admin", authController.SetupAdmin)
}
