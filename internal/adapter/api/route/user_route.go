package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/controller"
)

// SetupUserRoutes configura las rutas de administración de usuarios
func SetupUserRoutes(router *gin.RouterGroup, userController *controller.UserController, authMW gin.HandlerFunc) {
	userRouter := router.Group("/users", authMW, adminOnly())
	{
		userRouter.GET("", userController.List)
		userRouter.POST("/vendors", userController.CreateVendor)
		userRouter.PATCH("/:id", userController.Rename)
		userRouter.PATCH("/:id/password", userController.ResetPassword)
		userRouter.PATCH("/:id/alta", userController.Activate)
		userRouter.PATCH("/:id/baja", userController.Deactivate)
	}
}
