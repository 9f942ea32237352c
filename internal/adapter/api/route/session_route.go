package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/controller"
)

// SetupSessionRoutes configura las rutas de sesiones de compra.
// Los permisos por origen del ítem los resuelve el servicio.
func SetupSessionRoutes(router *gin.RouterGroup, sessionController *controller.SessionController, authMW gin.HandlerFunc) {
	admin := adminOnly()

	sessionRouter := router.Group("/purchase-sessions", authMW)
	{
		sessionRouter.GET("", sessionController.List)
		sessionRouter.POST("", admin, sessionController.Create)
		sessionRouter.GET("/:id", sessionController.Get)
		sessionRouter.GET("/:id/summary", admin, sessionController.Summary)

		sessionRouter.POST("/:id/open", admin, sessionController.Open)
		sessionRouter.POST("/:id/close", admin, sessionController.Close)
		sessionRouter.PATCH("/:id/budget", admin, sessionController.SetBudget)

		sessionRouter.GET("/:id/items", sessionController.ListItems)
		sessionRouter.POST("/:id/items", sessionController.AddItem)
		sessionRouter.PATCH("/:id/items/:itemId", sessionController.PatchItem)
		sessionRouter.DELETE("/:id/items/:itemId", sessionController.RemoveItem)

		sessionRouter.POST("/:id/items/:itemId/reserve", sessionController.Reserve)
		sessionRouter.POST("/:id/items/:itemId/release", sessionController.Release)
		sessionRouter.POST("/:id/items/:itemId/confirm", sessionController.Confirm)
		sessionRouter.POST("/:id/confirm-batch", sessionController.ConfirmBatch)
	}
}
