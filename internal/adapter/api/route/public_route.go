package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/controller"
)

// SetupPublicRoutes configura las rutas sin autenticación de la pantalla pública
func SetupPublicRoutes(router *gin.RouterGroup, sessionController *controller.SessionController, promotionController *controller.PromotionController) {
	publicRouter := router.Group("/public")
	{
		publicRouter.GET("/purchase-sessions/current", sessionController.Current)
		publicRouter.GET("/sessions/:id/promotions", promotionController.ListPublic)
	}
}
