package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/controller"
)

// SetupPromotionRoutes configura las rutas de promociones
func SetupPromotionRoutes(router *gin.RouterGroup, promotionController *controller.PromotionController, authMW gin.HandlerFunc) {
	admin := adminOnly()

	promotionRouter := router.Group("/promotions", authMW)
	{
		promotionRouter.GET("/vendor", promotionController.ListVendor)

		promotionRouter.GET("", admin, promotionController.ListAdmin)
		promotionRouter.POST("", admin, promotionController.Upsert)
		promotionRouter.PATCH("/:id", admin, promotionController.Patch)
		promotionRouter.PATCH("/:id/activate", admin, promotionController.Activate)
		promotionRouter.PATCH("/:id/deactivate", admin, promotionController.Deactivate)
		promotionRouter.PATCH("/:id/image", admin, promotionController.SetImage)
		promotionRouter.DELETE("/:id/image", admin, promotionController.ClearImage)
	}
}
