package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/controller"
)

// SetupLotRoutes configura las rutas del libro de lotes. Todo es de administradores:
// los lotes llevan costos, proveedores y pagos.
func SetupLotRoutes(router *gin.RouterGroup, lotController *controller.LotController, authMW gin.HandlerFunc) {
	admin := adminOnly()

	lotRouter := router.Group("/purchase-lots", authMW)
	{
		lotRouter.GET("", admin, lotController.List)
		lotRouter.PATCH("/payment", admin, lotController.PatchPaymentGroup)
		lotRouter.POST("/:id/weigh", admin, lotController.Weigh)
		lotRouter.PATCH("/:id/payment", admin, lotController.PatchPayment)
	}
}
