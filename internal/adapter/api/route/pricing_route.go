package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/controller"
)

// SetupPricingRoutes configura las rutas de precios diarios y del margen
func SetupPricingRoutes(router *gin.RouterGroup, pricingController *controller.PricingController, authMW gin.HandlerFunc) {
	admin := adminOnly()

	priceRouter := router.Group("/daily-prices", authMW)
	{
		// La vista depende del rol
		priceRouter.GET("", pricingController.List)
		priceRouter.GET("/board", pricingController.Board)

		priceRouter.GET("/admin/purchased", admin, pricingController.Purchased)
		priceRouter.GET("/pending", admin, pricingController.Pending)
		priceRouter.POST("/recalc", admin, pricingController.Recalc)
		priceRouter.PATCH("/:id/manual", admin, pricingController.SetManual)
		priceRouter.PATCH("/admin/variants/:variantId/conversion", admin, pricingController.UpdateConversion)
	}

	configRouter := router.Group("/config", authMW)
	{
		configRouter.GET("/margin", pricingController.GetMargin)
		configRouter.PATCH("/margin", admin, pricingController.SetMargin)
	}
}
