package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/controller"
)

// SetupCatalogRoutes configura las rutas de productos, variantes y proveedores.
// Cualquier usuario autenticado lista; solo administradores modifican.
func SetupCatalogRoutes(router *gin.RouterGroup, catalogController *controller.CatalogController, authMW gin.HandlerFunc) {
	admin := adminOnly()

	productRouter := router.Group("/products", authMW)
	{
		productRouter.GET("", catalogController.ListProducts)
		productRouter.POST("", admin, catalogController.CreateProduct)
		productRouter.PATCH("/:id", admin, catalogController.UpdateProduct)
		productRouter.PATCH("/:id/alta", admin, catalogController.ActivateProduct)
		productRouter.PATCH("/:id/baja", admin, catalogController.DeactivateProduct)
	}

	variantRouter := router.Group("/variants", authMW)
	{
		variantRouter.GET("", catalogController.ListVariants)
		variantRouter.POST("", admin, catalogController.CreateVariant)
		variantRouter.PATCH("/:id", admin, catalogController.UpdateVariant)
		variantRouter.PATCH("/:id/alta", admin, catalogController.ActivateVariant)
		variantRouter.PATCH("/:id/baja", admin, catalogController.DeactivateVariant)
		variantRouter.PATCH("/:id/image", admin, catalogController.SetVariantImage)
		variantRouter.DELETE("/:id/image", admin, catalogController.RemoveVariantImage)
	}

	supplierRouter := router.Group("/suppliers", authMW)
	{
		supplierRouter.GET("", catalogController.ListSuppliers)
		supplierRouter.POST("", admin, catalogController.CreateSupplier)
		supplierRouter.PATCH("/:id", admin, catalogController.UpdateSupplier)
		supplierRouter.PATCH("/:id/alta", admin, catalogController.ActivateSupplier)
		supplierRouter.PATCH("/:id/baja", admin, catalogController.DeactivateSupplier)
	}
}
