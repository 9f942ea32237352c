package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/controller"
)

// SetupUploadRoutes configura la subida de imágenes
func SetupUploadRoutes(router *gin.RouterGroup, uploadController *controller.UploadController, authMW gin.HandlerFunc) {
	router.POST("/uploads/image", authMW, adminOnly(), uploadController.UploadImage)
}
