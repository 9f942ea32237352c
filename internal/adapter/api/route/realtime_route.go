package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/controller"
)

// SetupRealtimeRoutes configura el websocket y el chequeo de salud
func SetupRealtimeRoutes(router *gin.RouterGroup, realtimeController *controller.RealtimeController, healthController *controller.HealthController) {
	router.GET("/ws", realtimeController.Connect)
	router.GET("/health", healthController.Health)
}
