package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/dto"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
)

// Pinger es una dependencia que responde a un chequeo de salud
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController informa el estado de la base y de redis
type HealthController struct {
	db     Pinger
	redis  Pinger
	logger logger.Logger
}

// NewHealthController crea el controlador. redis puede ser nil si está deshabilitado.
func NewHealthController(db Pinger, redis Pinger, logger logger.Logger) *HealthController {
	return &HealthController{db: db, redis: redis, logger: logger}
}

// Health verifica las dependencias
// @Summary Chequeo de salud
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{OK: true, Database: "up"}
	if err := c.db.Ping(pingCtx); err != nil {
		c.logger.Warn("base de datos no disponible", "error", err)
		resp.OK = false
		resp.Database = "down"
	}
	if c.redis != nil {
		resp.Redis = "up"
		if err := c.redis.Ping(pingCtx); err != nil {
			c.logger.Warn("redis no disponible", "error", err)
			resp.Redis = "down"
		}
	}

	status := http.StatusOK
	if !resp.OK {
		status = http.StatusServiceUnavailable
	}
	ctx.JSON(status, resp)
}
