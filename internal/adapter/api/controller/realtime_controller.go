package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/realtime"
)

// RealtimeController expone el websocket de avisos
type RealtimeController struct {
	hub *realtime.Hub
}

// NewRealtimeController crea una nueva instancia de RealtimeController
func NewRealtimeController(hub *realtime.Hub) *RealtimeController {
	return &RealtimeController{hub: hub}
}

// Connect abre el websocket. El cliente se suscribe con
// {"event":"session:join","data":{"sessionId":"..."}} y recibe
// daily_price_updated y promotions_updated de esa sesión.
// @Summary Websocket de avisos en tiempo real
// @Tags realtime
// @Success 101 {string} string "Switching Protocols"
// @Router /ws [get]
func (c *RealtimeController) Connect(ctx *gin.Context) {
	c.hub.ServeWS(ctx.Writer, ctx.Request)
}
