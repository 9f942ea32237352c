package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/dto"
	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
)

const (
	defaultSessionLimit = 30
	maxSessionLimit     = 200
)

// SessionController gestiona las sesiones de compra, sus ítems y las confirmaciones
type SessionController struct {
	sessionService  service.SessionService
	purchaseService service.PurchaseService
	logger          logger.Logger
}

// NewSessionController crea una nueva instancia de SessionController
func NewSessionController(sessionService service.SessionService, purchaseService service.PurchaseService, logger logger.Logger) *SessionController {
	return &SessionController{
		sessionService:  sessionService,
		purchaseService: purchaseService,
		logger:          logger,
	}
}

// List lista las sesiones más recientes
// @Summary Lista las sesiones de compra
// @Tags purchase-sessions
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Cantidad máxima (por defecto 30)"
// @Success 200 {object} dto.SessionListResponse
// @Router /purchase-sessions [get]
func (c *SessionController) List(ctx *gin.Context) {
	limit := defaultSessionLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(ctx, c.logger, domain.NewValidation("INVALID_QUERY", "limit debe ser un entero positivo"))
			return
		}
		limit = min(n, maxSessionLimit)
	}

	sessions, err := c.sessionService.List(ctx.Request.Context(), limit)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SessionListResponse{OK: true, Sessions: dto.List(sessions)})
}

// Create crea una sesión en PLANIFICACION
// @Summary Crea una sesión de compra
// @Description Sin dateKey se usa la fecha de hoy. Solo puede haber una sesión sin cerrar.
// @Tags purchase-sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session body dto.CreateSessionRequest false "Fecha de la sesión"
// @Success 201 {object} dto.SessionEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /purchase-sessions [post]
func (c *SessionController) Create(ctx *gin.Context) {
	var request dto.CreateSessionRequest
	if !bindOptional(ctx, &request) {
		return
	}

	sess, err := c.sessionService.Create(ctx.Request.Context(), actorFrom(ctx), service.CreateSessionInput{
		DateKey:    request.DateKey,
		DateTarget: request.DateTarget,
	})
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.SessionEnvelope{OK: true, Session: sess})
}

// Get busca una sesión
// @Summary Busca una sesión por ID
// @Tags purchase-sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la sesión"
// @Success 200 {object} dto.SessionEnvelope
// @Failure 404 {object} dto.ErrorResponse
// @Router /purchase-sessions/{id} [get]
func (c *SessionController) Get(ctx *gin.Context) {
	sess, err := c.sessionService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SessionEnvelope{OK: true, Session: sess})
}

// Current devuelve la sesión vigente: ABIERTA, si no PLANIFICACION, si no la última CERRADA
// @Summary Sesión vigente
// @Tags public
// @Produce json
// @Success 200 {object} dto.SessionEnvelope
// @Failure 404 {object} dto.ErrorResponse
// @Router /public/purchase-sessions/current [get]
func (c *SessionController) Current(ctx *gin.Context) {
	sess, err := c.sessionService.Current(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SessionEnvelope{OK: true, Session: sess})
}

// Summary compara el presupuesto con lo comprado
// @Summary Resumen de presupuesto
// @Tags purchase-sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la sesión"
// @Success 200 {object} dto.SummaryResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /purchase-sessions/{id}/summary [get]
func (c *SessionController) Summary(ctx *gin.Context) {
	summary, err := c.sessionService.Summary(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SummaryResponse{OK: true, Summary: summary})
}

// ListItems lista los ítems de la sesión
// @Summary Lista los ítems de la sesión
// @Description Las reservas vencidas se informan como PENDIENTE
// @Tags purchase-sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la sesión"
// @Success 200 {object} dto.ItemListResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /purchase-sessions/{id}/items [get]
func (c *SessionController) ListItems(ctx *gin.Context) {
	views, err := c.sessionService.ListItems(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToItemListResponse(views))
}

// AddItem agrega un ítem
// @Summary Agrega un ítem a la sesión
// @Description Los ítems PLANIFICADO solo los agrega un administrador en PLANIFICACION;
// @Description los NO_PLANIFICADO cualquier usuario con la sesión ABIERTA.
// @Tags purchase-sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la sesión"
// @Param item body dto.ItemRequest true "Ítem"
// @Success 201 {object} dto.ItemEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /purchase-sessions/{id}/items [post]
func (c *SessionController) AddItem(ctx *gin.Context) {
	var request dto.ItemRequest
	if !bindAndValidate(ctx, &request) {
		return
	}

	item, err := c.sessionService.AddItem(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id"), request.ToInput())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.ToItemEnvelope(item))
}

// PatchItem edita un ítem
// @Summary Edita cantidad y precio de referencia de un ítem
// @Tags purchase-sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la sesión"
// @Param itemId path string true "ID del ítem"
// @Param item body dto.ItemPatchRequest true "Cambios"
// @Success 200 {object} dto.ItemEnvelope
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /purchase-sessions/{id}/items/{itemId} [patch]
func (c *SessionController) PatchItem(ctx *gin.Context) {
	var request dto.ItemPatchRequest
	if !bindAndValidate(ctx, &request) {
		return
	}

	item, err := c.sessionService.PatchItem(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id"), ctx.Param("itemId"), request.ToPatch())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToItemEnvelope(item))
}

// RemoveItem quita un ítem que todavía no tiene compras
// @Summary Quita un ítem de la sesión
// @Tags purchase-sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la sesión"
// @Param itemId path string true "ID del ítem"
// @Success 200 {object} dto.OKResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /purchase-sessions/{id}/items/{itemId} [delete]
func (c *SessionController) RemoveItem(ctx *gin.Context) {
	if err := c.sessionService.RemoveItem(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id"), ctx.Param("itemId")); err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.Ok())
}

// Open abre la sesión
// @Summary Abre la sesión de compra
// @Tags purchase-sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la sesión"
// @Success 200 {object} dto.SessionEnvelope
// @Failure 409 {object} dto.ErrorResponse
// @Router /purchase-sessions/{id}/open [post]
func (c *SessionController) Open(ctx *gin.Context) {
	sess, err := c.sessionService.Open(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SessionEnvelope{OK: true, Session: sess})
}

// Close cierra la sesión con un recálculo final
// @Summary Cierra la sesión de compra
// @Tags purchase-sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la sesión"
// @Success 200 {object} dto.CloseResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /purchase-sessions/{id}/close [post]
func (c *SessionController) Close(ctx *gin.Context) {
	result, err := c.sessionService.Close(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToCloseResponse(result))
}

// SetBudget define el presupuesto planificado
// @Summary Define el presupuesto de la sesión
// @Tags purchase-sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la sesión"
// @Param budget body dto.BudgetRequest true "Presupuesto"
// @Success 200 {object} dto.SessionEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /purchase-sessions/{id}/budget [patch]
func (c *SessionController) SetBudget(ctx *gin.Context) {
	var request dto.BudgetRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	sess, err := c.sessionService.SetBudget(ctx.Request.Context(), ctx.Param("id"), request.PlannedBudgetReal, request.PlannedBudgetRef)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SessionEnvelope{OK: true, Session: sess})
}

// Reserve reserva un ítem para el usuario
// @Summary Reserva un ítem
// @Tags purchase-sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la sesión"
// @Param itemId path string true "ID del ítem"
// @Param reserve body dto.ReserveRequest true "Minutos de reserva (1 a 120)"
// @Success 200 {object} dto.ItemEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /purchase-sessions/{id}/items/{itemId}/reserve [post]
func (c *SessionController) Reserve(ctx *gin.Context) {
	var request dto.ReserveRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	item, err := c.sessionService.Reserve(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id"), ctx.Param("itemId"), request.Minutes)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToItemEnvelope(item))
}

// Release libera la reserva de un ítem
// @Summary Libera un ítem reservado
// @Tags purchase-sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la sesión"
// @Param itemId path string true "ID del ítem"
// @Success 200 {object} dto.ItemEnvelope
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /purchase-sessions/{id}/items/{itemId}/release [post]
func (c *SessionController) Release(ctx *gin.Context) {
	item, err := c.sessionService.Release(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id"), ctx.Param("itemId"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToItemEnvelope(item))
}

// Confirm registra la compra de un ítem
// @Summary Confirma la compra de un ítem
// @Description Por CAJA se crea un lote por caja. Recalcula el precio de la variante.
// @Tags purchase-sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la sesión"
// @Param itemId path string true "ID del ítem"
// @Param purchase body dto.ConfirmRequest true "Compra"
// @Success 201 {object} dto.PurchaseResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /purchase-sessions/{id}/items/{itemId}/confirm [post]
func (c *SessionController) Confirm(ctx *gin.Context) {
	var request dto.ConfirmRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	result, err := c.purchaseService.Confirm(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id"), service.ConfirmInput{
		ItemID:       ctx.Param("itemId"),
		Confirmation: request.ToConfirmation(),
	})
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.ToPurchaseResponse(result))
}

// ConfirmBatch confirma varios ítems en una sola transacción
// @Summary Confirma varias compras
// @Description Todo o nada: si una compra falla no se registra ninguna
// @Tags purchase-sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la sesión"
// @Param purchases body dto.ConfirmBatchRequest true "Compras"
// @Success 201 {object} dto.PurchaseResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /purchase-sessions/{id}/confirm-batch [post]
func (c *SessionController) ConfirmBatch(ctx *gin.Context) {
	var request dto.ConfirmBatchRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	result, err := c.purchaseService.ConfirmBatch(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id"), request.ToInputs())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.ToPurchaseResponse(result))
}
