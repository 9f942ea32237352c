package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/dto"
	"github.com/hugohenrick/verduleria-api/internal/domain/lot"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
)

// LotController gestiona el libro de lotes
type LotController struct {
	purchaseService service.PurchaseService
	logger          logger.Logger
}

// NewLotController crea una nueva instancia de LotController
func NewLotController(purchaseService service.PurchaseService, logger logger.Logger) *LotController {
	return &LotController{
		purchaseService: purchaseService,
		logger:          logger,
	}
}

// List lista los lotes de una sesión con costos y proveedores
// @Summary Lista los lotes de una sesión
// @Tags purchase-lots
// @Produce json
// @Security BearerAuth
// @Param sessionId query string true "ID de la sesión"
// @Success 200 {object} dto.LotListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /purchase-lots [get]
func (c *LotController) List(ctx *gin.Context) {
	sessionID, err := requireQuery(ctx, "sessionId")
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	lots, err := c.purchaseService.ListLots(ctx.Request.Context(), sessionID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToLotListResponse(lots))
}

// Weigh registra el peso neto de un lote por CAJA
// @Summary Pesa un lote
// @Description Solo lotes por CAJA, una única vez. Recalcula el precio de la variante.
// @Tags purchase-lots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del lote"
// @Param weight body dto.WeighRequest true "Peso neto en kg"
// @Success 200 {object} dto.WeighResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /purchase-lots/{id}/weigh [post]
func (c *LotController) Weigh(ctx *gin.Context) {
	var request dto.WeighRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	result, err := c.purchaseService.Weigh(ctx.Request.Context(), ctx.Param("id"), request.NetWeightKg)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToWeighResponse(result))
}

// PatchPayment define la forma de pago de un lote
// @Summary Forma de pago de un lote
// @Tags purchase-lots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del lote"
// @Param payment body dto.PaymentRequest true "Forma de pago"
// @Success 200 {object} dto.LotEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /purchase-lots/{id}/payment [patch]
func (c *LotController) PatchPayment(ctx *gin.Context) {
	var request dto.PaymentRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	l, err := c.purchaseService.PatchPayment(ctx.Request.Context(), ctx.Param("id"), lot.PaymentMethod(request.PaymentMethod), request.PaymentNote)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.LotEnvelope{OK: true, Lot: dto.ToLotResponse(l)})
}

// PatchPaymentGroup define la forma de pago de todos los lotes de un proveedor para una variante
// @Summary Forma de pago por proveedor y variante
// @Tags purchase-lots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payment body dto.PaymentGroupRequest true "Agrupación y forma de pago"
// @Success 200 {object} dto.PaymentGroupResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /purchase-lots/payment [patch]
func (c *LotController) PatchPaymentGroup(ctx *gin.Context) {
	var request dto.PaymentGroupRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	n, err := c.purchaseService.PatchPaymentGroup(ctx.Request.Context(), request.Group(), lot.PaymentMethod(request.PaymentMethod), request.PaymentNote)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.PaymentGroupResponse{OK: true, Updated: n})
}
