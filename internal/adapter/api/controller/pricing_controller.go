package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/dto"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
)

// PricingController gestiona los precios diarios y el margen
type PricingController struct {
	pricingService service.PricingService
	sessionService service.SessionService
	logger         logger.Logger
}

// NewPricingController crea una nueva instancia de PricingController
func NewPricingController(pricingService service.PricingService, sessionService service.SessionService, logger logger.Logger) *PricingController {
	return &PricingController{
		pricingService: pricingService,
		sessionService: sessionService,
		logger:         logger,
	}
}

// sessionID devuelve el sessionId de la query o, si falta, el de la sesión vigente
func (c *PricingController) sessionID(ctx *gin.Context) (string, error) {
	if id := strings.TrimSpace(ctx.Query("sessionId")); id != "" {
		return id, nil
	}
	sess, err := c.sessionService.Current(ctx.Request.Context())
	if err != nil {
		return "", err
	}
	return sess.ID, nil
}

// List lista los precios de la sesión. Los vendedores reciben la vista sin costos.
// @Summary Lista los precios diarios
// @Tags daily-prices
// @Produce json
// @Security BearerAuth
// @Param sessionId query string false "ID de la sesión (por defecto la vigente)"
// @Success 200 {object} dto.AdminPriceListResponse
// @Success 200 {object} dto.VendorPriceListResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /daily-prices [get]
func (c *PricingController) List(ctx *gin.Context) {
	sessionID, err := c.sessionID(ctx)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	views, err := c.pricingService.ListPrices(ctx.Request.Context(), sessionID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	if actorFrom(ctx).IsAdmin() {
		ctx.JSON(http.StatusOK, dto.ToAdminPriceList(views))
		return
	}
	ctx.JSON(http.StatusOK, dto.ToVendorPriceList(views))
}

// Board devuelve el tablero de vendedores
// @Summary Tablero de precios para vendedores
// @Description Variantes activas con precio de la sesión o, si no, el último conocido
// @Tags daily-prices
// @Produce json
// @Security BearerAuth
// @Param sessionId query string false "ID de la sesión (por defecto la vigente)"
// @Success 200 {object} dto.BoardResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /daily-prices/board [get]
func (c *PricingController) Board(ctx *gin.Context) {
	sessionID, err := c.sessionID(ctx)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	rows, err := c.pricingService.Board(ctx.Request.Context(), sessionID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.BoardResponse{OK: true, Rows: dto.List(rows)})
}

// Purchased lista lo comprado con sus lotes y precio
// @Summary Compras de la sesión con costos
// @Tags daily-prices
// @Produce json
// @Security BearerAuth
// @Param sessionId query string false "ID de la sesión (por defecto la vigente)"
// @Success 200 {object} dto.PurchasedResponse
// @Router /daily-prices/admin/purchased [get]
func (c *PricingController) Purchased(ctx *gin.Context) {
	sessionID, err := c.sessionID(ctx)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	views, err := c.pricingService.Purchased(ctx.Request.Context(), sessionID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToPurchasedResponse(views))
}

// Pending lista los precios que no están LISTO
// @Summary Precios pendientes
// @Tags daily-prices
// @Produce json
// @Security BearerAuth
// @Param sessionId query string false "ID de la sesión (por defecto la vigente)"
// @Success 200 {object} dto.AdminPriceListResponse
// @Router /daily-prices/pending [get]
func (c *PricingController) Pending(ctx *gin.Context) {
	sessionID, err := c.sessionID(ctx)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	views, err := c.pricingService.Pending(ctx.Request.Context(), sessionID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToAdminPriceList(views))
}

// Recalc recalcula todos los precios de la sesión con el margen vigente
// @Summary Recalcula los precios de la sesión
// @Tags daily-prices
// @Produce json
// @Security BearerAuth
// @Param sessionId query string false "ID de la sesión (por defecto la vigente)"
// @Success 200 {object} dto.RecalcResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /daily-prices/recalc [post]
func (c *PricingController) Recalc(ctx *gin.Context) {
	sessionID, err := c.sessionID(ctx)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	report, err := c.pricingService.Recalc(ctx.Request.Context(), sessionID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToRecalcResponse(report))
}

// SetManual fija a mano el precio de venta de un precio pendiente
// @Summary Precio manual
// @Tags daily-prices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del precio diario"
// @Param price body dto.ManualPriceRequest true "Precio manual"
// @Success 200 {object} dto.AdminPriceEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /daily-prices/{id}/manual [patch]
func (c *PricingController) SetManual(ctx *gin.Context) {
	var request dto.ManualPriceRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	view, err := c.pricingService.SetManual(ctx.Request.Context(), ctx.Param("id"), request.SalePrice, request.Note)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.AdminPriceEnvelope{OK: true, Price: dto.ToAdminPrice(*view)})
}

// UpdateConversion corrige la conversión de una variante y recalcula su precio
// @Summary Corrige la conversión de una variante
// @Tags daily-prices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param variantId path string true "ID de la variante"
// @Param conversion body dto.ConversionRequest true "Conversión"
// @Success 200 {object} dto.ConversionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /daily-prices/admin/variants/{variantId}/conversion [patch]
func (c *PricingController) UpdateConversion(ctx *gin.Context) {
	var request dto.ConversionRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	v, view, err := c.pricingService.UpdateConversion(ctx.Request.Context(), ctx.Param("variantId"), request.Conversion, request.SessionID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	resp := dto.ConversionResponse{OK: true, Variant: v}
	if view != nil {
		p := dto.ToAdminPrice(*view)
		resp.Price = &p
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetMargin devuelve el margen vigente
// @Summary Margen vigente
// @Tags config
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MarginResponse
// @Router /config/margin [get]
func (c *PricingController) GetMargin(ctx *gin.Context) {
	m, err := c.pricingService.CurrentMargin(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToMarginResponse(m))
}

// SetMargin guarda una nueva versión del margen. Los precios guardados no cambian hasta el próximo recálculo.
// @Summary Cambia el margen
// @Tags config
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param margin body dto.MarginRequest true "Margen como fracción (0.35 = 35%)"
// @Success 200 {object} dto.MarginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /config/margin [patch]
func (c *PricingController) SetMargin(ctx *gin.Context) {
	var request dto.MarginRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	m, err := c.pricingService.SetMargin(ctx.Request.Context(), actorFrom(ctx), request.MarginPct)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToMarginResponse(m))
}
