package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/dto"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
)

// PromotionController gestiona las promociones de la sesión
type PromotionController struct {
	promotionService service.PromotionService
	logger           logger.Logger
}

// NewPromotionController crea una nueva instancia de PromotionController
func NewPromotionController(promotionService service.PromotionService, logger logger.Logger) *PromotionController {
	return &PromotionController{
		promotionService: promotionService,
		logger:           logger,
	}
}

// ListAdmin lista todas las promociones de la sesión
// @Summary Lista las promociones (admin)
// @Tags promotions
// @Produce json
// @Security BearerAuth
// @Param sessionId query string true "ID de la sesión"
// @Param active query bool false "Filtra por vigencia"
// @Success 200 {object} dto.AdminPromotionListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /promotions [get]
func (c *PromotionController) ListAdmin(ctx *gin.Context) {
	sessionID, err := requireQuery(ctx, "sessionId")
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	active, err := queryBool(ctx, "active")
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	views, err := c.promotionService.ListAdmin(ctx.Request.Context(), sessionID, active)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToAdminPromotionList(views))
}

// ListVendor lista las promociones vigentes
// @Summary Lista las promociones vigentes
// @Tags promotions
// @Produce json
// @Security BearerAuth
// @Param sessionId query string true "ID de la sesión"
// @Success 200 {object} dto.VendorPromotionListResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /promotions/vendor [get]
func (c *PromotionController) ListVendor(ctx *gin.Context) {
	sessionID, err := requireQuery(ctx, "sessionId")
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	c.listLive(ctx, sessionID)
}

// ListPublic lista las promociones vigentes para la pantalla pública
// @Summary Promociones vigentes (público)
// @Tags public
// @Produce json
// @Param id path string true "ID de la sesión"
// @Success 200 {object} dto.VendorPromotionListResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /public/sessions/{id}/promotions [get]
func (c *PromotionController) ListPublic(ctx *gin.Context) {
	c.listLive(ctx, ctx.Param("id"))
}

func (c *PromotionController) listLive(ctx *gin.Context, sessionID string) {
	views, err := c.promotionService.ListLive(ctx.Request.Context(), sessionID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToVendorPromotionList(views))
}

// Upsert crea o reemplaza la promoción de una variante
// @Summary Crea o reemplaza una promoción
// @Description PERCENT_OFF usa percentOff; BOGO usa buyQty y payQty. Vence en endsAt o en durationHours (1 a 168).
// @Tags promotions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param promotion body dto.UpsertPromotionRequest true "Promoción"
// @Success 200 {object} dto.AdminPromotionEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /promotions [post]
func (c *PromotionController) Upsert(ctx *gin.Context) {
	var request dto.UpsertPromotionRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	view, err := c.promotionService.Upsert(ctx.Request.Context(), actorFrom(ctx), request.ToInput())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	c.respond(ctx, view)
}

// Patch cambia los campos presentes de una promoción
// @Summary Edita una promoción
// @Tags promotions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la promoción"
// @Param promotion body dto.PatchPromotionRequest true "Cambios"
// @Success 200 {object} dto.AdminPromotionEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /promotions/{id} [patch]
func (c *PromotionController) Patch(ctx *gin.Context) {
	var request dto.PatchPromotionRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	view, err := c.promotionService.Patch(ctx.Request.Context(), ctx.Param("id"), request.ToInput())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	c.respond(ctx, view)
}

// Activate activa una promoción
// @Summary Activa una promoción
// @Tags promotions
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la promoción"
// @Success 200 {object} dto.AdminPromotionEnvelope
// @Router /promotions/{id}/activate [patch]
func (c *PromotionController) Activate(ctx *gin.Context) {
	view, err := c.promotionService.Activate(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	c.respond(ctx, view)
}

// Deactivate desactiva una promoción
// @Summary Desactiva una promoción
// @Tags promotions
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la promoción"
// @Success 200 {object} dto.AdminPromotionEnvelope
// @Router /promotions/{id}/deactivate [patch]
func (c *PromotionController) Deactivate(ctx *gin.Context) {
	view, err := c.promotionService.Deactivate(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	c.respond(ctx, view)
}

// SetImage asigna una imagen a la promoción
// @Summary Asigna imagen a una promoción
// @Tags promotions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la promoción"
// @Param image body dto.ImageRequest true "Imagen subida"
// @Success 200 {object} dto.AdminPromotionEnvelope
// @Router /promotions/{id}/image [patch]
func (c *PromotionController) SetImage(ctx *gin.Context) {
	var request dto.ImageRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	view, err := c.promotionService.SetImage(ctx.Request.Context(), ctx.Param("id"), request.ImageURL, request.PublicID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	c.respond(ctx, view)
}

// ClearImage quita la imagen de la promoción
// @Summary Quita la imagen de una promoción
// @Tags promotions
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la promoción"
// @Success 200 {object} dto.AdminPromotionEnvelope
// @Router /promotions/{id}/image [delete]
func (c *PromotionController) ClearImage(ctx *gin.Context) {
	view, err := c.promotionService.ClearImage(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	c.respond(ctx, view)
}

func (c *PromotionController) respond(ctx *gin.Context, view *service.PromotionView) {
	ctx.JSON(http.StatusOK, dto.AdminPromotionEnvelope{OK: true, Promotion: dto.ToAdminPromotion(*view)})
}
