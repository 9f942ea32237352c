package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/dto"
	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/storage"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// UploadController recibe imágenes de variantes y promociones
type UploadController struct {
	uploadService service.UploadService
	logger        logger.Logger
}

// NewUploadController crea una nueva instancia de UploadController
func NewUploadController(uploadService service.UploadService, logger logger.Logger) *UploadController {
	return &UploadController{
		uploadService: uploadService,
		logger:        logger,
	}
}

// UploadImage sube una imagen
// @Summary Sube una imagen
// @Description Acepta jpeg, png o gif. Se guarda como JPEG de hasta 1200px.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Imagen"
// @Param folder formData string false "variants o promotions"
// @Success 201 {object} dto.UploadResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /uploads/image [post]
func (c *UploadController) UploadImage(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		respondError(ctx, c.logger, domain.NewValidation("MISSING_FILE", "el archivo es obligatorio"))
		return
	}

	contentType := strings.ToLower(file.Header.Get("Content-Type"))
	if contentType != "" && !allowedImageTypes[contentType] {
		respondError(ctx, c.logger, storage.ErrInvalidImage)
		return
	}

	f, err := file.Open()
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	defer f.Close()

	img, err := c.uploadService.UploadImage(ctx.Request.Context(), ctx.PostForm("folder"), f)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.UploadResponse{OK: true, ImageURL: img.URL, PublicID: img.PublicID})
}
