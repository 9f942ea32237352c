package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/dto"
	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
)

// CatalogController gestiona productos, variantes y proveedores
type CatalogController struct {
	catalogService service.CatalogService
	logger         logger.Logger
}

// NewCatalogController crea una nueva instancia de CatalogController
func NewCatalogController(catalogService service.CatalogService, logger logger.Logger) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
		logger:         logger,
	}
}

// filterFrom lee los filtros active=true y q
func filterFrom(ctx *gin.Context) catalog.Filter {
	return catalog.Filter{
		OnlyActive: strings.EqualFold(ctx.Query("active"), "true"),
		Query:      strings.TrimSpace(ctx.Query("q")),
	}
}

// ── Productos ────────────────────────────────────────────────────────────────

// ListProducts lista los productos
// @Summary Lista los productos
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Solo activos"
// @Param q query string false "Búsqueda por nombre"
// @Success 200 {object} dto.ProductListResponse
// @Router /products [get]
func (c *CatalogController) ListProducts(ctx *gin.Context) {
	products, err := c.catalogService.ListProducts(ctx.Request.Context(), filterFrom(ctx))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ProductListResponse{OK: true, Products: dto.List(products)})
}

// CreateProduct crea un producto
// @Summary Crea un producto
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body dto.ProductRequest true "Datos del producto"
// @Success 201 {object} dto.ProductEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /products [post]
func (c *CatalogController) CreateProduct(ctx *gin.Context) {
	var request dto.ProductRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	p, err := c.catalogService.CreateProduct(ctx.Request.Context(), request.ToInput())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.ProductEnvelope{OK: true, Product: p})
}

// UpdateProduct edita un producto
// @Summary Edita un producto
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del producto"
// @Param product body dto.ProductRequest true "Datos del producto"
// @Success 200 {object} dto.ProductEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /products/{id} [patch]
func (c *CatalogController) UpdateProduct(ctx *gin.Context) {
	var request dto.ProductRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	p, err := c.catalogService.UpdateProduct(ctx.Request.Context(), ctx.Param("id"), request.ToInput())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ProductEnvelope{OK: true, Product: p})
}

// ActivateProduct da de alta un producto
// @Summary Alta de producto
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del producto"
// @Success 200 {object} dto.ProductEnvelope
// @Router /products/{id}/alta [patch]
func (c *CatalogController) ActivateProduct(ctx *gin.Context) {
	c.setProductActive(ctx, true)
}

// DeactivateProduct da de baja un producto
// @Summary Baja de producto
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del producto"
// @Success 200 {object} dto.ProductEnvelope
// @Router /products/{id}/baja [patch]
func (c *CatalogController) DeactivateProduct(ctx *gin.Context) {
	c.setProductActive(ctx, false)
}

func (c *CatalogController) setProductActive(ctx *gin.Context, active bool) {
	p, err := c.catalogService.SetProductActive(ctx.Request.Context(), ctx.Param("id"), active)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ProductEnvelope{OK: true, Product: p})
}

// ── Variantes ────────────────────────────────────────────────────────────────

// ListVariants lista las variantes con el nombre y la categoría de su producto
// @Summary Lista las variantes
// @Tags variants
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Solo activas"
// @Param q query string false "Búsqueda por producto o variante"
// @Success 200 {object} dto.VariantListResponse
// @Router /variants [get]
func (c *CatalogController) ListVariants(ctx *gin.Context) {
	variants, err := c.catalogService.ListVariants(ctx.Request.Context(), filterFrom(ctx))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.VariantListResponse{OK: true, Variants: dto.List(variants)})
}

// CreateVariant crea una variante
// @Summary Crea una variante
// @Tags variants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param variant body dto.VariantRequest true "Datos de la variante"
// @Success 201 {object} dto.VariantEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /variants [post]
func (c *CatalogController) CreateVariant(ctx *gin.Context) {
	var request dto.VariantRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	v, err := c.catalogService.CreateVariant(ctx.Request.Context(), request.ToInput())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.VariantEnvelope{OK: true, Variant: v})
}

// UpdateVariant edita una variante. Cambiar la conversión no recalcula precios:
// para eso está el endpoint de conversión de daily-prices.
// @Summary Edita una variante
// @Tags variants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la variante"
// @Param variant body dto.VariantRequest true "Datos de la variante"
// @Success 200 {object} dto.VariantEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /variants/{id} [patch]
func (c *CatalogController) UpdateVariant(ctx *gin.Context) {
	var request dto.VariantRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	v, err := c.catalogService.UpdateVariant(ctx.Request.Context(), ctx.Param("id"), request.ToInput())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.VariantEnvelope{OK: true, Variant: v})
}

// ActivateVariant da de alta una variante
// @Summary Alta de variante
// @Tags variants
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la variante"
// @Success 200 {object} dto.VariantEnvelope
// @Router /variants/{id}/alta [patch]
func (c *CatalogController) ActivateVariant(ctx *gin.Context) {
	c.setVariantActive(ctx, true)
}

// DeactivateVariant da de baja una variante
// @Summary Baja de variante
// @Tags variants
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la variante"
// @Success 200 {object} dto.VariantEnvelope
// @Router /variants/{id}/baja [patch]
func (c *CatalogController) DeactivateVariant(ctx *gin.Context) {
	c.setVariantActive(ctx, false)
}

func (c *CatalogController) setVariantActive(ctx *gin.Context, active bool) {
	v, err := c.catalogService.SetVariantActive(ctx.Request.Context(), ctx.Param("id"), active)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.VariantEnvelope{OK: true, Variant: v})
}

// SetVariantImage asigna una imagen subida a la variante
// @Summary Asigna imagen a una variante
// @Tags variants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la variante"
// @Param image body dto.ImageRequest true "Imagen subida"
// @Success 200 {object} dto.VariantEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /variants/{id}/image [patch]
func (c *CatalogController) SetVariantImage(ctx *gin.Context) {
	var request dto.ImageRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	v, err := c.catalogService.SetVariantImage(ctx.Request.Context(), ctx.Param("id"), request.ImageURL, request.PublicID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.VariantEnvelope{OK: true, Variant: v})
}

// RemoveVariantImage quita la imagen de la variante
// @Summary Quita la imagen de una variante
// @Tags variants
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la variante"
// @Success 200 {object} dto.VariantEnvelope
// @Failure 404 {object} dto.ErrorResponse
// @Router /variants/{id}/image [delete]
func (c *CatalogController) RemoveVariantImage(ctx *gin.Context) {
	v, err := c.catalogService.RemoveVariantImage(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.VariantEnvelope{OK: true, Variant: v})
}

// ── Proveedores ──────────────────────────────────────────────────────────────

// ListSuppliers lista los proveedores
// @Summary Lista los proveedores
// @Tags suppliers
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Solo activos"
// @Param q query string false "Búsqueda por apodo o nombre"
// @Success 200 {object} dto.SupplierListResponse
// @Router /suppliers [get]
func (c *CatalogController) ListSuppliers(ctx *gin.Context) {
	suppliers, err := c.catalogService.ListSuppliers(ctx.Request.Context(), filterFrom(ctx))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SupplierListResponse{OK: true, Suppliers: dto.List(suppliers)})
}

// CreateSupplier crea un proveedor
// @Summary Crea un proveedor
// @Tags suppliers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param supplier body dto.SupplierRequest true "Datos del proveedor"
// @Success 201 {object} dto.SupplierEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /suppliers [post]
func (c *CatalogController) CreateSupplier(ctx *gin.Context) {
	var request dto.SupplierRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	s, err := c.catalogService.CreateSupplier(ctx.Request.Context(), request.ToInput())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.SupplierEnvelope{OK: true, Supplier: s})
}

// UpdateSupplier edita un proveedor
// @Summary Edita un proveedor
// @Tags suppliers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del proveedor"
// @Param supplier body dto.SupplierRequest true "Datos del proveedor"
// @Success 200 {object} dto.SupplierEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /suppliers/{id} [patch]
func (c *CatalogController) UpdateSupplier(ctx *gin.Context) {
	var request dto.SupplierRequest
	if !bindAndValidate(ctx, &request) {
		return
	}
	s, err := c.catalogService.UpdateSupplier(ctx.Request.Context(), ctx.Param("id"), request.ToInput())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SupplierEnvelope{OK: true, Supplier: s})
}

// ActivateSupplier da de alta un proveedor
// @Summary Alta de proveedor
// @Tags suppliers
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del proveedor"
// @Success 200 {object} dto.SupplierEnvelope
// @Router /suppliers/{id}/alta [patch]
func (c *CatalogController) ActivateSupplier(ctx *gin.Context) {
	c.setSupplierActive(ctx, true)
}

// DeactivateSupplier da de baja un proveedor
// @Summary Baja de proveedor
// @Tags suppliers
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del proveedor"
// @Success 200 {object} dto.SupplierEnvelope
// @Router /suppliers/{id}/baja [patch]
func (c *CatalogController) DeactivateSupplier(ctx *gin.Context) {
	c.setSupplierActive(ctx, false)
}

func (c *CatalogController) setSupplierActive(ctx *gin.Context, active bool) {
	s, err := c.catalogService.SetSupplierActive(ctx.Request.Context(), ctx.Param("id"), active)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SupplierEnvelope{OK: true, Supplier: s})
}
