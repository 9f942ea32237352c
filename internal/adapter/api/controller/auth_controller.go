package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/dto"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
)

// AuthController gestiona ingreso y alta del primer administrador
type AuthController struct {
	authService service.AuthService
	logger      logger.Logger
}

// NewAuthController crea una nueva instancia de AuthController
func NewAuthController(authService service.AuthService, logger logger.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Login autentica a un usuario
// @Summary Ingreso de usuario
// @Description Autentica por nombre de usuario y contraseña y devuelve un token JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var request dto.LoginRequest
	if !bindAndValidate(ctx, &request) {
		return
	}

	result, err := c.authService.Login(ctx.Request.Context(), request.Username, request.Password)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToLoginResponse(result))
}

// SetupAdmin crea el primer administrador
// @Summary Alta del primer administrador
// @Description Solo funciona mientras no exista ningún administrador
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SetupAdminRequest true "Datos del administrador"
// @Success 201 {object} dto.UserEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /setup/admin [post]
func (c *AuthController) SetupAdmin(ctx *gin.Context) {
	var request dto.SetupAdminRequest
	if !bindAndValidate(ctx, &request) {
		return
	}

	u, err := c.authService.SetupAdmin(ctx.Request.Context(), request.Username, request.Password)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	c.logger.Info("administrador inicial creado", "user_id", u.ID, "username", u.Username)
	ctx.JSON(http.StatusCreated, dto.ToUserEnvelope(u))
}

// Me devuelve el usuario autenticado
// @Summary Usuario actual
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserEnvelope
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	u, err := c.authService.Me(ctx.Request.Context(), actorFrom(ctx))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToUserEnvelope(u))
}
