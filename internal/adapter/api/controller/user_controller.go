package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/dto"
	"github.com/hugohenrick/verduleria-api/internal/domain/user"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
)

// UserController gestiona las solicitudes de administración de usuarios
type UserController struct {
	userService service.UserService
	logger      logger.Logger
}

// NewUserController crea una nueva instancia de UserController
func NewUserController(userService service.UserService, logger logger.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// List lista los usuarios
// @Summary Lista los usuarios
// @Description Lista los usuarios, opcionalmente filtrados por rol
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query string false "ADMIN o VENDEDOR"
// @Success 200 {object} dto.UserListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /users [get]
func (c *UserController) List(ctx *gin.Context) {
	role := user.Role(strings.ToUpper(ctx.Query("role")))

	users, err := c.userService.List(ctx.Request.Context(), role)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToUserListResponse(users))
}

// CreateVendor crea un vendedor
// @Summary Crea un vendedor
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body dto.CreateVendorRequest true "Datos del vendedor"
// @Success 201 {object} dto.UserEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /users/vendors [post]
func (c *UserController) CreateVendor(ctx *gin.Context) {
	var request dto.CreateVendorRequest
	if !bindAndValidate(ctx, &request) {
		return
	}

	u, err := c.userService.CreateVendor(ctx.Request.Context(), request.Username, request.Password)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToUserEnvelope(u))
}

// Rename cambia el nombre de usuario
// @Summary Renombra un usuario
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del usuario"
// @Param user body dto.RenameUserRequest true "Nuevo nombre"
// @Success 200 {object} dto.UserEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /users/{id} [patch]
func (c *UserController) Rename(ctx *gin.Context) {
	var request dto.RenameUserRequest
	if !bindAndValidate(ctx, &request) {
		return
	}

	u, err := c.userService.Rename(ctx.Request.Context(), ctx.Param("id"), request.Username)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToUserEnvelope(u))
}

// ResetPassword define una nueva contraseña
// @Summary Restablece la contraseña de un usuario
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del usuario"
// @Param password body dto.ResetPasswordRequest true "Nueva contraseña"
// @Success 200 {object} dto.OKResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{id}/password [patch]
func (c *UserController) ResetPassword(ctx *gin.Context) {
	var request dto.ResetPasswordRequest
	if !bindAndValidate(ctx, &request) {
		return
	}

	if err := c.userService.ResetPassword(ctx.Request.Context(), ctx.Param("id"), request.Password); err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.Ok())
}

// Activate da de alta a un usuario
// @Summary Alta de usuario
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del usuario"
// @Success 200 {object} dto.UserEnvelope
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{id}/alta [patch]
func (c *UserController) Activate(ctx *gin.Context) {
	c.setActive(ctx, true)
}

// Deactivate da de baja a un usuario. Un administrador no puede darse de baja a sí mismo.
// @Summary Baja de usuario
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del usuario"
// @Success 200 {object} dto.UserEnvelope
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /users/{id}/baja [patch]
func (c *UserController) Deactivate(ctx *gin.Context) {
	c.setActive(ctx, false)
}

func (c *UserController) setActive(ctx *gin.Context, active bool) {
	u, err := c.userService.SetActive(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id"), active)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToUserEnvelope(u))
}
