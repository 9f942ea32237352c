package dto

import (
	"time"

	"github.com/hugohenrick/verduleria-api/internal/service"
)

// LoginRequest representa los datos para ingresar
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SetupAdminRequest crea el primer administrador
type SetupAdminRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginResponse representa la respuesta de un ingreso exitoso
type LoginResponse struct {
	OK        bool         `json:"ok"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// ToLoginResponse convierte el resultado del servicio
func ToLoginResponse(r *service.LoginResult) LoginResponse {
	return LoginResponse{
		OK:        true,
		Token:     r.Token,
		ExpiresAt: r.ExpiresAt,
		User:      ToUserResponse(r.User),
	}
}
