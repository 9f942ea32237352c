package dto

import (
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain/user"
)

// CreateVendorRequest representa los datos de un nuevo vendedor
type CreateVendorRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// RenameUserRequest cambia el nombre de usuario
type RenameUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
}

// ResetPasswordRequest define una nueva contraseña
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// UserResponse representa un usuario sin su hash de contraseña
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// UserEnvelope envuelve un usuario
type UserEnvelope struct {
	OK   bool         `json:"ok"`
	User UserResponse `json:"user"`
}

// UserListResponse representa la lista de usuarios
type UserListResponse struct {
	OK    bool           `json:"ok"`
	Users []UserResponse `json:"users"`
}

// ToUserResponse convierte un usuario del dominio para la respuesta
func ToUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Role:        string(u.Role),
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ToUserEnvelope envuelve un usuario
func ToUserEnvelope(u *user.User) UserEnvelope {
	return UserEnvelope{OK: true, User: ToUserResponse(u)}
}

// ToUserListResponse convierte una lista de usuarios
func ToUserListResponse(users []*user.User) UserListResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return UserListResponse{OK: true, Users: out}
}
