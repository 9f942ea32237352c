// Package user contiene los usuarios del sistema y sus roles
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/verduleria-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Role representa el papel del usuario
type Role string

const (
	RoleAdmin    Role = "ADMIN"    // Administrador: compras, precios y catálogo
	RoleVendedor Role = "VENDEDOR" // Vendedor: consulta tablero y promociones
)

const minPasswordLength = 6

var (
	ErrEmptyUsername     = domain.NewValidation("EMPTY_USERNAME", "el usuario no puede ser vacío")
	ErrShortPassword     = domain.NewValidation("SHORT_PASSWORD", "la contraseña debe tener al menos 6 caracteres")
	ErrInvalidRole       = domain.NewValidation("INVALID_ROLE", "rol inválido")
	ErrUserNotFound      = domain.NewNotFound("USER_NOT_FOUND", "usuario no encontrado")
	ErrDuplicateUsername = domain.NewStateConflict("DUPLICATE_USERNAME", "ya existe un usuario con ese nombre")
	ErrSelfDeactivate    = domain.NewStateConflict("SELF_DEACTIVATE", "no puede darse de baja a sí mismo")
)

// User representa un usuario del sistema
type User struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Password    string     `json:"-"` // El hash nunca se devuelve en JSON
	Role        Role       `json:"role"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewUser crea un usuario activo con la contraseña ya hasheada
func NewUser(username, password string, role Role) (*User, error) {
	if role != RoleAdmin && role != RoleVendedor {
		return nil, ErrInvalidRole
	}
	u := &User{
		ID:        uuid.New().String(),
		Role:      role,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := u.Rename(username); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// Rename cambia el nombre de usuario, normalizado en minúsculas
func (u *User) Rename(username string) error {
	username = NormalizeUsername(username)
	if username == "" {
		return ErrEmptyUsername
	}
	u.Username = username
	u.UpdatedAt = time.Now()
	return nil
}

// SetPassword configura la contraseña del usuario con hash
func (u *User) SetPassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrShortPassword
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	u.UpdatedAt = time.Now()
	return nil
}

// CheckPassword verifica si la contraseña es válida
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// IsAdmin indica si el usuario es administrador
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Activate da de alta el usuario
func (u *User) Activate() {
	u.Active = true
	u.UpdatedAt = time.Now()
}

// Deactivate da de baja el usuario
func (u *User) Deactivate() {
	u.Active = false
	u.UpdatedAt = time.Now()
}

// NormalizeUsername deja el nombre en minúsculas y sin espacios extremos
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
