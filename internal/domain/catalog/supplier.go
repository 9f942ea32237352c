package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/verduleria-api/internal/domain"
)

var (
	ErrEmptyNickname     = domain.NewValidation("EMPTY_NICKNAME", "el apodo del proveedor no puede ser vacío")
	ErrSupplierNotFound  = domain.NewNotFound("SUPPLIER_NOT_FOUND", "proveedor no encontrado")
	ErrSupplierInactive  = domain.NewValidation("SUPPLIER_INACTIVE", "el proveedor está dado de baja")
	ErrDuplicateSupplier = domain.NewStateConflict("DUPLICATE_SUPPLIER", "ya existe un proveedor con ese apodo")
)

// Supplier representa un proveedor del mercado
type Supplier struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	Name      string    `json:"name"`
	Lastname  string    `json:"lastname"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSupplier crea un proveedor activo. El apodo se guarda en minúsculas.
func NewSupplier(nickname, name, lastname string) (*Supplier, error) {
	s := &Supplier{
		ID:        uuid.New().String(),
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.Update(nickname, name, lastname); err != nil {
		return nil, err
	}
	return s, nil
}

// Update actualiza los datos del proveedor
func (s *Supplier) Update(nickname, name, lastname string) error {
	nickname = NormalizeNickname(nickname)
	if nickname == "" {
		return ErrEmptyNickname
	}
	s.Nickname = nickname
	s.Name = strings.TrimSpace(name)
	s.Lastname = strings.TrimSpace(lastname)
	s.UpdatedAt = time.Now()
	return nil
}

// Activate da de alta el proveedor
func (s *Supplier) Activate() {
	s.Active = true
	s.UpdatedAt = time.Now()
}

// Deactivate da de baja el proveedor
func (s *Supplier) Deactivate() {
	s.Active = false
	s.UpdatedAt = time.Now()
}

// NormalizeNickname deja el apodo en minúsculas y sin espacios extremos
func NormalizeNickname(nickname string) string {
	return strings.ToLower(strings.TrimSpace(nickname))
}
