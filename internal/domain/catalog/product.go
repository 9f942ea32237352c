// Package catalog contiene productos, variantes y proveedores
package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/verduleria-api/internal/domain"
)

var (
	ErrEmptyProductName = domain.NewValidation("EMPTY_NAME", "el nombre del producto no puede ser vacío")
	ErrInvalidCategory  = domain.NewValidation("INVALID_CATEGORY", "categoría inválida")
	ErrProductNotFound  = domain.NewNotFound("PRODUCT_NOT_FOUND", "producto no encontrado")
	ErrDuplicateProduct = domain.NewStateConflict("DUPLICATE_PRODUCT", "ya existe un producto con ese nombre")
)

// Product representa un producto del catálogo. Nunca se borra, solo se da de baja.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProduct crea un nuevo producto activo
func NewProduct(name string, category Category) (*Product, error) {
	p := &Product{
		ID:        uuid.New().String(),
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := p.Update(name, category); err != nil {
		return nil, err
	}
	return p, nil
}

// Update actualiza nombre y categoría
func (p *Product) Update(name string, category Category) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyProductName
	}
	if category == "" {
		category = CategoryOtros
	}
	if !category.Valid() {
		return ErrInvalidCategory
	}
	p.Name = name
	p.Category = category
	p.UpdatedAt = time.Now()
	return nil
}

// Activate da de alta el producto
func (p *Product) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
}

// Deactivate da de baja el producto
func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}
