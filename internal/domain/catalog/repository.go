package catalog

import (
	"context"
)

// Filter filtra listados del catálogo
type Filter struct {
	OnlyActive bool
	Query      string
}

// ProductRepository define la persistencia de productos
type ProductRepository interface {
	// Create persiste un nuevo producto
	Create(ctx context.Context, p *Product) error

	// FindByID busca un producto por ID
	FindByID(ctx context.Context, id string) (*Product, error)

	// List lista productos ordenados por nombre
	List(ctx context.Context, f Filter) ([]*Product, error)

	// Update guarda cambios de un producto existente
	Update(ctx context.Context, p *Product) error
}

// VariantRepository define la persistencia de variantes
type VariantRepository interface {
	Create(ctx context.Context, v *Variant) error

	// FindByID busca una variante con los datos de su producto
	FindByID(ctx context.Context, id string) (*Variant, error)

	// FindByIDs busca varias variantes, indexadas por ID
	FindByIDs(ctx context.Context, ids []string) (map[string]*Variant, error)

	List(ctx context.Context, f Filter) ([]*Variant, error)

	Update(ctx context.Context, v *Variant) error
}

// SupplierRepository define la persistencia de proveedores
type SupplierRepository interface {
	Create(ctx context.Context, s *Supplier) error
	FindByID(ctx context.Context, id string) (*Supplier, error)
	List(ctx context.Context, f Filter) ([]*Supplier, error)
	Update(ctx context.Context, s *Supplier) error
}
