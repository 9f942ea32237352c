package lot

import (
	"context"
)

// PaymentGroup identifica los lotes de una variante comprados a un proveedor
type PaymentGroup struct {
	SessionID  string
	VariantID  string
	SupplierID string
}

// Repository define la persistencia del libro de lotes
type Repository interface {
	// CreateBatch inserta todos los lotes en una sola operación
	CreateBatch(ctx context.Context, lots []*Lot) error

	FindByID(ctx context.Context, id string) (*Lot, error)

	// FindByIDForUpdate bloquea la fila del lote en la transacción actual
	FindByIDForUpdate(ctx context.Context, id string) (*Lot, error)

	ListBySession(ctx context.Context, sessionID string) ([]*Lot, error)
	ListBySessionVariant(ctx context.Context, sessionID, variantID string) ([]*Lot, error)

	// VariantIDsBySession devuelve las variantes con lotes en la sesión
	VariantIDsBySession(ctx context.Context, sessionID string) ([]string, error)

	// UpdateWeight guarda peso neto y fecha de pesaje
	UpdateWeight(ctx context.Context, l *Lot) error

	UpdatePayment(ctx context.Context, l *Lot) error

	// UpdatePaymentByGroup aplica el pago a todos los lotes del grupo y devuelve cuántos cambió
	UpdatePaymentByGroup(ctx context.Context, g PaymentGroup, method PaymentMethod, note string) (int64, error)
}
