package promotion

import (
	"context"
)

// Repository define la persistencia de promociones
type Repository interface {
	// Upsert inserta o reemplaza por (sessionId, variantId) conservando el ID existente
	Upsert(ctx context.Context, p *Promotion) error

	FindByID(ctx context.Context, id string) (*Promotion, error)
	FindBySessionVariant(ctx context.Context, sessionID, variantID string) (*Promotion, error)
	ListBySession(ctx context.Context, sessionID string) ([]*Promotion, error)
	Update(ctx context.Context, p *Promotion) error
}
