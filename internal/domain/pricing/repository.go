package pricing

import (
	"context"
)

// Repository define la persistencia de precios diarios
type Repository interface {
	// Upsert crea o reemplaza el precio de (sessionId, variantId)
	Upsert(ctx context.Context, dp *DailyPrice) error

	FindByID(ctx context.Context, id string) (*DailyPrice, error)

	// FindBySessionVariant devuelve nil, ErrDailyPriceNotFound si no existe
	FindBySessionVariant(ctx context.Context, sessionID, variantID string) (*DailyPrice, error)

	ListBySession(ctx context.Context, sessionID string) ([]*DailyPrice, error)

	// PreviousPrice busca el último precio con salePrice de la variante antes de dateKey
	PreviousPrice(ctx context.Context, variantID, dateKey string) (*PreviousPrice, error)

	// LastManualBefore busca el último precio manual de la variante antes de dateKey
	LastManualBefore(ctx context.Context, variantID, dateKey string) (*PreviousPrice, error)

	// LatestBefore devuelve, por variante, el último precio con salePrice anterior a dateKey
	LatestBefore(ctx context.Context, dateKey string) (map[string]*LatestPrice, error)
}

// LatestPrice es el último precio conocido de una variante en una sesión anterior
type LatestPrice struct {
	DailyPrice *DailyPrice
	DateKey    string
}

// MarginRepository guarda las versiones del margen global
type MarginRepository interface {
	// Current devuelve la última versión
	Current(ctx context.Context) (*Margin, error)

	// Append inserta una nueva versión y la devuelve numerada
	Append(ctx context.Context, m *Margin) error
}
