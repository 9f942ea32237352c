package session

import (
	"context"
)

// Repository define la persistencia de sesiones
type Repository interface {
	// Create persiste una nueva sesión
	Create(ctx context.Context, s *Session) error

	// FindByID busca una sesión por ID
	FindByID(ctx context.Context, id string) (*Session, error)

	// FindByIDForUpdate bloquea la fila de la sesión en la transacción actual
	FindByIDForUpdate(ctx context.Context, id string) (*Session, error)

	// FindByIDForShare toma un bloqueo compartido: impide transiciones concurrentes
	FindByIDForShare(ctx context.Context, id string) (*Session, error)

	// FindActive devuelve la sesión no CERRADA, si existe
	FindActive(ctx context.Context) (*Session, error)

	// FindByDateKey busca una sesión por fecha
	FindByDateKey(ctx context.Context, dateKey string) (*Session, error)

	// List lista sesiones de la más reciente a la más antigua
	List(ctx context.Context, limit int) ([]*Session, error)

	// Update guarda estado, presupuesto y marcas de tiempo
	Update(ctx context.Context, s *Session) error
}

// ItemRepository define la persistencia de ítems de sesión
type ItemRepository interface {
	Create(ctx context.Context, it *Item) error
	FindByID(ctx context.Context, sessionID, id string) (*Item, error)

	// FindByIDForUpdate bloquea la fila del ítem en la transacción actual
	FindByIDForUpdate(ctx context.Context, sessionID, id string) (*Item, error)

	ListBySession(ctx context.Context, sessionID string) ([]*Item, error)

	// CountByOrigin cuenta ítems de la sesión por origen
	CountByOrigin(ctx context.Context, sessionID string, origin Origin) (int, error)

	// ExistsVariant indica si la variante ya tiene ítem en la sesión
	ExistsVariant(ctx context.Context, sessionID, variantID string) (bool, error)

	// LastPurchasedBefore devuelve el ítem comprado más reciente de la variante en sesiones anteriores a dateKey
	LastPurchasedBefore(ctx context.Context, variantID, dateKey string) (*Item, error)

	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, sessionID, id string) error
}
