// Package service implementa los casos de uso del motor de compras y precios
// sobre los repositorios de dominio.
package service

import (
	"context"
	"io"
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain/user"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/lock"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/storage"
)

// Transactor ejecuta fn dentro de una transacción compartida por los repositorios
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker serializa escrituras sobre las mismas claves
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (lock.Release, error)
}

// Eventos emitidos a los clientes conectados
const (
	EventDailyPriceUpdated = "daily_price_updated"
	EventPromotionsUpdated = "promotions_updated"
)

// Event es una notificación acotada a una sesión. Es solo un aviso para volver a consultar.
type Event struct {
	Name       string   `json:"event"`
	SessionID  string   `json:"sessionId"`
	VariantIDs []string `json:"variantIds"`
}

// Notifier publica eventos. La entrega es best-effort.
type Notifier interface {
	Publish(ctx context.Context, e Event)
}

// BoardCache guarda el tablero de vendedores por sesión
type BoardCache interface {
	Get(ctx context.Context, sessionID string, dest any) (bool, error)
	Set(ctx context.Context, sessionID string, board any) error
	Invalidate(ctx context.Context, sessionID string) error
}

// ImageStore guarda y borra imágenes subidas
type ImageStore interface {
	Save(ctx context.Context, folder string, r io.Reader) (storage.StoredImage, error)
	Delete(ctx context.Context, publicID string) error
}

// Clock devuelve la hora actual
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now()
}

// Actor es el usuario autenticado que ejecuta la operación
type Actor struct {
	ID   string
	Role user.Role
}

// IsAdmin indica si el actor es administrador
func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}

// NopNotifier descarta los eventos
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, Event) {}
