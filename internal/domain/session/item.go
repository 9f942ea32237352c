package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Origin indica si el ítem fue planificado o agregado en la compra
type Origin string

const (
	OriginPlanificado   Origin = "PLANIFICADO"
	OriginNoPlanificado Origin = "NO_PLANIFICADO"
)

// ItemState representa el estado de un ítem de la sesión
type ItemState string

const (
	ItemPendiente ItemState = "PENDIENTE"
	ItemReservado ItemState = "RESERVADO"
	ItemComprado  ItemState = "COMPRADO"
)

// Límites de la reserva en minutos
const (
	MinReserveMinutes = 1
	MaxReserveMinutes = 120
)

var (
	ErrInvalidOrigin       = domain.NewValidation("INVALID_ORIGIN", "origen inválido")
	ErrNegativeQty         = domain.NewValidation("NEGATIVE_QTY", "la cantidad planificada no puede ser negativa")
	ErrNegativeRefPrice    = domain.NewValidation("NEGATIVE_REF_PRICE", "el precio de referencia no puede ser negativo")
	ErrInvalidMinutes      = domain.NewValidation("INVALID_MINUTES", "los minutos de reserva deben estar entre 1 y 120")
	ErrItemNotFound        = domain.NewNotFound("ITEM_NOT_FOUND", "ítem no encontrado")
	ErrDuplicateItem       = domain.NewStateConflict("DUPLICATE_ITEM", "la variante ya está en la sesión")
	ErrItemBought          = domain.NewStateConflict("ITEM_BOUGHT", "el ítem ya tiene compras registradas")
	ErrReservedByOther     = domain.NewStateConflict("RESERVED_BY_OTHER", "el ítem está reservado por otro usuario")
	ErrNotReserved         = domain.NewStateConflict("NOT_RESERVED", "el ítem no está reservado")
	ErrReleaseNotPermitted = domain.NewAuthorization("RELEASE_NOT_PERMITTED", "solo quien reservó o un admin puede liberar")
)

// Purchase acumula lo comprado para el ítem
type Purchase struct {
	BoughtQty   decimal.Decimal `json:"boughtQty"`
	BoughtTotal decimal.Decimal `json:"boughtTotal"`
}

// Item es una línea de la sesión para una variante
type Item struct {
	ID               string           `json:"id"`
	SessionID        string           `json:"sessionId"`
	VariantID        string           `json:"variantId"`
	Origin           Origin           `json:"origin"`
	PlannedQty       *decimal.Decimal `json:"plannedQty"`
	RefPrice         *decimal.Decimal `json:"refPrice"`
	State            ItemState        `json:"state"`
	ReserveExpiresAt *time.Time       `json:"reserveExpiresAt"`
	ReservedBy       string           `json:"reservedBy,omitempty"`
	Purchase         Purchase         `json:"purchase"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// NewItem crea un ítem PENDIENTE
func NewItem(sessionID, variantID string, origin Origin, plannedQty, refPrice *decimal.Decimal, now time.Time) (*Item, error) {
	if origin != OriginPlanificado && origin != OriginNoPlanificado {
		return nil, ErrInvalidOrigin
	}
	it := &Item{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		VariantID: variantID,
		Origin:    origin,
		State:     ItemPendiente,
		Purchase:  Purchase{BoughtQty: decimal.Zero, BoughtTotal: decimal.Zero},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := it.Patch(ItemChanges{PlannedQty: plannedQty, RefPrice: refPrice}, now); err != nil {
		return nil, err
	}
	return it, nil
}

// ItemChanges son los cambios parciales de un ítem. Un campo nil queda como está;
// los flags Clear* lo vuelven a null.
type ItemChanges struct {
	PlannedQty      *decimal.Decimal
	RefPrice        *decimal.Decimal
	ClearPlannedQty bool
	ClearRefPrice   bool
}

// Patch aplica solo los campos presentes en c
func (it *Item) Patch(c ItemChanges, now time.Time) error {
	if c.PlannedQty != nil && c.PlannedQty.IsNegative() {
		return ErrNegativeQty
	}
	if c.RefPrice != nil && c.RefPrice.IsNegative() {
		return ErrNegativeRefPrice
	}
	switch {
	case c.PlannedQty != nil:
		qty := *c.PlannedQty
		it.PlannedQty = &qty
	case c.ClearPlannedQty:
		it.PlannedQty = nil
	}
	switch {
	case c.RefPrice != nil:
		ref := *c.RefPrice
		it.RefPrice = &ref
	case c.ClearRefPrice:
		it.RefPrice = nil
	}
	it.UpdatedAt = now
	return nil
}

// ExpireReservation aplica el vencimiento perezoso de la reserva.
// Devuelve true si la reserva estaba vencida y fue limpiada.
func (it *Item) ExpireReservation(now time.Time) bool {
	if it.State != ItemReservado || it.ReserveExpiresAt == nil || it.ReserveExpiresAt.After(now) {
		return false
	}
	it.State = ItemPendiente
	it.ReserveExpiresAt = nil
	it.ReservedBy = ""
	return true
}

// ReservedByOther indica si hay una reserva vigente de otro usuario
func (it *Item) ReservedByOther(actorID string, now time.Time) bool {
	it.ExpireReservation(now)
	return it.State == ItemReservado && it.ReservedBy != actorID
}

// Reserve bloquea el ítem de forma consultiva por unos minutos
func (it *Item) Reserve(actorID string, isAdmin bool, minutes int, now time.Time) error {
	if minutes < MinReserveMinutes || minutes > MaxReserveMinutes {
		return ErrInvalidMinutes
	}
	if it.State == ItemComprado {
		return ErrItemBought
	}
	if it.ReservedByOther(actorID, now) && !isAdmin {
		return ErrReservedByOther
	}
	expires := now.Add(time.Duration(minutes) * time.Minute)
	it.State = ItemReservado
	it.ReserveExpiresAt = &expires
	it.ReservedBy = actorID
	it.UpdatedAt = now
	return nil
}

// Release libera la reserva antes de su vencimiento
func (it *Item) Release(actorID string, isAdmin bool, now time.Time) error {
	it.ExpireReservation(now)
	if it.State != ItemReservado {
		return ErrNotReserved
	}
	if it.ReservedBy != actorID && !isAdmin {
		return ErrReleaseNotPermitted
	}
	it.State = ItemPendiente
	it.ReserveExpiresAt = nil
	it.ReservedBy = ""
	it.UpdatedAt = now
	return nil
}

// RecordPurchase acumula una compra confirmada, marca COMPRADO y limpia la reserva
func (it *Item) RecordPurchase(actorID string, isAdmin bool, qty, total decimal.Decimal, now time.Time) error {
	if it.ReservedByOther(actorID, now) && !isAdmin {
		return ErrReservedByOther
	}
	it.State = ItemComprado
	it.ReserveExpiresAt = nil
	it.ReservedBy = ""
	it.Purchase.BoughtQty = it.Purchase.BoughtQty.Add(qty)
	it.Purchase.BoughtTotal = it.Purchase.BoughtTotal.Add(total)
	it.UpdatedAt = now
	return nil
}

// EnsureRemovable falla si el ítem ya tiene compras
func (it *Item) EnsureRemovable() error {
	if it.State == ItemComprado || it.Purchase.BoughtQty.IsPositive() {
		return ErrItemBought
	}
	return nil
}

// AvgUnitCost devuelve el costo promedio por unidad de compra, si hubo compras
func (it *Item) AvgUnitCost() (decimal.Decimal, bool) {
	if !it.Purchase.BoughtQty.IsPositive() {
		return decimal.Zero, false
	}
	return it.Purchase.BoughtTotal.Div(it.Purchase.BoughtQty), true
}
