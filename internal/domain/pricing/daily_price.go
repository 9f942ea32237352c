// Package pricing deriva el precio de venta diario de cada variante
// a partir de los lotes de la sesión y del margen vigente.
package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// Status indica si el precio pudo calcularse
type Status string

const (
	StatusListo     Status = "LISTO"
	StatusParcial   Status = "PARCIAL"
	StatusPendiente Status = "PENDIENTE"
)

// Movement compara el precio con el de la sesión anterior
type Movement string

const (
	MovementUp   Movement = "UP"
	MovementDown Movement = "DOWN"
	MovementSame Movement = "SAME"
	MovementNew  Movement = "NEW"
)

// PendingReason explica por qué un precio no está LISTO
type PendingReason string

const (
	ReasonNone              PendingReason = ""
	ReasonMissingConversion PendingReason = "MISSING_CONVERSION"
	ReasonUnweighedLots     PendingReason = "UNWEIGHED_LOTS"
	ReasonNoCost            PendingReason = "NO_COST"
)

var (
	ErrDailyPriceNotFound = domain.NewNotFound("DAILY_PRICE_NOT_FOUND", "precio diario no encontrado")
	ErrInvalidManualPrice = domain.NewValidation("INVALID_MANUAL_PRICE", "el precio manual debe ser mayor a cero")
	ErrMissingConversion  = domain.NewDependencyMissing("MISSING_CONVERSION", "falta la conversión entre unidad de compra y de venta")
	ErrPriceComputed      = domain.NewStateConflict("PRICE_COMPUTED", "el precio ya se calcula automáticamente")
)

// Purchase resume lo comprado de la variante en la sesión
type Purchase struct {
	BoughtQty   decimal.Decimal `json:"boughtQty"`
	BoughtTotal decimal.Decimal `json:"boughtTotal"`
}

// DailyPrice es el precio de una variante en una sesión. Uno por (sessionId, variantId).
type DailyPrice struct {
	ID                  string           `json:"id"`
	SessionID           string           `json:"sessionId"`
	VariantID           string           `json:"variantId"`
	UnitSale            catalog.SaleUnit `json:"unitSale"`
	CostFinal           *decimal.Decimal `json:"costFinal"`
	MarginPct           decimal.Decimal  `json:"marginPct"`
	MarginVersion       int64            `json:"marginVersion"`
	SalePrice           *decimal.Decimal `json:"salePrice"`
	Status              Status           `json:"status"`
	PendingReason       PendingReason    `json:"pendingReason"`
	Movement            Movement         `json:"movement"`
	Delta               *decimal.Decimal `json:"delta"`
	PrevSalePrice       *decimal.Decimal `json:"prevSalePrice"`
	PrevDateKey         string           `json:"prevDateKey"`
	Purchase            Purchase         `json:"purchase"`
	SourceLotID         string           `json:"sourceLotId"`
	ManualSalePrice     *decimal.Decimal `json:"manualSalePrice"`
	ManualNote          string           `json:"manualNote"`
	LastManualSalePrice *decimal.Decimal `json:"lastManualSalePrice"`
	ComputedAt          time.Time        `json:"computedAt"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

// NewDailyPrice crea un precio vacío para la variante en la sesión
func NewDailyPrice(sessionID, variantID string, unitSale catalog.SaleUnit, now time.Time) *DailyPrice {
	return &DailyPrice{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		VariantID: variantID,
		UnitSale:  unitSale,
		Status:    StatusPendiente,
		Movement:  MovementNew,
		Purchase:  Purchase{BoughtQty: decimal.Zero, BoughtTotal: decimal.Zero},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPending indica si el precio aparece en el listado de pendientes
func (dp *DailyPrice) IsPending() bool {
	return dp.Status == StatusParcial || dp.Status == StatusPendiente
}

// CanSetManual indica si admite precio manual: pendiente, o ya manual
func (dp *DailyPrice) CanSetManual() bool {
	return dp.IsPending() || dp.ManualSalePrice != nil
}

// SetManual fija un precio manual. Queda vigente mientras el cálculo
// automático no llegue a LISTO.
func (dp *DailyPrice) SetManual(price decimal.Decimal, note string, now time.Time) error {
	if !dp.CanSetManual() {
		return ErrPriceComputed
	}
	if !price.IsPositive() {
		return ErrInvalidManualPrice
	}
	p := price.Round(2)
	dp.ManualSalePrice = &p
	dp.LastManualSalePrice = &p
	dp.ManualNote = note
	dp.UpdatedAt = now
	return nil
}

// Apply vuelca un resultado del cálculo sobre el precio almacenado
func (dp *DailyPrice) Apply(r Result, margin Margin, prev *PreviousPrice, now time.Time) {
	dp.UnitSale = r.UnitSale
	dp.MarginPct = margin.Pct
	dp.MarginVersion = margin.Version
	dp.Purchase = Purchase{BoughtQty: r.BoughtQty, BoughtTotal: r.BoughtTotal}
	dp.SourceLotID = r.SourceLotID
	dp.CostFinal = r.CostFinal

	switch {
	case r.Status == StatusListo:
		dp.SalePrice = r.SalePrice
		dp.Status = StatusListo
		dp.PendingReason = ReasonNone
		dp.ManualSalePrice = nil
		dp.ManualNote = ""
	case dp.ManualSalePrice != nil:
		dp.SalePrice = dp.ManualSalePrice
		dp.Status = StatusListo
		dp.PendingReason = ReasonNone
	default:
		dp.SalePrice = r.SalePrice
		dp.Status = r.Status
		dp.PendingReason = r.Reason
	}

	dp.applyMovement(prev)
	dp.ComputedAt = now
	dp.UpdatedAt = now
}

func (dp *DailyPrice) applyMovement(prev *PreviousPrice) {
	dp.PrevSalePrice = nil
	dp.PrevDateKey = ""
	if prev != nil {
		p := prev.SalePrice
		dp.PrevSalePrice = &p
		dp.PrevDateKey = prev.DateKey
	}
	dp.Movement, dp.Delta = CompareMovement(dp.SalePrice, prev)
}

// PreviousPrice es el último precio de la variante en una sesión anterior
type PreviousPrice struct {
	DateKey   string
	SalePrice decimal.Decimal
}

// CompareMovement calcula movimiento y delta contra el precio anterior
func CompareMovement(current *decimal.Decimal, prev *PreviousPrice) (Movement, *decimal.Decimal) {
	if current == nil || prev == nil {
		return MovementNew, nil
	}
	delta := current.Sub(prev.SalePrice)
	switch {
	case delta.IsPositive():
		return MovementUp, &delta
	case delta.IsNegative():
		return MovementDown, &delta
	}
	return MovementSame, &delta
}
