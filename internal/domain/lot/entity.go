// Package lot es el libro de lotes: cada compra física registrada en una sesión
package lot

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// PaymentMethod es la forma de pago de un lote
type PaymentMethod string

const (
	PaymentNone        PaymentMethod = ""
	PaymentEfectivo    PaymentMethod = "EFECTIVO"
	PaymentMercadoPago PaymentMethod = "MERCADO_PAGO"
	PaymentNX          PaymentMethod = "NX"
	PaymentOtro        PaymentMethod = "OTRO"
)

// Valid indica si el método de pago es conocido
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentNone, PaymentEfectivo, PaymentMercadoPago, PaymentNX, PaymentOtro:
		return true
	}
	return false
}

const maxPaymentNote = 500

var (
	ErrInvalidQty         = domain.NewValidation("INVALID_QTY", "la cantidad debe ser mayor a cero")
	ErrInvalidUnitCost    = domain.NewValidation("INVALID_UNIT_COST", "el costo unitario debe ser mayor a cero")
	ErrNonIntegerBoxes    = domain.NewValidation("NON_INTEGER_BOXES", "la cantidad de cajas debe ser un entero positivo")
	ErrInvalidBuyUnit     = domain.NewValidation("INVALID_BUY_UNIT", "unidad de compra inválida")
	ErrEmptySupplier      = domain.NewValidation("EMPTY_SUPPLIER", "el proveedor es obligatorio")
	ErrInvalidNetWeight   = domain.NewValidation("INVALID_NET_WEIGHT", "el peso neto debe ser mayor a cero")
	ErrInvalidPayment     = domain.NewValidation("INVALID_PAYMENT_METHOD", "método de pago inválido")
	ErrPaymentNoteTooLong = domain.NewValidation("PAYMENT_NOTE_TOO_LONG", "la nota de pago es demasiado larga")
	ErrTooManyBoxes       = domain.NewValidation("TOO_MANY_BOXES", "demasiadas cajas en una sola confirmación")
	ErrBuyUnitMismatch    = domain.NewValidation("BUY_UNIT_MISMATCH", "la unidad de compra no coincide con la de la variante")
	ErrLotNotFound        = domain.NewNotFound("LOT_NOT_FOUND", "lote no encontrado")
	ErrAlreadyWeighed     = domain.NewStateConflict("ALREADY_WEIGHED", "el lote ya fue pesado")
	ErrWeighNotApplicable = domain.NewStateConflict("NOT_APPLICABLE", "solo los lotes por CAJA se pesan")
)

// MaxBoxesPerConfirm limita el abanico de lotes de una confirmación por CAJA
const MaxBoxesPerConfirm = 500

// Lot es una compra física contra un ítem de la sesión
type Lot struct {
	ID            string           `json:"id"`
	SessionID     string           `json:"sessionId"`
	VariantID     string           `json:"variantId"`
	ItemID        string           `json:"itemId"`
	SupplierID    string           `json:"supplierId"`
	Qty           decimal.Decimal  `json:"qty"`
	UnitCost      decimal.Decimal  `json:"unitCost"`
	BuyUnit       catalog.BuyUnit  `json:"buyUnit"`
	PaymentMethod PaymentMethod    `json:"paymentMethod"`
	PaymentNote   string           `json:"paymentNote"`
	BoughtBy      string           `json:"boughtBy"`
	WeighedAt     *time.Time       `json:"weighedAt"`
	NetWeightKg   *decimal.Decimal `json:"netWeightKg"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// Confirmation son los datos de una compra a confirmar
type Confirmation struct {
	SupplierID string
	Qty        decimal.Decimal
	UnitCost   decimal.Decimal
	BuyUnit    catalog.BuyUnit
}

// Validate valida la confirmación antes de crear lotes
func (c Confirmation) Validate() error {
	if strings.TrimSpace(c.SupplierID) == "" {
		return ErrEmptySupplier
	}
	if !c.BuyUnit.Valid() {
		return ErrInvalidBuyUnit
	}
	if !c.Qty.IsPositive() {
		return ErrInvalidQty
	}
	if !c.UnitCost.IsPositive() {
		return ErrInvalidUnitCost
	}
	if c.BuyUnit == catalog.BuyCaja {
		if !c.Qty.IsInteger() {
			return ErrNonIntegerBoxes
		}
		if c.Qty.GreaterThan(decimal.NewFromInt(MaxBoxesPerConfirm)) {
			return ErrTooManyBoxes
		}
	}
	return nil
}

// MatchesVariant exige la unidad de compra declarada en la variante, si la tiene
func (c Confirmation) MatchesVariant(v *catalog.Variant) error {
	if v.UnitBuy != nil && *v.UnitBuy != c.BuyUnit {
		return ErrBuyUnitMismatch
	}
	return nil
}

// Total es el costo total de la confirmación
func (c Confirmation) Total() decimal.Decimal {
	return c.Qty.Mul(c.UnitCost)
}

// NewLots crea los lotes de una confirmación. Por CAJA se crea un lote por caja,
// cada uno pesable por separado; con otras unidades, un único lote.
func NewLots(c Confirmation, sessionID, variantID, itemID, boughtBy string, now time.Time) ([]*Lot, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	build := func(qty decimal.Decimal) *Lot {
		return &Lot{
			ID:         uuid.New().String(),
			SessionID:  sessionID,
			VariantID:  variantID,
			ItemID:     itemID,
			SupplierID: c.SupplierID,
			Qty:        qty,
			UnitCost:   c.UnitCost,
			BuyUnit:    c.BuyUnit,
			BoughtBy:   boughtBy,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}
	if c.BuyUnit != catalog.BuyCaja {
		return []*Lot{build(c.Qty)}, nil
	}
	n := c.Qty.IntPart()
	lots := make([]*Lot, 0, n)
	for i := int64(0); i < n; i++ {
		lots = append(lots, build(decimal.NewFromInt(1)))
	}
	return lots, nil
}

// Total es qty * unitCost
func (l *Lot) Total() decimal.Decimal {
	return l.Qty.Mul(l.UnitCost)
}

// IsBox indica si el lote fue comprado por CAJA
func (l *Lot) IsBox() bool {
	return l.BuyUnit == catalog.BuyCaja
}

// IsWeighed indica si el lote ya tiene peso neto
func (l *Lot) IsWeighed() bool {
	return l.WeighedAt != nil && l.NetWeightKg != nil
}

// CostKnown indica si el lote puede aportar al costo del día.
// Una CAJA sin pesar nunca aporta.
func (l *Lot) CostKnown() bool {
	return !l.IsBox() || l.IsWeighed()
}

// CostPerKg devuelve unitCost / netWeightKg para cajas pesadas
func (l *Lot) CostPerKg() (decimal.Decimal, bool) {
	if !l.IsBox() || !l.IsWeighed() || !l.NetWeightKg.IsPositive() {
		return decimal.Zero, false
	}
	return l.UnitCost.Div(*l.NetWeightKg), true
}

// Weigh registra el peso neto de una caja
func (l *Lot) Weigh(netWeightKg decimal.Decimal, now time.Time) error {
	if !l.IsBox() {
		return ErrWeighNotApplicable
	}
	if l.WeighedAt != nil {
		return ErrAlreadyWeighed
	}
	if !netWeightKg.IsPositive() {
		return ErrInvalidNetWeight
	}
	l.NetWeightKg = &netWeightKg
	l.WeighedAt = &now
	l.UpdatedAt = now
	return nil
}

// SetPayment actualiza los datos de pago
func (l *Lot) SetPayment(method PaymentMethod, note string, now time.Time) error {
	if err := ValidatePayment(method, note); err != nil {
		return err
	}
	l.PaymentMethod = method
	l.PaymentNote = strings.TrimSpace(note)
	l.UpdatedAt = now
	return nil
}

// ValidatePayment valida método y nota de pago
func ValidatePayment(method PaymentMethod, note string) error {
	if !method.Valid() {
		return ErrInvalidPayment
	}
	if len(note) > maxPaymentNote {
		return ErrPaymentNoteTooLong
	}
	return nil
}
