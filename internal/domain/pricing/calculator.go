package pricing

import (
	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/lot"
	"github.com/shopspring/decimal"
)

// Input reúne lo necesario para calcular el precio de una variante
type Input struct {
	Variant *catalog.Variant
	Lots    []*lot.Lot
	Margin  Margin
}

// Result es el precio calculado, sin persistir
type Result struct {
	UnitSale    catalog.SaleUnit
	CostFinal   *decimal.Decimal
	SalePrice   *decimal.Decimal
	Status      Status
	Reason      PendingReason
	BoughtQty   decimal.Decimal
	BoughtTotal decimal.Decimal
	SourceLotID string
	KnownLots   int
	UnknownLots int
}

// Blocker devuelve el error de dependencia que impide el cálculo, si existe
func (r Result) Blocker() error {
	if r.Reason == ReasonMissingConversion {
		return ErrMissingConversion
	}
	return nil
}

// Calculate es puro: costFinal es el promedio ponderado del costo por unidad
// de venta de los lotes con costo conocido, y salePrice = costFinal * (1 + margen).
func Calculate(in Input) Result {
	v := in.Variant
	r := Result{
		UnitSale:    v.UnitSale,
		Status:      StatusPendiente,
		Reason:      ReasonNoCost,
		BoughtQty:   decimal.Zero,
		BoughtTotal: decimal.Zero,
	}

	saleQty := decimal.Zero
	total := decimal.Zero
	blocked := false

	for _, l := range in.Lots {
		r.BoughtQty = r.BoughtQty.Add(l.Qty)
		r.BoughtTotal = r.BoughtTotal.Add(l.Total())

		if !l.CostKnown() {
			r.UnknownLots++
			continue
		}
		q, ok := saleUnits(v, l)
		if !ok {
			blocked = true
			continue
		}
		r.KnownLots++
		saleQty = saleQty.Add(q)
		total = total.Add(l.Total())
		r.SourceLotID = l.ID
	}

	switch {
	case blocked:
		r.Reason = ReasonMissingConversion
		return r
	case r.KnownLots == 0 && r.UnknownLots > 0:
		// Solo cajas sin pesar: con conversión cargada el precio es alcanzable pesando
		r.Reason = ReasonUnweighedLots
		if v.HasConversion() {
			r.Status = StatusParcial
		}
		return r
	case r.KnownLots == 0 || !saleQty.IsPositive():
		return r
	}

	cost := total.Div(saleQty).Round(4)
	price := cost.Mul(decimal.NewFromInt(1).Add(in.Margin.Pct)).Round(2)
	r.CostFinal = &cost
	r.SalePrice = &price

	if r.UnknownLots > 0 {
		r.Status = StatusParcial
		r.Reason = ReasonUnweighedLots
		return r
	}
	r.Status = StatusListo
	r.Reason = ReasonNone
	return r
}

// saleUnits convierte la cantidad del lote a unidades de venta
func saleUnits(v *catalog.Variant, l *lot.Lot) (decimal.Decimal, bool) {
	if l.IsBox() && v.UnitSale == catalog.SaleKG {
		return l.NetWeightKg.Mul(l.Qty), true
	}
	if l.BuyUnit.SameAs(v.UnitSale) {
		return l.Qty, true
	}
	if conv, ok := conversionFor(v, l.BuyUnit); ok {
		return l.Qty.Mul(conv), true
	}
	return decimal.Zero, false
}

// conversionFor devuelve la conversión de la variante si corresponde a la unidad del lote
func conversionFor(v *catalog.Variant, unit catalog.BuyUnit) (decimal.Decimal, bool) {
	if !v.HasConversion() {
		return decimal.Zero, false
	}
	if v.UnitBuy != nil && *v.UnitBuy != unit {
		return decimal.Zero, false
	}
	return *v.Conversion, true
}
