package promotion

import (
	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Pricing es el precio promocional derivado del precio del día vigente
type Pricing struct {
	Status     pricing.Status   `json:"status"`
	UnitSale   catalog.SaleUnit `json:"unitSale"`
	SalePrice  *decimal.Decimal `json:"salePrice"`
	PromoPrice *decimal.Decimal `json:"promoPrice,omitempty"`
	ComboPrice *decimal.Decimal `json:"comboPrice,omitempty"`
}

// PriceOf calcula el precio promocional en vivo. Sin precio diario el status es PENDIENTE.
func PriceOf(p *Promotion, dp *pricing.DailyPrice, unitSale catalog.SaleUnit) Pricing {
	out := Pricing{Status: pricing.StatusPendiente, UnitSale: unitSale}
	if dp == nil {
		return out
	}
	out.Status = dp.Status
	out.UnitSale = dp.UnitSale
	if dp.SalePrice == nil {
		return out
	}
	base := *dp.SalePrice
	out.SalePrice = &base

	switch p.Type {
	case TypePercentOff:
		if p.PercentOff != nil {
			promo := base.Mul(decimal.NewFromInt(1).Sub(p.PercentOff.Div(hundred))).Round(2)
			out.PromoPrice = &promo
		}
	case TypeBOGO:
		if p.PayQty != nil {
			combo := base.Mul(decimal.NewFromInt(int64(*p.PayQty))).Round(2)
			out.ComboPrice = &combo
		}
	}
	return out
}
