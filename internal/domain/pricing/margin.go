package pricing

import (
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/shopspring/decimal"
)

// MaxMarginPct es el margen máximo aceptado (500%)
var MaxMarginPct = decimal.NewFromInt(5)

var (
	ErrInvalidMargin  = domain.NewValidation("INVALID_MARGIN", "el margen debe ser una fracción entre 0 y 5 (ej: 0.35)")
	ErrMarginNotFound = domain.NewNotFound("MARGIN_NOT_FOUND", "todavía no hay margen configurado")
)

// Margin es una versión del margen global. Pct es fraccional: 0.35 = 35%.
type Margin struct {
	Version   int64           `json:"version"`
	Pct       decimal.Decimal `json:"marginPct"`
	UpdatedBy string          `json:"updatedBy"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ValidateMargin valida un margen fraccional
func ValidateMargin(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(MaxMarginPct) {
		return ErrInvalidMargin
	}
	return nil
}
