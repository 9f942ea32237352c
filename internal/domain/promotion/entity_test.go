package promotion

import (
	"testing"
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func dec(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func intp(i int) *int {
	return &i
}

func TestTermsValidate(t *testing.T) {
	later := now.Add(2 * time.Hour)
	tests := []struct {
		name  string
		terms Terms
		err   error
	}{
		{"porcentaje válido", Terms{Type: TypePercentOff, PercentOff: dec("20"), EndsAt: later}, nil},
		{"porcentaje cero", Terms{Type: TypePercentOff, PercentOff: dec("0"), EndsAt: later}, ErrInvalidPercentOff},
		{"porcentaje 95", Terms{Type: TypePercentOff, PercentOff: dec("95"), EndsAt: later}, ErrInvalidPercentOff},
		{"porcentaje faltante", Terms{Type: TypePercentOff, EndsAt: later}, ErrInvalidPercentOff},
		{"2x1 válido", Terms{Type: TypeBOGO, BuyQty: intp(2), PayQty: intp(1), EndsAt: later}, nil},
		{"buyQty 1", Terms{Type: TypeBOGO, BuyQty: intp(1), PayQty: intp(1), EndsAt: later}, ErrInvalidBuyQty},
		{"payQty igual a buyQty", Terms{Type: TypeBOGO, BuyQty: intp(3), PayQty: intp(3), EndsAt: later}, ErrInvalidPayQty},
		{"payQty cero", Terms{Type: TypeBOGO, BuyQty: intp(3), PayQty: intp(0), EndsAt: later}, ErrInvalidPayQty},
		{"tipo desconocido", Terms{Type: "NXM", EndsAt: later}, ErrInvalidType},
		{"vencida", Terms{Type: TypePercentOff, PercentOff: dec("10"), EndsAt: now}, ErrInvalidEndsAt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.terms.Validate(now)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestResolveEndsAt(t *testing.T) {
	at := now.Add(5 * time.Hour)

	got, err := ResolveEndsAt(&at, nil, now)
	require.NoError(t, err)
	assert.Equal(t, at, got)

	got, err = ResolveEndsAt(nil, intp(24), now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), got)

	_, err = ResolveEndsAt(&at, intp(24), now)
	assert.ErrorIs(t, err, ErrAmbiguousEnd)

	_, err = ResolveEndsAt(nil, intp(0), now)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = ResolveEndsAt(nil, intp(169), now)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = ResolveEndsAt(nil, nil, now)
	assert.ErrorIs(t, err, ErrInvalidEndsAt)
}

func TestReplace_NormalizesFieldsAndReactivates(t *testing.T) {
	p, err := NewPromotion("s1", "v1", Terms{Type: TypeBOGO, BuyQty: intp(3), PayQty: intp(2), EndsAt: now.Add(time.Hour)}, "admin", now)
	require.NoError(t, err)
	p.Deactivate(now)
	assert.False(t, p.IsLive(now))

	err = p.Replace(Terms{Type: TypePercentOff, PercentOff: dec("15"), BuyQty: intp(3), PayQty: intp(2), EndsAt: now.Add(2 * time.Hour)}, now)
	require.NoError(t, err)
	assert.True(t, p.Active)
	assert.Equal(t, TypePercentOff, p.Type)
	assert.Nil(t, p.BuyQty)
	assert.Nil(t, p.PayQty)
	assert.True(t, p.IsLive(now))
	assert.False(t, p.IsLive(now.Add(2*time.Hour)))
	assert.True(t, p.IsExpired(now.Add(2*time.Hour)))
}

func TestPriceOf(t *testing.T) {
	daily := &pricing.DailyPrice{UnitSale: catalog.SaleKG, Status: pricing.StatusListo, SalePrice: dec("1000")}

	percent := &Promotion{Type: TypePercentOff, PercentOff: dec("15")}
	got := PriceOf(percent, daily, catalog.SaleKG)
	assert.Equal(t, pricing.StatusListo, got.Status)
	require.NotNil(t, got.PromoPrice)
	assert.True(t, got.PromoPrice.Equal(decimal.NewFromInt(850)))
	assert.Nil(t, got.ComboPrice)

	bogo := &Promotion{Type: TypeBOGO, BuyQty: intp(3), PayQty: intp(2)}
	got = PriceOf(bogo, daily, catalog.SaleKG)
	require.NotNil(t, got.ComboPrice)
	assert.True(t, got.ComboPrice.Equal(decimal.NewFromInt(2000)))
	assert.Nil(t, got.PromoPrice)
}

func TestPriceOf_WithoutDailyPrice(t *testing.T) {
	p := &Promotion{Type: TypePercentOff, PercentOff: dec("10")}

	got := PriceOf(p, nil, catalog.SaleUnidad)
	assert.Equal(t, pricing.StatusPendiente, got.Status)
	assert.Equal(t, catalog.SaleUnidad, got.UnitSale)
	assert.Nil(t, got.SalePrice)
	assert.Nil(t, got.PromoPrice)

	pending := &pricing.DailyPrice{UnitSale: catalog.SaleUnidad, Status: pricing.StatusPendiente}
	got = PriceOf(p, pending, catalog.SaleUnidad)
	assert.Equal(t, pricing.StatusPendiente, got.Status)
	assert.Nil(t, got.PromoPrice)
}
