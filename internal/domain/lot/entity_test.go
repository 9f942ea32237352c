package lot

import (
	"strings"
	"testing"
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestConfirmationValidate(t *testing.T) {
	tests := []struct {
		name string
		c    Confirmation
		err  error
	}{
		{"válida por kilo", Confirmation{SupplierID: "s", Qty: d("12.5"), UnitCost: d("800"), BuyUnit: catalog.BuyKG}, nil},
		{"sin proveedor", Confirmation{SupplierID: " ", Qty: d("1"), UnitCost: d("1"), BuyUnit: catalog.BuyKG}, ErrEmptySupplier},
		{"unidad inválida", Confirmation{SupplierID: "s", Qty: d("1"), UnitCost: d("1"), BuyUnit: "TONELADA"}, ErrInvalidBuyUnit},
		{"cantidad cero", Confirmation{SupplierID: "s", Qty: d("0"), UnitCost: d("1"), BuyUnit: catalog.BuyKG}, ErrInvalidQty},
		{"costo cero", Confirmation{SupplierID: "s", Qty: d("1"), UnitCost: d("0"), BuyUnit: catalog.BuyKG}, ErrInvalidUnitCost},
		{"cajas fraccionarias", Confirmation{SupplierID: "s", Qty: d("1.5"), UnitCost: d("1"), BuyUnit: catalog.BuyCaja}, ErrNonIntegerBoxes},
		{"demasiadas cajas", Confirmation{SupplierID: "s", Qty: d("501"), UnitCost: d("1"), BuyUnit: catalog.BuyCaja}, ErrTooManyBoxes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestNewLots(t *testing.T) {
	lots, err := NewLots(Confirmation{SupplierID: "sup", Qty: d("10"), UnitCost: d("500"), BuyUnit: catalog.BuyKG}, "s1", "v1", "i1", "ana", now)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Qty.Equal(d("10")))
	assert.True(t, lots[0].Total().Equal(d("5000")))
	assert.True(t, lots[0].CostKnown())

	boxes, err := NewLots(Confirmation{SupplierID: "sup", Qty: d("3"), UnitCost: d("10000"), BuyUnit: catalog.BuyCaja}, "s1", "v1", "i1", "ana", now)
	require.NoError(t, err)
	require.Len(t, boxes, 3)
	ids := map[string]bool{}
	for _, b := range boxes {
		assert.True(t, b.Qty.Equal(d("1")))
		assert.False(t, b.CostKnown())
		ids[b.ID] = true
	}
	assert.Len(t, ids, 3)

	_, err = NewLots(Confirmation{SupplierID: "sup", Qty: d("0"), UnitCost: d("1"), BuyUnit: catalog.BuyKG}, "s1", "v1", "i1", "ana", now)
	assert.ErrorIs(t, err, ErrInvalidQty)
}

func TestWeigh(t *testing.T) {
	box := &Lot{Qty: d("1"), UnitCost: d("10000"), BuyUnit: catalog.BuyCaja}

	_, ok := box.CostPerKg()
	assert.False(t, ok)

	assert.ErrorIs(t, box.Weigh(d("0"), now), ErrInvalidNetWeight)
	require.NoError(t, box.Weigh(d("20"), now))
	assert.True(t, box.IsWeighed())
	assert.True(t, box.CostKnown())

	perKg, ok := box.CostPerKg()
	require.True(t, ok)
	assert.True(t, perKg.Equal(d("500")))

	assert.ErrorIs(t, box.Weigh(d("21"), now), ErrAlreadyWeighed)

	kg := &Lot{Qty: d("5"), UnitCost: d("800"), BuyUnit: catalog.BuyKG}
	assert.ErrorIs(t, kg.Weigh(d("5"), now), ErrWeighNotApplicable)
}

func TestSetPayment(t *testing.T) {
	l := &Lot{Qty: d("1"), UnitCost: d("1"), BuyUnit: catalog.BuyKG}

	require.NoError(t, l.SetPayment(PaymentMercadoPago, "  alias verdu  ", now))
	assert.Equal(t, PaymentMercadoPago, l.PaymentMethod)
	assert.Equal(t, "alias verdu", l.PaymentNote)

	require.NoError(t, l.SetPayment(PaymentNone, "", now))
	assert.Equal(t, PaymentNone, l.PaymentMethod)

	assert.ErrorIs(t, l.SetPayment("CHEQUE", "", now), ErrInvalidPayment)
	assert.ErrorIs(t, l.SetPayment(PaymentOtro, strings.Repeat("x", 501), now), ErrPaymentNoteTooLong)
}
