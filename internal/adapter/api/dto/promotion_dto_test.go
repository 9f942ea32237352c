package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/promotion"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToVendorPromotion(t *testing.T) {
	pct := decimal.NewFromInt(20)
	view := service.PromotionView{
		Promotion: &promotion.Promotion{
			ID:            "p1",
			SessionID:     "s1",
			VariantID:     "v1",
			Type:          promotion.TypePercentOff,
			PercentOff:    &pct,
			EndsAt:        time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC),
			Active:        true,
			ImagePublicID: "promotions/x",
			CreatedBy:     "admin-1",
		},
		Variant: &catalog.Variant{ID: "v1", NameVariant: "Perita", ProductName: "Tomate", ImageURL: "/uploads/variants/v1.jpg"},
	}

	got := ToVendorPromotion(view)
	assert.Equal(t, "Tomate", got.ProductName)
	assert.Equal(t, "/uploads/variants/v1.jpg", got.ImageURL)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "createdBy")
	assert.NotContains(t, string(raw), "imagePublicId")

	view.Promotion.ImageURL = "/uploads/promotions/x.jpg"
	assert.Equal(t, "/uploads/promotions/x.jpg", ToVendorPromotion(view).ImageURL)
}

func TestListNeverNull(t *testing.T) {
	raw, err := json.Marshal(List[string](nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}
