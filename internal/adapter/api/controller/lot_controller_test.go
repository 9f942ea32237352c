package controller_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/controller"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/route"
	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/lot"
	"github.com/hugohenrick/verduleria-api/internal/domain/session"
	"github.com/hugohenrick/verduleria-api/internal/domain/user"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPurchases struct {
	service.PurchaseService

	lots      []*lot.Lot
	listCalls int
}

func (s *stubPurchases) ListLots(context.Context, string) ([]*lot.Lot, error) {
	s.listCalls++
	return s.lots, nil
}

func (s *stubPurchases) Confirm(_ context.Context, _ service.Actor, _ string, in service.ConfirmInput) (*service.PurchaseResult, error) {
	item := &session.Item{ID: in.ItemID, SessionID: "s1", VariantID: "v1", State: session.ItemComprado}
	return &service.PurchaseResult{
		Confirmed: []service.ConfirmResult{{Item: item, Lots: s.lots}},
		Report:    &service.RecalcReport{},
	}, nil
}

// stubItems registra los cambios que llegan al servicio de sesiones
type stubItems struct {
	service.SessionService
	gotPatch service.ItemPatch
}

func (s *stubItems) PatchItem(_ context.Context, _ service.Actor, sessionID, itemID string, in service.ItemPatch) (*session.Item, error) {
	s.gotPatch = in
	return &session.Item{ID: itemID, SessionID: sessionID, VariantID: "v1", Origin: session.OriginPlanificado, State: session.ItemPendiente}, nil
}

func sampleLot() *lot.Lot {
	return &lot.Lot{
		ID:            "l1",
		SessionID:     "s1",
		VariantID:     "v1",
		ItemID:        "i1",
		SupplierID:    "sup-1",
		Qty:           decimal.NewFromInt(10),
		UnitCost:      decimal.NewFromInt(500),
		BuyUnit:       catalog.BuyKG,
		PaymentMethod: lot.PaymentEfectivo,
		BoughtBy:      "vendor-1",
		CreatedAt:     time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC),
	}
}

func newLotRouter(p *stubPurchases, role user.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	route.SetupLotRoutes(r.Group("/api/v1"), controller.NewLotController(p, logger.Nop()), fakeAuth(role))
	return r
}

func newSessionRouter(s service.SessionService, p *stubPurchases, role user.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	route.SetupSessionRoutes(r.Group("/api/v1"), controller.NewSessionController(s, p, logger.Nop()), fakeAuth(role))
	return r
}

func TestLotList_AdminOnly(t *testing.T) {
	p := &stubPurchases{lots: []*lot.Lot{sampleLot()}}

	w := do(newLotRouter(p, user.RoleVendedor), http.MethodGet, "/api/v1/purchase-lots?sessionId=s1", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "unitCost")
	assert.Zero(t, p.listCalls)

	w = do(newLotRouter(p, user.RoleAdmin), http.MethodGet, "/api/v1/purchase-lots?sessionId=s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"unitCost":"500"`)
	assert.Contains(t, body, `"total":"5000"`)
	assert.Contains(t, body, `"supplierId":"sup-1"`)
	assert.Contains(t, body, `"paymentMethod":"EFECTIVO"`)
}

func TestConfirm_ResponseCarriesNoCostOrSupplier(t *testing.T) {
	p := &stubPurchases{lots: []*lot.Lot{sampleLot()}}
	r := newSessionRouter(&stubItems{}, p, user.RoleVendedor)

	w := do(r, http.MethodPost, "/api/v1/purchase-sessions/s1/items/i1/confirm", `{"supplierId":"sup-1","qty":"10","unitCost":"500","buyUnit":"KG"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"id":"l1"`)
	assert.Contains(t, body, `"state":"COMPRADO"`)
	assert.NotContains(t, body, "unitCost")
	assert.NotContains(t, body, "supplierId")
	assert.NotContains(t, body, "paymentMethod")

	// El resumen suma lo gastado: tampoco llega a vendedores
	w = do(r, http.MethodGet, "/api/v1/purchase-sessions/s1/summary", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPatchItem_SendsOnlyPresentFields(t *testing.T) {
	items := &stubItems{}
	r := newSessionRouter(items, &stubPurchases{}, user.RoleAdmin)

	w := do(r, http.MethodPatch, "/api/v1/purchase-sessions/s1/items/i1", `{"plannedQty": 12}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, items.gotPatch.PlannedQty)
	assert.True(t, items.gotPatch.PlannedQty.Equal(decimal.NewFromInt(12)))
	assert.Nil(t, items.gotPatch.RefPrice)
	assert.False(t, items.gotPatch.ClearRefPrice)
	assert.Contains(t, w.Body.String(), `"id":"i1"`)

	w = do(r, http.MethodPatch, "/api/v1/purchase-sessions/s1/items/i1", `{"clearRefPrice": true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, items.gotPatch.PlannedQty)
	assert.True(t, items.gotPatch.ClearRefPrice)
}
