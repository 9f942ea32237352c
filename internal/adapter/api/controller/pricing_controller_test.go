package controller_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/controller"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/dto"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/route"
	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/pricing"
	"github.com/hugohenrick/verduleria-api/internal/domain/session"
	"github.com/hugohenrick/verduleria-api/internal/domain/user"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/hugohenrick/verduleria-api/pkg/auth"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPricing implementa solo lo que ejercitan estas pruebas
type stubPricing struct {
	service.PricingService

	views       []service.PriceView
	err         error
	gotSession  string
	gotActor    service.Actor
	gotManual   decimal.Decimal
	recalcCalls int
}

func (s *stubPricing) ListPrices(_ context.Context, sessionID string) ([]service.PriceView, error) {
	s.gotSession = sessionID
	return s.views, s.err
}

func (s *stubPricing) Recalc(_ context.Context, sessionID string) (*service.RecalcReport, error) {
	s.recalcCalls++
	s.gotSession = sessionID
	if s.err != nil {
		return nil, s.err
	}
	return &service.RecalcReport{}, nil
}

func (s *stubPricing) SetManual(_ context.Context, _ string, price decimal.Decimal, _ string) (*service.PriceView, error) {
	s.gotManual = price
	if s.err != nil {
		return nil, s.err
	}
	return &s.views[0], nil
}

func (s *stubPricing) SetMargin(_ context.Context, actor service.Actor, pct decimal.Decimal) (*pricing.Margin, error) {
	s.gotActor = actor
	return &pricing.Margin{Version: 2, Pct: pct, UpdatedBy: actor.ID, UpdatedAt: time.Now()}, nil
}

type stubSessions struct {
	service.SessionService
	current *session.Session
}

func (s *stubSessions) Current(context.Context) (*session.Session, error) {
	if s.current == nil {
		return nil, session.ErrSessionNotFound
	}
	return s.current, nil
}

// fakeAuth reemplaza al middleware JWT dejando las claims del rol pedido
func fakeAuth(role user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.ContextUserID, "user-1")
		c.Set(auth.ContextUsername, "ana")
		c.Set(auth.ContextUserRole, string(role))
		c.Next()
	}
}

func newPricingRouter(p *stubPricing, s *stubSessions, role user.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrl := controller.NewPricingController(p, s, logger.Nop())
	route.SetupPricingRoutes(r.Group("/api/v1"), ctrl, fakeAuth(role))
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func samplePrice() service.PriceView {
	cost := decimal.RequireFromString("500")
	sale := decimal.RequireFromString("675")
	return service.PriceView{
		DailyPrice: &pricing.DailyPrice{
			ID:        "dp-1",
			SessionID: "s1",
			VariantID: "v1",
			UnitSale:  catalog.SaleKG,
			CostFinal: &cost,
			MarginPct: decimal.RequireFromString("0.35"),
			SalePrice: &sale,
			Status:    pricing.StatusListo,
			Movement:  pricing.MovementNew,
		},
		Variant: &catalog.Variant{ID: "v1", NameVariant: "Perita", ProductName: "Tomate", Category: catalog.CategoryVerdura},
	}
}

func TestPricingList_VendorViewHidesCosts(t *testing.T) {
	p := &stubPricing{views: []service.PriceView{samplePrice()}}

	w := do(newPricingRouter(p, &stubSessions{}, user.RoleVendedor), http.MethodGet, "/api/v1/daily-prices?sessionId=s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", p.gotSession)

	body := w.Body.String()
	assert.Contains(t, body, `"salePrice":"675"`)
	assert.Contains(t, body, `"productName":"Tomate"`)
	assert.NotContains(t, body, "costFinal")
	assert.NotContains(t, body, "marginPct")
	assert.NotContains(t, body, "sourceLotId")

	w = do(newPricingRouter(p, &stubSessions{}, user.RoleAdmin), http.MethodGet, "/api/v1/daily-prices?sessionId=s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"costFinal":"500"`)
	assert.Contains(t, w.Body.String(), `"marginPct":"0.35"`)
}

func TestPricingList_DefaultsToCurrentSession(t *testing.T) {
	p := &stubPricing{}
	s := &stubSessions{current: &session.Session{ID: "s9"}}

	w := do(newPricingRouter(p, s, user.RoleAdmin), http.MethodGet, "/api/v1/daily-prices", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s9", p.gotSession)

	var resp dto.AdminPriceListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.NotNil(t, resp.Prices)

	w = do(newPricingRouter(p, &stubSessions{}, user.RoleAdmin), http.MethodGet, "/api/v1/daily-prices", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPricing_ErrorKindsMapToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validación", domain.NewValidation("BAD", "mal"), http.StatusBadRequest, "BAD"},
		{"no encontrado", session.ErrSessionNotFound, http.StatusNotFound, "SESSION_NOT_FOUND"},
		{"conflicto", domain.ErrSessionClosed, http.StatusConflict, "SESSION_CLOSED"},
		{"autorización", domain.NewAuthorization("NOPE", "no"), http.StatusForbidden, "NOPE"},
		{"dependencia", pricing.ErrMissingConversion, http.StatusFailedDependency, "MISSING_CONVERSION"},
		{"envuelto", errors.Join(errors.New("contexto"), domain.ErrSessionClosed), http.StatusConflict, "SESSION_CLOSED"},
		{"no clasificado", errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubPricing{err: tt.err}
			w := do(newPricingRouter(p, &stubSessions{}, user.RoleAdmin), http.MethodPost, "/api/v1/daily-prices/recalc?sessionId=s1", "")
			require.Equal(t, tt.status, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.OK)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestPricing_AdminRoutesRejectVendors(t *testing.T) {
	p := &stubPricing{}
	r := newPricingRouter(p, &stubSessions{}, user.RoleVendedor)

	w := do(r, http.MethodPost, "/api/v1/daily-prices/recalc?sessionId=s1", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
	assert.Zero(t, p.recalcCalls)

	w = do(r, http.MethodPatch, "/api/v1/config/margin", `{"marginPct":"0.4"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSetManual_Validation(t *testing.T) {
	p := &stubPricing{views: []service.PriceView{samplePrice()}}
	r := newPricingRouter(p, &stubSessions{}, user.RoleAdmin)

	w := do(r, http.MethodPatch, "/api/v1/daily-prices/dp-1/manual", `{"salePrice": 0}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_REQUEST", resp.Code)
	assert.Equal(t, "gt", resp.Fields["salePrice"])

	w = do(r, http.MethodPatch, "/api/v1/daily-prices/dp-1/manual", `{"salePrice":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_JSON")

	w = do(r, http.MethodPatch, "/api/v1/daily-prices/dp-1/manual", `{"salePrice": 720, "note": "sin conversión"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, p.gotManual.Equal(decimal.NewFromInt(720)))
}

func TestSetMargin_UsesAuthenticatedActor(t *testing.T) {
	p := &stubPricing{}
	w := do(newPricingRouter(p, &stubSessions{}, user.RoleAdmin), http.MethodPatch, "/api/v1/config/margin", `{"marginPct":"0.4"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", p.gotActor.ID)
	assert.True(t, p.gotActor.IsAdmin())

	var resp dto.MarginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Version)
	assert.True(t, resp.MarginPct.Equal(decimal.RequireFromString("0.4")))
}
