package service

import (
	"context"
	"testing"

	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/lot"
	"github.com/hugohenrick/verduleria-api/internal/domain/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm_SameUnitPricesImmediately(t *testing.T) {
	e := newEnv()
	p := e.product(t, "Tomate", catalog.CategoryVerdura)
	v := e.variant(t, p.ID, "Perita", catalog.SaleKG, buyUnit(catalog.BuyKG), "")
	sup := e.supplier(t, "Toto")
	sess, items := e.openSession(t, "2026-03-10", v)

	res := e.confirm(t, admin, sess.ID, items[v.ID].ID, sup.ID, "10", "500", catalog.BuyKG)

	dp := res.Report.PriceFor(v.ID)
	require.NotNil(t, dp)
	assert.Equal(t, pricing.StatusListo, dp.Status)
	assert.True(t, dp.CostFinal.Equal(dec("500")))
	assert.True(t, dp.SalePrice.Equal(dec("675")))
	assert.True(t, dp.MarginPct.Equal(dec("0.35")))
	assert.Equal(t, int64(0), dp.MarginVersion)
	assert.Equal(t, pricing.MovementNew, dp.Movement)
	assert.Equal(t, res.Confirmed[0].Lots[0].ID, dp.SourceLotID)

	events := e.notifier.Named(EventDailyPriceUpdated)
	require.Len(t, events, 1)
	assert.Equal(t, sess.ID, events[0].SessionID)
	assert.Equal(t, []string{v.ID}, events[0].VariantIDs)
}

func TestConfirm_SingleBoxWeighedGivesCostPerKg(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p := e.product(t, "Zapallo", catalog.CategoryHortaliza)
	w := e.variant(t, p.ID, "Anco", catalog.SaleKG, buyUnit(catalog.BuyCaja), "")
	sup := e.supplier(t, "Beto")
	sess, items := e.openSession(t, "2026-03-10", w)

	res := e.confirm(t, admin, sess.ID, items[w.ID].ID, sup.ID, "1", "10000", catalog.BuyCaja)
	dp := res.Report.PriceFor(w.ID)
	require.NotNil(t, dp)
	assert.Equal(t, pricing.StatusPendiente, dp.Status)
	assert.Equal(t, pricing.ReasonUnweighedLots, dp.PendingReason)
	assert.Nil(t, dp.SalePrice)

	weighed, err := e.purchases.Weigh(ctx, res.Confirmed[0].Lots[0].ID, dec("20"))
	require.NoError(t, err)
	perKg, ok := weighed.Lot.CostPerKg()
	require.True(t, ok)
	assert.True(t, perKg.Equal(dec("500")))

	dp = weighed.Report.PriceFor(w.ID)
	require.NotNil(t, dp)
	assert.Equal(t, pricing.StatusListo, dp.Status)
	assert.True(t, dp.CostFinal.Equal(dec("500")))
	assert.True(t, dp.SalePrice.Equal(dec("675")))
}

func TestConfirm_BoxesGoPartialThenReady(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p := e.product(t, "Banana", catalog.CategoryFruta)
	v := e.variant(t, p.ID, "Ecuador", catalog.SaleKG, buyUnit(catalog.BuyCaja), "18")
	sup := e.supplier(t, "Carlitos")
	sess, items := e.openSession(t, "2026-03-10", v)

	res := e.confirm(t, admin, sess.ID, items[v.ID].ID, sup.ID, "3", "9000", catalog.BuyCaja)
	lots := res.Confirmed[0].Lots
	require.Len(t, lots, 3)
	for _, l := range lots {
		assert.True(t, l.Qty.Equal(dec("1")))
		assert.False(t, l.IsWeighed())
	}
	// Con conversión cargada, las cajas sin pesar dejan el precio PARCIAL
	assert.Equal(t, pricing.StatusParcial, res.Report.PriceFor(v.ID).Status)

	_, err := e.purchases.Weigh(ctx, lots[0].ID, dec("20"))
	require.NoError(t, err)
	r2, err := e.purchases.Weigh(ctx, lots[1].ID, dec("16"))
	require.NoError(t, err)
	dp := r2.Report.PriceFor(v.ID)
	assert.Equal(t, pricing.StatusParcial, dp.Status)
	assert.True(t, dp.CostFinal.Equal(dec("500")), "18000 / 36 kg")

	r3, err := e.purchases.Weigh(ctx, lots[2].ID, dec("24"))
	require.NoError(t, err)
	dp = r3.Report.PriceFor(v.ID)
	assert.Equal(t, pricing.StatusListo, dp.Status)
	assert.True(t, dp.CostFinal.Equal(dec("450")), "27000 / 60 kg")
	assert.True(t, dp.SalePrice.Equal(dec("607.5")))

	_, err = e.purchases.Weigh(ctx, lots[2].ID, dec("24"))
	assert.ErrorIs(t, err, lot.ErrAlreadyWeighed)
}

func TestMissingConversion_ManualThenConversion(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p := e.product(t, "Papa", catalog.CategoryVerdura)
	v := e.variant(t, p.ID, "Negra", catalog.SaleKG, buyUnit(catalog.BuyBolsa), "")
	sup := e.supplier(t, "Pocho")
	sess, items := e.openSession(t, "2026-03-10", v)

	res := e.confirm(t, admin, sess.ID, items[v.ID].ID, sup.ID, "2", "10000", catalog.BuyBolsa)
	dp := res.Report.PriceFor(v.ID)
	assert.Equal(t, pricing.StatusPendiente, dp.Status)
	assert.Equal(t, pricing.ReasonMissingConversion, dp.PendingReason)
	require.Len(t, res.Report.Pending, 1)
	assert.True(t, domain.IsKind(res.Report.Pending[0].Blocker, domain.KindDependencyMissing))

	pending, err := e.pricing.Pending(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	manual, err := e.pricing.SetManual(ctx, dp.ID, dec("1500"), "precio de la pizarra")
	require.NoError(t, err)
	assert.Equal(t, pricing.StatusListo, manual.DailyPrice.Status)
	assert.True(t, manual.DailyPrice.SalePrice.Equal(dec("1500")))
	assert.True(t, manual.DailyPrice.LastManualSalePrice.Equal(dec("1500")))

	_, withPrice, err := e.pricing.UpdateConversion(ctx, v.ID, decp("25"), "")
	require.NoError(t, err)
	require.NotNil(t, withPrice)
	got := withPrice.DailyPrice
	assert.Equal(t, pricing.StatusListo, got.Status)
	assert.True(t, got.CostFinal.Equal(dec("400")), "20000 / 50 kg")
	assert.True(t, got.SalePrice.Equal(dec("540")))
	assert.Nil(t, got.ManualSalePrice)
	assert.True(t, got.LastManualSalePrice.Equal(dec("1500")))

	_, err = e.pricing.SetManual(ctx, got.ID, dec("600"), "")
	assert.ErrorIs(t, err, pricing.ErrPriceComputed)
}

func TestMargin_ChangeNeedsExplicitRecalc(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p := e.product(t, "Tomate", catalog.CategoryVerdura)
	v := e.variant(t, p.ID, "Perita", catalog.SaleKG, buyUnit(catalog.BuyKG), "")
	sup := e.supplier(t, "Toto")
	sess, items := e.openSession(t, "2026-03-10", v)
	e.confirm(t, admin, sess.ID, items[v.ID].ID, sup.ID, "10", "500", catalog.BuyKG)

	m, err := e.pricing.SetMargin(ctx, admin, dec("0.5"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.Version)

	views, err := e.pricing.ListPrices(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].DailyPrice.SalePrice.Equal(dec("675")), "no cambia sin recálculo")

	report, err := e.pricing.Recalc(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated())
	dp := report.PriceFor(v.ID)
	assert.True(t, dp.SalePrice.Equal(dec("750")))
	assert.Equal(t, int64(1), dp.MarginVersion)

	_, err = e.pricing.SetMargin(ctx, admin, dec("7"))
	assert.ErrorIs(t, err, pricing.ErrInvalidMargin)
}

func TestEnsureMargin_SeedsOnce(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	require.NoError(t, e.pricing.EnsureMargin(ctx))
	require.NoError(t, e.pricing.EnsureMargin(ctx))

	m, err := e.pricing.CurrentMargin(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.Version)
	assert.True(t, m.Pct.Equal(dec("0.35")))
	assert.Len(t, e.st.margins, 1)
}

func TestMovement_ComparesWithPreviousSession(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p := e.product(t, "Tomate", catalog.CategoryVerdura)
	v := e.variant(t, p.ID, "Perita", catalog.SaleKG, buyUnit(catalog.BuyKG), "")
	sup := e.supplier(t, "Toto")

	s1, items1 := e.openSession(t, "2026-03-09", v)
	e.confirm(t, admin, s1.ID, items1[v.ID].ID, sup.ID, "10", "500", catalog.BuyKG)
	_, err := e.sessions.Close(ctx, s1.ID)
	require.NoError(t, err)

	s2, items2 := e.openSession(t, "2026-03-10", v)
	res := e.confirm(t, admin, s2.ID, items2[v.ID].ID, sup.ID, "10", "600", catalog.BuyKG)

	dp := res.Report.PriceFor(v.ID)
	assert.Equal(t, pricing.MovementUp, dp.Movement)
	assert.True(t, dp.PrevSalePrice.Equal(dec("675")))
	assert.Equal(t, "2026-03-09", dp.PrevDateKey)
	assert.True(t, dp.Delta.Equal(dec("135")))
}

func TestBoard_CarriesForwardAndCaches(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	fruta := e.product(t, "Manzana", catalog.CategoryFruta)
	verdura := e.product(t, "Acelga", catalog.CategoryVerdura)
	a := e.variant(t, fruta.ID, "Roja", catalog.SaleKG, buyUnit(catalog.BuyKG), "")
	b := e.variant(t, verdura.ID, "Atado", catalog.SaleAtado, buyUnit(catalog.BuyAtado), "")
	sup := e.supplier(t, "Toto")

	s1, items1 := e.openSession(t, "2026-03-09", a)
	e.confirm(t, admin, s1.ID, items1[a.ID].ID, sup.ID, "10", "1000", catalog.BuyKG)
	_, err := e.sessions.Close(ctx, s1.ID)
	require.NoError(t, err)

	s2, items2 := e.openSession(t, "2026-03-10", b)
	e.confirm(t, admin, s2.ID, items2[b.ID].ID, sup.ID, "20", "400", catalog.BuyAtado)

	board, err := e.pricing.Board(ctx, s2.ID)
	require.NoError(t, err)
	require.Len(t, board, 2)

	assert.Equal(t, b.ID, board[0].VariantID, "VERDURA primero")
	assert.True(t, board[0].IsFromToday)
	assert.True(t, board[0].SalePrice.Equal(dec("540")))

	assert.Equal(t, a.ID, board[1].VariantID)
	assert.False(t, board[1].IsFromToday)
	assert.Equal(t, "2026-03-09", board[1].LastDateKey)
	assert.True(t, board[1].SalePrice.Equal(dec("1350")))

	_, cached := e.cache.boards[s2.ID]
	assert.True(t, cached)

	// Una baja invalida con el próximo recálculo
	_, err = e.catalog.SetVariantActive(ctx, a.ID, false)
	require.NoError(t, err)
	_, err = e.pricing.Recalc(ctx, s2.ID)
	require.NoError(t, err)
	board, err = e.pricing.Board(ctx, s2.ID)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, b.ID, board[0].VariantID)
}

func TestRecalc_ClosedSessionRejected(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p := e.product(t, "Tomate", catalog.CategoryVerdura)
	v := e.variant(t, p.ID, "Perita", catalog.SaleKG, buyUnit(catalog.BuyKG), "")
	sess, _ := e.openSession(t, "2026-03-10", v)
	_, err := e.sessions.Close(ctx, sess.ID)
	require.NoError(t, err)

	_, err = e.pricing.Recalc(ctx, sess.ID)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}
