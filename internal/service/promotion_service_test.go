package service

import (
	"context"
	"testing"
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/pricing"
	"github.com/hugohenrick/verduleria-api/internal/domain/promotion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func percentOff(sessionID, variantID, pct string, hours int) UpsertPromotionInput {
	return UpsertPromotionInput{
		SessionID:     sessionID,
		VariantID:     variantID,
		Type:          promotion.TypePercentOff,
		PercentOff:    decp(pct),
		DurationHours: intp(hours),
	}
}

func TestPromotionUpsert_DerivesPriceFromDailyPrice(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p := e.product(t, "Tomate", catalog.CategoryVerdura)
	v := e.variant(t, p.ID, "Perita", catalog.SaleKG, buyUnit(catalog.BuyKG), "")
	sup := e.supplier(t, "Toto")
	sess, items := e.openSession(t, "2026-03-10", v)
	e.confirm(t, admin, sess.ID, items[v.ID].ID, sup.ID, "10", "500", catalog.BuyKG)

	view, err := e.promos.Upsert(ctx, admin, percentOff(sess.ID, v.ID, "10", 4))
	require.NoError(t, err)

	assert.True(t, view.Promotion.Active)
	assert.False(t, view.IsExpired)
	assert.Equal(t, e.clock.now.Add(4*time.Hour), view.Promotion.EndsAt)
	assert.Equal(t, admin.ID, view.Promotion.CreatedBy)
	assert.Equal(t, pricing.StatusListo, view.Pricing.Status)
	require.NotNil(t, view.Pricing.SalePrice)
	require.NotNil(t, view.Pricing.PromoPrice)
	assert.True(t, view.Pricing.SalePrice.Equal(dec("675")))
	assert.True(t, view.Pricing.PromoPrice.Equal(dec("607.5")))

	events := e.notifier.Named(EventPromotionsUpdated)
	require.Len(t, events, 1)
	assert.Equal(t, sess.ID, events[0].SessionID)
	assert.Equal(t, []string{v.ID}, events[0].VariantIDs)
}

func TestPromotionUpsert_ReplacesExistingAndReactivates(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p := e.product(t, "Lechuga", catalog.CategoryVerdura)
	v := e.variant(t, p.ID, "Criolla", catalog.SaleUnidad, nil, "")
	sess, _ := e.openSession(t, "2026-03-10", v)

	first, err := e.promos.Upsert(ctx, admin, percentOff(sess.ID, v.ID, "10", 4))
	require.NoError(t, err)
	_, err = e.promos.Deactivate(ctx, first.Promotion.ID)
	require.NoError(t, err)

	second, err := e.promos.Upsert(ctx, admin, UpsertPromotionInput{
		SessionID:     sess.ID,
		VariantID:     v.ID,
		Type:          promotion.TypeBOGO,
		BuyQty:        intp(2),
		PayQty:        intp(1),
		DurationHours: intp(8),
	})
	require.NoError(t, err)

	assert.Equal(t, first.Promotion.ID, second.Promotion.ID)
	assert.True(t, second.Promotion.Active)
	assert.Equal(t, promotion.TypeBOGO, second.Promotion.Type)
	assert.Nil(t, second.Promotion.PercentOff)

	// Sin precio del día la promoción queda pendiente
	assert.Equal(t, pricing.StatusPendiente, second.Pricing.Status)
	assert.Nil(t, second.Pricing.ComboPrice)

	all, err := e.promos.ListAdmin(ctx, sess.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPromotionUpsert_Validation(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p := e.product(t, "Papa", catalog.CategoryVerdura)
	v := e.variant(t, p.ID, "Negra", catalog.SaleKG, buyUnit(catalog.BuyKG), "")
	sess, _ := e.openSession(t, "2026-03-10", v)

	_, err := e.promos.Upsert(ctx, admin, UpsertPromotionInput{SessionID: sess.ID, VariantID: v.ID, Type: promotion.TypePercentOff, PercentOff: decp("10")})
	assert.ErrorIs(t, err, promotion.ErrInvalidEndsAt)

	_, err = e.promos.Upsert(ctx, admin, percentOff(sess.ID, v.ID, "95", 4))
	assert.ErrorIs(t, err, promotion.ErrInvalidPercentOff)

	_, err = e.promos.Upsert(ctx, admin, percentOff(sess.ID, v.ID, "10", 200))
	assert.ErrorIs(t, err, promotion.ErrInvalidDuration)

	_, err = e.promos.Upsert(ctx, admin, percentOff(sess.ID, "no-existe", "10", 4))
	assert.ErrorIs(t, err, catalog.ErrVariantNotFound)

	assert.Empty(t, e.notifier.Named(EventPromotionsUpdated))
}

func TestPromotion_ClosedSessionRejectsWrites(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p := e.product(t, "Cebolla", catalog.CategoryVerdura)
	v := e.variant(t, p.ID, "Morada", catalog.SaleKG, buyUnit(catalog.BuyKG), "")
	sess, _ := e.openSession(t, "2026-03-10", v)

	view, err := e.promos.Upsert(ctx, admin, percentOff(sess.ID, v.ID, "20", 4))
	require.NoError(t, err)

	_, err = e.sessions.Close(ctx, sess.ID)
	require.NoError(t, err)

	_, err = e.promos.Upsert(ctx, admin, percentOff(sess.ID, v.ID, "30", 4))
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	_, err = e.promos.Deactivate(ctx, view.Promotion.ID)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	_, err = e.promos.Patch(ctx, view.Promotion.ID, PatchPromotionInput{PercentOff: decp("25")})
	assert.ErrorIs(t, err, domain.ErrSessionClosed)

	// La lectura sigue disponible
	live, err := e.promos.ListLive(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, live, 1)
}

func TestPromotionPatch_KeepsActiveFlag(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p := e.product(t, "Banana", catalog.CategoryFruta)
	v := e.variant(t, p.ID, "Ecuador", catalog.SaleKG, buyUnit(catalog.BuyKG), "")
	sess, _ := e.openSession(t, "2026-03-10", v)

	view, err := e.promos.Upsert(ctx, admin, percentOff(sess.ID, v.ID, "20", 4))
	require.NoError(t, err)
	_, err = e.promos.Deactivate(ctx, view.Promotion.ID)
	require.NoError(t, err)

	patched, err := e.promos.Patch(ctx, view.Promotion.ID, PatchPromotionInput{PercentOff: decp("25"), DurationHours: intp(12)})
	require.NoError(t, err)
	assert.False(t, patched.Promotion.Active)
	assert.True(t, patched.Promotion.PercentOff.Equal(dec("25")))
	assert.Equal(t, e.clock.now.Add(12*time.Hour), patched.Promotion.EndsAt)

	_, err = e.promos.Patch(ctx, view.Promotion.ID, PatchPromotionInput{EndsAt: &e.clock.now, DurationHours: intp(1)})
	assert.ErrorIs(t, err, promotion.ErrAmbiguousEnd)

	_, err = e.promos.Patch(ctx, "no-existe", PatchPromotionInput{})
	assert.ErrorIs(t, err, promotion.ErrPromotionNotFound)
}

func TestPromotionLists_FilterByLiveness(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p := e.product(t, "Manzana", catalog.CategoryFruta)
	roja := e.variant(t, p.ID, "Roja", catalog.SaleKG, buyUnit(catalog.BuyKG), "")
	verde := e.variant(t, p.ID, "Verde", catalog.SaleKG, buyUnit(catalog.BuyKG), "")
	gala := e.variant(t, p.ID, "Gala", catalog.SaleKG, buyUnit(catalog.BuyKG), "")
	sess, _ := e.openSession(t, "2026-03-10", roja, verde, gala)

	_, err := e.promos.Upsert(ctx, admin, percentOff(sess.ID, roja.ID, "10", 2))
	require.NoError(t, err)
	short, err := e.promos.Upsert(ctx, admin, percentOff(sess.ID, verde.ID, "10", 1))
	require.NoError(t, err)
	off, err := e.promos.Upsert(ctx, admin, percentOff(sess.ID, gala.ID, "10", 8))
	require.NoError(t, err)
	_, err = e.promos.Deactivate(ctx, off.Promotion.ID)
	require.NoError(t, err)

	e.clock.Advance(90 * time.Minute)

	live, err := e.promos.ListLive(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, roja.ID, live[0].Variant.ID)

	inactive := false
	notLive, err := e.promos.ListAdmin(ctx, sess.ID, &inactive)
	require.NoError(t, err)
	assert.Len(t, notLive, 2)
	for _, pv := range notLive {
		if pv.Promotion.ID == short.Promotion.ID {
			assert.True(t, pv.IsExpired)
		}
	}

	// Una variante dada de baja no aparece para vendedores
	_, err = e.catalog.SetVariantActive(ctx, roja.ID, false)
	require.NoError(t, err)
	live, err = e.promos.ListLive(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, live)

	_, err = e.promos.ListLive(ctx, "no-existe")
	assert.Error(t, err)
}

func TestPromotionImage_ReplacesAndDeletesPrevious(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p := e.product(t, "Frutilla", catalog.CategoryFruta)
	v := e.variant(t, p.ID, "Bandeja", catalog.SaleBandeja, nil, "")
	sess, _ := e.openSession(t, "2026-03-10", v)

	view, err := e.promos.Upsert(ctx, admin, percentOff(sess.ID, v.ID, "15", 4))
	require.NoError(t, err)

	_, err = e.promos.SetImage(ctx, view.Promotion.ID, "/uploads/promotions/a.jpg", "promotions/a")
	require.NoError(t, err)
	updated, err := e.promos.SetImage(ctx, view.Promotion.ID, "/uploads/promotions/b.jpg", "promotions/b")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/promotions/b.jpg", updated.Promotion.ImageURL)
	assert.Equal(t, []string{"promotions/a"}, e.images.deleted)

	cleared, err := e.promos.ClearImage(ctx, view.Promotion.ID)
	require.NoError(t, err)
	assert.Empty(t, cleared.Promotion.ImageURL)
	assert.Equal(t, []string{"promotions/a", "promotions/b"}, e.images.deleted)
}
