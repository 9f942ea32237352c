package service

import (
	"context"
	"errors"
	"sort"

	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/lot"
	"github.com/hugohenrick/verduleria-api/internal/domain/pricing"
	"github.com/hugohenrick/verduleria-api/internal/domain/session"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/lock"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// PriceView es un precio diario con los datos de su variante
type PriceView struct {
	DailyPrice *pricing.DailyPrice
	Variant    *catalog.Variant
}

// PurchasedView agrega los lotes que originaron el precio (solo admin)
type PurchasedView struct {
	PriceView
	Lots []*lot.Lot
}

// BoardRow es una fila del tablero de vendedores. No lleva costos.
type BoardRow struct {
	VariantID   string           `json:"variantId"`
	Category    catalog.Category `json:"category"`
	ProductName string           `json:"productName"`
	NameVariant string           `json:"nameVariant"`
	UnitSale    catalog.SaleUnit `json:"unitSale"`
	SalePrice   decimal.Decimal  `json:"salePrice"`
	Movement    pricing.Movement `json:"movement"`
	Delta       *decimal.Decimal `json:"delta"`
	ImageURL    string           `json:"imageUrl"`
	IsFromToday bool             `json:"isFromToday"`
	LastDateKey string           `json:"lastDateKey,omitempty"`
}

// PendingEntry resume un precio que no quedó LISTO. Blocker es el error de
// dependencia que impide el cálculo automático, si lo hay.
type PendingEntry struct {
	VariantID string
	Status    pricing.Status
	Reason    pricing.PendingReason
	Blocker   error
}

// RecalcReport es el resultado de un recálculo
type RecalcReport struct {
	Prices  []*pricing.DailyPrice
	Pending []PendingEntry
}

// Updated devuelve cuántos precios se recalcularon
func (r *RecalcReport) Updated() int {
	return len(r.Prices)
}

// VariantIDs devuelve las variantes recalculadas
func (r *RecalcReport) VariantIDs() []string {
	ids := make([]string, 0, len(r.Prices))
	for _, dp := range r.Prices {
		ids = append(ids, dp.VariantID)
	}
	return ids
}

// PriceFor busca en el reporte el precio recalculado de la variante
func (r *RecalcReport) PriceFor(variantID string) *pricing.DailyPrice {
	if r == nil {
		return nil
	}
	for _, dp := range r.Prices {
		if dp.VariantID == variantID {
			return dp
		}
	}
	return nil
}

// PricingService es el motor de precios diarios
type PricingService interface {
	// Recompute recalcula las variantes dadas. Debe llamarse dentro de la transacción del llamador.
	Recompute(ctx context.Context, sess *session.Session, variantIDs []string) (*RecalcReport, error)
	// Announce invalida el tablero y avisa a los clientes. Se llama después del commit.
	Announce(ctx context.Context, sessionID string, variantIDs []string)

	Recalc(ctx context.Context, sessionID string) (*RecalcReport, error)
	ListPrices(ctx context.Context, sessionID string) ([]PriceView, error)
	Purchased(ctx context.Context, sessionID string) ([]PurchasedView, error)
	Pending(ctx context.Context, sessionID string) ([]PriceView, error)
	Board(ctx context.Context, sessionID string) ([]BoardRow, error)
	SetManual(ctx context.Context, id string, price decimal.Decimal, note string) (*PriceView, error)
	UpdateConversion(ctx context.Context, variantID string, conversion *decimal.Decimal, sessionID string) (*catalog.Variant, *PriceView, error)

	CurrentMargin(ctx context.Context) (*pricing.Margin, error)
	SetMargin(ctx context.Context, actor Actor, pct decimal.Decimal) (*pricing.Margin, error)
	EnsureMargin(ctx context.Context) error
}

// PricingDeps agrupa las dependencias del motor de precios
type PricingDeps struct {
	Sessions      session.Repository
	Variants      catalog.VariantRepository
	Lots          lot.Repository
	Prices        pricing.Repository
	Margins       pricing.MarginRepository
	Tx            Transactor
	Locker        Locker
	Cache         BoardCache
	Notifier      Notifier
	DefaultMargin decimal.Decimal
	Clock         Clock
	Logger        logger.Logger
}

type pricingService struct {
	PricingDeps
}

// NewPricingService crea el motor de precios
func NewPricingService(d PricingDeps) PricingService {
	if d.Clock == nil {
		d.Clock = systemClock
	}
	if d.Notifier == nil {
		d.Notifier = NopNotifier{}
	}
	return &pricingService{PricingDeps: d}
}

// ── Recompute ────────────────────────────────────────────────────────────────

func (s *pricingService) Recompute(ctx context.Context, sess *session.Session, variantIDs []string) (*RecalcReport, error) {
	report := &RecalcReport{}
	variantIDs = uniqueStrings(variantIDs)
	if len(variantIDs) == 0 {
		return report, nil
	}

	margin, err := s.CurrentMargin(ctx)
	if err != nil {
		return nil, err
	}
	variants, err := s.Variants.FindByIDs(ctx, variantIDs)
	if err != nil {
		return nil, err
	}
	now := s.Clock()

	for _, vid := range variantIDs {
		v, ok := variants[vid]
		if !ok {
			return nil, catalog.ErrVariantNotFound
		}
		lots, err := s.Lots.ListBySessionVariant(ctx, sess.ID, vid)
		if err != nil {
			return nil, err
		}

		dp, err := s.Prices.FindBySessionVariant(ctx, sess.ID, vid)
		switch {
		case errors.Is(err, pricing.ErrDailyPriceNotFound):
			if len(lots) == 0 {
				continue
			}
			if dp, err = s.newDailyPrice(ctx, sess, v); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		}

		prev, err := s.Prices.PreviousPrice(ctx, vid, sess.DateKey)
		if err != nil {
			return nil, err
		}

		res := pricing.Calculate(pricing.Input{Variant: v, Lots: lots, Margin: *margin})
		dp.Apply(res, *margin, prev, now)
		if err := s.Prices.Upsert(ctx, dp); err != nil {
			return nil, err
		}

		report.Prices = append(report.Prices, dp)
		if dp.IsPending() {
			report.Pending = append(report.Pending, PendingEntry{
				VariantID: vid,
				Status:    dp.Status,
				Reason:    dp.PendingReason,
				Blocker:   res.Blocker(),
			})
		}
	}
	return report, nil
}

// newDailyPrice crea la fila y hereda el último precio manual como referencia
func (s *pricingService) newDailyPrice(ctx context.Context, sess *session.Session, v *catalog.Variant) (*pricing.DailyPrice, error) {
	dp := pricing.NewDailyPrice(sess.ID, v.ID, v.UnitSale, s.Clock())
	last, err := s.Prices.LastManualBefore(ctx, v.ID, sess.DateKey)
	if err != nil {
		return nil, err
	}
	if last != nil {
		p := last.SalePrice
		dp.LastManualSalePrice = &p
	}
	return dp, nil
}

func (s *pricingService) Announce(ctx context.Context, sessionID string, variantIDs []string) {
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, sessionID); err != nil {
			s.Logger.Warn("no se pudo invalidar el tablero", "session_id", sessionID, "error", err)
		}
	}
	if len(variantIDs) == 0 {
		return
	}
	s.Notifier.Publish(ctx, Event{Name: EventDailyPriceUpdated, SessionID: sessionID, VariantIDs: variantIDs})
}

// ── Recalc ───────────────────────────────────────────────────────────────────

// Recalc recalcula todas las variantes de la sesión con el margen vigente
func (s *pricingService) Recalc(ctx context.Context, sessionID string) (*RecalcReport, error) {
	sess, err := s.Sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.EnsureWritable(); err != nil {
		return nil, err
	}
	variantIDs, err := s.sessionVariantIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	release, err := s.Locker.Acquire(ctx, lockKeys(sessionID, variantIDs)...)
	if err != nil {
		s.Logger.Warn("recálculo en espera de lock", "session_id", sessionID, "error", err)
		return nil, err
	}
	defer release()

	var report *RecalcReport
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		sess, err := s.Sessions.FindByIDForShare(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := sess.EnsureWritable(); err != nil {
			return err
		}
		report, err = s.Recompute(ctx, sess, variantIDs)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Announce(ctx, sessionID, report.VariantIDs())
	s.Logger.Info("recálculo de precios", "session_id", sessionID, "updated", report.Updated(), "pending", len(report.Pending))
	return report, nil
}

// sessionVariantIDs son las variantes con lotes o con precio en la sesión
func (s *pricingService) sessionVariantIDs(ctx context.Context, sessionID string) ([]string, error) {
	ids, err := s.Lots.VariantIDsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	prices, err := s.Prices.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, dp := range prices {
		ids = append(ids, dp.VariantID)
	}
	return uniqueStrings(ids), nil
}

// ── Lecturas ─────────────────────────────────────────────────────────────────

func (s *pricingService) ListPrices(ctx context.Context, sessionID string) ([]PriceView, error) {
	if _, err := s.Sessions.FindByID(ctx, sessionID); err != nil {
		return nil, err
	}
	prices, err := s.Prices.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, prices)
}

func (s *pricingService) Pending(ctx context.Context, sessionID string) ([]PriceView, error) {
	views, err := s.ListPrices(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	pending := make([]PriceView, 0)
	for _, v := range views {
		if v.DailyPrice.IsPending() {
			pending = append(pending, v)
		}
	}
	return pending, nil
}

func (s *pricingService) Purchased(ctx context.Context, sessionID string) ([]PurchasedView, error) {
	views, err := s.ListPrices(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	lots, err := s.Lots.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	byVariant := make(map[string][]*lot.Lot)
	for _, l := range lots {
		byVariant[l.VariantID] = append(byVariant[l.VariantID], l)
	}

	out := make([]PurchasedView, 0, len(views))
	for _, v := range views {
		out = append(out, PurchasedView{PriceView: v, Lots: byVariant[v.DailyPrice.VariantID]})
	}
	return out, nil
}

func (s *pricingService) views(ctx context.Context, prices []*pricing.DailyPrice) ([]PriceView, error) {
	ids := make([]string, 0, len(prices))
	for _, dp := range prices {
		ids = append(ids, dp.VariantID)
	}
	variants, err := s.Variants.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]PriceView, 0, len(prices))
	for _, dp := range prices {
		v, ok := variants[dp.VariantID]
		if !ok {
			continue
		}
		views = append(views, PriceView{DailyPrice: dp, Variant: v})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return catalogLess(views[i].Variant, views[j].Variant)
	})
	return views, nil
}

// Board arma el tablero de vendedores: precios de hoy más el último precio
// conocido de variantes que hoy no tienen precio.
func (s *pricingService) Board(ctx context.Context, sessionID string) ([]BoardRow, error) {
	var cached []BoardRow
	if s.Cache != nil {
		hit, err := s.Cache.Get(ctx, sessionID, &cached)
		if err != nil {
			s.Logger.Warn("no se pudo leer el tablero cacheado", "session_id", sessionID, "error", err)
		} else if hit {
			return cached, nil
		}
	}

	sess, err := s.Sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	today, err := s.Prices.ListBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	latest, err := s.Prices.LatestBefore(ctx, sess.DateKey)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(today)+len(latest))
	for _, dp := range today {
		ids = append(ids, dp.VariantID)
	}
	for vid := range latest {
		ids = append(ids, vid)
	}
	variants, err := s.Variants.FindByIDs(ctx, uniqueStrings(ids))
	if err != nil {
		return nil, err
	}

	rows := make([]BoardRow, 0, len(ids))
	seen := make(map[string]bool, len(today))
	for _, dp := range today {
		v := variants[dp.VariantID]
		if v == nil || !v.Active || dp.SalePrice == nil {
			continue
		}
		seen[dp.VariantID] = true
		rows = append(rows, boardRow(v, dp, true, ""))
	}
	for vid, lp := range latest {
		v := variants[vid]
		if seen[vid] || v == nil || !v.Active || lp.DailyPrice.SalePrice == nil {
			continue
		}
		rows = append(rows, boardRow(v, lp.DailyPrice, false, lp.DateKey))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Category.Rank() != b.Category.Rank() {
			return a.Category.Rank() < b.Category.Rank()
		}
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		return a.NameVariant < b.NameVariant
	})

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, sessionID, rows); err != nil {
			s.Logger.Warn("no se pudo cachear el tablero", "session_id", sessionID, "error", err)
		}
	}
	return rows, nil
}

func boardRow(v *catalog.Variant, dp *pricing.DailyPrice, fromToday bool, lastDateKey string) BoardRow {
	return BoardRow{
		VariantID:   v.ID,
		Category:    v.Category,
		ProductName: v.ProductName,
		NameVariant: v.NameVariant,
		UnitSale:    dp.UnitSale,
		SalePrice:   *dp.SalePrice,
		Movement:    dp.Movement,
		Delta:       dp.Delta,
		ImageURL:    v.ImageURL,
		IsFromToday: fromToday,
		LastDateKey: lastDateKey,
	}
}

// ── Precio manual y conversión ───────────────────────────────────────────────

func (s *pricingService) SetManual(ctx context.Context, id string, price decimal.Decimal, note string) (*PriceView, error) {
	dp, err := s.Prices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	release, err := s.Locker.Acquire(ctx, lock.Key(dp.SessionID, dp.VariantID))
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		sess, err := s.Sessions.FindByIDForShare(ctx, dp.SessionID)
		if err != nil {
			return err
		}
		if err := sess.EnsureWritable(); err != nil {
			return err
		}
		current, err := s.Prices.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := current.SetManual(price, note, s.Clock()); err != nil {
			return err
		}
		if err := s.Prices.Upsert(ctx, current); err != nil {
			return err
		}
		report, err := s.Recompute(ctx, sess, []string{current.VariantID})
		if err != nil {
			return err
		}
		if len(report.Prices) > 0 {
			dp = report.Prices[0]
		} else {
			dp = current
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Announce(ctx, dp.SessionID, []string{dp.VariantID})
	v, err := s.Variants.FindByID(ctx, dp.VariantID)
	if err != nil {
		return nil, err
	}
	return &PriceView{DailyPrice: dp, Variant: v}, nil
}

// UpdateConversion guarda la conversión de la variante y recalcula su precio
// en la sesión indicada, o en la sesión activa si no se indica ninguna.
func (s *pricingService) UpdateConversion(ctx context.Context, variantID string, conversion *decimal.Decimal, sessionID string) (*catalog.Variant, *PriceView, error) {
	sess, err := s.targetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	if sess != nil {
		release, err := s.Locker.Acquire(ctx, lock.Key(sess.ID, variantID))
		if err != nil {
			return nil, nil, err
		}
		defer release()
	}

	var v *catalog.Variant
	var dp *pricing.DailyPrice
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		v, err = s.Variants.FindByID(ctx, variantID)
		if err != nil {
			return err
		}
		if err := v.SetConversion(conversion); err != nil {
			return err
		}
		if err := s.Variants.Update(ctx, v); err != nil {
			return err
		}
		if sess == nil {
			return nil
		}
		locked, err := s.Sessions.FindByIDForShare(ctx, sess.ID)
		if err != nil {
			return err
		}
		report, err := s.Recompute(ctx, locked, []string{variantID})
		if err != nil {
			return err
		}
		if len(report.Prices) > 0 {
			dp = report.Prices[0]
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if dp == nil {
		return v, nil, nil
	}
	s.Announce(ctx, dp.SessionID, []string{variantID})
	return v, &PriceView{DailyPrice: dp, Variant: v}, nil
}

// targetSession devuelve la sesión a recalcular, o nil si no hay una abierta a cambios
func (s *pricingService) targetSession(ctx context.Context, sessionID string) (*session.Session, error) {
	var sess *session.Session
	var err error
	if sessionID == "" {
		sess, err = s.Sessions.FindActive(ctx)
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, nil
		}
	} else {
		sess, err = s.Sessions.FindByID(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}
	if sess.IsClosed() {
		return nil, nil
	}
	return sess, nil
}

// ── Margen ───────────────────────────────────────────────────────────────────

// CurrentMargin devuelve la versión vigente, o el margen por defecto como versión 0
func (s *pricingService) CurrentMargin(ctx context.Context) (*pricing.Margin, error) {
	m, err := s.Margins.Current(ctx)
	if errors.Is(err, pricing.ErrMarginNotFound) {
		return &pricing.Margin{Version: 0, Pct: s.DefaultMargin}, nil
	}
	return m, err
}

// SetMargin guarda una nueva versión. Los precios cambian recién con el próximo recálculo.
func (s *pricingService) SetMargin(ctx context.Context, actor Actor, pct decimal.Decimal) (*pricing.Margin, error) {
	if err := pricing.ValidateMargin(pct); err != nil {
		return nil, err
	}
	m := &pricing.Margin{Pct: pct, UpdatedBy: actor.ID, UpdatedAt: s.Clock()}
	if err := s.Margins.Append(ctx, m); err != nil {
		return nil, err
	}
	s.Logger.Info("margen actualizado", "version", m.Version, "margin_pct", m.Pct.String(), "user_id", actor.ID)
	return m, nil
}

// EnsureMargin inserta el margen por defecto si todavía no hay ninguna versión
func (s *pricingService) EnsureMargin(ctx context.Context) error {
	_, err := s.Margins.Current(ctx)
	if !errors.Is(err, pricing.ErrMarginNotFound) {
		return err
	}
	if err := pricing.ValidateMargin(s.DefaultMargin); err != nil {
		return err
	}
	return s.Margins.Append(ctx, &pricing.Margin{Pct: s.DefaultMargin, UpdatedAt: s.Clock()})
}

// ── helpers ──────────────────────────────────────────────────────────────────

func catalogLess(a, b *catalog.Variant) bool {
	if a.Category.Rank() != b.Category.Rank() {
		return a.Category.Rank() < b.Category.Rank()
	}
	if a.ProductName != b.ProductName {
		return a.ProductName < b.ProductName
	}
	return a.NameVariant < b.NameVariant
}

func lockKeys(sessionID string, variantIDs []string) []string {
	keys := make([]string, 0, len(variantIDs))
	for _, vid := range variantIDs {
		keys = append(keys, lock.Key(sessionID, vid))
	}
	return keys
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
