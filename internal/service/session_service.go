package service

import (
	"context"
	"errors"
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/lot"
	"github.com/hugohenrick/verduleria-api/internal/domain/session"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/lock"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// CreateSessionInput crea una sesión. DateKey vacío usa la fecha de hoy.
type CreateSessionInput struct {
	DateKey    string
	DateTarget *time.Time
}

// ItemInput agrega un ítem a la sesión
type ItemInput struct {
	VariantID  string
	Origin     session.Origin
	PlannedQty *decimal.Decimal
	RefPrice   *decimal.Decimal
}

// ItemPatch edita cantidad planificada y precio de referencia.
// Los campos nil no se tocan; ClearPlannedQty y ClearRefPrice los vuelven a null.
type ItemPatch struct {
	PlannedQty      *decimal.Decimal
	RefPrice        *decimal.Decimal
	ClearPlannedQty bool
	ClearRefPrice   bool
}

func (p ItemPatch) changes() session.ItemChanges {
	return session.ItemChanges{
		PlannedQty:      p.PlannedQty,
		RefPrice:        p.RefPrice,
		ClearPlannedQty: p.ClearPlannedQty,
		ClearRefPrice:   p.ClearRefPrice,
	}
}

// ItemView es un ítem con su variante
type ItemView struct {
	Item    *session.Item
	Variant *catalog.Variant
}

// SessionSummary compara el presupuesto planificado con lo comprado
type SessionSummary struct {
	Session           *session.Session `json:"session"`
	PlannedBudgetReal *decimal.Decimal `json:"plannedBudgetReal"`
	PlannedBudgetRef  *decimal.Decimal `json:"plannedBudgetRef"`
	BoughtTotal       decimal.Decimal  `json:"boughtTotal"`
	RemainingReal     *decimal.Decimal `json:"remainingReal"`
	ItemsCount        int              `json:"itemsCount"`
	ItemsBought       int              `json:"itemsBought"`
	LotsCount         int              `json:"lotsCount"`
	UnweighedCount    int              `json:"unweighedCount"`
}

// CloseResult es el resultado del cierre con el recálculo final
type CloseResult struct {
	Session *session.Session
	Report  *RecalcReport
}

// SessionService maneja el ciclo de vida de las sesiones de compra
type SessionService interface {
	Create(ctx context.Context, actor Actor, in CreateSessionInput) (*session.Session, error)
	List(ctx context.Context, limit int) ([]*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	Current(ctx context.Context) (*session.Session, error)
	Summary(ctx context.Context, id string) (*SessionSummary, error)

	ListItems(ctx context.Context, sessionID string) ([]ItemView, error)
	AddItem(ctx context.Context, actor Actor, sessionID string, in ItemInput) (*session.Item, error)
	PatchItem(ctx context.Context, actor Actor, sessionID, itemID string, in ItemPatch) (*session.Item, error)
	RemoveItem(ctx context.Context, actor Actor, sessionID, itemID string) error

	Open(ctx context.Context, id string) (*session.Session, error)
	Close(ctx context.Context, id string) (*CloseResult, error)
	SetBudget(ctx context.Context, id string, real, ref *decimal.Decimal) (*session.Session, error)

	Reserve(ctx context.Context, actor Actor, sessionID, itemID string, minutes int) (*session.Item, error)
	Release(ctx context.Context, actor Actor, sessionID, itemID string) (*session.Item, error)
}

// SessionDeps agrupa las dependencias del servicio de sesiones
type SessionDeps struct {
	Sessions session.Repository
	Items    session.ItemRepository
	Variants catalog.VariantRepository
	Lots     lot.Repository
	Pricing  PricingService
	Tx       Transactor
	Locker   Locker
	Location *time.Location
	Clock    Clock
	Logger   logger.Logger
}

type sessionService struct {
	SessionDeps
}

// NewSessionService crea el servicio de sesiones
func NewSessionService(d SessionDeps) SessionService {
	if d.Clock == nil {
		d.Clock = systemClock
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	return &sessionService{SessionDeps: d}
}

// ── Sesiones ─────────────────────────────────────────────────────────────────

// Create abre una nueva sesión en PLANIFICACION. Solo puede haber una sesión sin cerrar.
func (s *sessionService) Create(ctx context.Context, actor Actor, in CreateSessionInput) (*session.Session, error) {
	now := s.Clock()
	dateKey := in.DateKey
	if dateKey == "" {
		dateKey = session.DateKeyFor(now, s.Location)
	}
	sess, err := session.NewSession(dateKey, in.DateTarget, actor.ID, now)
	if err != nil {
		return nil, err
	}

	if _, err := s.Sessions.FindActive(ctx); err == nil {
		return nil, session.ErrActiveSession
	} else if !errors.Is(err, session.ErrSessionNotFound) {
		return nil, err
	}
	if _, err := s.Sessions.FindByDateKey(ctx, dateKey); err == nil {
		return nil, session.ErrDuplicateDateKey
	} else if !errors.Is(err, session.ErrSessionNotFound) {
		return nil, err
	}

	// El índice parcial cubre la carrera entre dos altas simultáneas
	if err := s.Sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.Logger.Info("sesión creada", "session_id", sess.ID, "date_key", sess.DateKey, "user_id", actor.ID)
	return sess, nil
}

func (s *sessionService) List(ctx context.Context, limit int) ([]*session.Session, error) {
	return s.Sessions.List(ctx, limit)
}

func (s *sessionService) Get(ctx context.Context, id string) (*session.Session, error) {
	return s.Sessions.FindByID(ctx, id)
}

// Current devuelve la sesión vigente: ABIERTA, luego PLANIFICACION, luego la última cerrada
func (s *sessionService) Current(ctx context.Context) (*session.Session, error) {
	active, err := s.Sessions.FindActive(ctx)
	if err == nil {
		return active, nil
	}
	if !errors.Is(err, session.ErrSessionNotFound) {
		return nil, err
	}
	recent, err := s.Sessions.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	current := session.PickCurrent(recent)
	if current == nil {
		return nil, session.ErrSessionNotFound
	}
	return current, nil
}

func (s *sessionService) Summary(ctx context.Context, id string) (*SessionSummary, error) {
	sess, err := s.Sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.Items.ListBySession(ctx, id)
	if err != nil {
		return nil, err
	}
	lots, err := s.Lots.ListBySession(ctx, id)
	if err != nil {
		return nil, err
	}

	sum := &SessionSummary{
		Session:           sess,
		PlannedBudgetReal: sess.PlannedBudgetReal,
		PlannedBudgetRef:  sess.PlannedBudgetRef,
		BoughtTotal:       decimal.Zero,
		ItemsCount:        len(items),
		LotsCount:         len(lots),
	}
	for _, it := range items {
		if it.State == session.ItemComprado {
			sum.ItemsBought++
		}
	}
	for _, l := range lots {
		sum.BoughtTotal = sum.BoughtTotal.Add(l.Total())
		if l.IsBox() && !l.IsWeighed() {
			sum.UnweighedCount++
		}
	}
	if sess.PlannedBudgetReal != nil {
		rem := sess.PlannedBudgetReal.Sub(sum.BoughtTotal)
		sum.RemainingReal = &rem
	}
	return sum, nil
}

// ── Ítems ────────────────────────────────────────────────────────────────────

// ListItems devuelve los ítems con las reservas vencidas ya liberadas en la vista
func (s *sessionService) ListItems(ctx context.Context, sessionID string) ([]ItemView, error) {
	if _, err := s.Sessions.FindByID(ctx, sessionID); err != nil {
		return nil, err
	}
	items, err := s.Items.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.VariantID)
	}
	variants, err := s.Variants.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.Clock()
	views := make([]ItemView, 0, len(items))
	for _, it := range items {
		it.ExpireReservation(now)
		views = append(views, ItemView{Item: it, Variant: variants[it.VariantID]})
	}
	return views, nil
}

// AddItem agrega un ítem. Corre bajo el lock de la sesión para no cruzarse con open/close.
func (s *sessionService) AddItem(ctx context.Context, actor Actor, sessionID string, in ItemInput) (*session.Item, error) {
	if in.Origin == session.OriginPlanificado && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	v, err := s.Variants.FindByID(ctx, in.VariantID)
	if err != nil {
		return nil, err
	}
	if !v.Active {
		return nil, catalog.ErrVariantInactive
	}

	var it *session.Item
	err = s.withSessionItems(ctx, sessionID, func(ctx context.Context, sess *session.Session) error {
		if err := sess.CanEditItems(in.Origin); err != nil {
			return err
		}
		exists, err := s.Items.ExistsVariant(ctx, sessionID, v.ID)
		if err != nil {
			return err
		}
		if exists {
			return session.ErrDuplicateItem
		}

		refPrice := in.RefPrice
		if refPrice == nil {
			if refPrice, err = s.suggestRefPrice(ctx, sess, v.ID, in.PlannedQty); err != nil {
				return err
			}
		}
		it, err = session.NewItem(sessionID, v.ID, in.Origin, in.PlannedQty, refPrice, s.Clock())
		if err != nil {
			return err
		}
		return s.Items.Create(ctx, it)
	})
	if err != nil {
		return nil, err
	}
	return it, nil
}

// suggestRefPrice estima el costo con el promedio de la última compra anterior de la variante
func (s *sessionService) suggestRefPrice(ctx context.Context, sess *session.Session, variantID string, plannedQty *decimal.Decimal) (*decimal.Decimal, error) {
	last, err := s.Items.LastPurchasedBefore(ctx, variantID, sess.DateKey)
	if errors.Is(err, session.ErrItemNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	avg, ok := last.AvgUnitCost()
	if !ok {
		return nil, nil
	}
	qty := decimal.NewFromInt(1)
	if plannedQty != nil && plannedQty.IsPositive() {
		qty = *plannedQty
	}
	ref := avg.Mul(qty).Round(2)
	return &ref, nil
}

func (s *sessionService) PatchItem(ctx context.Context, actor Actor, sessionID, itemID string, in ItemPatch) (*session.Item, error) {
	var it *session.Item
	err := s.withSessionItems(ctx, sessionID, func(ctx context.Context, sess *session.Session) error {
		var err error
		if it, err = s.editableItem(ctx, actor, sess, itemID); err != nil {
			return err
		}
		if err := it.Patch(in.changes(), s.Clock()); err != nil {
			return err
		}
		return s.Items.Update(ctx, it)
	})
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (s *sessionService) RemoveItem(ctx context.Context, actor Actor, sessionID, itemID string) error {
	return s.withSessionItems(ctx, sessionID, func(ctx context.Context, sess *session.Session) error {
		it, err := s.editableItem(ctx, actor, sess, itemID)
		if err != nil {
			return err
		}
		if err := it.EnsureRemovable(); err != nil {
			return err
		}
		return s.Items.Delete(ctx, sessionID, it.ID)
	})
}

// withSessionItems toma el lock de transiciones de la sesión y ejecuta fn en una
// transacción con la sesión leída FOR SHARE. Open y Close esperan a que termine.
func (s *sessionService) withSessionItems(ctx context.Context, sessionID string, fn func(ctx context.Context, sess *session.Session) error) error {
	release, err := s.Locker.Acquire(ctx, lock.SessionKey(sessionID))
	if err != nil {
		return err
	}
	defer release()

	return s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		sess, err := s.Sessions.FindByIDForShare(ctx, sessionID)
		if err != nil {
			return err
		}
		return fn(ctx, sess)
	})
}

func (s *sessionService) editableItem(ctx context.Context, actor Actor, sess *session.Session, itemID string) (*session.Item, error) {
	it, err := s.Items.FindByIDForUpdate(ctx, sess.ID, itemID)
	if err != nil {
		return nil, err
	}
	if it.Origin == session.OriginPlanificado && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if err := sess.CanEditItems(it.Origin); err != nil {
		return nil, err
	}
	return it, nil
}

// ── Transiciones ─────────────────────────────────────────────────────────────

// Open pasa la sesión a ABIERTA si tiene al menos un ítem planificado
func (s *sessionService) Open(ctx context.Context, id string) (*session.Session, error) {
	release, err := s.Locker.Acquire(ctx, lock.SessionKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	var sess *session.Session
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		sess, err = s.Sessions.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		planned, err := s.Items.CountByOrigin(ctx, id, session.OriginPlanificado)
		if err != nil {
			return err
		}
		if err := sess.Open(planned, s.Clock()); err != nil {
			return err
		}
		return s.Sessions.Update(ctx, sess)
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("sesión abierta", "session_id", sess.ID, "date_key", sess.DateKey)
	return sess, nil
}

// Close recalcula por última vez todos los precios de la sesión y la cierra
// en la misma transacción. Un segundo cierre falla sin recalcular.
func (s *sessionService) Close(ctx context.Context, id string) (*CloseResult, error) {
	release, err := s.Locker.Acquire(ctx, lock.SessionKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	res := &CloseResult{}
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		sess, err := s.Sessions.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		// Se valida antes del recálculo; se aplica recién después
		probe := *sess
		if err := probe.Close(s.Clock()); err != nil {
			return err
		}

		variantIDs, err := s.Lots.VariantIDsBySession(ctx, id)
		if err != nil {
			return err
		}
		report, err := s.Pricing.Recompute(ctx, sess, variantIDs)
		if err != nil {
			return err
		}
		if err := sess.Close(s.Clock()); err != nil {
			return err
		}
		if err := s.Sessions.Update(ctx, sess); err != nil {
			return err
		}
		res.Session, res.Report = sess, report
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Pricing.Announce(ctx, id, res.Report.VariantIDs())
	s.Logger.Info("sesión cerrada", "session_id", id, "recomputed", res.Report.Updated(), "pending", len(res.Report.Pending))
	return res, nil
}

func (s *sessionService) SetBudget(ctx context.Context, id string, real, ref *decimal.Decimal) (*session.Session, error) {
	sess, err := s.Sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.SetBudget(real, ref, s.Clock()); err != nil {
		return nil, err
	}
	if err := s.Sessions.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ── Reservas ─────────────────────────────────────────────────────────────────

func (s *sessionService) Reserve(ctx context.Context, actor Actor, sessionID, itemID string, minutes int) (*session.Item, error) {
	return s.withOpenItem(ctx, sessionID, itemID, func(it *session.Item) error {
		return it.Reserve(actor.ID, actor.IsAdmin(), minutes, s.Clock())
	})
}

func (s *sessionService) Release(ctx context.Context, actor Actor, sessionID, itemID string) (*session.Item, error) {
	return s.withOpenItem(ctx, sessionID, itemID, func(it *session.Item) error {
		return it.Release(actor.ID, actor.IsAdmin(), s.Clock())
	})
}

// withOpenItem aplica fn sobre el ítem bloqueado de una sesión ABIERTA
func (s *sessionService) withOpenItem(ctx context.Context, sessionID, itemID string, fn func(it *session.Item) error) (*session.Item, error) {
	var it *session.Item
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		sess, err := s.Sessions.FindByIDForShare(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := sess.EnsureOpen(); err != nil {
			return err
		}
		it, err = s.Items.FindByIDForUpdate(ctx, sessionID, itemID)
		if err != nil {
			return err
		}
		if err := fn(it); err != nil {
			return err
		}
		return s.Items.Update(ctx, it)
	})
	if err != nil {
		return nil, err
	}
	return it, nil
}
