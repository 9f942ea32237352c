package service

import (
	"context"

	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/lot"
	"github.com/hugohenrick/verduleria-api/internal/domain/session"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/lock"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// MaxBatchItems limita los ítems de una confirmación por lote
const MaxBatchItems = 100

var (
	ErrEmptyBatch    = domain.NewValidation("EMPTY_BATCH", "la confirmación no tiene ítems")
	ErrBatchTooLarge = domain.NewValidation("BATCH_TOO_LARGE", "demasiados ítems en una sola confirmación")
)

// ConfirmInput es la compra de un ítem de la sesión
type ConfirmInput struct {
	ItemID       string
	Confirmation lot.Confirmation
}

// ConfirmResult es el estado del ítem y los lotes creados por una compra
type ConfirmResult struct {
	Item *session.Item
	Lots []*lot.Lot
}

// PurchaseResult agrupa las compras confirmadas y el recálculo que dispararon
type PurchaseResult struct {
	Confirmed []ConfirmResult
	Report    *RecalcReport
}

// WeighResult es el lote pesado y el precio recalculado de su variante
type WeighResult struct {
	Lot    *lot.Lot
	Report *RecalcReport
}

// PurchaseService es el libro de lotes
type PurchaseService interface {
	Confirm(ctx context.Context, actor Actor, sessionID string, in ConfirmInput) (*PurchaseResult, error)
	ConfirmBatch(ctx context.Context, actor Actor, sessionID string, in []ConfirmInput) (*PurchaseResult, error)
	Weigh(ctx context.Context, lotID string, netWeightKg decimal.Decimal) (*WeighResult, error)
	PatchPayment(ctx context.Context, lotID string, method lot.PaymentMethod, note string) (*lot.Lot, error)
	PatchPaymentGroup(ctx context.Context, g lot.PaymentGroup, method lot.PaymentMethod, note string) (int64, error)
	ListLots(ctx context.Context, sessionID string) ([]*lot.Lot, error)
}

// PurchaseDeps agrupa las dependencias del libro de lotes
type PurchaseDeps struct {
	Sessions  session.Repository
	Items     session.ItemRepository
	Lots      lot.Repository
	Variants  catalog.VariantRepository
	Suppliers catalog.SupplierRepository
	Pricing   PricingService
	Tx        Transactor
	Locker    Locker
	Clock     Clock
	Logger    logger.Logger
}

type purchaseService struct {
	PurchaseDeps
}

// NewPurchaseService crea el libro de lotes
func NewPurchaseService(d PurchaseDeps) PurchaseService {
	if d.Clock == nil {
		d.Clock = systemClock
	}
	return &purchaseService{PurchaseDeps: d}
}

func (s *purchaseService) Confirm(ctx context.Context, actor Actor, sessionID string, in ConfirmInput) (*PurchaseResult, error) {
	return s.ConfirmBatch(ctx, actor, sessionID, []ConfirmInput{in})
}

// ConfirmBatch confirma todas las compras o ninguna. Cada caja genera su propio lote.
func (s *purchaseService) ConfirmBatch(ctx context.Context, actor Actor, sessionID string, in []ConfirmInput) (*PurchaseResult, error) {
	if len(in) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(in) > MaxBatchItems {
		return nil, ErrBatchTooLarge
	}
	for _, c := range in {
		if err := c.Confirmation.Validate(); err != nil {
			return nil, err
		}
	}

	// Las claves de lock salen de las variantes de los ítems
	variantIDs := make([]string, 0, len(in))
	for _, c := range in {
		it, err := s.Items.FindByID(ctx, sessionID, c.ItemID)
		if err != nil {
			return nil, err
		}
		variantIDs = append(variantIDs, it.VariantID)
	}
	release, err := s.Locker.Acquire(ctx, lockKeys(sessionID, variantIDs)...)
	if err != nil {
		s.Logger.Warn("confirmación en espera de lock", "session_id", sessionID, "error", err)
		return nil, err
	}
	defer release()

	res := &PurchaseResult{}
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		sess, err := s.Sessions.FindByIDForShare(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := sess.EnsureOpen(); err != nil {
			return err
		}

		now := s.Clock()
		touched := make([]string, 0, len(in))
		for _, c := range in {
			if err := s.ensureSupplier(ctx, c.Confirmation.SupplierID); err != nil {
				return err
			}
			it, err := s.Items.FindByIDForUpdate(ctx, sessionID, c.ItemID)
			if err != nil {
				return err
			}
			v, err := s.Variants.FindByID(ctx, it.VariantID)
			if err != nil {
				return err
			}
			if err := c.Confirmation.MatchesVariant(v); err != nil {
				s.Logger.Warn("unidad de compra distinta a la de la variante", "session_id", sessionID, "variant_id", v.ID, "buy_unit", c.Confirmation.BuyUnit)
				return err
			}
			lots, err := lot.NewLots(c.Confirmation, sessionID, it.VariantID, it.ID, actor.ID, now)
			if err != nil {
				return err
			}
			if err := it.RecordPurchase(actor.ID, actor.IsAdmin(), c.Confirmation.Qty, c.Confirmation.Total(), now); err != nil {
				return err
			}
			if err := s.Lots.CreateBatch(ctx, lots); err != nil {
				return err
			}
			if err := s.Items.Update(ctx, it); err != nil {
				return err
			}
			res.Confirmed = append(res.Confirmed, ConfirmResult{Item: it, Lots: lots})
			touched = append(touched, it.VariantID)
		}

		res.Report, err = s.Pricing.Recompute(ctx, sess, touched)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Pricing.Announce(ctx, sessionID, res.Report.VariantIDs())
	s.Logger.Info("compra confirmada", "session_id", sessionID, "items", len(res.Confirmed), "user_id", actor.ID)
	return res, nil
}

func (s *purchaseService) ensureSupplier(ctx context.Context, supplierID string) error {
	sp, err := s.Suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return err
	}
	if !sp.Active {
		return catalog.ErrSupplierInactive
	}
	return nil
}

// Weigh registra el peso neto de una caja y recalcula el precio de su variante
func (s *purchaseService) Weigh(ctx context.Context, lotID string, netWeightKg decimal.Decimal) (*WeighResult, error) {
	l, err := s.Lots.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	release, err := s.Locker.Acquire(ctx, lock.Key(l.SessionID, l.VariantID))
	if err != nil {
		return nil, err
	}
	defer release()

	res := &WeighResult{}
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		sess, err := s.Sessions.FindByIDForShare(ctx, l.SessionID)
		if err != nil {
			return err
		}
		if err := sess.EnsureWritable(); err != nil {
			return err
		}
		locked, err := s.Lots.FindByIDForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if err := locked.Weigh(netWeightKg, s.Clock()); err != nil {
			return err
		}
		if err := s.Lots.UpdateWeight(ctx, locked); err != nil {
			return err
		}
		res.Lot = locked
		res.Report, err = s.Pricing.Recompute(ctx, sess, []string{locked.VariantID})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Pricing.Announce(ctx, l.SessionID, res.Report.VariantIDs())
	if perKg, ok := res.Lot.CostPerKg(); ok {
		s.Logger.Info("caja pesada", "lot_id", lotID, "net_weight_kg", netWeightKg.String(), "cost_per_kg", perKg.Round(4).String())
	}
	return res, nil
}

// PatchPayment edita los datos de pago de un lote. No afecta precios.
func (s *purchaseService) PatchPayment(ctx context.Context, lotID string, method lot.PaymentMethod, note string) (*lot.Lot, error) {
	l, err := s.Lots.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureWritable(ctx, l.SessionID); err != nil {
		return nil, err
	}
	if err := l.SetPayment(method, note, s.Clock()); err != nil {
		return nil, err
	}
	if err := s.Lots.UpdatePayment(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// PatchPaymentGroup aplica el pago a todos los lotes de una variante y proveedor
func (s *purchaseService) PatchPaymentGroup(ctx context.Context, g lot.PaymentGroup, method lot.PaymentMethod, note string) (int64, error) {
	if err := lot.ValidatePayment(method, note); err != nil {
		return 0, err
	}
	if err := s.ensureWritable(ctx, g.SessionID); err != nil {
		return 0, err
	}
	n, err := s.Lots.UpdatePaymentByGroup(ctx, g, method, note)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, lot.ErrLotNotFound
	}
	return n, nil
}

func (s *purchaseService) ListLots(ctx context.Context, sessionID string) ([]*lot.Lot, error) {
	if _, err := s.Sessions.FindByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.Lots.ListBySession(ctx, sessionID)
}

func (s *purchaseService) ensureWritable(ctx context.Context, sessionID string) error {
	sess, err := s.Sessions.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	return sess.EnsureWritable()
}
