package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/pricing"
	"github.com/hugohenrick/verduleria-api/internal/domain/promotion"
	"github.com/hugohenrick/verduleria-api/internal/domain/session"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// UpsertPromotionInput crea o reemplaza la promoción de una variante en la sesión
type UpsertPromotionInput struct {
	SessionID     string
	VariantID     string
	Type          promotion.Type
	PercentOff    *decimal.Decimal
	BuyQty        *int
	PayQty        *int
	EndsAt        *time.Time
	DurationHours *int
}

// PatchPromotionInput cambia solo los campos presentes
type PatchPromotionInput struct {
	Type          *promotion.Type
	PercentOff    *decimal.Decimal
	BuyQty        *int
	PayQty        *int
	EndsAt        *time.Time
	DurationHours *int
}

// PromotionView es una promoción con su variante y el precio promocional en vivo
type PromotionView struct {
	Promotion *promotion.Promotion
	Variant   *catalog.Variant
	Pricing   promotion.Pricing
	IsExpired bool
}

// PromotionService administra las promociones de la sesión
type PromotionService interface {
	Upsert(ctx context.Context, actor Actor, in UpsertPromotionInput) (*PromotionView, error)
	Patch(ctx context.Context, id string, in PatchPromotionInput) (*PromotionView, error)
	Activate(ctx context.Context, id string) (*PromotionView, error)
	Deactivate(ctx context.Context, id string) (*PromotionView, error)
	SetImage(ctx context.Context, id, imageURL, publicID string) (*PromotionView, error)
	ClearImage(ctx context.Context, id string) (*PromotionView, error)

	// ListAdmin lista todas las promociones; active filtra por vigencia si no es nil
	ListAdmin(ctx context.Context, sessionID string, active *bool) ([]PromotionView, error)
	// ListLive lista las promociones vigentes de variantes activas
	ListLive(ctx context.Context, sessionID string) ([]PromotionView, error)
}

// PromotionDeps agrupa las dependencias del servicio de promociones
type PromotionDeps struct {
	Sessions   session.Repository
	Promotions promotion.Repository
	Variants   catalog.VariantRepository
	Prices     pricing.Repository
	Images     ImageStore
	Notifier   Notifier
	Clock      Clock
	Logger     logger.Logger
}

type promotionService struct {
	PromotionDeps
}

// NewPromotionService crea el servicio de promociones
func NewPromotionService(d PromotionDeps) PromotionService {
	if d.Clock == nil {
		d.Clock = systemClock
	}
	if d.Notifier == nil {
		d.Notifier = NopNotifier{}
	}
	return &promotionService{PromotionDeps: d}
}

func (s *promotionService) Upsert(ctx context.Context, actor Actor, in UpsertPromotionInput) (*PromotionView, error) {
	sess, err := s.Sessions.FindByID(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.EnsureWritable(); err != nil {
		return nil, err
	}
	v, err := s.Variants.FindByID(ctx, in.VariantID)
	if err != nil {
		return nil, err
	}

	now := s.Clock()
	endsAt, err := promotion.ResolveEndsAt(in.EndsAt, in.DurationHours, now)
	if err != nil {
		return nil, err
	}
	terms := promotion.Terms{
		Type:       in.Type,
		PercentOff: in.PercentOff,
		BuyQty:     in.BuyQty,
		PayQty:     in.PayQty,
		EndsAt:     endsAt,
	}

	p, err := s.Promotions.FindBySessionVariant(ctx, sess.ID, v.ID)
	switch {
	case errors.Is(err, promotion.ErrPromotionNotFound):
		if p, err = promotion.NewPromotion(sess.ID, v.ID, terms, actor.ID, now); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := p.Replace(terms, now); err != nil {
			return nil, err
		}
	}

	if err := s.Promotions.Upsert(ctx, p); err != nil {
		return nil, err
	}
	s.announce(ctx, p)
	return s.view(ctx, p, v)
}

// Patch combina los campos presentes con los actuales y conserva el flag active
func (s *promotionService) Patch(ctx context.Context, id string, in PatchPromotionInput) (*PromotionView, error) {
	p, err := s.writable(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.Clock()
	terms := p.Terms()
	if in.Type != nil {
		terms.Type = *in.Type
	}
	if in.PercentOff != nil {
		terms.PercentOff = in.PercentOff
	}
	if in.BuyQty != nil {
		terms.BuyQty = in.BuyQty
	}
	if in.PayQty != nil {
		terms.PayQty = in.PayQty
	}
	if in.EndsAt != nil || in.DurationHours != nil {
		if terms.EndsAt, err = promotion.ResolveEndsAt(in.EndsAt, in.DurationHours, now); err != nil {
			return nil, err
		}
	}

	active := p.Active
	if err := p.Replace(terms, now); err != nil {
		return nil, err
	}
	p.Active = active
	return s.save(ctx, p)
}

func (s *promotionService) Activate(ctx context.Context, id string) (*PromotionView, error) {
	p, err := s.writable(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Activate(s.Clock())
	return s.save(ctx, p)
}

func (s *promotionService) Deactivate(ctx context.Context, id string) (*PromotionView, error) {
	p, err := s.writable(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Deactivate(s.Clock())
	return s.save(ctx, p)
}

// SetImage asigna una imagen ya subida y borra la anterior
func (s *promotionService) SetImage(ctx context.Context, id, imageURL, publicID string) (*PromotionView, error) {
	p, err := s.Promotions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := p.ImagePublicID
	p.SetImage(imageURL, publicID, s.Clock())
	view, err := s.save(ctx, p)
	if err != nil {
		return nil, err
	}
	if previous != publicID {
		s.deleteImage(ctx, previous)
	}
	return view, nil
}

func (s *promotionService) ClearImage(ctx context.Context, id string) (*PromotionView, error) {
	p, err := s.Promotions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := p.ImagePublicID
	p.SetImage("", "", s.Clock())
	view, err := s.save(ctx, p)
	if err != nil {
		return nil, err
	}
	s.deleteImage(ctx, previous)
	return view, nil
}

func (s *promotionService) ListAdmin(ctx context.Context, sessionID string, active *bool) ([]PromotionView, error) {
	views, err := s.list(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return views, nil
	}
	now := s.Clock()
	out := make([]PromotionView, 0, len(views))
	for _, v := range views {
		if v.Promotion.IsLive(now) == *active {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *promotionService) ListLive(ctx context.Context, sessionID string) ([]PromotionView, error) {
	views, err := s.list(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.Clock()
	out := make([]PromotionView, 0, len(views))
	for _, v := range views {
		if v.Promotion.IsLive(now) && v.Variant.Active {
			out = append(out, v)
		}
	}
	return out, nil
}

// list arma las vistas con el precio del día leído en el momento
func (s *promotionService) list(ctx context.Context, sessionID string) ([]PromotionView, error) {
	if _, err := s.Sessions.FindByID(ctx, sessionID); err != nil {
		return nil, err
	}
	promos, err := s.Promotions.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	prices, err := s.Prices.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	byVariant := make(map[string]*pricing.DailyPrice, len(prices))
	for _, dp := range prices {
		byVariant[dp.VariantID] = dp
	}

	ids := make([]string, 0, len(promos))
	for _, p := range promos {
		ids = append(ids, p.VariantID)
	}
	variants, err := s.Variants.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.Clock()
	views := make([]PromotionView, 0, len(promos))
	for _, p := range promos {
		v, ok := variants[p.VariantID]
		if !ok {
			continue
		}
		views = append(views, PromotionView{
			Promotion: p,
			Variant:   v,
			Pricing:   promotion.PriceOf(p, byVariant[p.VariantID], v.UnitSale),
			IsExpired: p.IsExpired(now),
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return catalogLess(views[i].Variant, views[j].Variant)
	})
	return views, nil
}

func (s *promotionService) view(ctx context.Context, p *promotion.Promotion, v *catalog.Variant) (*PromotionView, error) {
	if v == nil {
		var err error
		if v, err = s.Variants.FindByID(ctx, p.VariantID); err != nil {
			return nil, err
		}
	}
	dp, err := s.Prices.FindBySessionVariant(ctx, p.SessionID, p.VariantID)
	if err != nil && !errors.Is(err, pricing.ErrDailyPriceNotFound) {
		return nil, err
	}
	return &PromotionView{
		Promotion: p,
		Variant:   v,
		Pricing:   promotion.PriceOf(p, dp, v.UnitSale),
		IsExpired: p.IsExpired(s.Clock()),
	}, nil
}

func (s *promotionService) writable(ctx context.Context, id string) (*promotion.Promotion, error) {
	p, err := s.Promotions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sess, err := s.Sessions.FindByID(ctx, p.SessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.EnsureWritable(); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *promotionService) save(ctx context.Context, p *promotion.Promotion) (*PromotionView, error) {
	if err := s.Promotions.Update(ctx, p); err != nil {
		return nil, err
	}
	s.announce(ctx, p)
	return s.view(ctx, p, nil)
}

func (s *promotionService) announce(ctx context.Context, p *promotion.Promotion) {
	s.Notifier.Publish(ctx, Event{Name: EventPromotionsUpdated, SessionID: p.SessionID, VariantIDs: []string{p.VariantID}})
}

func (s *promotionService) deleteImage(ctx context.Context, publicID string) {
	if publicID == "" || s.Images == nil {
		return
	}
	if err := s.Images.Delete(ctx, publicID); err != nil {
		s.Logger.Warn("no se pudo borrar la imagen", "public_id", publicID, "error", err)
	}
}
