// Package promotion modela descuentos temporales sobre el precio del día
package promotion

import (
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Type es el tipo de promoción
type Type string

const (
	TypePercentOff Type = "PERCENT_OFF"
	TypeBOGO       Type = "BOGO"
)

// Límites de duración en horas
const (
	MinDurationHours = 1
	MaxDurationHours = 168
)

var maxPercentOff = decimal.NewFromInt(95)

var (
	ErrInvalidType       = domain.NewValidation("INVALID_TYPE", "tipo de promoción inválido")
	ErrInvalidPercentOff = domain.NewValidation("INVALID_PERCENT_OFF", "percentOff debe ser mayor a 0 y menor a 95")
	ErrInvalidBuyQty     = domain.NewValidation("INVALID_BUY_QTY", "buyQty debe ser mayor a 1")
	ErrInvalidPayQty     = domain.NewValidation("INVALID_PAY_QTY", "payQty debe ser al menos 1 y menor a buyQty")
	ErrInvalidEndsAt     = domain.NewValidation("INVALID_ENDS_AT", "endsAt debe ser posterior a ahora")
	ErrInvalidDuration   = domain.NewValidation("INVALID_DURATION", "la duración debe estar entre 1 y 168 horas")
	ErrAmbiguousEnd      = domain.NewValidation("AMBIGUOUS_END", "indique endsAt o durationHours, no ambos")
	ErrPromotionNotFound = domain.NewNotFound("PROMOTION_NOT_FOUND", "promoción no encontrada")
)

// Promotion es un descuento sobre una variante en una sesión. Única por (sessionId, variantId).
type Promotion struct {
	ID            string           `json:"id"`
	SessionID     string           `json:"sessionId"`
	VariantID     string           `json:"variantId"`
	Type          Type             `json:"type"`
	PercentOff    *decimal.Decimal `json:"percentOff"`
	BuyQty        *int             `json:"buyQty"`
	PayQty        *int             `json:"payQty"`
	EndsAt        time.Time        `json:"endsAt"`
	Active        bool             `json:"active"`
	ImageURL      string           `json:"imageUrl"`
	ImagePublicID string           `json:"imagePublicId"`
	CreatedBy     string           `json:"createdBy"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// Terms son los campos que definen el descuento
type Terms struct {
	Type       Type
	PercentOff *decimal.Decimal
	BuyQty     *int
	PayQty     *int
	EndsAt     time.Time
}

// Validate valida los campos según el tipo
func (t Terms) Validate(now time.Time) error {
	switch t.Type {
	case TypePercentOff:
		if t.PercentOff == nil || !t.PercentOff.IsPositive() || !t.PercentOff.LessThan(maxPercentOff) {
			return ErrInvalidPercentOff
		}
	case TypeBOGO:
		if t.BuyQty == nil || *t.BuyQty <= 1 {
			return ErrInvalidBuyQty
		}
		if t.PayQty == nil || *t.PayQty < 1 || *t.PayQty >= *t.BuyQty {
			return ErrInvalidPayQty
		}
	default:
		return ErrInvalidType
	}
	if !t.EndsAt.After(now) {
		return ErrInvalidEndsAt
	}
	return nil
}

// normalized deja solo los campos del tipo elegido
func (t Terms) normalized() Terms {
	if t.Type == TypePercentOff {
		t.BuyQty, t.PayQty = nil, nil
	} else {
		t.PercentOff = nil
	}
	return t
}

// ResolveEndsAt obtiene el fin a partir de endsAt o de una duración en horas
func ResolveEndsAt(endsAt *time.Time, durationHours *int, now time.Time) (time.Time, error) {
	switch {
	case endsAt != nil && durationHours != nil:
		return time.Time{}, ErrAmbiguousEnd
	case endsAt != nil:
		return *endsAt, nil
	case durationHours != nil:
		h := *durationHours
		if h < MinDurationHours || h > MaxDurationHours {
			return time.Time{}, ErrInvalidDuration
		}
		return now.Add(time.Duration(h) * time.Hour), nil
	}
	return time.Time{}, ErrInvalidEndsAt
}

// NewPromotion crea una promoción activa
func NewPromotion(sessionID, variantID string, terms Terms, createdBy string, now time.Time) (*Promotion, error) {
	p := &Promotion{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		VariantID: variantID,
		CreatedBy: createdBy,
		CreatedAt: now,
	}
	if err := p.Replace(terms, now); err != nil {
		return nil, err
	}
	return p, nil
}

// Replace reemplaza los términos y reactiva la promoción (semántica de upsert)
func (p *Promotion) Replace(terms Terms, now time.Time) error {
	if err := terms.Validate(now); err != nil {
		return err
	}
	terms = terms.normalized()
	p.Type = terms.Type
	p.PercentOff = terms.PercentOff
	p.BuyQty = terms.BuyQty
	p.PayQty = terms.PayQty
	p.EndsAt = terms.EndsAt
	p.Active = true
	p.UpdatedAt = now
	return nil
}

// Terms devuelve los términos actuales
func (p *Promotion) Terms() Terms {
	return Terms{Type: p.Type, PercentOff: p.PercentOff, BuyQty: p.BuyQty, PayQty: p.PayQty, EndsAt: p.EndsAt}
}

// IsExpired se deriva de endsAt; nunca se persiste
func (p *Promotion) IsExpired(now time.Time) bool {
	return !p.EndsAt.After(now)
}

// IsLive indica si la promoción aplica ahora
func (p *Promotion) IsLive(now time.Time) bool {
	return p.Active && !p.IsExpired(now)
}

// Activate reactiva la promoción. No cambia el vencimiento.
func (p *Promotion) Activate(now time.Time) {
	p.Active = true
	p.UpdatedAt = now
}

// Deactivate suspende la promoción manualmente
func (p *Promotion) Deactivate(now time.Time) {
	p.Active = false
	p.UpdatedAt = now
}

// SetImage asigna la imagen de la promoción
func (p *Promotion) SetImage(url, publicID string, now time.Time) {
	p.ImageURL = url
	p.ImagePublicID = publicID
	p.UpdatedAt = now
}
