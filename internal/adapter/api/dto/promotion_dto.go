package dto

import (
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/promotion"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/shopspring/decimal"
)

// UpsertPromotionRequest crea o reemplaza la promoción de una variante.
// Se indica endsAt o durationHours, no ambos.
type UpsertPromotionRequest struct {
	SessionID     string           `json:"sessionId" validate:"required"`
	VariantID     string           `json:"variantId" validate:"required"`
	Type          string           `json:"type" validate:"required"`
	PercentOff    *decimal.Decimal `json:"percentOff"`
	BuyQty        *int             `json:"buyQty"`
	PayQty        *int             `json:"payQty"`
	EndsAt        *time.Time       `json:"endsAt"`
	DurationHours *int             `json:"durationHours"`
}

// ToInput convierte la solicitud en la entrada del servicio
func (r UpsertPromotionRequest) ToInput() service.UpsertPromotionInput {
	return service.UpsertPromotionInput{
		SessionID:     r.SessionID,
		VariantID:     r.VariantID,
		Type:          promotion.Type(r.Type),
		PercentOff:    r.PercentOff,
		BuyQty:        r.BuyQty,
		PayQty:        r.PayQty,
		EndsAt:        r.EndsAt,
		DurationHours: r.DurationHours,
	}
}

// PatchPromotionRequest cambia solo los campos presentes
type PatchPromotionRequest struct {
	Type          *string          `json:"type"`
	PercentOff    *decimal.Decimal `json:"percentOff"`
	BuyQty        *int             `json:"buyQty"`
	PayQty        *int             `json:"payQty"`
	EndsAt        *time.Time       `json:"endsAt"`
	DurationHours *int             `json:"durationHours"`
}

// ToInput convierte la solicitud en la entrada del servicio
func (r PatchPromotionRequest) ToInput() service.PatchPromotionInput {
	in := service.PatchPromotionInput{
		PercentOff:    r.PercentOff,
		BuyQty:        r.BuyQty,
		PayQty:        r.PayQty,
		EndsAt:        r.EndsAt,
		DurationHours: r.DurationHours,
	}
	if r.Type != nil {
		t := promotion.Type(*r.Type)
		in.Type = &t
	}
	return in
}

// AdminPromotionResponse es la promoción completa con su precio en vivo
type AdminPromotionResponse struct {
	*promotion.Promotion
	ProductName string            `json:"productName"`
	Category    catalog.Category  `json:"category"`
	NameVariant string            `json:"nameVariant"`
	Pricing     promotion.Pricing `json:"pricing"`
	IsExpired   bool              `json:"isExpired"`
}

// VendorPromotionResponse es la promoción que ven vendedores y la pantalla pública
type VendorPromotionResponse struct {
	ID          string            `json:"id"`
	SessionID   string            `json:"sessionId"`
	VariantID   string            `json:"variantId"`
	ProductName string            `json:"productName"`
	Category    catalog.Category  `json:"category"`
	NameVariant string            `json:"nameVariant"`
	Type        promotion.Type    `json:"type"`
	PercentOff  *decimal.Decimal  `json:"percentOff"`
	BuyQty      *int              `json:"buyQty"`
	PayQty      *int              `json:"payQty"`
	EndsAt      time.Time         `json:"endsAt"`
	ImageURL    string            `json:"imageUrl"`
	Pricing     promotion.Pricing `json:"pricing"`
}

// AdminPromotionEnvelope envuelve una promoción
type AdminPromotionEnvelope struct {
	OK        bool                   `json:"ok"`
	Promotion AdminPromotionResponse `json:"promotion"`
}

// AdminPromotionListResponse representa las promociones para administradores
type AdminPromotionListResponse struct {
	OK         bool                     `json:"ok"`
	Promotions []AdminPromotionResponse `json:"promotions"`
}

// VendorPromotionListResponse representa las promociones vigentes
type VendorPromotionListResponse struct {
	OK         bool                      `json:"ok"`
	Promotions []VendorPromotionResponse `json:"promotions"`
}

// ToAdminPromotion convierte una vista del servicio
func ToAdminPromotion(v service.PromotionView) AdminPromotionResponse {
	out := AdminPromotionResponse{Promotion: v.Promotion, Pricing: v.Pricing, IsExpired: v.IsExpired}
	if v.Variant != nil {
		out.ProductName = v.Variant.ProductName
		out.Category = v.Variant.Category
		out.NameVariant = v.Variant.NameVariant
	}
	return out
}

// ToVendorPromotion convierte una vista del servicio sin datos internos
func ToVendorPromotion(v service.PromotionView) VendorPromotionResponse {
	p := v.Promotion
	out := VendorPromotionResponse{
		ID:         p.ID,
		SessionID:  p.SessionID,
		VariantID:  p.VariantID,
		Type:       p.Type,
		PercentOff: p.PercentOff,
		BuyQty:     p.BuyQty,
		PayQty:     p.PayQty,
		EndsAt:     p.EndsAt,
		ImageURL:   p.ImageURL,
		Pricing:    v.Pricing,
	}
	if v.Variant != nil {
		out.ProductName = v.Variant.ProductName
		out.Category = v.Variant.Category
		out.NameVariant = v.Variant.NameVariant
		if out.ImageURL == "" {
			out.ImageURL = v.Variant.ImageURL
		}
	}
	return out
}

// ToAdminPromotionList convierte las vistas del servicio
func ToAdminPromotionList(views []service.PromotionView) AdminPromotionListResponse {
	out := make([]AdminPromotionResponse, 0, len(views))
	for _, v := range views {
		out = append(out, ToAdminPromotion(v))
	}
	return AdminPromotionListResponse{OK: true, Promotions: out}
}

// ToVendorPromotionList convierte las vistas vigentes
func ToVendorPromotionList(views []service.PromotionView) VendorPromotionListResponse {
	out := make([]VendorPromotionResponse, 0, len(views))
	for _, v := range views {
		out = append(out, ToVendorPromotion(v))
	}
	return VendorPromotionListResponse{OK: true, Promotions: out}
}
