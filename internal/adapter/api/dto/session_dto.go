package dto

import (
	"errors"
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/lot"
	"github.com/hugohenrick/verduleria-api/internal/domain/session"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/shopspring/decimal"
)

// CreateSessionRequest crea una sesión. Sin dateKey se usa la fecha de hoy.
type CreateSessionRequest struct {
	DateKey    string     `json:"dateKey"`
	DateTarget *time.Time `json:"dateTarget"`
}

// ItemRequest agrega un ítem a la sesión
type ItemRequest struct {
	VariantID  string           `json:"variantId" validate:"required"`
	Origin     string           `json:"origin"`
	PlannedQty *decimal.Decimal `json:"plannedQty"`
	RefPrice   *decimal.Decimal `json:"refPrice"`
}

// ToInput convierte la solicitud. Sin origen el ítem es planificado.
func (r ItemRequest) ToInput() service.ItemInput {
	origin := session.Origin(r.Origin)
	if origin == "" {
		origin = session.OriginPlanificado
	}
	return service.ItemInput{
		VariantID:  r.VariantID,
		Origin:     origin,
		PlannedQty: r.PlannedQty,
		RefPrice:   r.RefPrice,
	}
}

// ItemPatchRequest edita un ítem. Los campos ausentes no cambian;
// clearPlannedQty y clearRefPrice los vuelven a null.
type ItemPatchRequest struct {
	PlannedQty      *decimal.Decimal `json:"plannedQty"`
	RefPrice        *decimal.Decimal `json:"refPrice"`
	ClearPlannedQty bool             `json:"clearPlannedQty"`
	ClearRefPrice   bool             `json:"clearRefPrice"`
}

// ToPatch convierte la solicitud en los cambios del servicio
func (r ItemPatchRequest) ToPatch() service.ItemPatch {
	return service.ItemPatch{
		PlannedQty:      r.PlannedQty,
		RefPrice:        r.RefPrice,
		ClearPlannedQty: r.ClearPlannedQty,
		ClearRefPrice:   r.ClearRefPrice,
	}
}

// BudgetRequest define el presupuesto planificado
type BudgetRequest struct {
	PlannedBudgetReal *decimal.Decimal `json:"plannedBudgetReal"`
	PlannedBudgetRef  *decimal.Decimal `json:"plannedBudgetRef"`
}

// ReserveRequest reserva un ítem por unos minutos
type ReserveRequest struct {
	Minutes int `json:"minutes" validate:"required,min=1,max=120"`
}

// ConfirmRequest registra la compra de un ítem
type ConfirmRequest struct {
	SupplierID string          `json:"supplierId" validate:"required"`
	Qty        decimal.Decimal `json:"qty" validate:"gt=0"`
	UnitCost   decimal.Decimal `json:"unitCost" validate:"gt=0"`
	BuyUnit    string          `json:"buyUnit" validate:"required"`
}

// ToConfirmation convierte la solicitud en la compra del dominio
func (r ConfirmRequest) ToConfirmation() lot.Confirmation {
	return lot.Confirmation{
		SupplierID: r.SupplierID,
		Qty:        r.Qty,
		UnitCost:   r.UnitCost,
		BuyUnit:    catalog.BuyUnit(r.BuyUnit),
	}
}

// ConfirmBatchItem es un ítem de una confirmación múltiple
type ConfirmBatchItem struct {
	ItemID string `json:"itemId" validate:"required"`
	ConfirmRequest
}

// ConfirmBatchRequest confirma varios ítems de una vez
type ConfirmBatchRequest struct {
	Items []ConfirmBatchItem `json:"items" validate:"required,min=1,dive"`
}

// ToInputs convierte la solicitud en las compras del servicio
func (r ConfirmBatchRequest) ToInputs() []service.ConfirmInput {
	out := make([]service.ConfirmInput, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, service.ConfirmInput{ItemID: it.ItemID, Confirmation: it.ToConfirmation()})
	}
	return out
}

// SessionEnvelope envuelve una sesión
type SessionEnvelope struct {
	OK      bool             `json:"ok"`
	Session *session.Session `json:"session"`
}

// SessionListResponse representa la lista de sesiones
type SessionListResponse struct {
	OK       bool               `json:"ok"`
	Sessions []*session.Session `json:"sessions"`
}

// SummaryResponse es el resumen de presupuesto de la sesión
type SummaryResponse struct {
	OK      bool                    `json:"ok"`
	Summary *service.SessionSummary `json:"summary"`
}

// ItemPurchaseResponse acumula lo comprado para el ítem
type ItemPurchaseResponse struct {
	BoughtQty   decimal.Decimal `json:"boughtQty"`
	BoughtTotal decimal.Decimal `json:"boughtTotal"`
}

// ItemResponse es un ítem de la sesión, con su variante en los listados
type ItemResponse struct {
	ID               string               `json:"id"`
	SessionID        string               `json:"sessionId"`
	VariantID        string               `json:"variantId"`
	Origin           session.Origin       `json:"origin"`
	PlannedQty       *decimal.Decimal     `json:"plannedQty"`
	RefPrice         *decimal.Decimal     `json:"refPrice"`
	State            session.ItemState    `json:"state"`
	ReserveExpiresAt *time.Time           `json:"reserveExpiresAt"`
	ReservedBy       string               `json:"reservedBy,omitempty"`
	Purchase         ItemPurchaseResponse `json:"purchase"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
	Variant          *VariantInfo         `json:"variant,omitempty"`
}

// ToItemResponse convierte un ítem del dominio. v puede ser nil.
func ToItemResponse(it *session.Item, v *catalog.Variant) ItemResponse {
	out := ItemResponse{
		ID:               it.ID,
		SessionID:        it.SessionID,
		VariantID:        it.VariantID,
		Origin:           it.Origin,
		PlannedQty:       it.PlannedQty,
		RefPrice:         it.RefPrice,
		State:            it.State,
		ReserveExpiresAt: it.ReserveExpiresAt,
		ReservedBy:       it.ReservedBy,
		Purchase: ItemPurchaseResponse{
			BoughtQty:   it.Purchase.BoughtQty,
			BoughtTotal: it.Purchase.BoughtTotal,
		},
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
	if v != nil {
		info := toVariantInfo(v)
		out.Variant = &info
	}
	return out
}

// ItemEnvelope envuelve un ítem
type ItemEnvelope struct {
	OK   bool         `json:"ok"`
	Item ItemResponse `json:"item"`
}

// ToItemEnvelope convierte un ítem recién escrito
func ToItemEnvelope(it *session.Item) ItemEnvelope {
	return ItemEnvelope{OK: true, Item: ToItemResponse(it, nil)}
}

// ItemListResponse representa los ítems de la sesión
type ItemListResponse struct {
	OK    bool           `json:"ok"`
	Items []ItemResponse `json:"items"`
}

// ToItemListResponse convierte las vistas del servicio
func ToItemListResponse(views []service.ItemView) ItemListResponse {
	out := make([]ItemResponse, 0, len(views))
	for _, v := range views {
		out = append(out, ToItemResponse(v.Item, v.Variant))
	}
	return ItemListResponse{OK: true, Items: out}
}

// PendingResponse explica por qué un precio no quedó LISTO
type PendingResponse struct {
	VariantID string `json:"variantId"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ToPendingResponses convierte los pendientes de un recálculo
func ToPendingResponses(r *service.RecalcReport) []PendingResponse {
	if r == nil {
		return []PendingResponse{}
	}
	out := make([]PendingResponse, 0, len(r.Pending))
	for _, p := range r.Pending {
		pr := PendingResponse{
			VariantID: p.VariantID,
			Status:    string(p.Status),
			Reason:    string(p.Reason),
		}
		var de *domain.Error
		if errors.As(p.Blocker, &de) {
			pr.Code = de.Code
			pr.Message = de.Message
		}
		out = append(out, pr)
	}
	return out
}

func updatedCount(r *service.RecalcReport) int {
	if r == nil {
		return 0
	}
	return r.Updated()
}

// CloseResponse es la sesión cerrada con el recálculo final
type CloseResponse struct {
	OK      bool              `json:"ok"`
	Session *session.Session  `json:"session"`
	Updated int               `json:"updated"`
	Pending []PendingResponse `json:"pending"`
}

// ToCloseResponse convierte el resultado del cierre
func ToCloseResponse(r *service.CloseResult) CloseResponse {
	return CloseResponse{
		OK:      true,
		Session: r.Session,
		Updated: updatedCount(r.Report),
		Pending: ToPendingResponses(r.Report),
	}
}

// ConfirmedItem es un ítem comprado con los lotes que generó
type ConfirmedItem struct {
	Item ItemResponse           `json:"item"`
	Lots []PurchasedLotResponse `json:"lots"`
}

// PurchaseResponse es el resultado de una confirmación. No incluye precios ni datos de proveedor.
type PurchaseResponse struct {
	OK        bool              `json:"ok"`
	Confirmed []ConfirmedItem   `json:"confirmed"`
	Updated   int               `json:"updated"`
	Pending   []PendingResponse `json:"pending"`
}

// ToPurchaseResponse convierte el resultado de una confirmación
func ToPurchaseResponse(r *service.PurchaseResult) PurchaseResponse {
	out := make([]ConfirmedItem, 0, len(r.Confirmed))
	for _, c := range r.Confirmed {
		out = append(out, ConfirmedItem{Item: ToItemResponse(c.Item, nil), Lots: toPurchasedLots(c.Lots)})
	}
	return PurchaseResponse{
		OK:        true,
		Confirmed: out,
		Updated:   updatedCount(r.Report),
		Pending:   ToPendingResponses(r.Report),
	}
}
