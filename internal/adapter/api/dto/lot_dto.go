package dto

import (
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/lot"
	"github.com/hugohenrick/verduleria-api/internal/domain/pricing"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/shopspring/decimal"
)

// WeighRequest registra el peso neto de un lote por CAJA
type WeighRequest struct {
	NetWeightKg decimal.Decimal `json:"netWeightKg" validate:"gt=0"`
}

// PaymentRequest define la forma de pago de un lote
type PaymentRequest struct {
	PaymentMethod string `json:"paymentMethod"`
	PaymentNote   string `json:"paymentNote" validate:"max=500"`
}

// PaymentGroupRequest define la forma de pago de todos los lotes de un proveedor para una variante
type PaymentGroupRequest struct {
	SessionID     string `json:"sessionId" validate:"required"`
	VariantID     string `json:"variantId" validate:"required"`
	SupplierID    string `json:"supplierId" validate:"required"`
	PaymentMethod string `json:"paymentMethod"`
	PaymentNote   string `json:"paymentNote" validate:"max=500"`
}

// Group devuelve la agrupación de lotes a actualizar
func (r PaymentGroupRequest) Group() lot.PaymentGroup {
	return lot.PaymentGroup{SessionID: r.SessionID, VariantID: r.VariantID, SupplierID: r.SupplierID}
}

// LotResponse es un lote con costo, proveedor y pago. Solo para administradores.
type LotResponse struct {
	ID            string            `json:"id"`
	SessionID     string            `json:"sessionId"`
	VariantID     string            `json:"variantId"`
	ItemID        string            `json:"itemId"`
	SupplierID    string            `json:"supplierId"`
	Qty           decimal.Decimal   `json:"qty"`
	UnitCost      decimal.Decimal   `json:"unitCost"`
	Total         decimal.Decimal   `json:"total"`
	BuyUnit       catalog.BuyUnit   `json:"buyUnit"`
	PaymentMethod lot.PaymentMethod `json:"paymentMethod"`
	PaymentNote   string            `json:"paymentNote"`
	BoughtBy      string            `json:"boughtBy"`
	WeighedAt     *time.Time        `json:"weighedAt"`
	NetWeightKg   *decimal.Decimal  `json:"netWeightKg"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// ToLotResponse convierte un lote del dominio
func ToLotResponse(l *lot.Lot) LotResponse {
	return LotResponse{
		ID:            l.ID,
		SessionID:     l.SessionID,
		VariantID:     l.VariantID,
		ItemID:        l.ItemID,
		SupplierID:    l.SupplierID,
		Qty:           l.Qty,
		UnitCost:      l.UnitCost,
		Total:         l.Total(),
		BuyUnit:       l.BuyUnit,
		PaymentMethod: l.PaymentMethod,
		PaymentNote:   l.PaymentNote,
		BoughtBy:      l.BoughtBy,
		WeighedAt:     l.WeighedAt,
		NetWeightKg:   l.NetWeightKg,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

// PurchasedLotResponse identifica un lote recién creado, sin costo ni proveedor
type PurchasedLotResponse struct {
	ID      string          `json:"id"`
	Qty     decimal.Decimal `json:"qty"`
	BuyUnit catalog.BuyUnit `json:"buyUnit"`
}

func toPurchasedLots(lots []*lot.Lot) []PurchasedLotResponse {
	out := make([]PurchasedLotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, PurchasedLotResponse{ID: l.ID, Qty: l.Qty, BuyUnit: l.BuyUnit})
	}
	return out
}

// LotEnvelope envuelve un lote
type LotEnvelope struct {
	OK  bool        `json:"ok"`
	Lot LotResponse `json:"lot"`
}

// LotListResponse representa los lotes de la sesión
type LotListResponse struct {
	OK   bool          `json:"ok"`
	Lots []LotResponse `json:"lots"`
}

// ToLotListResponse convierte los lotes de la sesión
func ToLotListResponse(lots []*lot.Lot) LotListResponse {
	out := make([]LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, ToLotResponse(l))
	}
	return LotListResponse{OK: true, Lots: out}
}

// WeighedPriceResponse es el precio de la variante después del pesaje
type WeighedPriceResponse struct {
	VariantID     string                `json:"variantId"`
	Status        pricing.Status        `json:"status"`
	PendingReason pricing.PendingReason `json:"pendingReason"`
	CostFinal     *decimal.Decimal      `json:"costFinal"`
	SalePrice     *decimal.Decimal      `json:"salePrice"`
	Movement      pricing.Movement      `json:"movement"`
	Delta         *decimal.Decimal      `json:"delta"`
}

// WeighResponse es el lote pesado y el precio recalculado
type WeighResponse struct {
	OK      bool                  `json:"ok"`
	Lot     LotResponse           `json:"lot"`
	Price   *WeighedPriceResponse `json:"price"`
	Pending []PendingResponse     `json:"pending"`
}

// ToWeighResponse convierte el resultado del pesaje
func ToWeighResponse(r *service.WeighResult) WeighResponse {
	resp := WeighResponse{OK: true, Lot: ToLotResponse(r.Lot), Pending: ToPendingResponses(r.Report)}
	if dp := r.Report.PriceFor(r.Lot.VariantID); dp != nil {
		resp.Price = &WeighedPriceResponse{
			VariantID:     dp.VariantID,
			Status:        dp.Status,
			PendingReason: dp.PendingReason,
			CostFinal:     dp.CostFinal,
			SalePrice:     dp.SalePrice,
			Movement:      dp.Movement,
			Delta:         dp.Delta,
		}
	}
	return resp
}

// PaymentGroupResponse informa cuántos lotes cambiaron
type PaymentGroupResponse struct {
	OK      bool  `json:"ok"`
	Updated int64 `json:"updated"`
}
