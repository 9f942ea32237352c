package dto

import (
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/lot"
	"github.com/hugohenrick/verduleria-api/internal/domain/pricing"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/shopspring/decimal"
)

// ManualPriceRequest fija a mano el precio de un precio pendiente
type ManualPriceRequest struct {
	SalePrice decimal.Decimal `json:"salePrice" validate:"gt=0"`
	Note      string          `json:"note" validate:"max=500"`
}

// ConversionRequest corrige la conversión de una variante. sessionId es opcional.
type ConversionRequest struct {
	Conversion *decimal.Decimal `json:"conversion"`
	SessionID  string           `json:"sessionId"`
}

// MarginRequest guarda una nueva versión del margen
type MarginRequest struct {
	MarginPct decimal.Decimal `json:"marginPct"`
}

// VariantInfo son los datos de la variante que acompañan a un precio
type VariantInfo struct {
	ProductName string           `json:"productName"`
	Category    catalog.Category `json:"category"`
	NameVariant string           `json:"nameVariant"`
	ImageURL    string           `json:"imageUrl"`
	Conversion  *decimal.Decimal `json:"conversion,omitempty"`
	UnitBuy     *catalog.BuyUnit `json:"unitBuy,omitempty"`
}

// AdminPriceResponse es un precio diario completo, con costos y margen
type AdminPriceResponse struct {
	*pricing.DailyPrice
	Variant VariantInfo `json:"variant"`
}

// VendorPriceResponse es un precio diario sin costos, lotes ni margen
type VendorPriceResponse struct {
	ID          string           `json:"id"`
	SessionID   string           `json:"sessionId"`
	VariantID   string           `json:"variantId"`
	ProductName string           `json:"productName"`
	Category    catalog.Category `json:"category"`
	NameVariant string           `json:"nameVariant"`
	ImageURL    string           `json:"imageUrl"`
	UnitSale    catalog.SaleUnit `json:"unitSale"`
	SalePrice   *decimal.Decimal `json:"salePrice"`
	Status      pricing.Status   `json:"status"`
	Movement    pricing.Movement `json:"movement"`
	Delta       *decimal.Decimal `json:"delta"`
	ComputedAt  time.Time        `json:"computedAt"`
}

// AdminPriceListResponse representa los precios de la sesión para administradores
type AdminPriceListResponse struct {
	OK     bool                 `json:"ok"`
	Prices []AdminPriceResponse `json:"prices"`
}

// VendorPriceListResponse representa los precios de la sesión para vendedores
type VendorPriceListResponse struct {
	OK     bool                  `json:"ok"`
	Prices []VendorPriceResponse `json:"prices"`
}

// AdminPriceEnvelope envuelve un precio completo
type AdminPriceEnvelope struct {
	OK    bool               `json:"ok"`
	Price AdminPriceResponse `json:"price"`
}

// BoardResponse es el tablero de vendedores
type BoardResponse struct {
	OK   bool               `json:"ok"`
	Rows []service.BoardRow `json:"rows"`
}

// PurchasedRow es un precio con los lotes que lo originaron
type PurchasedRow struct {
	AdminPriceResponse
	Lots []*lot.Lot `json:"lots"`
}

// PurchasedResponse lista lo comprado en la sesión con su precio
type PurchasedResponse struct {
	OK   bool           `json:"ok"`
	Rows []PurchasedRow `json:"rows"`
}

// RecalcResponse es el resultado de un recálculo
type RecalcResponse struct {
	OK      bool              `json:"ok"`
	Updated int               `json:"updated"`
	Pending []PendingResponse `json:"pending"`
}

// ConversionResponse es la variante corregida y, si había sesión, su precio recalculado
type ConversionResponse struct {
	OK      bool                `json:"ok"`
	Variant *catalog.Variant    `json:"variant"`
	Price   *AdminPriceResponse `json:"price"`
}

// MarginResponse es la versión vigente del margen
type MarginResponse struct {
	OK        bool            `json:"ok"`
	MarginPct decimal.Decimal `json:"marginPct"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ToMarginResponse convierte una versión del margen
func ToMarginResponse(m *pricing.Margin) MarginResponse {
	return MarginResponse{OK: true, MarginPct: m.Pct, Version: m.Version, UpdatedAt: m.UpdatedAt}
}

func toVariantInfo(v *catalog.Variant) VariantInfo {
	if v == nil {
		return VariantInfo{}
	}
	return VariantInfo{
		ProductName: v.ProductName,
		Category:    v.Category,
		NameVariant: v.NameVariant,
		ImageURL:    v.ImageURL,
		Conversion:  v.Conversion,
		UnitBuy:     v.UnitBuy,
	}
}

// ToAdminPrice convierte una vista del servicio en la respuesta completa
func ToAdminPrice(v service.PriceView) AdminPriceResponse {
	return AdminPriceResponse{DailyPrice: v.DailyPrice, Variant: toVariantInfo(v.Variant)}
}

// ToVendorPrice convierte una vista del servicio dejando afuera todo dato de costo
func ToVendorPrice(v service.PriceView) VendorPriceResponse {
	dp := v.DailyPrice
	out := VendorPriceResponse{
		ID:         dp.ID,
		SessionID:  dp.SessionID,
		VariantID:  dp.VariantID,
		UnitSale:   dp.UnitSale,
		SalePrice:  dp.SalePrice,
		Status:     dp.Status,
		Movement:   dp.Movement,
		Delta:      dp.Delta,
		ComputedAt: dp.ComputedAt,
	}
	if v.Variant != nil {
		out.ProductName = v.Variant.ProductName
		out.Category = v.Variant.Category
		out.NameVariant = v.Variant.NameVariant
		out.ImageURL = v.Variant.ImageURL
	}
	return out
}

// ToAdminPriceList convierte las vistas del servicio
func ToAdminPriceList(views []service.PriceView) AdminPriceListResponse {
	out := make([]AdminPriceResponse, 0, len(views))
	for _, v := range views {
		out = append(out, ToAdminPrice(v))
	}
	return AdminPriceListResponse{OK: true, Prices: out}
}

// ToVendorPriceList convierte las vistas del servicio para vendedores
func ToVendorPriceList(views []service.PriceView) VendorPriceListResponse {
	out := make([]VendorPriceResponse, 0, len(views))
	for _, v := range views {
		out = append(out, ToVendorPrice(v))
	}
	return VendorPriceListResponse{OK: true, Prices: out}
}

// ToPurchasedResponse convierte las vistas con lotes
func ToPurchasedResponse(views []service.PurchasedView) PurchasedResponse {
	out := make([]PurchasedRow, 0, len(views))
	for _, v := range views {
		out = append(out, PurchasedRow{AdminPriceResponse: ToAdminPrice(v.PriceView), Lots: List(v.Lots)})
	}
	return PurchasedResponse{OK: true, Rows: out}
}

// ToRecalcResponse convierte el reporte de recálculo
func ToRecalcResponse(r *service.RecalcReport) RecalcResponse {
	return RecalcResponse{OK: true, Updated: updatedCount(r), Pending: ToPendingResponses(r)}
}
