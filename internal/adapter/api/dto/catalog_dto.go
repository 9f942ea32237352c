package dto

import (
	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/shopspring/decimal"
)

// ProductRequest representa los datos de un producto
type ProductRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Category string `json:"category" validate:"required"`
}

// ToInput convierte la solicitud en la entrada del servicio
func (r ProductRequest) ToInput() service.ProductInput {
	return service.ProductInput{Name: r.Name, Category: catalog.Category(r.Category)}
}

// VariantRequest representa los datos de una variante. productId solo se usa al crear.
type VariantRequest struct {
	ProductID   string           `json:"productId"`
	NameVariant string           `json:"nameVariant" validate:"required,max=120"`
	UnitSale    string           `json:"unitSale" validate:"required"`
	UnitBuy     *string          `json:"unitBuy"`
	Conversion  *decimal.Decimal `json:"conversion"`
}

// ToInput convierte la solicitud en la entrada del servicio
func (r VariantRequest) ToInput() service.VariantInput {
	in := service.VariantInput{
		ProductID:   r.ProductID,
		NameVariant: r.NameVariant,
		UnitSale:    catalog.SaleUnit(r.UnitSale),
		Conversion:  r.Conversion,
	}
	if r.UnitBuy != nil && *r.UnitBuy != "" {
		u := catalog.BuyUnit(*r.UnitBuy)
		in.UnitBuy = &u
	}
	return in
}

// SupplierRequest representa los datos de un proveedor
type SupplierRequest struct {
	Nickname string `json:"nickname" validate:"required,max=80"`
	Name     string `json:"name" validate:"max=80"`
	Lastname string `json:"lastname" validate:"max=80"`
}

// ToInput convierte la solicitud en la entrada del servicio
func (r SupplierRequest) ToInput() service.SupplierInput {
	return service.SupplierInput{Nickname: r.Nickname, Name: r.Name, Lastname: r.Lastname}
}

// ImageRequest asigna una imagen ya subida
type ImageRequest struct {
	ImageURL string `json:"imageUrl" validate:"required,url"`
	PublicID string `json:"publicId" validate:"required"`
}

// ProductEnvelope envuelve un producto
type ProductEnvelope struct {
	OK      bool             `json:"ok"`
	Product *catalog.Product `json:"product"`
}

// ProductListResponse representa la lista de productos
type ProductListResponse struct {
	OK       bool               `json:"ok"`
	Products []*catalog.Product `json:"products"`
}

// VariantEnvelope envuelve una variante
type VariantEnvelope struct {
	OK      bool             `json:"ok"`
	Variant *catalog.Variant `json:"variant"`
}

// VariantListResponse representa la lista de variantes
type VariantListResponse struct {
	OK       bool               `json:"ok"`
	Variants []*catalog.Variant `json:"variants"`
}

// SupplierEnvelope envuelve un proveedor
type SupplierEnvelope struct {
	OK       bool              `json:"ok"`
	Supplier *catalog.Supplier `json:"supplier"`
}

// SupplierListResponse representa la lista de proveedores
type SupplierListResponse struct {
	OK        bool                `json:"ok"`
	Suppliers []*catalog.Supplier `json:"suppliers"`
}

// UploadResponse es la imagen recién subida
type UploadResponse struct {
	OK       bool   `json:"ok"`
	ImageURL string `json:"imageUrl"`
	PublicID string `json:"publicId"`
}
