package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyVariantName  = domain.NewValidation("EMPTY_NAME", "el nombre de la variante no puede ser vacío")
	ErrEmptyProductID    = domain.NewValidation("EMPTY_PRODUCT", "la variante debe pertenecer a un producto")
	ErrInvalidSaleUnit   = domain.NewValidation("INVALID_UNIT_SALE", "unidad de venta inválida")
	ErrInvalidBuyUnit    = domain.NewValidation("INVALID_UNIT_BUY", "unidad de compra inválida")
	ErrInvalidConversion = domain.NewValidation("INVALID_CONVERSION", "la conversión debe ser mayor a cero")
	ErrVariantNotFound   = domain.NewNotFound("VARIANT_NOT_FOUND", "variante no encontrada")
	ErrVariantInactive   = domain.NewStateConflict("VARIANT_INACTIVE", "la variante está dada de baja")
	ErrDuplicateVariant  = domain.NewStateConflict("DUPLICATE_VARIANT", "ya existe una variante con ese nombre para el producto")
	ErrProductInactive   = domain.NewStateConflict("PRODUCT_INACTIVE", "el producto está dado de baja")
)

// Variant es la unidad vendible de un producto. Conversion indica cuántas
// unidades de venta rinde una unidad de compra.
type Variant struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"productId"`
	NameVariant   string           `json:"nameVariant"`
	UnitSale      SaleUnit         `json:"unitSale"`
	UnitBuy       *BuyUnit         `json:"unitBuy"`
	Conversion    *decimal.Decimal `json:"conversion"`
	ImageURL      string           `json:"imageUrl"`
	ImagePublicID string           `json:"imagePublicId"`
	Active        bool             `json:"active"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`

	// Datos del producto, completados en lecturas
	ProductName string   `json:"productName,omitempty"`
	Category    Category `json:"category,omitempty"`
}

// NewVariant crea una nueva variante activa
func NewVariant(productID, nameVariant string, unitSale SaleUnit, unitBuy *BuyUnit, conversion *decimal.Decimal) (*Variant, error) {
	if productID == "" {
		return nil, ErrEmptyProductID
	}
	v := &Variant{
		ID:        uuid.New().String(),
		ProductID: productID,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := v.Update(nameVariant, unitSale, unitBuy, conversion); err != nil {
		return nil, err
	}
	return v, nil
}

// Update cambia nombre, unidades y conversión
func (v *Variant) Update(nameVariant string, unitSale SaleUnit, unitBuy *BuyUnit, conversion *decimal.Decimal) error {
	nameVariant = strings.TrimSpace(nameVariant)
	if nameVariant == "" {
		return ErrEmptyVariantName
	}
	if !unitSale.Valid() {
		return ErrInvalidSaleUnit
	}
	if unitBuy != nil && !unitBuy.Valid() {
		return ErrInvalidBuyUnit
	}
	if err := validConversion(conversion); err != nil {
		return err
	}
	v.NameVariant = nameVariant
	v.UnitSale = unitSale
	v.UnitBuy = unitBuy
	v.Conversion = conversion
	v.UpdatedAt = time.Now()
	return nil
}

// SetConversion reemplaza solo la conversión
func (v *Variant) SetConversion(conversion *decimal.Decimal) error {
	if err := validConversion(conversion); err != nil {
		return err
	}
	v.Conversion = conversion
	v.UpdatedAt = time.Now()
	return nil
}

// SetImage asigna la imagen de la variante
func (v *Variant) SetImage(url, publicID string) {
	v.ImageURL = url
	v.ImagePublicID = publicID
	v.UpdatedAt = time.Now()
}

// ClearImage quita la imagen
func (v *Variant) ClearImage() {
	v.SetImage("", "")
}

// NeedsConversion indica si el precio automático depende de la conversión
func (v *Variant) NeedsConversion() bool {
	return v.UnitBuy != nil && !v.UnitBuy.SameAs(v.UnitSale)
}

// HasConversion indica si la conversión está cargada
func (v *Variant) HasConversion() bool {
	return v.Conversion != nil && v.Conversion.IsPositive()
}

// Activate da de alta la variante
func (v *Variant) Activate() {
	v.Active = true
	v.UpdatedAt = time.Now()
}

// Deactivate da de baja la variante
func (v *Variant) Deactivate() {
	v.Active = false
	v.UpdatedAt = time.Now()
}

func validConversion(conversion *decimal.Decimal) error {
	if conversion != nil && !conversion.IsPositive() {
		return ErrInvalidConversion
	}
	return nil
}
