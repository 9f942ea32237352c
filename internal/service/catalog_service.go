package service

import (
	"context"

	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// ProductInput son los campos editables de un producto
type ProductInput struct {
	Name     string
	Category catalog.Category
}

// VariantInput son los campos editables de una variante. ProductID solo se usa al crear.
type VariantInput struct {
	ProductID   string
	NameVariant string
	UnitSale    catalog.SaleUnit
	UnitBuy     *catalog.BuyUnit
	Conversion  *decimal.Decimal
}

// SupplierInput son los campos editables de un proveedor
type SupplierInput struct {
	Nickname string
	Name     string
	Lastname string
}

// CatalogService administra productos, variantes y proveedores
type CatalogService interface {
	ListProducts(ctx context.Context, f catalog.Filter) ([]*catalog.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*catalog.Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*catalog.Product, error)
	SetProductActive(ctx context.Context, id string, active bool) (*catalog.Product, error)

	ListVariants(ctx context.Context, f catalog.Filter) ([]*catalog.Variant, error)
	GetVariant(ctx context.Context, id string) (*catalog.Variant, error)
	CreateVariant(ctx context.Context, in VariantInput) (*catalog.Variant, error)
	UpdateVariant(ctx context.Context, id string, in VariantInput) (*catalog.Variant, error)
	SetVariantActive(ctx context.Context, id string, active bool) (*catalog.Variant, error)
	SetVariantImage(ctx context.Context, id, imageURL, publicID string) (*catalog.Variant, error)
	RemoveVariantImage(ctx context.Context, id string) (*catalog.Variant, error)

	ListSuppliers(ctx context.Context, f catalog.Filter) ([]*catalog.Supplier, error)
	CreateSupplier(ctx context.Context, in SupplierInput) (*catalog.Supplier, error)
	UpdateSupplier(ctx context.Context, id string, in SupplierInput) (*catalog.Supplier, error)
	SetSupplierActive(ctx context.Context, id string, active bool) (*catalog.Supplier, error)
}

type catalogService struct {
	products  catalog.ProductRepository
	variants  catalog.VariantRepository
	suppliers catalog.SupplierRepository
	images    ImageStore
	log       logger.Logger
}

// NewCatalogService crea el servicio de catálogo
func NewCatalogService(
	products catalog.ProductRepository,
	variants catalog.VariantRepository,
	suppliers catalog.SupplierRepository,
	images ImageStore,
	log logger.Logger,
) CatalogService {
	return &catalogService{
		products:  products,
		variants:  variants,
		suppliers: suppliers,
		images:    images,
		log:       log,
	}
}

// ── Productos ────────────────────────────────────────────────────────────────

func (s *catalogService) ListProducts(ctx context.Context, f catalog.Filter) ([]*catalog.Product, error) {
	return s.products.List(ctx, f)
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*catalog.Product, error) {
	p, err := catalog.NewProduct(in.Name, in.Category)
	if err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*catalog.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Update(in.Name, in.Category); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *catalogService) SetProductActive(ctx context.Context, id string, active bool) (*catalog.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		p.Activate()
	} else {
		p.Deactivate()
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ── Variantes ────────────────────────────────────────────────────────────────

func (s *catalogService) ListVariants(ctx context.Context, f catalog.Filter) ([]*catalog.Variant, error) {
	return s.variants.List(ctx, f)
}

func (s *catalogService) GetVariant(ctx context.Context, id string) (*catalog.Variant, error) {
	return s.variants.FindByID(ctx, id)
}

func (s *catalogService) CreateVariant(ctx context.Context, in VariantInput) (*catalog.Variant, error) {
	p, err := s.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, catalog.ErrProductInactive
	}
	v, err := catalog.NewVariant(p.ID, in.NameVariant, in.UnitSale, in.UnitBuy, in.Conversion)
	if err != nil {
		return nil, err
	}
	if err := s.variants.Create(ctx, v); err != nil {
		return nil, err
	}
	v.ProductName = p.Name
	v.Category = p.Category
	return v, nil
}

func (s *catalogService) UpdateVariant(ctx context.Context, id string, in VariantInput) (*catalog.Variant, error) {
	v, err := s.variants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := v.Update(in.NameVariant, in.UnitSale, in.UnitBuy, in.Conversion); err != nil {
		return nil, err
	}
	if err := s.variants.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *catalogService) SetVariantActive(ctx context.Context, id string, active bool) (*catalog.Variant, error) {
	v, err := s.variants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		v.Activate()
	} else {
		v.Deactivate()
	}
	if err := s.variants.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// SetVariantImage asigna una imagen ya subida y borra la anterior
func (s *catalogService) SetVariantImage(ctx context.Context, id, imageURL, publicID string) (*catalog.Variant, error) {
	v, err := s.variants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := v.ImagePublicID
	v.SetImage(imageURL, publicID)
	if err := s.variants.Update(ctx, v); err != nil {
		return nil, err
	}
	if previous != "" && previous != publicID {
		s.deleteImage(ctx, previous)
	}
	return v, nil
}

func (s *catalogService) RemoveVariantImage(ctx context.Context, id string) (*catalog.Variant, error) {
	v, err := s.variants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := v.ImagePublicID
	v.ClearImage()
	if err := s.variants.Update(ctx, v); err != nil {
		return nil, err
	}
	s.deleteImage(ctx, previous)
	return v, nil
}

func (s *catalogService) deleteImage(ctx context.Context, publicID string) {
	if publicID == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, publicID); err != nil {
		s.log.Warn("no se pudo borrar la imagen", "public_id", publicID, "error", err)
	}
}

// ── Proveedores ──────────────────────────────────────────────────────────────

func (s *catalogService) ListSuppliers(ctx context.Context, f catalog.Filter) ([]*catalog.Supplier, error) {
	return s.suppliers.List(ctx, f)
}

func (s *catalogService) CreateSupplier(ctx context.Context, in SupplierInput) (*catalog.Supplier, error) {
	sp, err := catalog.NewSupplier(in.Nickname, in.Name, in.Lastname)
	if err != nil {
		return nil, err
	}
	if err := s.suppliers.Create(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *catalogService) UpdateSupplier(ctx context.Context, id string, in SupplierInput) (*catalog.Supplier, error) {
	sp, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sp.Update(in.Nickname, in.Name, in.Lastname); err != nil {
		return nil, err
	}
	if err := s.suppliers.Update(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *catalogService) SetSupplierActive(ctx context.Context, id string, active bool) (*catalog.Supplier, error) {
	sp, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		sp.Activate()
	} else {
		sp.Deactivate()
	}
	if err := s.suppliers.Update(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}
