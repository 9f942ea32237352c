package repository

import (
	"context"
	"fmt"

	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/database"
	"github.com/shopspring/decimal"
)

// VariantRepository implementa catalog.VariantRepository usando PostgreSQL
type VariantRepository struct {
	db *database.PostgresDB
}

// NewVariantRepository crea una nueva instancia de VariantRepository
func NewVariantRepository(db *database.PostgresDB) catalog.VariantRepository {
	return &VariantRepository{db: db}
}

const variantSelect = `
	SELECT v.id, v.product_id, v.name_variant, v.unit_sale, v.unit_buy, v.conversion,
	       v.image_url, v.image_public_id, v.active, v.created_at, v.updated_at,
	       p.name, p.category
	FROM variants v
	JOIN products p ON p.id = v.product_id
`

// Create implementa catalog.VariantRepository.Create
func (r *VariantRepository) Create(ctx context.Context, v *catalog.Variant) error {
	query := `
		INSERT INTO variants (
			id, product_id, name_variant, unit_sale, unit_buy, conversion,
			image_url, image_public_id, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Q(ctx).Exec(ctx, query,
		v.ID,
		v.ProductID,
		v.NameVariant,
		string(v.UnitSale),
		buyUnitArg(v.UnitBuy),
		v.Conversion,
		v.ImageURL,
		v.ImagePublicID,
		v.Active,
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrDuplicateVariant
		}
		if isForeignKeyViolation(err) {
			return catalog.ErrProductNotFound
		}
		return fmt.Errorf("falla al insertar variante: %w", err)
	}
	return nil
}

// FindByID implementa catalog.VariantRepository.FindByID
func (r *VariantRepository) FindByID(ctx context.Context, id string) (*catalog.Variant, error) {
	v, err := scanVariant(r.db.Q(ctx).QueryRow(ctx, variantSelect+` WHERE v.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, catalog.ErrVariantNotFound
		}
		return nil, fmt.Errorf("falla al buscar variante: %w", err)
	}
	return v, nil
}

// FindByIDs implementa catalog.VariantRepository.FindByIDs
func (r *VariantRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*catalog.Variant, error) {
	out := make(map[string]*catalog.Variant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Q(ctx).Query(ctx, variantSelect+` WHERE v.id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("falla al buscar variantes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("falla al leer variante: %w", err)
		}
		out[v.ID] = v
	}
	return out, rows.Err()
}

// List implementa catalog.VariantRepository.List
func (r *VariantRepository) List(ctx context.Context, f catalog.Filter) ([]*catalog.Variant, error) {
	query := variantSelect + `
		WHERE ($1 = false OR (v.active AND p.active))
		  AND ($2 = '' OR p.name ILIKE '%' || $2 || '%' OR v.name_variant ILIKE '%' || $2 || '%')
		ORDER BY p.name, v.name_variant
	`
	rows, err := r.db.Q(ctx).Query(ctx, query, f.OnlyActive, f.Query)
	if err != nil {
		return nil, fmt.Errorf("falla al listar variantes: %w", err)
	}
	defer rows.Close()

	variants := make([]*catalog.Variant, 0)
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("falla al leer variante: %w", err)
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

// Update implementa catalog.VariantRepository.Update
func (r *VariantRepository) Update(ctx context.Context, v *catalog.Variant) error {
	query := `
		UPDATE variants
		SET name_variant = $2, unit_sale = $3, unit_buy = $4, conversion = $5,
		    image_url = $6, image_public_id = $7, active = $8, updated_at = $9
		WHERE id = $1
	`
	tag, err := r.db.Q(ctx).Exec(ctx, query,
		v.ID,
		v.NameVariant,
		string(v.UnitSale),
		buyUnitArg(v.UnitBuy),
		v.Conversion,
		v.ImageURL,
		v.ImagePublicID,
		v.Active,
		v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrDuplicateVariant
		}
		return fmt.Errorf("falla al actualizar variante: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrVariantNotFound
	}
	return nil
}

func buyUnitArg(u *catalog.BuyUnit) any {
	if u == nil {
		return nil
	}
	return string(*u)
}

func scanVariant(row scanner) (*catalog.Variant, error) {
	v := &catalog.Variant{}
	var unitSale, category string
	var unitBuy *string
	var conversion decimal.NullDecimal
	if err := row.Scan(
		&v.ID,
		&v.ProductID,
		&v.NameVariant,
		&unitSale,
		&unitBuy,
		&conversion,
		&v.ImageURL,
		&v.ImagePublicID,
		&v.Active,
		&v.CreatedAt,
		&v.UpdatedAt,
		&v.ProductName,
		&category,
	); err != nil {
		return nil, err
	}
	v.UnitSale = catalog.SaleUnit(unitSale)
	if unitBuy != nil {
		u := catalog.BuyUnit(*unitBuy)
		v.UnitBuy = &u
	}
	v.Conversion = decimalPtr(conversion)
	v.Category = catalog.Category(category)
	return v, nil
}
