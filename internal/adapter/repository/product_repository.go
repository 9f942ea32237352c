package repository

import (
	"context"
	"fmt"

	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/database"
)

// ProductRepository implementa catalog.ProductRepository usando PostgreSQL
type ProductRepository struct {
	db *database.PostgresDB
}

// NewProductRepository crea una nueva instancia de ProductRepository
func NewProductRepository(db *database.PostgresDB) catalog.ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, category, active, created_at, updated_at`

// Create implementa catalog.ProductRepository.Create
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	query := `INSERT INTO products (` + productColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Q(ctx).Exec(ctx, query,
		p.ID, p.Name, string(p.Category), p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrDuplicateProduct
		}
		return fmt.Errorf("falla al insertar producto: %w", err)
	}
	return nil
}

// FindByID implementa catalog.ProductRepository.FindByID
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.Q(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("falla al buscar producto: %w", err)
	}
	return p, nil
}

// List implementa catalog.ProductRepository.List
func (r *ProductRepository) List(ctx context.Context, f catalog.Filter) ([]*catalog.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = false OR active)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY name
	`
	rows, err := r.db.Q(ctx).Query(ctx, query, f.OnlyActive, f.Query)
	if err != nil {
		return nil, fmt.Errorf("falla al listar productos: %w", err)
	}
	defer rows.Close()

	products := make([]*catalog.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("falla al leer producto: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Update implementa catalog.ProductRepository.Update
func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	query := `UPDATE products SET name = $2, category = $3, active = $4, updated_at = $5 WHERE id = $1`
	tag, err := r.db.Q(ctx).Exec(ctx, query, p.ID, p.Name, string(p.Category), p.Active, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrDuplicateProduct
		}
		return fmt.Errorf("falla al actualizar producto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

func scanProduct(row scanner) (*catalog.Product, error) {
	p := &catalog.Product{}
	var category string
	if err := row.Scan(&p.ID, &p.Name, &category, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Category = catalog.Category(category)
	return p, nil
}
