package repository

import (
	"context"
	"fmt"

	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/database"
)

// SupplierRepository implementa catalog.SupplierRepository usando PostgreSQL
type SupplierRepository struct {
	db *database.PostgresDB
}

// NewSupplierRepository crea una nueva instancia de SupplierRepository
func NewSupplierRepository(db *database.PostgresDB) catalog.SupplierRepository {
	return &SupplierRepository{db: db}
}

const supplierColumns = `id, nickname, name, lastname, active, created_at, updated_at`

func (r *SupplierRepository) Create(ctx context.Context, s *catalog.Supplier) error {
	query := `INSERT INTO suppliers (` + supplierColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Q(ctx).Exec(ctx, query,
		s.ID, s.Nickname, s.Name, s.Lastname, s.Active, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrDuplicateSupplier
		}
		return fmt.Errorf("falla al insertar proveedor: %w", err)
	}
	return nil
}

func (r *SupplierRepository) FindByID(ctx context.Context, id string) (*catalog.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`
	s, err := scanSupplier(r.db.Q(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, catalog.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("falla al buscar proveedor: %w", err)
	}
	return s, nil
}

func (r *SupplierRepository) List(ctx context.Context, f catalog.Filter) ([]*catalog.Supplier, error) {
	query := `
		SELECT ` + supplierColumns + `
		FROM suppliers
		WHERE ($1 = false OR active)
		  AND ($2 = '' OR nickname ILIKE '%' || $2 || '%' OR name ILIKE '%' || $2 || '%')
		ORDER BY nickname
	`
	rows, err := r.db.Q(ctx).Query(ctx, query, f.OnlyActive, f.Query)
	if err != nil {
		return nil, fmt.Errorf("falla al listar proveedores: %w", err)
	}
	defer rows.Close()

	suppliers := make([]*catalog.Supplier, 0)
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("falla al leer proveedor: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (r *SupplierRepository) Update(ctx context.Context, s *catalog.Supplier) error {
	query := `
		UPDATE suppliers
		SET nickname = $2, name = $3, lastname = $4, active = $5, updated_at = $6
		WHERE id = $1
	`
	tag, err := r.db.Q(ctx).Exec(ctx, query, s.ID, s.Nickname, s.Name, s.Lastname, s.Active, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrDuplicateSupplier
		}
		return fmt.Errorf("falla al actualizar proveedor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrSupplierNotFound
	}
	return nil
}

func scanSupplier(row scanner) (*catalog.Supplier, error) {
	s := &catalog.Supplier{}
	if err := row.Scan(&s.ID, &s.Nickname, &s.Name, &s.Lastname, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}
