package repository

import (
	"context"
	"fmt"

	"github.com/hugohenrick/verduleria-api/internal/domain/pricing"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/database"
)

// MarginRepository implementa pricing.MarginRepository usando PostgreSQL
type MarginRepository struct {
	db *database.PostgresDB
}

// NewMarginRepository crea una nueva instancia de MarginRepository
func NewMarginRepository(db *database.PostgresDB) pricing.MarginRepository {
	return &MarginRepository{db: db}
}

// Current implementa pricing.MarginRepository.Current
func (r *MarginRepository) Current(ctx context.Context) (*pricing.Margin, error) {
	m := &pricing.Margin{}
	var updatedBy *string
	err := r.db.Q(ctx).QueryRow(ctx, `
		SELECT version, margin_pct, updated_by, updated_at
		FROM margin_config
		ORDER BY version DESC
		LIMIT 1
	`).Scan(&m.Version, &m.Pct, &updatedBy, &m.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, pricing.ErrMarginNotFound
		}
		return nil, fmt.Errorf("falla al leer margen: %w", err)
	}
	m.UpdatedBy = derefString(updatedBy)
	return m, nil
}

// Append implementa pricing.MarginRepository.Append
func (r *MarginRepository) Append(ctx context.Context, m *pricing.Margin) error {
	err := r.db.Q(ctx).QueryRow(ctx, `
		INSERT INTO margin_config (margin_pct, updated_by, updated_at)
		VALUES ($1, $2, $3)
		RETURNING version
	`, m.Pct, nullIfEmpty(m.UpdatedBy), m.UpdatedAt).Scan(&m.Version)
	if err != nil {
		return fmt.Errorf("falla al guardar margen: %w", err)
	}
	return nil
}
