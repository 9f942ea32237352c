package repository

import (
	"context"
	"fmt"

	"github.com/hugohenrick/verduleria-api/internal/domain/session"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/database"
	"github.com/shopspring/decimal"
)

// ItemRepository implementa session.ItemRepository usando PostgreSQL
type ItemRepository struct {
	db *database.PostgresDB
}

// NewItemRepository crea una nueva instancia de ItemRepository
func NewItemRepository(db *database.PostgresDB) session.ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `
	i.id, i.session_id, i.variant_id, i.origin, i.planned_qty, i.ref_price, i.state,
	i.reserve_expires_at, i.reserved_by, i.bought_qty, i.bought_total, i.created_at, i.updated_at
`

// Create implementa session.ItemRepository.Create
func (r *ItemRepository) Create(ctx context.Context, it *session.Item) error {
	query := `
		INSERT INTO session_items (
			id, session_id, variant_id, origin, planned_qty, ref_price, state,
			reserve_expires_at, reserved_by, bought_qty, bought_total, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Q(ctx).Exec(ctx, query,
		it.ID,
		it.SessionID,
		it.VariantID,
		string(it.Origin),
		it.PlannedQty,
		it.RefPrice,
		string(it.State),
		it.ReserveExpiresAt,
		nullIfEmpty(it.ReservedBy),
		it.Purchase.BoughtQty,
		it.Purchase.BoughtTotal,
		it.CreatedAt,
		it.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return session.ErrDuplicateItem
		}
		return fmt.Errorf("falla al insertar ítem: %w", err)
	}
	return nil
}

// FindByID implementa session.ItemRepository.FindByID
func (r *ItemRepository) FindByID(ctx context.Context, sessionID, id string) (*session.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM session_items i WHERE i.session_id = $1 AND i.id = $2`
	return r.findOne(ctx, query, sessionID, id)
}

// FindByIDForUpdate implementa session.ItemRepository.FindByIDForUpdate
func (r *ItemRepository) FindByIDForUpdate(ctx context.Context, sessionID, id string) (*session.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM session_items i WHERE i.session_id = $1 AND i.id = $2 FOR UPDATE`
	return r.findOne(ctx, query, sessionID, id)
}

func (r *ItemRepository) findOne(ctx context.Context, query string, args ...any) (*session.Item, error) {
	it, err := scanItem(r.db.Q(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, session.ErrItemNotFound
		}
		return nil, fmt.Errorf("falla al buscar ítem: %w", err)
	}
	return it, nil
}

// ListBySession implementa session.ItemRepository.ListBySession
func (r *ItemRepository) ListBySession(ctx context.Context, sessionID string) ([]*session.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM session_items i WHERE i.session_id = $1 ORDER BY i.created_at`
	rows, err := r.db.Q(ctx).Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("falla al listar ítems: %w", err)
	}
	defer rows.Close()

	items := make([]*session.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("falla al leer ítem: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// CountByOrigin implementa session.ItemRepository.CountByOrigin
func (r *ItemRepository) CountByOrigin(ctx context.Context, sessionID string, origin session.Origin) (int, error) {
	var count int
	err := r.db.Q(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM session_items WHERE session_id = $1 AND origin = $2`,
		sessionID, string(origin),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("falla al contar ítems: %w", err)
	}
	return count, nil
}

// ExistsVariant implementa session.ItemRepository.ExistsVariant
func (r *ItemRepository) ExistsVariant(ctx context.Context, sessionID, variantID string) (bool, error) {
	var exists bool
	err := r.db.Q(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM session_items WHERE session_id = $1 AND variant_id = $2)`,
		sessionID, variantID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("falla al verificar ítem: %w", err)
	}
	return exists, nil
}

// LastPurchasedBefore implementa session.ItemRepository.LastPurchasedBefore
func (r *ItemRepository) LastPurchasedBefore(ctx context.Context, variantID, dateKey string) (*session.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM session_items i
		JOIN purchase_sessions s ON s.id = i.session_id
		WHERE i.variant_id = $1 AND s.date_key < $2 AND i.bought_qty > 0
		ORDER BY s.date_key DESC
		LIMIT 1
	`
	return r.findOne(ctx, query, variantID, dateKey)
}

// Update implementa session.ItemRepository.Update
func (r *ItemRepository) Update(ctx context.Context, it *session.Item) error {
	query := `
		UPDATE session_items
		SET planned_qty = $3, ref_price = $4, state = $5, reserve_expires_at = $6,
		    reserved_by = $7, bought_qty = $8, bought_total = $9, updated_at = $10
		WHERE session_id = $1 AND id = $2
	`
	tag, err := r.db.Q(ctx).Exec(ctx, query,
		it.SessionID,
		it.ID,
		it.PlannedQty,
		it.RefPrice,
		string(it.State),
		it.ReserveExpiresAt,
		nullIfEmpty(it.ReservedBy),
		it.Purchase.BoughtQty,
		it.Purchase.BoughtTotal,
		it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("falla al actualizar ítem: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrItemNotFound
	}
	return nil
}

// Delete implementa session.ItemRepository.Delete
func (r *ItemRepository) Delete(ctx context.Context, sessionID, id string) error {
	tag, err := r.db.Q(ctx).Exec(ctx, `DELETE FROM session_items WHERE session_id = $1 AND id = $2`, sessionID, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return session.ErrItemBought
		}
		return fmt.Errorf("falla al eliminar ítem: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrItemNotFound
	}
	return nil
}

func scanItem(row scanner) (*session.Item, error) {
	it := &session.Item{}
	var origin, state string
	var reservedBy *string
	var plannedQty, refPrice decimal.NullDecimal
	if err := row.Scan(
		&it.ID,
		&it.SessionID,
		&it.VariantID,
		&origin,
		&plannedQty,
		&refPrice,
		&state,
		&it.ReserveExpiresAt,
		&reservedBy,
		&it.Purchase.BoughtQty,
		&it.Purchase.BoughtTotal,
		&it.CreatedAt,
		&it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	it.Origin = session.Origin(origin)
	it.State = session.ItemState(state)
	it.PlannedQty = decimalPtr(plannedQty)
	it.RefPrice = decimalPtr(refPrice)
	it.ReservedBy = derefString(reservedBy)
	return it, nil
}
