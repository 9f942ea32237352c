package repository

import (
	"context"
	"fmt"

	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/lot"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LotRepository implementa lot.Repository usando PostgreSQL
type LotRepository struct {
	db *database.PostgresDB
}

// NewLotRepository crea una nueva instancia de LotRepository
func NewLotRepository(db *database.PostgresDB) lot.Repository {
	return &LotRepository{db: db}
}

const lotColumns = `
	id, session_id, variant_id, item_id, supplier_id, qty, unit_cost, buy_unit,
	payment_method, payment_note, bought_by, weighed_at, net_weight_kg, created_at, updated_at
`

// CreateBatch implementa lot.Repository.CreateBatch. Todos los INSERT viajan en un único batch.
func (r *LotRepository) CreateBatch(ctx context.Context, lots []*lot.Lot) error {
	if len(lots) == 0 {
		return nil
	}
	query := `INSERT INTO purchase_lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	batch := &pgx.Batch{}
	for _, l := range lots {
		batch.Queue(query,
			l.ID,
			l.SessionID,
			l.VariantID,
			l.ItemID,
			l.SupplierID,
			l.Qty,
			l.UnitCost,
			string(l.BuyUnit),
			string(l.PaymentMethod),
			l.PaymentNote,
			nullIfEmpty(l.BoughtBy),
			l.WeighedAt,
			l.NetWeightKg,
			l.CreatedAt,
			l.UpdatedAt,
		)
	}

	br := r.db.Q(ctx).SendBatch(ctx, batch)
	for range lots {
		if _, err := br.Exec(); err != nil {
			br.Close()
			if isForeignKeyViolation(err) {
				return catalog.ErrSupplierNotFound
			}
			return fmt.Errorf("falla al insertar lotes: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("falla al cerrar batch de lotes: %w", err)
	}
	return nil
}

// FindByID implementa lot.Repository.FindByID
func (r *LotRepository) FindByID(ctx context.Context, id string) (*lot.Lot, error) {
	return r.findOne(ctx, `SELECT `+lotColumns+` FROM purchase_lots WHERE id = $1`, id)
}

// FindByIDForUpdate implementa lot.Repository.FindByIDForUpdate
func (r *LotRepository) FindByIDForUpdate(ctx context.Context, id string) (*lot.Lot, error) {
	return r.findOne(ctx, `SELECT `+lotColumns+` FROM purchase_lots WHERE id = $1 FOR UPDATE`, id)
}

func (r *LotRepository) findOne(ctx context.Context, query string, args ...any) (*lot.Lot, error) {
	l, err := scanLot(r.db.Q(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, lot.ErrLotNotFound
		}
		return nil, fmt.Errorf("falla al buscar lote: %w", err)
	}
	return l, nil
}

// ListBySession implementa lot.Repository.ListBySession
func (r *LotRepository) ListBySession(ctx context.Context, sessionID string) ([]*lot.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM purchase_lots WHERE session_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, sessionID)
}

// ListBySessionVariant implementa lot.Repository.ListBySessionVariant
func (r *LotRepository) ListBySessionVariant(ctx context.Context, sessionID, variantID string) ([]*lot.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM purchase_lots
		WHERE session_id = $1 AND variant_id = $2 ORDER BY created_at, id`
	return r.list(ctx, query, sessionID, variantID)
}

func (r *LotRepository) list(ctx context.Context, query string, args ...any) ([]*lot.Lot, error) {
	rows, err := r.db.Q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("falla al listar lotes: %w", err)
	}
	defer rows.Close()

	lots := make([]*lot.Lot, 0)
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("falla al leer lote: %w", err)
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}

// VariantIDsBySession implementa lot.Repository.VariantIDsBySession
func (r *LotRepository) VariantIDsBySession(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := r.db.Q(ctx).Query(ctx,
		`SELECT DISTINCT variant_id FROM purchase_lots WHERE session_id = $1 ORDER BY variant_id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("falla al listar variantes con lotes: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateWeight implementa lot.Repository.UpdateWeight
func (r *LotRepository) UpdateWeight(ctx context.Context, l *lot.Lot) error {
	tag, err := r.db.Q(ctx).Exec(ctx,
		`UPDATE purchase_lots SET net_weight_kg = $2, weighed_at = $3, updated_at = $4 WHERE id = $1`,
		l.ID, l.NetWeightKg, l.WeighedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("falla al registrar pesaje: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return lot.ErrLotNotFound
	}
	return nil
}

// UpdatePayment implementa lot.Repository.UpdatePayment
func (r *LotRepository) UpdatePayment(ctx context.Context, l *lot.Lot) error {
	tag, err := r.db.Q(ctx).Exec(ctx,
		`UPDATE purchase_lots SET payment_method = $2, payment_note = $3, updated_at = $4 WHERE id = $1`,
		l.ID, string(l.PaymentMethod), l.PaymentNote, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("falla al registrar pago: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return lot.ErrLotNotFound
	}
	return nil
}

// UpdatePaymentByGroup implementa lot.Repository.UpdatePaymentByGroup
func (r *LotRepository) UpdatePaymentByGroup(ctx context.Context, g lot.PaymentGroup, method lot.PaymentMethod, note string) (int64, error) {
	tag, err := r.db.Q(ctx).Exec(ctx, `
		UPDATE purchase_lots
		SET payment_method = $4, payment_note = $5, updated_at = NOW()
		WHERE session_id = $1 AND variant_id = $2 AND supplier_id = $3
	`, g.SessionID, g.VariantID, g.SupplierID, string(method), note)
	if err != nil {
		return 0, fmt.Errorf("falla al registrar pago del grupo: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanLot(row scanner) (*lot.Lot, error) {
	l := &lot.Lot{}
	var buyUnit, method string
	var boughtBy *string
	var netWeight decimal.NullDecimal
	if err := row.Scan(
		&l.ID,
		&l.SessionID,
		&l.VariantID,
		&l.ItemID,
		&l.SupplierID,
		&l.Qty,
		&l.UnitCost,
		&buyUnit,
		&method,
		&l.PaymentNote,
		&boughtBy,
		&l.WeighedAt,
		&netWeight,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	l.BuyUnit = catalog.BuyUnit(buyUnit)
	l.PaymentMethod = lot.PaymentMethod(method)
	l.BoughtBy = derefString(boughtBy)
	l.NetWeightKg = decimalPtr(netWeight)
	return l, nil
}
