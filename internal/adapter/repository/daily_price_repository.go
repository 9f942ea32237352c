package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/pricing"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/database"
	"github.com/shopspring/decimal"
)

// DailyPriceRepository implementa pricing.Repository usando PostgreSQL
type DailyPriceRepository struct {
	db *database.PostgresDB
}

// NewDailyPriceRepository crea una nueva instancia de DailyPriceRepository
func NewDailyPriceRepository(db *database.PostgresDB) pricing.Repository {
	return &DailyPriceRepository{db: db}
}

const dailyPriceColumns = `
	dp.id, dp.session_id, dp.variant_id, dp.unit_sale, dp.cost_final, dp.margin_pct, dp.margin_version,
	dp.sale_price, dp.status, dp.pending_reason, dp.movement, dp.delta, dp.prev_sale_price, dp.prev_date_key,
	dp.bought_qty, dp.bought_total, dp.source_lot_id, dp.manual_sale_price, dp.manual_note,
	dp.last_manual_sale_price, dp.computed_at, dp.created_at, dp.updated_at
`

// Upsert implementa pricing.Repository.Upsert. Si ya existe un precio para
// (session_id, variant_id) lo reemplaza y conserva su ID.
func (r *DailyPriceRepository) Upsert(ctx context.Context, dp *pricing.DailyPrice) error {
	query := `
		INSERT INTO daily_prices (
			id, session_id, variant_id, unit_sale, cost_final, margin_pct, margin_version,
			sale_price, status, pending_reason, movement, delta, prev_sale_price, prev_date_key,
			bought_qty, bought_total, source_lot_id, manual_sale_price, manual_note,
			last_manual_sale_price, computed_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
		ON CONFLICT (session_id, variant_id) DO UPDATE SET
			unit_sale = EXCLUDED.unit_sale,
			cost_final = EXCLUDED.cost_final,
			margin_pct = EXCLUDED.margin_pct,
			margin_version = EXCLUDED.margin_version,
			sale_price = EXCLUDED.sale_price,
			status = EXCLUDED.status,
			pending_reason = EXCLUDED.pending_reason,
			movement = EXCLUDED.movement,
			delta = EXCLUDED.delta,
			prev_sale_price = EXCLUDED.prev_sale_price,
			prev_date_key = EXCLUDED.prev_date_key,
			bought_qty = EXCLUDED.bought_qty,
			bought_total = EXCLUDED.bought_total,
			source_lot_id = EXCLUDED.source_lot_id,
			manual_sale_price = EXCLUDED.manual_sale_price,
			manual_note = EXCLUDED.manual_note,
			last_manual_sale_price = EXCLUDED.last_manual_sale_price,
			computed_at = EXCLUDED.computed_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	var computedAt any
	if !dp.ComputedAt.IsZero() {
		computedAt = dp.ComputedAt
	}
	err := r.db.Q(ctx).QueryRow(ctx, query,
		dp.ID,
		dp.SessionID,
		dp.VariantID,
		string(dp.UnitSale),
		dp.CostFinal,
		dp.MarginPct,
		dp.MarginVersion,
		dp.SalePrice,
		string(dp.Status),
		string(dp.PendingReason),
		string(dp.Movement),
		dp.Delta,
		dp.PrevSalePrice,
		dp.PrevDateKey,
		dp.Purchase.BoughtQty,
		dp.Purchase.BoughtTotal,
		nullIfEmpty(dp.SourceLotID),
		dp.ManualSalePrice,
		dp.ManualNote,
		dp.LastManualSalePrice,
		computedAt,
		dp.CreatedAt,
		dp.UpdatedAt,
	).Scan(&dp.ID, &dp.CreatedAt)
	if err != nil {
		return fmt.Errorf("falla al guardar precio diario: %w", err)
	}
	return nil
}

// FindByID implementa pricing.Repository.FindByID
func (r *DailyPriceRepository) FindByID(ctx context.Context, id string) (*pricing.DailyPrice, error) {
	return r.findOne(ctx, `SELECT `+dailyPriceColumns+` FROM daily_prices dp WHERE dp.id = $1`, id)
}

// FindBySessionVariant implementa pricing.Repository.FindBySessionVariant
func (r *DailyPriceRepository) FindBySessionVariant(ctx context.Context, sessionID, variantID string) (*pricing.DailyPrice, error) {
	return r.findOne(ctx,
		`SELECT `+dailyPriceColumns+` FROM daily_prices dp WHERE dp.session_id = $1 AND dp.variant_id = $2`,
		sessionID, variantID)
}

func (r *DailyPriceRepository) findOne(ctx context.Context, query string, args ...any) (*pricing.DailyPrice, error) {
	dp, err := scanDailyPrice(r.db.Q(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, pricing.ErrDailyPriceNotFound
		}
		return nil, fmt.Errorf("falla al buscar precio diario: %w", err)
	}
	return dp, nil
}

// ListBySession implementa pricing.Repository.ListBySession
func (r *DailyPriceRepository) ListBySession(ctx context.Context, sessionID string) ([]*pricing.DailyPrice, error) {
	rows, err := r.db.Q(ctx).Query(ctx,
		`SELECT `+dailyPriceColumns+` FROM daily_prices dp WHERE dp.session_id = $1`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("falla al listar precios diarios: %w", err)
	}
	defer rows.Close()

	prices := make([]*pricing.DailyPrice, 0)
	for rows.Next() {
		dp, err := scanDailyPrice(rows)
		if err != nil {
			return nil, fmt.Errorf("falla al leer precio diario: %w", err)
		}
		prices = append(prices, dp)
	}
	return prices, rows.Err()
}

// PreviousPrice implementa pricing.Repository.PreviousPrice
func (r *DailyPriceRepository) PreviousPrice(ctx context.Context, variantID, dateKey string) (*pricing.PreviousPrice, error) {
	query := `
		SELECT s.date_key, dp.sale_price
		FROM daily_prices dp
		JOIN purchase_sessions s ON s.id = dp.session_id
		WHERE dp.variant_id = $1 AND s.date_key < $2 AND dp.sale_price IS NOT NULL
		ORDER BY s.date_key DESC
		LIMIT 1
	`
	return r.previous(ctx, query, variantID, dateKey)
}

// LastManualBefore implementa pricing.Repository.LastManualBefore
func (r *DailyPriceRepository) LastManualBefore(ctx context.Context, variantID, dateKey string) (*pricing.PreviousPrice, error) {
	query := `
		SELECT s.date_key, dp.last_manual_sale_price
		FROM daily_prices dp
		JOIN purchase_sessions s ON s.id = dp.session_id
		WHERE dp.variant_id = $1 AND s.date_key < $2 AND dp.last_manual_sale_price IS NOT NULL
		ORDER BY s.date_key DESC
		LIMIT 1
	`
	return r.previous(ctx, query, variantID, dateKey)
}

func (r *DailyPriceRepository) previous(ctx context.Context, query, variantID, dateKey string) (*pricing.PreviousPrice, error) {
	prev := &pricing.PreviousPrice{}
	err := r.db.Q(ctx).QueryRow(ctx, query, variantID, dateKey).Scan(&prev.DateKey, &prev.SalePrice)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("falla al buscar precio anterior: %w", err)
	}
	return prev, nil
}

// LatestBefore implementa pricing.Repository.LatestBefore
func (r *DailyPriceRepository) LatestBefore(ctx context.Context, dateKey string) (map[string]*pricing.LatestPrice, error) {
	query := `
		SELECT DISTINCT ON (dp.variant_id) ` + dailyPriceColumns + `, s.date_key
		FROM daily_prices dp
		JOIN purchase_sessions s ON s.id = dp.session_id
		WHERE s.date_key < $1 AND dp.sale_price IS NOT NULL
		ORDER BY dp.variant_id, s.date_key DESC
	`
	rows, err := r.db.Q(ctx).Query(ctx, query, dateKey)
	if err != nil {
		return nil, fmt.Errorf("falla al buscar últimos precios: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*pricing.LatestPrice)
	for rows.Next() {
		var key string
		dp, err := scanDailyPrice(rows, &key)
		if err != nil {
			return nil, fmt.Errorf("falla al leer último precio: %w", err)
		}
		out[dp.VariantID] = &pricing.LatestPrice{DailyPrice: dp, DateKey: key}
	}
	return out, rows.Err()
}

func scanDailyPrice(row scanner, extra ...any) (*pricing.DailyPrice, error) {
	dp := &pricing.DailyPrice{}
	var unitSale, status, reason, movement string
	var sourceLotID *string
	var costFinal, salePrice, delta, prevSale, manual, lastManual decimal.NullDecimal
	var computedAt *time.Time
	dest := []any{
		&dp.ID,
		&dp.SessionID,
		&dp.VariantID,
		&unitSale,
		&costFinal,
		&dp.MarginPct,
		&dp.MarginVersion,
		&salePrice,
		&status,
		&reason,
		&movement,
		&delta,
		&prevSale,
		&dp.PrevDateKey,
		&dp.Purchase.BoughtQty,
		&dp.Purchase.BoughtTotal,
		&sourceLotID,
		&manual,
		&dp.ManualNote,
		&lastManual,
		&computedAt,
		&dp.CreatedAt,
		&dp.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	dp.UnitSale = catalog.SaleUnit(unitSale)
	dp.Status = pricing.Status(status)
	dp.PendingReason = pricing.PendingReason(reason)
	dp.Movement = pricing.Movement(movement)
	dp.CostFinal = decimalPtr(costFinal)
	dp.SalePrice = decimalPtr(salePrice)
	dp.Delta = decimalPtr(delta)
	dp.PrevSalePrice = decimalPtr(prevSale)
	dp.ManualSalePrice = decimalPtr(manual)
	dp.LastManualSalePrice = decimalPtr(lastManual)
	dp.SourceLotID = derefString(sourceLotID)
	if computedAt != nil {
		dp.ComputedAt = *computedAt
	}
	return dp, nil
}
