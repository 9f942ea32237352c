package repository

import (
	"context"
	"fmt"

	"github.com/hugohenrick/verduleria-api/internal/domain/promotion"
	"github.com/hugohenrick/verduleria-api/internal/domain/session"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/database"
	"github.com/shopspring/decimal"
)

// PromotionRepository implementa promotion.Repository usando PostgreSQL
type PromotionRepository struct {
	db *database.PostgresDB
}

// NewPromotionRepository crea una nueva instancia de PromotionRepository
func NewPromotionRepository(db *database.PostgresDB) promotion.Repository {
	return &PromotionRepository{db: db}
}

const promotionColumns = `
	id, session_id, variant_id, type, percent_off, buy_qty, pay_qty, ends_at, active,
	image_url, image_public_id, created_by, created_at, updated_at
`

// Upsert implementa promotion.Repository.Upsert. Una segunda promoción para la
// misma variante en la sesión reemplaza términos y reactiva la existente.
func (r *PromotionRepository) Upsert(ctx context.Context, p *promotion.Promotion) error {
	query := `
		INSERT INTO promotions (` + promotionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (session_id, variant_id) DO UPDATE SET
			type = EXCLUDED.type,
			percent_off = EXCLUDED.percent_off,
			buy_qty = EXCLUDED.buy_qty,
			pay_qty = EXCLUDED.pay_qty,
			ends_at = EXCLUDED.ends_at,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, image_url, image_public_id, created_by
	`
	var createdBy *string
	err := r.db.Q(ctx).QueryRow(ctx, query,
		p.ID,
		p.SessionID,
		p.VariantID,
		string(p.Type),
		p.PercentOff,
		p.BuyQty,
		p.PayQty,
		p.EndsAt,
		p.Active,
		p.ImageURL,
		p.ImagePublicID,
		nullIfEmpty(p.CreatedBy),
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt, &p.ImageURL, &p.ImagePublicID, &createdBy)
	if err != nil {
		if isForeignKeyViolation(err) {
			return session.ErrSessionNotFound
		}
		return fmt.Errorf("falla al guardar promoción: %w", err)
	}
	p.CreatedBy = derefString(createdBy)
	return nil
}

// FindByID implementa promotion.Repository.FindByID
func (r *PromotionRepository) FindByID(ctx context.Context, id string) (*promotion.Promotion, error) {
	return r.findOne(ctx, `SELECT `+promotionColumns+` FROM promotions WHERE id = $1`, id)
}

// FindBySessionVariant implementa promotion.Repository.FindBySessionVariant
func (r *PromotionRepository) FindBySessionVariant(ctx context.Context, sessionID, variantID string) (*promotion.Promotion, error) {
	return r.findOne(ctx,
		`SELECT `+promotionColumns+` FROM promotions WHERE session_id = $1 AND variant_id = $2`,
		sessionID, variantID)
}

func (r *PromotionRepository) findOne(ctx context.Context, query string, args ...any) (*promotion.Promotion, error) {
	p, err := scanPromotion(r.db.Q(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, promotion.ErrPromotionNotFound
		}
		return nil, fmt.Errorf("falla al buscar promoción: %w", err)
	}
	return p, nil
}

// ListBySession implementa promotion.Repository.ListBySession
func (r *PromotionRepository) ListBySession(ctx context.Context, sessionID string) ([]*promotion.Promotion, error) {
	rows, err := r.db.Q(ctx).Query(ctx,
		`SELECT `+promotionColumns+` FROM promotions WHERE session_id = $1 ORDER BY ends_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("falla al listar promociones: %w", err)
	}
	defer rows.Close()

	promos := make([]*promotion.Promotion, 0)
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("falla al leer promoción: %w", err)
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}

// Update implementa promotion.Repository.Update
func (r *PromotionRepository) Update(ctx context.Context, p *promotion.Promotion) error {
	query := `
		UPDATE promotions
		SET type = $2, percent_off = $3, buy_qty = $4, pay_qty = $5, ends_at = $6,
		    active = $7, image_url = $8, image_public_id = $9, updated_at = $10
		WHERE id = $1
	`
	tag, err := r.db.Q(ctx).Exec(ctx, query,
		p.ID,
		string(p.Type),
		p.PercentOff,
		p.BuyQty,
		p.PayQty,
		p.EndsAt,
		p.Active,
		p.ImageURL,
		p.ImagePublicID,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("falla al actualizar promoción: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return promotion.ErrPromotionNotFound
	}
	return nil
}

func scanPromotion(row scanner) (*promotion.Promotion, error) {
	p := &promotion.Promotion{}
	var typ string
	var percentOff decimal.NullDecimal
	var buyQty, payQty *int32
	var createdBy *string
	if err := row.Scan(
		&p.ID,
		&p.SessionID,
		&p.VariantID,
		&typ,
		&percentOff,
		&buyQty,
		&payQty,
		&p.EndsAt,
		&p.Active,
		&p.ImageURL,
		&p.ImagePublicID,
		&createdBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Type = promotion.Type(typ)
	p.PercentOff = decimalPtr(percentOff)
	p.BuyQty = intPtr(buyQty)
	p.PayQty = intPtr(payQty)
	p.CreatedBy = derefString(createdBy)
	return p, nil
}
