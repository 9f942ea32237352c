package repository

import (
	"context"
	"fmt"

	"github.com/hugohenrick/verduleria-api/internal/domain/session"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/database"
	"github.com/shopspring/decimal"
)

// SessionRepository implementa session.Repository usando PostgreSQL
type SessionRepository struct {
	db *database.PostgresDB
}

// NewSessionRepository crea una nueva instancia de SessionRepository
func NewSessionRepository(db *database.PostgresDB) session.Repository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	id, date_key, date_target, status, planned_budget_real, planned_budget_ref,
	created_by, opened_at, closed_at, created_at, updated_at
`

const sessionDateKeyConstraint = "purchase_sessions_date_key_key"

// Create implementa session.Repository.Create
func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	query := `INSERT INTO purchase_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Q(ctx).Exec(ctx, query,
		s.ID,
		s.DateKey,
		s.DateTarget,
		string(s.Status),
		s.PlannedBudgetReal,
		s.PlannedBudgetRef,
		nullIfEmpty(s.CreatedBy),
		s.OpenedAt,
		s.ClosedAt,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if code, constraint := pgErrCode(err); code == pgUniqueViolation {
			if constraint == sessionDateKeyConstraint {
				return session.ErrDuplicateDateKey
			}
			return session.ErrActiveSession
		}
		return fmt.Errorf("falla al insertar sesión: %w", err)
	}
	return nil
}

// FindByID implementa session.Repository.FindByID
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*session.Session, error) {
	return r.findOne(ctx, `SELECT `+sessionColumns+` FROM purchase_sessions WHERE id = $1`, id)
}

// FindByIDForUpdate implementa session.Repository.FindByIDForUpdate
func (r *SessionRepository) FindByIDForUpdate(ctx context.Context, id string) (*session.Session, error) {
	return r.findOne(ctx, `SELECT `+sessionColumns+` FROM purchase_sessions WHERE id = $1 FOR UPDATE`, id)
}

// FindByIDForShare implementa session.Repository.FindByIDForShare
func (r *SessionRepository) FindByIDForShare(ctx context.Context, id string) (*session.Session, error) {
	return r.findOne(ctx, `SELECT `+sessionColumns+` FROM purchase_sessions WHERE id = $1 FOR SHARE`, id)
}

// FindActive implementa session.Repository.FindActive
func (r *SessionRepository) FindActive(ctx context.Context) (*session.Session, error) {
	return r.findOne(ctx, `SELECT `+sessionColumns+` FROM purchase_sessions WHERE status <> 'CERRADA' LIMIT 1`)
}

// FindByDateKey implementa session.Repository.FindByDateKey
func (r *SessionRepository) FindByDateKey(ctx context.Context, dateKey string) (*session.Session, error) {
	return r.findOne(ctx, `SELECT `+sessionColumns+` FROM purchase_sessions WHERE date_key = $1`, dateKey)
}

func (r *SessionRepository) findOne(ctx context.Context, query string, args ...any) (*session.Session, error) {
	s, err := scanSession(r.db.Q(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("falla al buscar sesión: %w", err)
	}
	return s, nil
}

// List implementa session.Repository.List
func (r *SessionRepository) List(ctx context.Context, limit int) ([]*session.Session, error) {
	if limit <= 0 {
		limit = 30
	}
	query := `SELECT ` + sessionColumns + ` FROM purchase_sessions ORDER BY date_key DESC LIMIT $1`
	rows, err := r.db.Q(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("falla al listar sesiones: %w", err)
	}
	defer rows.Close()

	sessions := make([]*session.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("falla al leer sesión: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Update implementa session.Repository.Update
func (r *SessionRepository) Update(ctx context.Context, s *session.Session) error {
	query := `
		UPDATE purchase_sessions
		SET status = $2, planned_budget_real = $3, planned_budget_ref = $4,
		    opened_at = $5, closed_at = $6, updated_at = $7
		WHERE id = $1
	`
	tag, err := r.db.Q(ctx).Exec(ctx, query,
		s.ID,
		string(s.Status),
		s.PlannedBudgetReal,
		s.PlannedBudgetRef,
		s.OpenedAt,
		s.ClosedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return session.ErrActiveSession
		}
		return fmt.Errorf("falla al actualizar sesión: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

func scanSession(row scanner) (*session.Session, error) {
	s := &session.Session{}
	var status string
	var createdBy *string
	var budgetReal, budgetRef decimal.NullDecimal
	if err := row.Scan(
		&s.ID,
		&s.DateKey,
		&s.DateTarget,
		&status,
		&budgetReal,
		&budgetRef,
		&createdBy,
		&s.OpenedAt,
		&s.ClosedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Status = session.Status(status)
	s.PlannedBudgetReal = decimalPtr(budgetReal)
	s.PlannedBudgetRef = decimalPtr(budgetRef)
	s.CreatedBy = derefString(createdBy)
	return s, nil
}
