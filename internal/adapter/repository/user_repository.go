package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain/user"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/database"
)

// UserRepository implementa user.Repository usando PostgreSQL
type UserRepository struct {
	db *database.PostgresDB
}

// NewUserRepository crea una nueva instancia de UserRepository
func NewUserRepository(db *database.PostgresDB) user.Repository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, password, role, active, last_login_at, created_at, updated_at`

// Create implementa user.Repository.Create
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Q(ctx).Exec(ctx, query,
		u.ID,
		u.Username,
		u.Password,
		string(u.Role),
		u.Active,
		u.LastLoginAt,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrDuplicateUsername
		}
		return fmt.Errorf("falla al insertar usuario: %w", err)
	}
	return nil
}

// FindByID implementa user.Repository.FindByID
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, query, id)
}

// FindByUsername implementa user.Repository.FindByUsername
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.findOne(ctx, query, user.NormalizeUsername(username))
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*user.User, error) {
	u, err := scanUser(r.db.Q(ctx).QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("falla al buscar usuario: %w", err)
	}
	return u, nil
}

// List implementa user.Repository.List
func (r *UserRepository) List(ctx context.Context, role user.Role) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ($1 = '' OR role = $1) ORDER BY username`
	rows, err := r.db.Q(ctx).Query(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("falla al listar usuarios: %w", err)
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("falla al leer usuario: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update implementa user.Repository.Update
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET username = $2, password = $3, role = $4, active = $5, updated_at = $6
		WHERE id = $1
	`
	tag, err := r.db.Q(ctx).Exec(ctx, query,
		u.ID, u.Username, u.Password, string(u.Role), u.Active, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrDuplicateUsername
		}
		return fmt.Errorf("falla al actualizar usuario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin implementa user.Repository.UpdateLastLogin
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	now := time.Now()
	_, err := r.db.Q(ctx).Exec(ctx,
		`UPDATE users SET last_login_at = $2, updated_at = $2 WHERE id = $1`, id, now)
	if err != nil {
		return fmt.Errorf("falla al registrar último ingreso: %w", err)
	}
	return nil
}

// CountByRole implementa user.Repository.CountByRole
func (r *UserRepository) CountByRole(ctx context.Context, role user.Role) (int, error) {
	var count int
	err := r.db.Q(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, string(role)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("falla al contar usuarios: %w", err)
	}
	return count, nil
}

func scanUser(row scanner) (*user.User, error) {
	u := &user.User{}
	var role string
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Password,
		&role,
		&u.Active,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = user.Role(role)
	return u, nil
}
