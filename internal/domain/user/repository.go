package user

import (
	"context"
)

// Repository define las operaciones de persistencia de usuarios
type Repository interface {
	// Create crea un nuevo usuario
	Create(ctx context.Context, u *User) error

	// FindByID busca un usuario por ID
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByUsername busca un usuario por nombre de usuario
	FindByUsername(ctx context.Context, username string) (*User, error)

	// List lista usuarios, filtrando por rol si no es vacío
	List(ctx context.Context, role Role) ([]*User, error)

	// Update guarda nombre, contraseña y estado
	Update(ctx context.Context, u *User) error

	// UpdateLastLogin registra el último ingreso
	UpdateLastLogin(ctx context.Context, id string) error

	// CountByRole cuenta usuarios de un rol
	CountByRole(ctx context.Context, role Role) (int, error)
}
