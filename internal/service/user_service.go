package service

import (
	"context"

	"github.com/hugohenrick/verduleria-api/internal/domain/user"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
)

// UserService administra las cuentas de vendedores
type UserService interface {
	List(ctx context.Context, role user.Role) ([]*user.User, error)
	CreateVendor(ctx context.Context, username, password string) (*user.User, error)
	Rename(ctx context.Context, id, username string) (*user.User, error)
	ResetPassword(ctx context.Context, id, password string) error
	SetActive(ctx context.Context, actor Actor, id string, active bool) (*user.User, error)
}

type userService struct {
	users user.Repository
	log   logger.Logger
}

// NewUserService crea el servicio de usuarios
func NewUserService(users user.Repository, log logger.Logger) UserService {
	return &userService{users: users, log: log}
}

func (s *userService) List(ctx context.Context, role user.Role) ([]*user.User, error) {
	if role != "" && role != user.RoleAdmin && role != user.RoleVendedor {
		return nil, user.ErrInvalidRole
	}
	return s.users.List(ctx, role)
}

func (s *userService) CreateVendor(ctx context.Context, username, password string) (*user.User, error) {
	u, err := user.NewUser(username, password, user.RoleVendedor)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("vendedor creado", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (s *userService) Rename(ctx context.Context, id, username string) (*user.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.Rename(username); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) ResetPassword(ctx context.Context, id, password string) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := u.SetPassword(password); err != nil {
		return err
	}
	return s.users.Update(ctx, u)
}

// SetActive da de alta o baja. Un admin no puede darse de baja a sí mismo.
func (s *userService) SetActive(ctx context.Context, actor Actor, id string, active bool) (*user.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !active && u.ID == actor.ID {
		return nil, user.ErrSelfDeactivate
	}
	if active {
		u.Activate()
	} else {
		u.Deactivate()
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
