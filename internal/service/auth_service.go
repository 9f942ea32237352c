package service

import (
	"context"
	"errors"
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/hugohenrick/verduleria-api/internal/domain/user"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
)

var (
	ErrInvalidCredentials = domain.NewAuthentication("INVALID_CREDENTIALS", "usuario o contraseña incorrectos")
	ErrUserInactive       = domain.NewAuthorization("USER_INACTIVE", "el usuario está dado de baja")
	ErrAdminExists        = domain.NewStateConflict("ADMIN_EXISTS", "ya existe un administrador")
)

// TokenIssuer emite tokens de sesión
type TokenIssuer interface {
	GenerateToken(u *user.User) (string, time.Time, error)
}

// LoginResult es la respuesta de un ingreso exitoso
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *user.User
}

// AuthService autentica usuarios y crea el primer administrador
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	SetupAdmin(ctx context.Context, username, password string) (*user.User, error)
	Me(ctx context.Context, actor Actor) (*user.User, error)
}

type authService struct {
	users  user.Repository
	tokens TokenIssuer
	tx     Transactor
	log    logger.Logger
}

// NewAuthService crea el servicio de autenticación
func NewAuthService(users user.Repository, tokens TokenIssuer, tx Transactor, log logger.Logger) AuthService {
	return &authService{users: users, tokens: tokens, tx: tx, log: log}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrUserInactive
	}

	token, expiresAt, err := s.tokens.GenerateToken(u)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateLastLogin(ctx, u.ID); err != nil {
		s.log.Warn("no se pudo registrar el último ingreso", "user_id", u.ID, "error", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// SetupAdmin solo funciona mientras no exista ningún administrador
func (s *authService) SetupAdmin(ctx context.Context, username, password string) (*user.User, error) {
	var created *user.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.users.CountByRole(ctx, user.RoleAdmin)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrAdminExists
		}
		u, err := user.NewUser(username, password, user.RoleAdmin)
		if err != nil {
			return err
		}
		if err := s.users.Create(ctx, u); err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("administrador inicial creado", "username", created.Username)
	return created, nil
}

func (s *authService) Me(ctx context.Context, actor Actor) (*user.User, error) {
	return s.users.FindByID(ctx, actor.ID)
}
