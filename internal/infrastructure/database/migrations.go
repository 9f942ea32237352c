package database

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrator aplica las migraciones SQL de la carpeta migrations/
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator crea el migrador para la carpeta y la base dadas
func NewMigrator(migrationsPath, dsn string) (*Migrator, error) {
	abs, err := filepath.Abs(migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("error al resolver carpeta de migraciones: %w", err)
	}
	m, err := migrate.New("file://"+filepath.ToSlash(abs), dsn)
	if err != nil {
		return nil, fmt.Errorf("error al crear migrate: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Up aplica todas las migraciones pendientes
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error al aplicar migraciones: %w", err)
	}
	return nil
}

// Down revierte una migración
func (mg *Migrator) Down() error {
	if err := mg.m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error al revertir migración: %w", err)
	}
	return nil
}

// Version devuelve la versión actual y si quedó sucia
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close libera las conexiones del migrador
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}

// RunMigrations aplica las migraciones pendientes y cierra el migrador
func RunMigrations(migrationsPath, dsn string) error {
	mg, err := NewMigrator(migrationsPath, dsn)
	if err != nil {
		return err
	}
	defer mg.Close()
	return mg.Up()
}
