package database

import (
	"context"
	"fmt"
	"time"

	"github.com/hugohenrick/verduleria-api/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig contiene la configuración de conexión a PostgreSQL
type PostgresConfig struct {
	DSN             string
	MaxConnections  int32
	MinConnections  int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DBTX es lo que comparten el pool y una transacción
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// PostgresDB gestiona el pool de conexiones a PostgreSQL
type PostgresDB struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

type txKey struct{}

// NewPostgresDB crea el pool y verifica la conexión
func NewPostgresDB(ctx context.Context, cfg PostgresConfig, log logger.Logger) (*PostgresDB, error) {
	config, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("error al analizar configuración del pool: %w", err)
	}

	config.MaxConns = 10
	if cfg.MaxConnections > 0 {
		config.MaxConns = cfg.MaxConnections
	}
	config.MinConns = cfg.MinConnections
	config.MaxConnLifetime = 1 * time.Hour
	if cfg.MaxConnLifetime > 0 {
		config.MaxConnLifetime = cfg.MaxConnLifetime
	}
	config.MaxConnIdleTime = 30 * time.Minute
	if cfg.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("error al crear pool de conexiones: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error al verificar conexión con la base de datos: %w", err)
	}

	return &PostgresDB{pool: pool, logger: log}, nil
}

// Pool devuelve el pool subyacente
func (db *PostgresDB) Pool() *pgxpool.Pool {
	return db.pool
}

// Q devuelve la transacción del contexto o, si no hay, el pool
func (db *PostgresDB) Q(ctx context.Context) DBTX {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db.pool
}

// Ping verifica la conexión
func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close cierra el pool de conexiones
func (db *PostgresDB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Transaction ejecuta una función dentro de una transacción
func (db *PostgresDB) Transaction(ctx context.Context, txFunc func(tx pgx.Tx) error) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error al iniciar transacción: %w", err)
	}

	if err := txFunc(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			db.logger.Error("error al hacer rollback", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error al hacer commit: %w", err)
	}

	return nil
}

// WithinTx ejecuta fn con la transacción guardada en el contexto, de modo que
// todos los repositorios la compartan. Si ya hay una transacción, la reutiliza.
func (db *PostgresDB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}
	return db.Transaction(ctx, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
