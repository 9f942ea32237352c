// Package cache contiene el cliente Redis y la caché del tablero de precios.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient conecta a Redis a partir de una URL redis:// y verifica la conexión
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("error al analizar REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("error al conectar con redis: %w", err)
	}
	return rdb, nil
}

// BoardKey es la clave del tablero cacheado de una sesión
func BoardKey(sessionID string) string {
	return "board:" + sessionID
}

// BoardCache guarda el tablero calculado de cada sesión como JSON
type BoardCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewBoardCache crea la caché con el TTL dado
func NewBoardCache(rdb *redis.Client, ttl time.Duration) *BoardCache {
	return &BoardCache{rdb: rdb, ttl: ttl}
}

// Get carga el tablero en dest. Devuelve false si no estaba cacheado.
func (c *BoardCache) Get(ctx context.Context, sessionID string, dest any) (bool, error) {
	val, err := c.rdb.Get(ctx, BoardKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set guarda el tablero
func (c *BoardCache) Set(ctx context.Context, sessionID string, board any) error {
	data, err := json.Marshal(board)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, BoardKey(sessionID), data, c.ttl).Err()
}

// Invalidate descarta el tablero de la sesión
func (c *BoardCache) Invalidate(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, BoardKey(sessionID)).Err()
}

// NopBoardCache se usa cuando no hay Redis configurado
type NopBoardCache struct{}

func (NopBoardCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (NopBoardCache) Set(context.Context, string, any) error         { return nil }
func (NopBoardCache) Invalidate(context.Context, string) error       { return nil }

// HealthCheck adapta el cliente Redis al chequeo de salud
type HealthCheck struct {
	rdb *redis.Client
}

// NewHealthCheck crea el chequeo sobre rdb
func NewHealthCheck(rdb *redis.Client) *HealthCheck {
	return &HealthCheck{rdb: rdb}
}

// Ping verifica que Redis responda
func (h *HealthCheck) Ping(ctx context.Context) error {
	return h.rdb.Ping(ctx).Err()
}
