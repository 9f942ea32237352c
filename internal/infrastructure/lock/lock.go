// Package lock serializa las escrituras concurrentes sobre la misma variante
// de una sesión.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ErrNotObtained se devuelve cuando otra escritura mantiene el lock
var ErrNotObtained = domain.NewStateConflict("LOCK_BUSY", "hay otra operación en curso sobre el mismo ítem, reintente")

// Release libera todos los locks tomados en una adquisición
type Release func()

// Key arma la clave de lock de una variante en una sesión
func Key(sessionID, variantID string) string {
	return "lock:" + sessionID + ":" + variantID
}

// SessionKey arma la clave de lock de las transiciones de una sesión
func SessionKey(sessionID string) string {
	return "lock:session:" + sessionID
}

// uniqueSorted ordena las claves para que dos adquisiciones múltiples no se crucen
func uniqueSorted(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RedisLocker usa bsm/redislock y sirve entre varias réplicas de la API
type RedisLocker struct {
	client  *redislock.Client
	ttl     time.Duration
	backoff time.Duration
	wait    time.Duration
}

// NewRedisLocker crea el locker sobre un cliente Redis
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client:  redislock.New(rdb),
		ttl:     ttl,
		backoff: 50 * time.Millisecond,
		wait:    ttl,
	}
}

// Acquire toma los locks de todas las claves en orden
func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (Release, error) {
	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	opts := &redislock.Options{RetryStrategy: redislock.LinearBackoff(l.backoff)}
	held := make([]*redislock.Lock, 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			_ = held[i].Release(context.Background())
		}
	}

	for _, k := range uniqueSorted(keys) {
		lk, err := l.client.Obtain(ctx, k, l.ttl, opts)
		if err != nil {
			release()
			if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
				return nil, ErrNotObtained
			}
			return nil, fmt.Errorf("error al obtener lock %s: %w", k, err)
		}
		held = append(held, lk)
	}
	return release, nil
}

// LocalLocker es un mutex por clave dentro del proceso. Alcanza con una sola réplica.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker crea un locker en memoria
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot)}
}

// Acquire toma los locks de todas las claves en orden, esperando hasta que ctx termine
func (l *LocalLocker) Acquire(ctx context.Context, keys ...string) (Release, error) {
	sorted := uniqueSorted(keys)
	held := make([]string, 0, len(sorted))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.unlock(held[i])
		}
	}

	for _, k := range sorted {
		s := l.ref(k)
		select {
		case s.ch <- struct{}{}:
			held = append(held, k)
		case <-ctx.Done():
			l.unref(k)
			release()
			return nil, ErrNotObtained
		}
	}
	return release, nil
}

func (l *LocalLocker) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *LocalLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.slots[key]
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

func (l *LocalLocker) unlock(key string) {
	l.mu.Lock()
	s := l.slots[key]
	l.mu.Unlock()
	<-s.ch
	l.unref(key)
}
