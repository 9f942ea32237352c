package realtime

import (
	"context"
	"encoding/json"

	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel es el canal pub/sub compartido por todas las réplicas
const DefaultChannel = "verduleria:events"

// RedisBridge publica los avisos en Redis para que cada réplica los
// reparta entre sus propios clientes.
type RedisBridge struct {
	rdb     *redis.Client
	hub     *Hub
	channel string
	log     logger.Logger
}

// NewRedisBridge crea el puente. Run debe estar corriendo para recibir avisos.
func NewRedisBridge(rdb *redis.Client, hub *Hub, channel string, log logger.Logger) *RedisBridge {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBridge{rdb: rdb, hub: hub, channel: channel, log: log}
}

// Publish implementa service.Notifier. Si Redis falla, entrega solo en esta réplica.
func (b *RedisBridge) Publish(ctx context.Context, e service.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		b.log.Error("no se pudo serializar el evento", "event", e.Name, "error", err)
		return
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		b.log.Warn("redis no disponible, aviso solo local", "event", e.Name, "error", err)
		b.hub.Deliver(e)
	}
}

// Run escucha el canal hasta que ctx se cancele
func (b *RedisBridge) Run(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var e service.Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				b.log.Warn("aviso inválido en redis", "error", err)
				continue
			}
			b.hub.Deliver(e)
		}
	}
}
