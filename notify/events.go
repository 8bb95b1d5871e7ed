package notify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher broadcasts events over Redis pub/sub so dashboards can
// react in realtime. Best-effort: publish failures are logged, never
// returned.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event string, payload any) {
	if p == nil || p.client == nil {
		return
	}
	body, err := json.Marshal(map[string]any{"event": event, "payload": payload})
	if err != nil {
		log.Printf("notify: no se pudo serializar evento %s: %v", event, err)
		return
	}
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		log.Printf("notify: no se pudo publicar evento %s: %v", event, err)
	}
}
