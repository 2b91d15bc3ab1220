package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisGateway publishes payloads to Redis pub/sub channels named after
// the topic scheme, so several server processes can share one broadcast
// plane. Subscribing processes feed received frames into their local Hub.
type RedisGateway struct {
	client *redis.Client
}

func NewRedisGateway(client *redis.Client) *RedisGateway {
	return &RedisGateway{client: client}
}

func (g *RedisGateway) Publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload for %s: %w", topic, err)
	}
	return g.client.Publish(ctx, topic, body).Err()
}

// Relay subscribes to every chat topic pattern on Redis and republishes
// frames on the local hub until ctx is done. It reconnects on receive
// errors, mirroring the best-effort delivery contract.
type Relay struct {
	client *redis.Client
	hub    *Hub
}

func NewRelay(client *redis.Client, hub *Hub) *Relay {
	return &Relay{client: client, hub: hub}
}

func (r *Relay) Run(ctx context.Context) error {
	pubsub := r.client.PSubscribe(ctx, "room/*", "user/*")
	defer func() { _ = pubsub.Close() }()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("redis pubsub channel closed")
			}
			_ = r.hub.Publish(ctx, msg.Channel, json.RawMessage(msg.Payload))
		}
	}
}
