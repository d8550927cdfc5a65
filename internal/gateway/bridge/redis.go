package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Quyenld9699/realtime-multi-user-edit/internal/common/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBridge relays room events between instances over a Redis pub/sub topic.
type RedisBridge struct {
	logger *zap.Logger
	client *redis.Client
	topic  string
	pubsub *redis.PubSub
}

var _ Bridge = (*RedisBridge)(nil)

// NewRedisBridge creates a new Redis-based event bridge
func NewRedisBridge(logger *zap.Logger, cfg config.BridgeRedisConfig) (*RedisBridge, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "collab:events"
	}

	return &RedisBridge{
		logger: logger.Named("bridge.redis"),
		client: client,
		topic:  topic,
	}, nil
}

// Publish implements Bridge.Publish
func (b *RedisBridge) Publish(ctx context.Context, evt *Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal bridge event: %w", err)
	}
	return b.client.Publish(ctx, b.topic, data).Err()
}

// Subscribe implements Bridge.Subscribe
func (b *RedisBridge) Subscribe(ctx context.Context, h Handler) error {
	b.pubsub = b.client.Subscribe(ctx, b.topic)

	// Confirm the subscription before returning so published events
	// cannot be missed by a racing caller.
	if _, err := b.pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", b.topic, err)
	}

	go func() {
		ch := b.pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var evt Event
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					b.logger.Error("failed to unmarshal bridge event",
						zap.Error(err),
						zap.String("payload", msg.Payload))
					continue
				}
				h(ctx, &evt)
			}
		}
	}()

	return nil
}

// Close implements Bridge.Close
func (b *RedisBridge) Close() error {
	if b.pubsub != nil {
		_ = b.pubsub.Close()
	}
	return b.client.Close()
}
