package bus

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisTransport implements Transport over Redis pub/sub. One transport
// is shared by all concurrent runs in a worker process; each Subscribe
// opens its own Redis subscription so teardown is independent.
type RedisTransport struct {
	client *redis.Client
}

func NewRedisTransport(client *redis.Client) *RedisTransport {
	return &RedisTransport{client: client}
}

func (t *RedisTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	return t.client.Publish(ctx, channel, payload).Err()
}

func (t *RedisTransport) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	pubsub := t.client.Subscribe(ctx, channel)
	// Force the SUBSCRIBE round-trip so a broken connection surfaces here
	// instead of as a silently dead message channel.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan []byte, 16)
	sub := &redisSubscription{pubsub: pubsub, out: out}
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- []byte(msg.Payload):
			default:
				slog.Warn("dropping pub/sub message, subscriber too slow", "channel", channel)
			}
		}
	}()
	return sub, nil
}

func (t *RedisTransport) Close() error {
	return t.client.Close()
}

type redisSubscription struct {
	pubsub *redis.PubSub
	out    chan []byte
}

func (s *redisSubscription) Messages() <-chan []byte { return s.out }

func (s *redisSubscription) Close() error { return s.pubsub.Close() }
