// Package redis publishes diagnostic entries on Redis pub/sub and tails them.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultDiagnosticsChannel carries every recorded failure.
const DefaultDiagnosticsChannel = "agrotrack:diagnostics"

const clientName = "agrotrack"

// Options selects the Redis server.
type Options struct {
	Addr     string
	Password string
	DB       int
}

type PubSub struct {
	client *redis.Client
}

// New connects and pings the server so a misconfigured address fails at startup.
func New(ctx context.Context, opts Options) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       opts.Addr,
		Password:   opts.Password,
		DB:         opts.DB,
		ClientName: clientName,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping %s: %w", opts.Addr, err)
	}

	return &PubSub{client: client}, nil
}

func (ps *PubSub) Close() error {
	if err := ps.client.Close(); err != nil {
		return fmt.Errorf("redis.PubSub.Close: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (ps *PubSub) Ping(ctx context.Context) error {
	if err := ps.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis.PubSub.Ping: %w", err)
	}
	return nil
}

// Publish sends a raw payload and returns the number of subscribers that received it.
func (ps *PubSub) Publish(ctx context.Context, channel string, payload []byte) (int64, error) {
	n, err := ps.client.Publish(ctx, channel, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("redis.PubSub.Publish: %w", err)
	}
	return n, nil
}

// PublishJSON encodes v and publishes it.
func (ps *PubSub) PublishJSON(ctx context.Context, channel string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis.PubSub.PublishJSON: encode: %w", err)
	}
	if _, err := ps.Publish(ctx, channel, payload); err != nil {
		return fmt.Errorf("redis.PubSub.PublishJSON: %w", err)
	}
	return nil
}

// Subscribe streams payloads from channel until ctx ends or the returned
// cleanup is called. buffer bounds how many payloads may wait unread.
func (ps *PubSub) Subscribe(ctx context.Context, channel string, buffer int) (<-chan []byte, func(), error) {
	sub := ps.client.Subscribe(ctx, channel)

	// Wait for subscription confirmation.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis.PubSub.Subscribe: receive confirmation: %w", err)
	}

	out := make(chan []byte, max(buffer, 1))
	go forward(ctx, sub.Channel(), out)

	cleanup := func() {
		_ = sub.Close()
	}

	return out, cleanup, nil
}

func forward(ctx context.Context, in <-chan *redis.Message, out chan<- []byte) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}
}

// DiagnosticsChannel returns the channel diagnostics are published on. An
// empty base selects DefaultDiagnosticsChannel; env, when set, scopes the
// channel so development and production entries do not mix.
func DiagnosticsChannel(base, env string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultDiagnosticsChannel
	}
	if env = strings.TrimSpace(env); env != "" {
		return base + ":" + env
	}
	return base
}
