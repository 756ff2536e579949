// Package redis builds the client shared by the nonce cache and the rate limiter.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	// DialTimeout also bounds reads and writes; the cache must never stall a request for long
	DialTimeout time.Duration
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// New creates a new Redis client
func New(cfg Config) *redis.Client {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
}

// Connect creates a client and verifies it answers
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := New(cfg)
	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Ping tests the Redis connection
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
