package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiaoying/sales-assistant/internal/pkg/config"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultKeyPrefix = "revoked:"
)

// Open connects to the server described by cfg, checks it with a ping and
// returns a revocation set living under cfg.KeyPrefix. The client is closed
// again when the ping fails.
func Open(ctx context.Context, cfg config.RedisConfig) (*TokenRevoker, error) {
	client := newClient(cfg)

	pingCtx, cancel := context.WithTimeout(ctx, timeoutOf(cfg))
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return newTokenRevoker(client, prefix), nil
}

// newClient maps the service settings onto client options. Every network
// step is bounded by the configured timeout.
func newClient(cfg config.RedisConfig) *redis.Client {
	timeout := timeoutOf(cfg)
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
}

func timeoutOf(cfg config.RedisConfig) time.Duration {
	if cfg.Timeout <= 0 {
		return defaultTimeout
	}
	return cfg.Timeout
}
