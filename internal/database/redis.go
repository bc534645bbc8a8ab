package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns a connected client, or nil when REDIS_ADDR is unset
// or the server does not answer a ping. Callers fall back to in-process
// state on nil.
func NewRedisClient(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, using in-memory rate limiting", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}

	slog.Info("redis connected", "addr", cfg.RedisAddr)
	return client
}
