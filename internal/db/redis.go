package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edvin/agentauth/internal/config"
)

// NewRedis connects to the Redis presence backend and verifies it is reachable.
func NewRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	tlsConfig, err := cfg.RedisTLS()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		TLSConfig: tlsConfig,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}

	return client, nil
}
