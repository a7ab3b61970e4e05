package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisConfig for the catalog cache and live fan-out client
type RedisConfig struct {
	URL        string
	PoolSize   int
	ClientName string
}

// NewRedis connects to Redis. An empty URL returns a nil client: the catalog
// then reads straight from Postgres and live updates stay on this instance.
func NewRedis(cfg RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		log.Warn().Msg("Redis URL not configured, running without Redis")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if cfg.PoolSize > 0 {
		opt.PoolSize = cfg.PoolSize
	}
	if cfg.ClientName != "" {
		opt.ClientName = cfg.ClientName
	}
	// cache reads sit on the request path and must fail fast
	opt.DialTimeout = 2 * time.Second
	opt.ReadTimeout = 500 * time.Millisecond
	opt.WriteTimeout = 500 * time.Millisecond

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().Str("addr", opt.Addr).Int("db", opt.DB).Int("pool_size", opt.PoolSize).Msg("Connected to Redis")
	return client, nil
}

// CloseRedis closes client if it is non-nil
func CloseRedis(client *redis.Client) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing Redis connection")
		return
	}
	log.Info().Msg("Redis connection closed")
}
