package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	activeItemsKey   = "catalog:active:v1"
	activeVersionKey = "catalog:active:version"
)

var errStaleListing = errors.New("catalog listing is stale")

// Cache holds the active listing. Version changes on every Invalidate; a
// listing read under an older version is never stored.
type Cache interface {
	GetActive(ctx context.Context) ([]*Item, bool)
	Version(ctx context.Context) int64
	SetActive(ctx context.Context, version int64, items []*Item)
	Invalidate(ctx context.Context)
}

// RedisCache stores the listing as one JSON value. A nil client disables caching.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates the listing cache
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) GetActive(ctx context.Context) ([]*Item, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, activeItemsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("catalog cache read failed")
		}
		return nil, false
	}
	var items []*Item
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn().Err(err).Msg("catalog cache entry corrupt")
		return nil, false
	}
	return items, true
}

// Version returns the invalidation counter, or -1 when Redis cannot be read
func (c *RedisCache) Version(ctx context.Context) int64 {
	if c.client == nil {
		return 0
	}
	v, err := c.client.Get(ctx, activeVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0
	}
	if err != nil {
		log.Warn().Err(err).Msg("catalog cache version read failed")
		return -1
	}
	return v
}

// SetActive stores items only while the version is still the one observed
// before they were read from the database.
func (c *RedisCache) SetActive(ctx context.Context, version int64, items []*Item) {
	if c.client == nil || version < 0 {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, activeVersionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleListing
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, activeItemsKey, raw, c.ttl)
			return nil
		})
		return err
	}, activeVersionKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleListing), errors.Is(err, redis.TxFailedErr):
		log.Debug().Int64("version", version).Msg("catalog listing changed while loading, not cached")
	default:
		log.Warn().Err(err).Msg("catalog cache write failed")
	}
}

func (c *RedisCache) Invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, activeVersionKey)
		pipe.Del(ctx, activeItemsKey)
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("catalog cache invalidate failed")
	}
}
