package prices

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/radixwiki/wiki/src/config"
	"github.com/radixwiki/wiki/src/logging"
	"github.com/radixwiki/wiki/src/oops"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "wiki:price:"

// Cache keeps recent quotes in redis. A Cache with no client, or a nil
// *Cache, never hits, so the wiki works without redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// NewRedisClient connects to the configured redis. It returns nil, after
// logging, when redis can't be reached.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logging.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis is unavailable; price quotes will not be cached")
		client.Close()
		return nil
	}
	return client
}

func (c *Cache) IsAvailable() bool {
	return c != nil && c.client != nil
}

func (c *Cache) Get(ctx context.Context, address string) (*Quote, bool) {
	if !c.IsAvailable() {
		return nil, false
	}
	data, err := c.client.Get(ctx, keyPrefix+address).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.ExtractLogger(ctx).Warn().Err(err).Msg("failed to read cached price")
		}
		return nil, false
	}
	var q Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, false
	}
	return &q, true
}

func (c *Cache) Set(ctx context.Context, q *Quote) {
	if !c.IsAvailable() {
		return
	}
	if err := c.set(ctx, q); err != nil {
		logging.ExtractLogger(ctx).Warn().Err(err).Msg("failed to cache price")
	}
}

func (c *Cache) set(ctx context.Context, q *Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return oops.New(err, "failed to encode quote")
	}
	return c.client.Set(ctx, keyPrefix+q.ResourceAddress, data, c.ttl).Err()
}
