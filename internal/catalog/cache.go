package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lender-qualify/internal/criteria"
	"github.com/sells-group/lender-qualify/internal/model"
)

// Cache stores a parsed catalog between process restarts.
type Cache interface {
	Get(ctx context.Context, key string) ([]model.LenderCriteria, bool, error)
	Set(ctx context.Context, key string, lenders []model.LenderCriteria) error
}

// RedisCache keeps the catalog as its JSON interchange form in Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps an existing client. A zero ttl stores without expiry.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// DialRedisCache connects using a redis:// URL and verifies the connection.
func DialRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, eris.Wrap(err, "catalog: ping redis")
	}
	return NewRedisCache(client, ttl), nil
}

// Get returns the cached catalog. ok is false on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]model.LenderCriteria, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "catalog: redis get %s", key)
	}
	lenders, err := criteria.UnmarshalCatalog(data)
	if err != nil {
		return nil, false, eris.Wrapf(err, "catalog: decode cached %s", key)
	}
	return lenders, true, nil
}

// Set stores the catalog under key.
func (c *RedisCache) Set(ctx context.Context, key string, lenders []model.LenderCriteria) error {
	data, err := criteria.MarshalCatalog(lenders)
	if err != nil {
		return eris.Wrap(err, "catalog: encode catalog")
	}
	return eris.Wrapf(c.client.Set(ctx, key, data, c.ttl).Err(), "catalog: redis set %s", key)
}

// Close releases the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
