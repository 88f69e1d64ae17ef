package currency

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps the last known rates. Freshness is judged by the caller from
// Rates.LastUpdated, so a cache may return stale values.
type Cache interface {
	Get(ctx context.Context) (*Rates, error)
	Set(ctx context.Context, rates Rates) error
}

const (
	redisKey = "maroctour:exchange_rates"
	// stale copies survive well past freshness for the fallback path
	redisRetention = 7 * 24 * time.Hour
)

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// Get returns nil, nil on a miss.
func (c *RedisCache) Get(ctx context.Context) (*Rates, error) {
	raw, err := c.rdb.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rates Rates
	if err := json.Unmarshal(raw, &rates); err != nil {
		return nil, err
	}
	return &rates, nil
}

func (c *RedisCache) Set(ctx context.Context, rates Rates) error {
	raw, err := json.Marshal(rates)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, redisKey, raw, redisRetention).Err()
}

// MemoryCache is the in-process fallback when Redis is not configured.
type MemoryCache struct {
	mu    sync.RWMutex
	rates *Rates
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Get(context.Context) (*Rates, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.rates == nil {
		return nil, nil
	}
	cp := *c.rates
	return &cp, nil
}

func (c *MemoryCache) Set(_ context.Context, rates Rates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates = &rates
	return nil
}
