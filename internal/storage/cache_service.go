package storage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ibor-valuation/internal/config"
	"github.com/ibor-valuation/internal/errors"
)

// CacheService stores JSON values in Redis under typed keys
type CacheService struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewCacheService creates a new cache service
func NewCacheService(redis *RedisCache, ttl time.Duration) *CacheService {
	return &CacheService{
		redis: redis,
		ttl:   ttl,
	}
}

// CacheKeyType represents different types of cache keys
type CacheKeyType string

const (
	// CacheKeyPortfolioVersions holds the versions of a portfolio code
	CacheKeyPortfolioVersions CacheKeyType = "portfolio"
	// CacheKeyInstrumentVersions holds the versions of an instrument code
	CacheKeyInstrumentVersions CacheKeyType = "instrument"
	// CacheKeyInstrumentByID holds the versions of an instrument identity
	CacheKeyInstrumentByID CacheKeyType = "instrument-id"
)

// cacheKeyPrefix keeps every key of this service under one namespace
const cacheKeyPrefix = "ibor"

// GenerateCacheKey generates a cache key for a given type and parameters
// Format: ibor:<type>:<param1>:<param2>:...
// Codes are case-sensitive, so parameters are kept as given.
func (c *CacheService) GenerateCacheKey(keyType CacheKeyType, params ...string) string {
	parts := append([]string{cacheKeyPrefix, string(keyType)}, params...)
	return strings.Join(parts, ":")
}

// Set stores a value in cache with the configured TTL
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal "+key, err)
	}
	if err := c.redis.Set(ctx, key, data, c.ttl); err != nil {
		return errors.NewCacheError("write "+key, err)
	}
	return nil
}

// Get retrieves a value from cache and deserializes it. A miss is
// (false, nil).
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.redis.Get(ctx, key)
	if stderrors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.NewCacheError("read "+key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, errors.NewCacheError("unmarshal "+key, err)
	}
	return true, nil
}

// Invalidate removes one or more keys from cache
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.redis.Del(ctx, keys...); err != nil {
		return errors.NewCacheError("delete keys", err)
	}
	return nil
}

// InvalidatePattern removes all keys matching a pattern
// Pattern examples: "ibor:portfolio:*", "ibor:instrument:EQ-*"
func (c *CacheService) InvalidatePattern(ctx context.Context, pattern string) error {
	keys, err := c.redis.Scan(ctx, pattern)
	if err != nil {
		return errors.NewCacheError("scan "+pattern, err)
	}
	return c.Invalidate(ctx, keys...)
}

// InvalidateDimensions drops every cached dimension list
func (c *CacheService) InvalidateDimensions(ctx context.Context) error {
	return c.InvalidatePattern(ctx, cacheKeyPrefix+":*")
}

// FlushDimensionCache connects to Redis and drops every cached dimension
// list. Run after dimension tables change so readers do not serve stale
// versions until the TTL runs out.
func FlushDimensionCache(ctx context.Context, cfg *config.RedisConfig) error {
	rc, err := NewRedisCache(ctx, cfg)
	if err != nil {
		return errors.NewCacheError("connect", err)
	}
	defer func() { _ = rc.Close() }()

	return NewCacheService(rc, 0).InvalidateDimensions(ctx)
}
