package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/avaprobe/internal/config"
	"github.com/vyrodovalexey/avaprobe/internal/observability"
)

const (
	backendRedis = "redis"

	defaultRedisKeyPrefix = "avaprobe:"
)

// redisCache implements Cache on top of a shared Redis client.
type redisCache struct {
	logger     observability.Logger
	client     *redis.Client
	keyPrefix  string
	defaultTTL time.Duration

	hits   int64
	misses int64
}

func newRedisCache(
	cfg *config.CacheConfig, client *redis.Client, keyPrefix string, logger observability.Logger,
) *redisCache {
	if keyPrefix == "" {
		keyPrefix = defaultRedisKeyPrefix
	}

	c := &redisCache{
		logger:     logger,
		client:     client,
		keyPrefix:  keyPrefix,
		defaultTTL: cfg.TTL.Duration(),
	}

	logger.Info("redis cache initialized",
		observability.String("keyPrefix", keyPrefix),
		observability.Duration("defaultTTL", c.defaultTTL))

	return c
}

func (c *redisCache) resolveKey(key string) string {
	return c.keyPrefix + key
}

// recordFailure marks the span and metrics for a failed operation.
func (c *redisCache) recordFailure(span trace.Span, op, key string, err error) {
	GetCacheMetrics().errorsTotal.WithLabelValues(backendRedis, op).Inc()
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
	c.logger.Debug("redis "+op+" failed",
		observability.String("key", key),
		observability.Error(err))
}

// Get retrieves a value from Redis.
func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := startSpan(ctx, "Get", backendRedis, key)
	defer span.End()
	defer observeDuration(backendRedis, "get", time.Now())

	val, err := c.client.Get(ctx, c.resolveKey(key)).Bytes()
	switch {
	case err == nil:
		atomic.AddInt64(&c.hits, 1)
		GetCacheMetrics().hitsTotal.WithLabelValues(backendRedis).Inc()
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return val, nil
	case errors.Is(err, redis.Nil):
		atomic.AddInt64(&c.misses, 1)
		GetCacheMetrics().missesTotal.WithLabelValues(backendRedis).Inc()
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return nil, ErrCacheMiss
	default:
		c.recordFailure(span, "get", key, err)
		return nil, err
	}
}

// Set stores a value in Redis.
func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, span := startSpan(ctx, "Set", backendRedis, key)
	defer span.End()
	defer observeDuration(backendRedis, "set", time.Now())

	if ttl == 0 {
		ttl = c.defaultTTL
	}

	if err := c.client.Set(ctx, c.resolveKey(key), value, ttl).Err(); err != nil {
		c.recordFailure(span, "set", key, err)
		return err
	}
	return nil
}

// Delete removes a value from Redis.
func (c *redisCache) Delete(ctx context.Context, key string) error {
	ctx, span := startSpan(ctx, "Delete", backendRedis, key)
	defer span.End()
	defer observeDuration(backendRedis, "delete", time.Now())

	if err := c.client.Del(ctx, c.resolveKey(key)).Err(); err != nil {
		c.recordFailure(span, "delete", key, err)
		return err
	}
	return nil
}

// Exists checks if a key exists in Redis.
func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	ctx, span := startSpan(ctx, "Exists", backendRedis, key)
	defer span.End()
	defer observeDuration(backendRedis, "exists", time.Now())

	n, err := c.client.Exists(ctx, c.resolveKey(key)).Result()
	if err != nil {
		c.recordFailure(span, "exists", key, err)
		return false, err
	}
	return n > 0, nil
}

// Close is a no-op: the client is owned by the caller.
func (c *redisCache) Close() error {
	return nil
}

// Stats returns cache statistics. Size is not tracked for Redis.
func (c *redisCache) Stats() CacheStats {
	return CacheStats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
	}
}
