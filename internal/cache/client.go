package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vyrodovalexey/avaprobe/internal/config"
)

// NewRedisClient builds a Redis client from configuration. It does not
// contact the server: Redis is a non-critical dependency and its
// reachability is reported by the health probes instead of blocking
// startup.
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	applyRedisPoolOptions(opts, cfg)

	return redis.NewClient(opts), nil
}

// applyRedisPoolOptions applies pool and timeout overrides to Redis options.
func applyRedisPoolOptions(opts *redis.Options, cfg *config.RedisConfig) {
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.ConnectTimeout > 0 {
		opts.DialTimeout = cfg.ConnectTimeout.Duration()
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout.Duration()
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout.Duration()
	}
}
