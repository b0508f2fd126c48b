// Package cache provides the application cache used by the service and
// exercised by the cache health probes.
//
// Two implementations are available:
//
//   - an in-memory LRU cache with per-entry TTL and periodic cleanup
//   - a Redis cache sharing the client used by the cache-backend probe
//
// A disabled cache returns ErrCacheDisabled from every operation, which
// the probes surface as a failed check.
//
// # Example Usage
//
//	c, err := cache.New(&cfg.Cache, logger, cache.WithRedisClient(redisClient))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	err = c.Set(ctx, "key", []byte("value"), time.Minute)
//	value, err := c.Get(ctx, "key")
//
// Operations are not retried: a failing backend surfaces its error on
// the first attempt.
//
// # Thread Safety
//
// All cache implementations are safe for concurrent use.
package cache
