package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avaprobe/internal/config"
	"github.com/vyrodovalexey/avaprobe/internal/observability"
)

func newTestRedisCache(t *testing.T, prefix string, ttl time.Duration) (*redisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := newRedisCache(&config.CacheConfig{TTL: config.Duration(ttl)}, client, prefix, observability.NopLogger())
	return c, mr
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	c, mr := newTestRedisCache(t, "probe:", 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "health_check_1", []byte("test"), time.Minute))
	assert.True(t, mr.Exists("probe:health_check_1"))
	assert.Equal(t, time.Minute, mr.TTL("probe:health_check_1"))

	v, err := c.Get(ctx, "health_check_1")
	require.NoError(t, err)
	assert.Equal(t, []byte("test"), v)

	ok, err := c.Exists(ctx, "health_check_1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, "health_check_1"))
	_, err = c.Get(ctx, "health_check_1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestRedisCache_DefaultPrefixAndTTL(t *testing.T) {
	c, mr := newTestRedisCache(t, "", 30*time.Second)

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))

	assert.True(t, mr.Exists(defaultRedisKeyPrefix+"k"))
	assert.Equal(t, 30*time.Second, mr.TTL(defaultRedisKeyPrefix+"k"))
}

func TestRedisCache_ServerDown(t *testing.T) {
	c, mr := newTestRedisCache(t, "p:", 0)
	mr.Close()
	ctx := context.Background()

	assert.Error(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Error(t, c.Delete(ctx, "k"))
	_, err = c.Exists(ctx, "k")
	assert.Error(t, err)
}

func TestRedisCache_CloseLeavesClientOpen(t *testing.T) {
	c, _ := newTestRedisCache(t, "p:", 0)

	require.NoError(t, c.Close())
	assert.NoError(t, c.client.Ping(context.Background()).Err())
}
