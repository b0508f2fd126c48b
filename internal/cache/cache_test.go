package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avaprobe/internal/config"
)

func TestNew(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	tests := []struct {
		name    string
		cfg     *config.CacheConfig
		opts    []Option
		wantErr bool
	}{
		{name: "nil config", cfg: nil, wantErr: true},
		{name: "memory", cfg: &config.CacheConfig{Type: config.CacheTypeMemory}},
		{name: "empty type defaults to memory", cfg: &config.CacheConfig{}},
		{name: "disabled", cfg: &config.CacheConfig{Type: config.CacheTypeDisabled}},
		{name: "redis without client", cfg: &config.CacheConfig{Type: config.CacheTypeRedis}, wantErr: true},
		{
			name: "redis",
			cfg:  &config.CacheConfig{Type: config.CacheTypeRedis},
			opts: []Option{WithRedisClient(client)},
		},
		{name: "unknown", cfg: &config.CacheConfig{Type: "memcached"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg, nil, tt.opts...)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.NoError(t, c.Close())
		})
	}
}

func TestDisabledCache(t *testing.T) {
	c, err := New(&config.CacheConfig{Type: config.CacheTypeDisabled}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, c.Set(ctx, "k", []byte("v"), time.Minute), ErrCacheDisabled)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheDisabled)
	assert.ErrorIs(t, c.Delete(ctx, "k"), ErrCacheDisabled)
	_, err = c.Exists(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheDisabled)
}

func TestCacheStats_HitRate(t *testing.T) {
	assert.Zero(t, CacheStats{}.HitRate())
	assert.Equal(t, 75.0, CacheStats{Hits: 3, Misses: 1}.HitRate())
}

func TestNewRedisClient(t *testing.T) {
	_, err := NewRedisClient(nil)
	assert.Error(t, err)

	_, err = NewRedisClient(&config.RedisConfig{URL: "http://not-redis"})
	assert.Error(t, err)

	client, err := NewRedisClient(&config.RedisConfig{
		URL:            "redis://user:pw@localhost:6380/2",
		PoolSize:       7,
		ConnectTimeout: config.Duration(2 * time.Second),
		ReadTimeout:    config.Duration(time.Second),
		WriteTimeout:   config.Duration(3 * time.Second),
	})
	require.NoError(t, err)
	defer client.Close()

	opts := client.Options()
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
	assert.Equal(t, time.Second, opts.ReadTimeout)
	assert.Equal(t, 3*time.Second, opts.WriteTimeout)
}

func TestNewRedisClient_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(&config.RedisConfig{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestCacheMetrics_MustRegister(t *testing.T) {
	m := GetCacheMetrics()
	assert.Same(t, m, GetCacheMetrics())
	assert.NotPanics(t, func() { m.MustRegister(prometheus.NewRegistry()) })
}
