package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avaprobe/internal/cache"
	"github.com/vyrodovalexey/avaprobe/internal/config"
)

func newMemoryCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.New(&config.CacheConfig{Type: config.CacheTypeMemory, MaxEntries: 16}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSQLDatabase_PingAndSelect(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	database := NewSQLDatabase(db)
	require.NoError(t, database.Ping(context.Background()))
	require.NoError(t, database.SelectOne(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDatabase_Failures(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("canceling statement"))

	database := NewSQLDatabase(db)
	assert.EqualError(t, database.Ping(context.Background()), "connection refused")
	err = database.SelectOne(context.Background())
	assert.EqualError(t, err, "select 1: canceling statement")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDatabase_Nil(t *testing.T) {
	database := NewSQLDatabase(nil)
	assert.ErrorIs(t, database.Ping(context.Background()), ErrNilDependency)
	assert.ErrorIs(t, database.SelectOne(context.Background()), ErrNilDependency)
}

func TestAggregator_Report_WithSQLMock(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	d := newTestDeps()
	agg := NewAggregator(testSettings(),
		WithDatabase(NewSQLDatabase(db)),
		WithCacheBackend(d.backend),
		WithAppCache(d.cache),
		WithDiskStats(d.disk),
	)

	report, err := agg.Report(context.Background(), "s3cret")
	require.NoError(t, err)

	result := report.Checks[ProbeDatabase]
	assert.Equal(t, StatusOK, result.Status)
	queryTime, ok := result.Extra()["query_time_ms"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, queryTime, 0.0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisBackend_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	backend := NewRedisBackend(client)
	require.NoError(t, backend.Ping(context.Background()))

	mr.Close()
	assert.Error(t, backend.Ping(context.Background()))
}

func TestRedisBackend_Nil(t *testing.T) {
	backend := NewRedisBackend(nil)
	assert.ErrorIs(t, backend.Ping(context.Background()), ErrNilDependency)
}

func TestAggregator_Ready_WithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	appCache, err := cache.New(&config.CacheConfig{Type: config.CacheTypeRedis}, nil,
		cache.WithRedisClient(client),
		cache.WithKeyPrefix("test:"),
	)
	require.NoError(t, err)

	d := newTestDeps()
	s := testSettings()
	agg := NewAggregator(s,
		WithDatabase(d.db),
		WithCacheBackend(NewRedisBackend(client)),
		WithAppCache(appCache),
	)

	report := agg.Ready(context.Background())
	assert.True(t, report.Ready())
	assert.Equal(t, StatusOK, report.Checks[ProbeRedis].Status)
	assert.Equal(t, StatusOK, report.Checks[ProbeCache].Status)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "test:"+s.CacheKeyPrefix)
	assert.Equal(t, s.CacheTTL, mr.TTL(keys[0]))

	full, err := agg.Report(context.Background(), "s3cret")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, full.Checks[ProbeCache].Status)
	assert.Len(t, mr.Keys(), 1, "report round-trip key must be removed")
}

func TestDiskStats_RealVolume(t *testing.T) {
	usage, err := NewDiskStats().Usage(t.TempDir())
	if err != nil {
		t.Skipf("disk statistics unavailable: %v", err)
	}
	assert.Positive(t, usage.Total)
	assert.LessOrEqual(t, usage.Free, usage.Total)
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.App.Name = "svc"
	cfg.App.Environment = "local"
	cfg.App.Debug = true
	cfg.Health.Token = "tok"
	cfg.Health.ConcurrentReport = true

	s := SettingsFromConfig(cfg)

	assert.Equal(t, AppInfo{Name: "svc", Environment: "local", Debug: true, Version: config.DefaultVersion}, s.App)
	assert.True(t, s.Local)
	assert.Equal(t, "tok", s.ExpectedToken)
	assert.Equal(t, config.DefaultCacheKeyPrefix, s.CacheKeyPrefix)
	assert.Equal(t, config.DefaultProbeCacheTTL, s.CacheTTL)
	assert.Equal(t, config.DefaultDiskWarningPercent, s.DiskWarningPercent)
	assert.Equal(t, config.DefaultDiskErrorPercent, s.DiskErrorPercent)
	assert.Zero(t, s.ProbeTimeout)
	assert.True(t, s.ConcurrentReport)
}
