package health

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNilDependency indicates a probe ran without its dependency wired.
var ErrNilDependency = errors.New("dependency not configured")

// Database is the critical data store.
type Database interface {
	// Ping establishes or verifies a connection.
	Ping(ctx context.Context) error
	// SelectOne executes a trivial query.
	SelectOne(ctx context.Context) error
}

// CacheBackend is the key/value server behind the application cache.
type CacheBackend interface {
	Ping(ctx context.Context) error
}

// AppCache is the application cache abstraction exercised by the probes.
// cache.Cache satisfies it.
type AppCache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// DiskUsage is a volume capacity snapshot in bytes.
type DiskUsage struct {
	Total uint64
	Free  uint64
}

// DiskStats reports capacity of the volume containing a path.
type DiskStats interface {
	Usage(path string) (DiskUsage, error)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// sqlDatabase adapts *sql.DB.
type sqlDatabase struct {
	db *sql.DB
}

// NewSQLDatabase wraps a database handle.
func NewSQLDatabase(db *sql.DB) Database {
	return &sqlDatabase{db: db}
}

func (d *sqlDatabase) Ping(ctx context.Context) error {
	if d.db == nil {
		return ErrNilDependency
	}
	return d.db.PingContext(ctx)
}

func (d *sqlDatabase) SelectOne(ctx context.Context) error {
	if d.db == nil {
		return ErrNilDependency
	}
	var one int
	if err := d.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("select 1: %w", err)
	}
	return nil
}

// redisBackend adapts a go-redis client.
type redisBackend struct {
	client redis.UniversalClient
}

// NewRedisBackend wraps a Redis client.
func NewRedisBackend(client redis.UniversalClient) CacheBackend {
	return &redisBackend{client: client}
}

func (b *redisBackend) Ping(ctx context.Context) error {
	if b.client == nil {
		return ErrNilDependency
	}
	return b.client.Ping(ctx).Err()
}
