// Package database opens the SQL handle probed by the health checks.
//
// The PostgreSQL driver is pgx (registered as "pgx" by
// github.com/jackc/pgx/v5/stdlib); local environments can use the
// pure-Go SQLite driver registered as "sqlite" by modernc.org/sqlite.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/vyrodovalexey/avaprobe/internal/config"
	"github.com/vyrodovalexey/avaprobe/internal/observability"
)

// startupPingTimeout bounds the informational ping performed by Open.
const startupPingTimeout = 5 * time.Second

// Open opens a pooled handle for the configured driver. A failing
// initial ping is logged but not returned: the process must still come
// up so the readiness probe can report the outage.
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger observability.Logger) (*sql.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime.Duration())
	}

	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		logger.Warn("database not reachable at startup",
			observability.String("driver", cfg.Driver),
			observability.Error(err))
	} else {
		logger.Info("database connected", observability.String("driver", cfg.Driver))
	}

	return db, nil
}
