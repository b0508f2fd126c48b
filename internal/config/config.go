package config

import "time"

// Database driver names.
const (
	// DriverPGX is the PostgreSQL driver registered by pgx/v5/stdlib.
	DriverPGX = "pgx"
	// DriverSQLite is the pure-Go SQLite driver registered by modernc.org/sqlite.
	DriverSQLite = "sqlite"
)

// Cache types.
const (
	// CacheTypeMemory is the in-process LRU cache.
	CacheTypeMemory = "memory"
	// CacheTypeRedis is the Redis-backed cache.
	CacheTypeRedis = "redis"
	// CacheTypeDisabled turns the application cache off.
	CacheTypeDisabled = "disabled"
)

// Default values.
const (
	DefaultAppName            = "avaprobe"
	DefaultEnvironment        = "production"
	DefaultVersion            = "1.0.0"
	DefaultLocalEnvironment   = "local"
	DefaultHealthPrefix       = "/health"
	DefaultPort               = 8080
	DefaultDiskWarningPercent = 75.0
	DefaultDiskErrorPercent   = 90.0
	DefaultCacheKeyPrefix     = "health_check_"
	DefaultProbeCacheTTL      = 60 * time.Second
	DefaultCacheMaxEntries    = 10000
	DefaultMetricsPath        = "/metrics"
)

// Config is the root configuration.
type Config struct {
	App           AppConfig           `yaml:"app"`
	Server        ServerConfig        `yaml:"server"`
	Health        HealthConfig        `yaml:"health"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         *RedisConfig        `yaml:"redis,omitempty"`
	Cache         CacheConfig         `yaml:"cache"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// AppConfig describes the application reported by the startup and
// report endpoints.
type AppConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Environment string `yaml:"environment" validate:"required"`
	Debug       bool   `yaml:"debug"`
	Version     string `yaml:"version" validate:"required"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string   `yaml:"address"`
	Port         int      `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout  Duration `yaml:"readTimeout,omitempty"`
	WriteTimeout Duration `yaml:"writeTimeout,omitempty"`
	IdleTimeout  Duration `yaml:"idleTimeout,omitempty"`

	// HealthPrefix is the route group the probe endpoints are mounted on.
	HealthPrefix string `yaml:"healthPrefix" validate:"required,startswith=/"`
}

// HealthConfig holds probe settings.
type HealthConfig struct {
	// Token is the expected X-Health-Token value for the report endpoint.
	// An empty token never matches; only the local environment bypass applies.
	Token string `yaml:"token"`

	// LocalEnvironment names the environment in which the report
	// endpoint is served without a token.
	LocalEnvironment string `yaml:"localEnvironment"`

	// StoragePath is the filesystem path whose volume is measured by the
	// disk space probe.
	StoragePath string `yaml:"storagePath" validate:"required"`

	DiskWarningPercent float64 `yaml:"diskWarningPercent" validate:"gt=0,lte=100"`
	DiskErrorPercent   float64 `yaml:"diskErrorPercent" validate:"gt=0,lte=100"`

	CacheKeyPrefix string   `yaml:"cacheKeyPrefix"`
	CacheTTL       Duration `yaml:"cacheTTL,omitempty"`

	// ProbeTimeout bounds each probe individually. Zero leaves
	// cancellation to the request context.
	ProbeTimeout Duration `yaml:"probeTimeout,omitempty"`

	// ConcurrentReport runs the report probes in parallel.
	ConcurrentReport bool `yaml:"concurrentReport"`

	ReportRateLimit *RateLimitConfig `yaml:"reportRateLimit,omitempty"`
}

// RateLimitConfig configures a token bucket.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerSecond int  `yaml:"requestsPerSecond" validate:"min=0"`
	Burst             int  `yaml:"burst" validate:"min=0"`
	PerClient         bool `yaml:"perClient"`
}

// DatabaseConfig holds the database handle settings.
type DatabaseConfig struct {
	Driver          string   `yaml:"driver" validate:"required,oneof=pgx sqlite"`
	DSN             string   `yaml:"dsn" validate:"required"`
	MaxOpenConns    int      `yaml:"maxOpenConns,omitempty" validate:"min=0"`
	MaxIdleConns    int      `yaml:"maxIdleConns,omitempty" validate:"min=0"`
	ConnMaxLifetime Duration `yaml:"connMaxLifetime,omitempty"`
}

// RedisConfig holds the Redis client settings. The same client backs
// the cache-backend ping probe and, when selected, the application cache.
type RedisConfig struct {
	// URL format: redis://[user:password@]host:port[/db]
	URL            string   `yaml:"url" validate:"required"`
	PoolSize       int      `yaml:"poolSize,omitempty" validate:"min=0"`
	ConnectTimeout Duration `yaml:"connectTimeout,omitempty"`
	ReadTimeout    Duration `yaml:"readTimeout,omitempty"`
	WriteTimeout   Duration `yaml:"writeTimeout,omitempty"`
	KeyPrefix      string   `yaml:"keyPrefix,omitempty"`
}

// CacheConfig selects the application cache implementation.
type CacheConfig struct {
	Type       string   `yaml:"type" validate:"required,oneof=memory redis disabled"`
	TTL        Duration `yaml:"ttl,omitempty"`
	MaxEntries int      `yaml:"maxEntries,omitempty" validate:"min=0"`
}

// ObservabilityConfig groups logging, metrics and tracing settings.
type ObservabilityConfig struct {
	Logging LoggingConfig  `yaml:"logging"`
	Metrics MetricsConfig  `yaml:"metrics"`
	Tracing *TracingConfig `yaml:"tracing,omitempty"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
	Output string `yaml:"output" validate:"omitempty,oneof=stdout stderr"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"omitempty,startswith=/"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	OTLPEndpoint string  `yaml:"otlpEndpoint"`
	SamplingRate float64 `yaml:"samplingRate" validate:"min=0,max=1"`
	ServiceName  string  `yaml:"serviceName"`
}

// DefaultConfig returns a configuration populated with defaults. The
// database DSN has no default and must be provided.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.App.Name == "" {
		c.App.Name = DefaultAppName
	}
	if c.App.Environment == "" {
		c.App.Environment = DefaultEnvironment
	}
	if c.App.Version == "" {
		c.App.Version = DefaultVersion
	}

	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(10 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(30 * time.Second)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(120 * time.Second)
	}
	if c.Server.HealthPrefix == "" {
		c.Server.HealthPrefix = DefaultHealthPrefix
	}

	if c.Health.LocalEnvironment == "" {
		c.Health.LocalEnvironment = DefaultLocalEnvironment
	}
	if c.Health.StoragePath == "" {
		c.Health.StoragePath = "."
	}
	if c.Health.DiskWarningPercent == 0 {
		c.Health.DiskWarningPercent = DefaultDiskWarningPercent
	}
	if c.Health.DiskErrorPercent == 0 {
		c.Health.DiskErrorPercent = DefaultDiskErrorPercent
	}
	if c.Health.CacheKeyPrefix == "" {
		c.Health.CacheKeyPrefix = DefaultCacheKeyPrefix
	}
	if c.Health.CacheTTL == 0 {
		c.Health.CacheTTL = Duration(DefaultProbeCacheTTL)
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverPGX
	}

	if c.Cache.Type == "" {
		if c.Redis != nil && c.Redis.URL != "" {
			c.Cache.Type = CacheTypeRedis
		} else {
			c.Cache.Type = CacheTypeMemory
		}
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = DefaultCacheMaxEntries
	}

	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "json"
	}
	if c.Observability.Logging.Output == "" {
		// JSON to stderr in production so container runtimes collect it.
		if c.App.Environment == DefaultEnvironment {
			c.Observability.Logging.Output = "stderr"
		} else {
			c.Observability.Logging.Output = "stdout"
		}
	}
	if c.Observability.Metrics.Path == "" {
		c.Observability.Metrics.Path = DefaultMetricsPath
	}
}

// IsLocal reports whether the configured environment is the local one.
func (c *Config) IsLocal() bool {
	return c.App.Environment == c.Health.LocalEnvironment
}
