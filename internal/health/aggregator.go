package health

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vyrodovalexey/avaprobe/internal/observability"
)

// ErrUnauthorized is returned by Report when the token is rejected.
var ErrUnauthorized = errors.New("unauthorized")

// Aggregator runs dependency probes and folds them into reports.
type Aggregator struct {
	settings atomic.Pointer[Settings]

	db      Database
	backend CacheBackend
	cache   AppCache
	disk    DiskStats
	clock   Clock

	logger    observability.Logger
	metrics   *HealthMetrics
	startTime time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithDatabase sets the critical database dependency.
func WithDatabase(db Database) Option {
	return func(a *Aggregator) {
		a.db = db
	}
}

// WithCacheBackend sets the cache backend pinged by the redis probe.
func WithCacheBackend(backend CacheBackend) Option {
	return func(a *Aggregator) {
		a.backend = backend
	}
}

// WithAppCache sets the application cache.
func WithAppCache(c AppCache) Option {
	return func(a *Aggregator) {
		a.cache = c
	}
}

// WithDiskStats overrides the disk stats provider.
func WithDiskStats(disk DiskStats) Option {
	return func(a *Aggregator) {
		a.disk = disk
	}
}

// WithClock overrides the clock.
func WithClock(clock Clock) Option {
	return func(a *Aggregator) {
		a.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *HealthMetrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

// NewAggregator creates an Aggregator. Dependencies left unset make
// their probes fail with ErrNilDependency.
func NewAggregator(settings Settings, opts ...Option) *Aggregator {
	a := &Aggregator{
		disk:   NewDiskStats(),
		clock:  systemClock{},
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil {
		a.metrics = GetHealthMetrics()
	}
	a.startTime = a.clock.Now()
	a.settings.Store(&settings)
	return a
}

// UpdateSettings replaces the runtime settings.
func (a *Aggregator) UpdateSettings(settings Settings) {
	a.settings.Store(&settings)
	a.logger.Info("health settings updated",
		observability.String("environment", settings.App.Environment),
		observability.Bool("local", settings.Local),
	)
}

// Settings returns the current settings.
func (a *Aggregator) Settings() Settings {
	return *a.settings.Load()
}

// Live reports process liveness without contacting any dependency.
func (a *Aggregator) Live() string {
	return LiveBody
}

// Ready probes the database and stops there on failure. Cache backend
// and application cache failures are downgraded to warning.
func (a *Aggregator) Ready(ctx context.Context) *ReadyReport {
	s := a.settings.Load()
	checks := make(map[string]ProbeResult, 3)

	db := a.runProbe(ctx, s, ProbeDatabase, StatusError, a.probeDatabasePing)
	checks[ProbeDatabase] = db
	if db.Status == StatusError {
		return &ReadyReport{
			Status:    ReadyStatusError,
			Checks:    checks,
			Timestamp: a.timestamp(),
		}
	}

	checks[ProbeRedis] = a.runProbe(ctx, s, ProbeRedis, StatusWarning, a.probeBackend)
	checks[ProbeCache] = a.runProbe(ctx, s, ProbeCache, StatusWarning, a.probeCacheWrite)

	return &ReadyReport{
		Status:    ReadyStatusReady,
		Checks:    checks,
		Timestamp: a.timestamp(),
	}
}

// Startup reports process bring-up without contacting any dependency.
func (a *Aggregator) Startup() *StartupReport {
	s := a.settings.Load()
	return &StartupReport{
		Status:      StartupStatus,
		AppName:     s.App.Name,
		Environment: s.App.Environment,
	}
}

// Authorize checks a report token. The local environment always passes;
// an empty expected token never matches.
func (a *Aggregator) Authorize(token string) bool {
	return authorize(a.settings.Load(), token)
}

func authorize(s *Settings, token string) bool {
	if s.Local {
		return true
	}
	if s.ExpectedToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.ExpectedToken)) == 1
}

// Report runs every probe independently and returns the detailed report.
// It returns ErrUnauthorized before any probe runs when the token is rejected.
func (a *Aggregator) Report(ctx context.Context, token string) (*DetailedReport, error) {
	s := a.settings.Load()
	if !authorize(s, token) {
		a.metrics.unauthorizedReports.Inc()
		return nil, ErrUnauthorized
	}

	probes := []struct {
		name string
		fn   probeFunc
	}{
		{ProbeDatabase, a.probeDatabaseQuery},
		{ProbeRedis, a.probeBackend},
		{ProbeCache, a.probeCacheRoundTrip},
		{ProbeDiskSpace, a.probeDisk},
	}

	results := make([]ProbeResult, len(probes))
	if s.ConcurrentReport {
		// No derived context: probes never cancel each other.
		var g errgroup.Group
		for i, p := range probes {
			g.Go(func() error {
				results[i] = a.runProbe(ctx, s, p.name, StatusError, p.fn)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, p := range probes {
			results[i] = a.runProbe(ctx, s, p.name, StatusError, p.fn)
		}
	}

	checks := make(map[string]ProbeResult, len(probes))
	for i, p := range probes {
		checks[p.name] = results[i]
	}

	return &DetailedReport{
		App:    s.App,
		Checks: checks,
		Uptime: Uptime{
			Source:            UptimeSource,
			SecondsSinceStart: int64(a.clock.Now().Sub(a.startTime) / time.Second),
		},
		Timestamp: a.timestamp(),
	}, nil
}

func (a *Aggregator) timestamp() string {
	return a.clock.Now().UTC().Format(time.RFC3339)
}
