package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/vyrodovalexey/avaprobe/internal/cache"
	"github.com/vyrodovalexey/avaprobe/internal/config"
	"github.com/vyrodovalexey/avaprobe/internal/database"
	"github.com/vyrodovalexey/avaprobe/internal/health"
	"github.com/vyrodovalexey/avaprobe/internal/middleware"
	"github.com/vyrodovalexey/avaprobe/internal/observability"
	"github.com/vyrodovalexey/avaprobe/internal/server"
)

// application holds all application components.
type application struct {
	config      *config.Config
	server      *server.Server
	aggregator  *health.Aggregator
	db          *sql.DB
	redisClient *redis.Client
	appCache    cache.Cache
	rateLimiter *middleware.RateLimiter
	metrics     *observability.Metrics
	tracer      *observability.Tracer
}

// initApplication builds every component from the configuration.
// Unreachable dependencies do not fail startup; the probes report them.
// On failure every component built so far, the tracer included, is released.
func initApplication(
	ctx context.Context,
	cfg *config.Config,
	logger observability.Logger,
) (_ *application, err error) {
	app := &application{config: cfg}
	defer func() {
		if err != nil {
			app.close(logger)
			app.shutdownTracer(ctx, logger)
		}
	}()

	tracer, err := initTracer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	app.tracer = tracer

	app.metrics = observability.NewMetrics("avaprobe")
	app.metrics.SetBuildInfo(version, gitCommit, buildTime)
	healthMetrics := health.GetHealthMetrics()
	healthMetrics.Init()
	healthMetrics.MustRegister(app.metrics.Registry())
	middleware.GetMiddlewareMetrics().MustRegister(app.metrics.Registry())
	cache.GetCacheMetrics().MustRegister(app.metrics.Registry())

	app.db, err = database.Open(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	opts := []health.Option{
		health.WithDatabase(health.NewSQLDatabase(app.db)),
		health.WithLogger(logger),
		health.WithMetrics(healthMetrics),
	}

	cacheOpts := make([]cache.Option, 0, 2)
	if cfg.Redis != nil && cfg.Redis.URL != "" {
		app.redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		opts = append(opts, health.WithCacheBackend(health.NewRedisBackend(app.redisClient)))
		cacheOpts = append(cacheOpts, cache.WithRedisClient(app.redisClient), cache.WithKeyPrefix(cfg.Redis.KeyPrefix))
	}

	app.appCache, err = cache.New(&cfg.Cache, logger, cacheOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	opts = append(opts, health.WithAppCache(app.appCache))

	app.aggregator = health.NewAggregator(health.SettingsFromConfig(cfg), opts...)
	app.rateLimiter = middleware.NewRateLimiterFromConfig(cfg.Health.ReportRateLimit, logger)
	app.server = newServer(cfg, app, logger)

	logger.Info("application initialized",
		observability.String("app", cfg.App.Name),
		observability.String("environment", cfg.App.Environment),
		observability.String("database_driver", cfg.Database.Driver),
		observability.String("cache", cfg.Cache.Type),
		observability.Bool("redis", app.redisClient != nil),
		observability.Bool("tracing", tracer.Enabled()),
	)

	return app, nil
}

// newServer builds the HTTP server and registers the routes.
func newServer(cfg *config.Config, app *application, logger observability.Logger) *server.Server {
	mws := []middleware.Middleware{
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logging(logger),
	}
	if app.tracer.Enabled() {
		mws = append(mws, observability.TracingMiddleware(app.tracer))
	}

	srv := server.New(&cfg.Server, logger, server.WithMiddleware(mws...))
	engine := srv.Engine()

	if cfg.Observability.Metrics.Enabled {
		engine.Use(app.metrics.GinMiddleware())
		engine.GET(cfg.Observability.Metrics.Path, gin.WrapH(app.metrics.Handler()))
	}

	health.NewHandler(app.aggregator, logger).
		RegisterRoutes(engine.Group(cfg.Server.HealthPrefix), app.rateLimiter.Handler())

	return srv
}

// initTracer initializes the tracer.
func initTracer(cfg *config.Config) (*observability.Tracer, error) {
	tracerCfg := observability.TracerConfig{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		SamplingRate:   1.0,
	}

	if t := cfg.Observability.Tracing; t != nil {
		tracerCfg.Enabled = t.Enabled
		tracerCfg.SamplingRate = t.SamplingRate
		tracerCfg.OTLPEndpoint = t.OTLPEndpoint
		if t.ServiceName != "" {
			tracerCfg.ServiceName = t.ServiceName
		}
	}

	return observability.NewTracer(tracerCfg)
}

// shutdownTracer flushes and stops the tracer provider, if one was built.
func (app *application) shutdownTracer(ctx context.Context, logger observability.Logger) {
	if app.tracer == nil {
		return
	}
	if err := app.tracer.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("failed to shutdown tracer", observability.Error(err))
	}
}

// close releases dependency handles. Safe on a partially built application.
func (app *application) close(logger observability.Logger) {
	app.rateLimiter.Stop()

	if app.appCache != nil {
		if err := app.appCache.Close(); err != nil {
			logger.Error("failed to close cache", observability.Error(err))
		}
	}
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			logger.Error("failed to close redis client", observability.Error(err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			logger.Error("failed to close database", observability.Error(err))
		}
	}
}
