// Package health implements the liveness, readiness, startup and
// detailed report probes consumed by orchestrators and load balancers.
//
// An Aggregator runs independent dependency probes (database, cache
// backend, application cache, disk space) and folds their outcomes into
// a single response:
//
//   - Live never touches a dependency.
//   - Ready probes the database first and stops there when it fails;
//     the cache backend and application cache only downgrade to warning.
//   - Startup never touches a dependency.
//   - Report is token-gated and always runs every probe.
//
// Dependencies are injected as narrow interfaces, so every probe failure
// is an error value converted to a ProbeResult at a single call site.
//
// # Usage
//
//	agg := health.NewAggregator(health.SettingsFromConfig(cfg),
//	    health.WithDatabase(health.NewSQLDatabase(db)),
//	    health.WithCacheBackend(health.NewRedisBackend(redisClient)),
//	    health.WithAppCache(appCache),
//	    health.WithLogger(logger),
//	)
//
//	engine := gin.New()
//	health.NewHandler(agg, logger).RegisterRoutes(engine.Group("/health"))
package health
