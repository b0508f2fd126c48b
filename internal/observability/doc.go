// Package observability provides logging, metrics, and tracing
// functionality for the health probe service.
//
// Structured logging is provided by zap behind the Logger interface:
//
//	logger, err := observability.NewLogger(observability.LogConfig{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("probe finished",
//	    observability.String("probe", "database"),
//	    observability.Duration("duration", elapsed),
//	)
//
// Prometheus collectors are registered on a dedicated registry exposed
// through Metrics.Handler, and OpenTelemetry tracing is configured with
// NewTracer (OTLP gRPC export is optional).
package observability
