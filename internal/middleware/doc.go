// Package middleware provides HTTP middleware components for the
// probe server.
//
// # Middleware Components
//
//   - Request ID: unique request identifier injection
//   - Recovery: panic recovery with stack trace logging
//   - Logging: structured access logging
//   - Rate Limiting: token bucket limiter for the report endpoint
//
// # Usage
//
// net/http middleware wraps the whole router:
//
//	handler := middleware.Chain(engine,
//	    middleware.RequestID(),
//	    middleware.Recovery(logger),
//	    middleware.Logging(logger),
//	)
//
// The rate limiter is mounted on a single gin route:
//
//	rl := middleware.NewRateLimiter(5, 10, true)
//	group.GET("/report", rl.Handler(), reportHandler)
package middleware
