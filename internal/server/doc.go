// Package server runs the HTTP listener that serves the probe endpoints.
//
// The Server owns a gin engine for routing and wraps it in net/http
// middleware before handing it to http.Server:
//
//	srv := server.New(&cfg.Server, logger,
//	    server.WithMiddleware(middleware.RequestID(), middleware.Recovery(logger)),
//	)
//	health.NewHandler(agg, logger).RegisterRoutes(srv.Engine().Group("/health"))
//	go func() { _ = srv.Start(ctx) }()
//	defer srv.Stop(shutdownCtx)
package server
