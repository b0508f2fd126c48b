package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/avaprobe/internal/config"
	"github.com/vyrodovalexey/avaprobe/internal/middleware"
	"github.com/vyrodovalexey/avaprobe/internal/observability"
)

// ErrServerRunning indicates Start was called on a running server.
var ErrServerRunning = errors.New("server already running")

const defaultMaxHeaderBytes = 1 << 20

// ginModeOnce ensures gin.SetMode is only called once.
var ginModeOnce sync.Once

// Server is the HTTP server for the probe endpoints.
type Server struct {
	engine      *gin.Engine
	httpServer  *http.Server
	middlewares []middleware.Middleware
	logger      observability.Logger
	config      config.ServerConfig

	mu       sync.RWMutex
	running  bool
	listener net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithMiddleware appends net/http middleware around the router. The
// first one listed is outermost.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(s *Server) {
		s.middlewares = append(s.middlewares, mws...)
	}
}

// WithListener serves on an existing listener instead of binding the
// configured address.
func WithListener(l net.Listener) Option {
	return func(s *Server) {
		s.listener = l
	}
}

// New creates a new Server.
func New(cfg *config.ServerConfig, logger observability.Logger, opts ...Option) *Server {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	if logger == nil {
		logger = observability.NopLogger()
	}

	s := &Server{
		engine: gin.New(),
		logger: logger,
	}
	if cfg != nil {
		s.config = *cfg
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Engine returns the gin engine routes are registered on.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the router wrapped in the configured middleware.
func (s *Server) Handler() http.Handler {
	return middleware.Chain(s.engine, s.middlewares...)
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.configuredAddr()
}

func (s *Server) configuredAddr() string {
	return net.JoinHostPort(s.config.Address, strconv.Itoa(s.config.Port))
}

// Start listens and serves until Stop is called. It returns nil after a
// graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrServerRunning
	}

	if s.listener == nil {
		lc := net.ListenConfig{}
		l, err := lc.Listen(ctx, "tcp", s.configuredAddr())
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("listen on %s: %w", s.configuredAddr(), err)
		}
		s.listener = l
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.config.ReadTimeout.Duration(),
		ReadHeaderTimeout: s.config.ReadTimeout.Duration(),
		WriteTimeout:      s.config.WriteTimeout.Duration(),
		IdleTimeout:       s.config.IdleTimeout.Duration(),
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}
	httpServer := s.httpServer
	listener := s.listener
	s.running = true
	s.mu.Unlock()

	s.logger.Info("starting HTTP server",
		observability.String("address", listener.Addr().String()),
		observability.Duration("readTimeout", s.config.ReadTimeout.Duration()),
		observability.Duration("writeTimeout", s.config.WriteTimeout.Duration()),
	)

	err := httpServer.Serve(listener)

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.RLock()
	httpServer := s.httpServer
	running := s.running
	s.mu.RUnlock()

	if !running || httpServer == nil {
		return nil
	}

	s.logger.Info("stopping HTTP server")
	start := time.Now()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("HTTP server stopped", observability.Duration("duration", time.Since(start)))
	return nil
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
