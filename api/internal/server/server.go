// Package server runs the advisor HTTP API with its middleware chain,
// health endpoints and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"kujang-advisor/api/internal/config"
	"kujang-advisor/api/internal/handle"
)

const name = "kujang-advisor"

// overridden during build with ldflags
var version = "dev"

// Info is reported by GET /.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Backend string `json:"backend"`
	Model   string `json:"model,omitempty"`
	History bool   `json:"history"`
}

type Option func(*Server)

// WithReadiness adds a dependency check to GET /ready.
func WithReadiness(check func() bool) Option {
	return func(s *Server) { s.dependencyReady = check }
}

func WithInfo(info Info) Option {
	return func(s *Server) {
		info.Name = name
		info.Version = version
		s.info = info
	}
}

type Server struct {
	config      config.ServerConfig
	httpServer  *http.Server
	rateLimiter *rate.Limiter
	handle      *handle.Handle

	mu              sync.RWMutex
	ready           bool
	dependencyReady func() bool
	info            Info
}

func New(cfg config.ServerConfig, h *handle.Handle, opts ...Option) *Server {
	s := &Server{
		config:      cfg,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
		handle:      h,
		info:        Info{Name: name, Version: version},
	}
	for _, o := range opts {
		o(s)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      s.setupRoutes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// system endpoints, not rate limited
	mux.HandleFunc("/{$}", s.handleInfo)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/calculate", s.withMiddleware(s.handle.Calculate))
	mux.HandleFunc("/api/calculations", s.withMiddleware(s.handle.Calculations))

	return mux
}

func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return false
	}
	return s.dependencyReady == nil || s.dependencyReady()
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.SetReady(true)
	zap.L().Info("starting server", zap.String("addr", s.httpServer.Addr))

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.SetReady(false)
		return eris.Wrap(err, "listen")
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	zap.L().Info("shutting down server")
	return s.httpServer.Shutdown(shutdownCtx)
}

// Run starts the server and stops it on SIGINT or SIGTERM.
func (s *Server) Run(ctx context.Context) error {
	zap.L().Info("server config",
		zap.String("version", version),
		zap.String("address", s.httpServer.Addr),
		zap.Float64("rate_limit", s.config.RateLimit),
		zap.Int("rate_limit_burst", s.config.RateLimitBurst),
		zap.Duration("read_timeout", s.config.ReadTimeout),
		zap.Duration("write_timeout", s.config.WriteTimeout),
		zap.Duration("shutdown_timeout", s.config.ShutdownTimeout),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "server error")
	}
	zap.L().Info("server stopped gracefully")
	return nil
}
