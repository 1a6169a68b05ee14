// Package server assembles the HTTP API of the sync server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/fleetsync/internal/server/handlers"
	"github.com/iudanet/fleetsync/internal/server/middleware"
)

// Routes holds the handlers mounted by NewRouter.
type Routes struct {
	Sync     *handlers.SyncHandler
	Queue    *handlers.QueueHandler
	Entities *handlers.EntityHandler
	Devices  *handlers.DeviceHandler
	Health   *handlers.HealthHandler
	// Metrics монтируется на MetricsPath, nil = не публиковать
	Metrics     http.Handler
	MetricsPath string
}

// NewRouter registers the API routes on a new ServeMux.
func NewRouter(r Routes) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/sync/push", r.Sync.Push)
	mux.HandleFunc("POST /api/v1/sync/pull", r.Sync.Pull)
	mux.HandleFunc("POST /api/v1/sync/bidirectional", r.Sync.Bidirectional)

	mux.HandleFunc("POST /api/v1/queue/{device}", r.Queue.Enqueue)
	mux.HandleFunc("GET /api/v1/queue/{device}/stats", r.Queue.Stats)
	mux.HandleFunc("GET /api/v1/queue/{device}/pending", r.Queue.Pending)
	mux.HandleFunc("POST /api/v1/queue/{device}/clear-completed", r.Queue.ClearCompleted)
	mux.HandleFunc("POST /api/v1/queue/{device}/clear-failed", r.Queue.ClearFailed)
	mux.HandleFunc("GET /api/v1/queue/{device}/entities/{type}/{id}", r.Queue.ByEntity)

	mux.HandleFunc("GET /api/v1/sync/sessions/{device}", r.Entities.Sessions)
	mux.HandleFunc("GET /api/v1/entities/{type}", r.Entities.Active)
	mux.HandleFunc("GET /api/v1/entities/{type}/{id}", r.Entities.State)
	mux.HandleFunc("GET /api/v1/entities/{type}/{id}/conflicts", r.Entities.Conflicts)

	mux.HandleFunc("POST /api/v1/devices/register", r.Devices.Register)
	mux.HandleFunc("GET /api/v1/devices/{device}", r.Devices.Get)
	mux.HandleFunc("PUT /api/v1/devices/{device}/status", r.Devices.SetStatus)

	mux.HandleFunc("GET /health", r.Health.Health)

	if r.Metrics != nil {
		path := r.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, r.Metrics)
	}
	return mux
}

// Config holds HTTP server settings.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server is the HTTP server of the sync API.
type Server struct {
	http            *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// New wraps handler in panic recovery followed by mws, outermost first.
func New(cfg Config, handler http.Handler, logger *slog.Logger, mws ...func(http.Handler) http.Handler) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	chain := append([]func(http.Handler) http.Handler{middleware.Recovery(logger)}, mws...)

	return &Server{
		http: &http.Server{
			Addr:              cfg.Address,
			Handler:           middleware.Chain(handler, chain...),
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Run serves on the configured address until ctx is canceled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", slog.String("address", ln.Addr().String()))
		serverErrors <- s.http.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
