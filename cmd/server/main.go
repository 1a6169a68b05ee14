package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/fleetsync/internal/config"
	"github.com/iudanet/fleetsync/internal/engine"
	"github.com/iudanet/fleetsync/internal/metrics"
	"github.com/iudanet/fleetsync/internal/queue"
	"github.com/iudanet/fleetsync/internal/resolver"
	"github.com/iudanet/fleetsync/internal/server"
	"github.com/iudanet/fleetsync/internal/server/handlers"
	"github.com/iudanet/fleetsync/internal/server/middleware"
	"github.com/iudanet/fleetsync/internal/storage/sqlite"
	"github.com/iudanet/fleetsync/internal/worker"
)

const (
	// serverDeviceID is the device ID of the server replica
	serverDeviceID = "server"
	// rateWindow is the window of server.rate_limit
	rateWindow = time.Minute
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Parse flags
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to YAML configuration file")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.Logging.NewLogger(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Starting fleetsync server",
		slog.String("version", Version),
		slog.String("address", cfg.Server.Address),
		slog.String("database", cfg.Database.Path))

	store, err := sqlite.New(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close database", slog.Any("error", err))
		}
	}()

	var (
		m       *metrics.Metrics
		metricH http.Handler
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
		metricH = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	defaultStrategy, perType, err := cfg.Sync.Parse()
	if err != nil {
		return err
	}
	res := resolver.New(logger)
	res.SetPriorityDevices(cfg.Sync.PriorityDevices)

	eng := engine.New(store, res, logger,
		engine.WithStrategies(defaultStrategy, perType),
		engine.WithMetrics(m))
	mgr := queue.NewManager(store, logger,
		queue.WithMetrics(m),
		queue.WithMaxRetries(cfg.Worker.MaxRetries))

	router := server.NewRouter(server.Routes{
		Sync:        handlers.NewSyncHandler(logger, eng, store, serverDeviceID),
		Queue:       handlers.NewQueueHandler(logger, handlers.QueuesOf(mgr)),
		Entities:    handlers.NewEntityHandler(logger, eng),
		Devices:     handlers.NewDeviceHandler(logger, store),
		Health:      handlers.NewHealthHandler(logger, store, Version),
		Metrics:     metricH,
		MetricsPath: cfg.Metrics.Path,
	})

	mws := []func(http.Handler) http.Handler{
		middleware.Logging(logger, m, "/health", cfg.Metrics.Path),
	}
	if cfg.Server.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, rateWindow, logger)
		defer limiter.Stop()
		mws = append(mws, middleware.RateLimit(limiter, logger))
	}

	srv := server.New(server.Config{
		Address:         cfg.Server.Address,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger, mws...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if cfg.Worker.Enabled {
		w := worker.New(mgr, logger, cfg.Worker.WorkerSettings(), worker.WithMetrics(m))
		w.UseApplier(eng)
		g.Go(func() error {
			return w.Run(gctx)
		})
	} else {
		// Без воркера операции, прерванные прошлым запуском, возвращаются в очередь здесь
		if _, err := mgr.Recover(ctx); err != nil {
			return fmt.Errorf("failed to recover queues: %w", err)
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printVersion() {
	fmt.Printf("Fleetsync Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
