package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/fleetsync/internal/client/api"
	clientsync "github.com/iudanet/fleetsync/internal/client/sync"
	"github.com/iudanet/fleetsync/internal/config"
	"github.com/iudanet/fleetsync/internal/engine"
	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/queue"
	"github.com/iudanet/fleetsync/internal/resolver"
	"github.com/iudanet/fleetsync/internal/storage/boltdb"
	"github.com/iudanet/fleetsync/internal/worker"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// device собирает компоненты локальной реплики устройства
type device struct {
	store  *boltdb.Storage
	engine *engine.Engine
	queues *queue.Manager
	sync   clientsync.Service
	logger *slog.Logger
	cfg    *config.Config
}

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to YAML configuration file")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	command := "run"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.Device.ID == "" {
		fmt.Fprintln(os.Stderr, "device.id is required (or FLEETSYNC_DEVICE_ID)")
		os.Exit(1)
	}
	logger := cfg.Logging.NewLogger(os.Stderr).With(slog.String("device_id", cfg.Device.ID))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := openDevice(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch command {
	case "run":
		err = d.run(ctx)
	case "sync":
		err = d.syncOnce(ctx)
	case "status":
		err = d.status(ctx)
	case "enqueue":
		err = d.enqueue(ctx, args)
	case "inspect":
		err = d.inspect(ctx, args)
	case "tombstone":
		err = d.tombstone(ctx, args)
	case "clear-failed":
		err = d.clearFailed(ctx)
	default:
		err = fmt.Errorf("unknown command: %s", command)
		printUsage()
	}

	if cerr := d.store.Close(); cerr != nil {
		logger.Error("Failed to close database", slog.Any("error", cerr))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openDevice(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*device, error) {
	store, err := boltdb.New(ctx, cfg.Device.DataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	defaultStrategy, perType, err := cfg.Sync.Parse()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	res := resolver.New(logger)
	res.SetPriorityDevices(cfg.Sync.PriorityDevices)

	eng := engine.New(store, res, logger, engine.WithStrategies(defaultStrategy, perType))
	client := api.NewClient(cfg.Device.ServerURL, cfg.Device.ID)

	return &device{
		store:  store,
		engine: eng,
		queues: queue.NewManager(store, logger, queue.WithMaxRetries(cfg.Worker.MaxRetries)),
		sync:   clientsync.NewService(cfg.Device.ID, client, eng, store, logger, cfg.Device.PullLimit),
		logger: logger,
		cfg:    cfg,
	}, nil
}

// run применяет локальную очередь и периодически синхронизируется с сервером
func (d *device) run(ctx context.Context) error {
	w := worker.New(d.queues, d.logger, d.cfg.Worker.WorkerSettings())
	w.UseApplier(d.engine)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx)
	})
	g.Go(func() error {
		clientsync.Run(gctx, d.sync, d.cfg.Device.SyncInterval, d.logger)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (d *device) syncOnce(ctx context.Context) error {
	// Сначала применяем локальные операции, чтобы отправить их в этой же синхронизации
	w := worker.New(d.queues, d.logger, d.cfg.Worker.WorkerSettings())
	w.UseApplier(d.engine)
	if _, err := d.queues.Recover(ctx); err != nil {
		return fmt.Errorf("failed to recover queue: %w", err)
	}
	if err := w.RunOnce(ctx); err != nil {
		return fmt.Errorf("failed to apply local operations: %w", err)
	}

	result, err := d.sync.Sync(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Pushed: %d, pulled: %d (%d pages), merged: %d, conflicts: %d\n",
		result.Pushed, result.Pulled, result.Pages, result.Merged, result.Conflicts)
	for _, e := range result.Errors {
		fmt.Printf("  rejected %s\n", e)
	}
	return nil
}

func (d *device) status(ctx context.Context) error {
	pending, err := d.sync.PendingCount(ctx)
	if err != nil {
		return err
	}
	stats, err := d.queues.Queue(d.cfg.Device.ID).Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get queue stats: %w", err)
	}

	fmt.Printf("Device:          %s\n", d.cfg.Device.ID)
	fmt.Printf("Server:          %s\n", d.cfg.Device.ServerURL)
	fmt.Printf("Unsynced:        %d\n", pending)
	fmt.Printf("Queue pending:   %d\n", stats.Pending)
	fmt.Printf("Queue retrying:  %d\n", stats.Retry)
	fmt.Printf("Queue failed:    %d\n", stats.Failed)
	fmt.Printf("Queue completed: %d\n", stats.Completed)
	return nil
}

// enqueue ставит операцию в локальную очередь:
// enqueue [-priority p] <operation_type> <entity_type> <entity_id> [payload]
func (d *device) enqueue(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("enqueue", flag.ContinueOnError)
	priority := fs.String("priority", string(models.PriorityNormal), "Operation priority (low, normal, high, critical)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 3 || fs.NArg() > 4 {
		return errors.New("usage: enqueue [-priority p] <operation_type> <entity_type> <entity_id> [payload]")
	}

	p, err := models.ParsePriority(*priority)
	if err != nil {
		return err
	}
	var payload json.RawMessage
	if fs.NArg() == 4 {
		payload = json.RawMessage(fs.Arg(3))
		if !json.Valid(payload) {
			return errors.New("payload must be valid JSON")
		}
	}

	op, err := d.queues.Queue(d.cfg.Device.ID).Enqueue(ctx, queue.Operation{
		Type:       models.OperationType(fs.Arg(0)),
		EntityType: fs.Arg(1),
		EntityID:   fs.Arg(2),
		Priority:   p,
		Payload:    payload,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Enqueued %s (%s %s/%s)\n", op.OperationID, op.OperationType, op.EntityType, op.EntityID)
	return nil
}

// inspect печатает объединенное состояние сущности вместе с историей:
// inspect <entity_type> <entity_id>
func (d *device) inspect(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: inspect <entity_type> <entity_id>")
	}
	key := models.EntityKey{EntityType: args[0], EntityID: args[1]}

	state, err := d.engine.EntityState(ctx, key)
	if err != nil {
		return err
	}
	ops, err := d.queues.Queue(d.cfg.Device.ID).ByEntity(ctx, key.EntityType, key.EntityID)
	if err != nil {
		return fmt.Errorf("failed to list entity operations: %w", err)
	}
	conflicts, err := d.engine.Conflicts(ctx, key)
	if err != nil {
		return err
	}

	fmt.Printf("Entity:     %s\n", key)
	fmt.Printf("Devices:    %v\n", state.Devices)
	fmt.Printf("Clock:      %v\n", state.Clock)
	fmt.Printf("Deleted:    %t\n", state.Tombstone)
	fmt.Printf("Payload:    %s\n", state.Payload)
	fmt.Printf("Operations: %d\n", len(ops))
	for _, op := range ops {
		fmt.Printf("  %s %s %s\n", op.OperationID, op.OperationType, op.Status)
	}
	fmt.Printf("Conflicts:  %d\n", len(conflicts))
	for _, c := range conflicts {
		fmt.Printf("  %s %s winner=%s review=%t\n", c.DetectedAt.Format(time.RFC3339), c.Strategy, c.WinnerDevice, c.RequiresManualReview)
	}
	return nil
}

// tombstone помечает запись устройства удаленной без операции в очереди:
// tombstone <entity_type> <entity_id>
func (d *device) tombstone(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: tombstone <entity_type> <entity_id>")
	}

	found, err := d.engine.MarkTombstone(ctx, models.RecordKey{
		EntityType: args[0],
		EntityID:   args[1],
		DeviceID:   d.cfg.Device.ID,
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("device %s holds no record of %s/%s", d.cfg.Device.ID, args[0], args[1])
	}

	fmt.Printf("Marked %s/%s as deleted\n", args[0], args[1])
	return nil
}

func (d *device) clearFailed(ctx context.Context) error {
	n, err := d.queues.Queue(d.cfg.Device.ID).ClearFailed(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear failed operations: %w", err)
	}

	fmt.Printf("Removed %d failed operations\n", n)
	return nil
}

// printUsage выводит справку по командам
func printUsage() {
	fmt.Println("Usage: fleetsync-device [-config path] <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run        Apply queued operations and sync periodically (default)")
	fmt.Println("  sync       Apply queued operations and sync once")
	fmt.Println("  status     Show unsynced records and queue counters")
	fmt.Println("  enqueue    Queue a local operation")
	fmt.Println("  inspect    Show the merged state and history of an entity")
	fmt.Println("  tombstone  Mark the local record of an entity as deleted")
	fmt.Println("  clear-failed")
	fmt.Println("             Remove failed operations from the queue")
}

func printVersion() {
	fmt.Printf("Fleetsync Device\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
