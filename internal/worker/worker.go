// Package worker drains the per-device operation queues in the background.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/fleetsync/internal/metrics"
	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/queue"
)

var (
	// ErrNoHandler is the failure recorded for operations of an unregistered type
	ErrNoHandler = errors.New("no handler for operation type")

	// ErrAlreadyRunning is returned by Run when the worker loop is active
	ErrAlreadyRunning = errors.New("worker is already running")
)

// Handler applies one queued operation. It must honor ctx cancellation.
type Handler func(ctx context.Context, op *models.QueuedOperation) error

// Applier applies queued mutations to replicated state.
type Applier interface {
	ApplyOperation(ctx context.Context, op *models.QueuedOperation) error
}

// Config controls the worker loop.
type Config struct {
	// Interval между циклами обработки
	Interval time.Duration
	// OperationTimeout ограничивает один вызов обработчика
	OperationTimeout time.Duration
	// Retention определяет, сколько хранить COMPLETED операции (0 = не чистить)
	Retention time.Duration
	// BatchSize ограничивает число операций устройства за цикл
	BatchSize int
	// Concurrency ограничивает число устройств, обрабатываемых параллельно
	Concurrency int
}

// DefaultConfig returns the defaults used for zero Config fields.
func DefaultConfig() Config {
	return Config{
		Interval:         30 * time.Second,
		OperationTimeout: 30 * time.Second,
		Retention:        24 * time.Hour,
		BatchSize:        100,
		Concurrency:      4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = d.OperationTimeout
	}
	if c.Retention < 0 {
		c.Retention = 0
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	return c
}

// Stats is a snapshot of worker counters.
type Stats struct {
	Interval    time.Duration `json:"interval"`
	Runs        int64         `json:"runs"`
	Processed   int64         `json:"operations_processed"`
	Succeeded   int64         `json:"operations_succeeded"`
	Failed      int64         `json:"operations_failed"`
	Cleaned     int64         `json:"operations_cleaned"`
	BatchSize   int           `json:"max_operations_per_run"`
	Concurrency int           `json:"concurrency"`
	Running     bool          `json:"is_running"`
}

// Worker processes queued operations with registered handlers.
type Worker struct {
	manager  *queue.Manager
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	handlers map[models.OperationType]Handler
	cfg      Config

	mu      sync.RWMutex
	running atomic.Bool

	runs      atomic.Int64
	processed atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	cleaned   atomic.Int64
}

// Option configures a Worker.
type Option func(*Worker)

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) { w.metrics = m }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) { w.now = now }
}

// New creates a worker without handlers.
func New(manager *queue.Manager, logger *slog.Logger, cfg Config, opts ...Option) *Worker {
	w := &Worker{
		manager:  manager,
		logger:   logger,
		now:      time.Now,
		handlers: make(map[models.OperationType]Handler),
		cfg:      cfg.withDefaults(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Handle registers h for opType, replacing any previous handler.
func (w *Worker) Handle(opType models.OperationType, h Handler) {
	w.mu.Lock()
	w.handlers[opType] = h
	w.mu.Unlock()
}

// UseApplier routes every mutation type and deletes to a.
func (w *Worker) UseApplier(a Applier) {
	for _, t := range []models.OperationType{
		models.OpVehicleUpdate, models.OpWorkOrderUpdate, models.OpStockMove, models.OpDelete,
	} {
		w.Handle(t, a.ApplyOperation)
	}
}

func (w *Worker) handler(opType models.OperationType) (Handler, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	h, ok := w.handlers[opType]
	return h, ok
}

// Run recovers interrupted operations and then processes the queues every
// interval until ctx is canceled. It returns nil on cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer w.running.Store(false)

	if _, err := w.manager.Recover(ctx); err != nil {
		return fmt.Errorf("recover queues: %w", err)
	}

	w.logger.InfoContext(ctx, "sync worker started",
		slog.Duration("interval", w.cfg.Interval),
		slog.Int("batch_size", w.cfg.BatchSize),
		slog.Int("concurrency", w.cfg.Concurrency))

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.ErrorContext(ctx, "sync worker cycle failed", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			w.logger.InfoContext(context.WithoutCancel(ctx), "sync worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce processes one batch per device and cleans up old completed
// operations. Devices are processed concurrently, operations of one device
// in dequeue order.
func (w *Worker) RunOnce(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	started := w.now()
	w.runs.Add(1)
	defer w.metrics.RecordWorkerCycle()

	pending, err := w.manager.AllPending(ctx, w.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("load pending operations: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(w.cfg.Concurrency)
	for deviceID, ops := range pending {
		g.Go(func() error {
			return w.processDevice(ctx, deviceID, ops)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := w.cleanup(ctx); err != nil {
		return err
	}

	// Обновляем gauge глубины очередей
	if _, err := w.manager.GlobalStats(ctx); err != nil {
		return fmt.Errorf("queue stats: %w", err)
	}

	if len(pending) > 0 {
		w.logger.InfoContext(ctx, "sync queue processing completed",
			slog.Int("devices", len(pending)),
			slog.Duration("elapsed", w.now().Sub(started)))
	}
	return nil
}

func (w *Worker) processDevice(ctx context.Context, deviceID string, ops []*models.QueuedOperation) error {
	q := w.manager.Queue(deviceID)
	w.logger.DebugContext(ctx, "processing device queue",
		slog.String("device_id", deviceID),
		slog.Int("operations", len(ops)))

	for _, op := range ops {
		if ctx.Err() != nil {
			return nil
		}
		if err := w.process(ctx, q, op); err != nil {
			return fmt.Errorf("device %s: %w", deviceID, err)
		}
	}
	return nil
}

// process runs one operation through its state machine. Only storage
// failures are returned.
func (w *Worker) process(ctx context.Context, q *queue.Queue, op *models.QueuedOperation) error {
	claimed, err := q.MarkInProgress(ctx, op.OperationID)
	if errors.Is(err, models.ErrInvalidTransition) {
		// Операцию уже забрал другой цикл
		return nil
	}
	if err != nil {
		return err
	}

	started := w.now()
	herr := w.invoke(ctx, claimed)
	elapsed := w.now().Sub(started)

	if herr != nil && ctx.Err() != nil {
		// Остается IN_PROGRESS, вернется в очередь при следующем запуске
		w.logger.WarnContext(context.WithoutCancel(ctx), "operation interrupted by shutdown",
			slog.String("operation_id", claimed.OperationID),
			slog.String("device_id", claimed.DeviceID))
		return nil
	}

	w.processed.Add(1)
	if herr == nil {
		if _, err := q.MarkCompleted(ctx, claimed.OperationID); err != nil {
			return err
		}
		w.succeeded.Add(1)
		w.metrics.ObserveOperation(string(claimed.OperationType), string(models.StatusCompleted), elapsed)
		w.logger.DebugContext(ctx, "operation completed",
			slog.String("operation_id", claimed.OperationID),
			slog.String("operation_type", string(claimed.OperationType)))
		return nil
	}

	failed, err := q.MarkFailed(ctx, claimed.OperationID, herr)
	if err != nil {
		return err
	}
	w.failed.Add(1)
	w.metrics.ObserveOperation(string(claimed.OperationType), string(failed.Status), elapsed)
	w.logger.ErrorContext(ctx, "operation failed",
		slog.String("operation_id", failed.OperationID),
		slog.String("operation_type", string(failed.OperationType)),
		slog.String("status", string(failed.Status)),
		slog.Int("retry_count", failed.RetryCount),
		slog.Int("max_retries", failed.MaxRetries),
		slog.Any("error", herr))
	return nil
}

// invoke calls the handler of op under the operation timeout. Panics are
// converted into errors.
func (w *Worker) invoke(ctx context.Context, op *models.QueuedOperation) (err error) {
	h, ok := w.handler(op.OperationType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, op.OperationType)
	}

	opCtx, cancel := context.WithTimeout(ctx, w.cfg.OperationTimeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			w.metrics.RecordHandlerPanic()
			w.logger.ErrorContext(ctx, "operation handler panicked",
				slog.String("operation_id", op.OperationID),
				slog.Any("panic", p))
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()

	err = h(opCtx, op)
	if err != nil && errors.Is(opCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("operation timed out after %s: %w", w.cfg.OperationTimeout, err)
	}
	return err
}

func (w *Worker) cleanup(ctx context.Context) error {
	if w.cfg.Retention == 0 {
		return nil
	}
	devices, err := w.manager.Devices(ctx)
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	cutoff := w.now().Add(-w.cfg.Retention)
	total := 0
	for _, device := range devices {
		n, err := w.manager.Queue(device).CleanupCompleted(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("cleanup %s: %w", device, err)
		}
		total += n
	}

	if total > 0 {
		w.cleaned.Add(int64(total))
		w.metrics.RecordCleanup(total)
	}
	return nil
}

// Stats returns a snapshot of the worker counters.
func (w *Worker) Stats() Stats {
	return Stats{
		Runs:        w.runs.Load(),
		Processed:   w.processed.Load(),
		Succeeded:   w.succeeded.Load(),
		Failed:      w.failed.Load(),
		Cleaned:     w.cleaned.Load(),
		Running:     w.running.Load(),
		Interval:    w.cfg.Interval,
		BatchSize:   w.cfg.BatchSize,
		Concurrency: w.cfg.Concurrency,
	}
}
