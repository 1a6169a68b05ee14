package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/fleetsync/internal/metrics"
	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/storage"
)

// Manager owns the queues of all devices stored in one QueueStorage.
type Manager struct {
	store      storage.QueueStorage
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	queues     map[string]*Queue
	maxRetries int
	mu         sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(mgr *Manager) { mgr.metrics = m }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(mgr *Manager) { mgr.now = now }
}

// WithMaxRetries sets the retry limit of operations enqueued without one.
func WithMaxRetries(n int) Option {
	return func(mgr *Manager) {
		if n > 0 {
			mgr.maxRetries = n
		}
	}
}

// NewManager creates a queue manager
func NewManager(store storage.QueueStorage, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		logger:     logger,
		now:        time.Now,
		queues:     make(map[string]*Queue),
		maxRetries: models.DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Queue returns the queue of deviceID, creating its handle on first use.
func (m *Manager) Queue(deviceID string) *Queue {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.queues[deviceID]
	if !ok {
		q = &Queue{
			store:      m.store,
			logger:     m.logger,
			metrics:    m.metrics,
			now:        m.now,
			deviceID:   deviceID,
			maxRetries: m.maxRetries,
		}
		m.queues[deviceID] = q
	}
	return q
}

// Devices returns every device that has stored operations.
func (m *Manager) Devices(ctx context.Context) ([]string, error) {
	return m.store.ListQueueDevices(ctx)
}

// AllPending returns up to limit dequeueable operations per device.
// Devices without pending work are omitted.
func (m *Manager) AllPending(ctx context.Context, limit int) (map[string][]*models.QueuedOperation, error) {
	devices, err := m.Devices(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]*models.QueuedOperation)
	for _, device := range devices {
		ops, err := m.Queue(device).Pending(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("pending of %s: %w", device, err)
		}
		if len(ops) > 0 {
			result[device] = ops
		}
	}
	return result, nil
}

// GlobalStats is the per-device breakdown of queue statistics and their sum.
type GlobalStats struct {
	Devices map[string]models.QueueStats `json:"devices"`
	Total   models.QueueStats            `json:"total"`
}

// GlobalStats aggregates Stats over every device.
func (m *Manager) GlobalStats(ctx context.Context) (*GlobalStats, error) {
	devices, err := m.Devices(ctx)
	if err != nil {
		return nil, err
	}

	out := &GlobalStats{Devices: make(map[string]models.QueueStats, len(devices))}
	for _, device := range devices {
		s, err := m.Queue(device).Stats(ctx)
		if err != nil {
			return nil, fmt.Errorf("stats of %s: %w", device, err)
		}
		out.Devices[device] = s
		out.Total.Merge(s)
	}
	return out, nil
}

// Recover returns operations left IN_PROGRESS by an interrupted run to
// PENDING. It is called once on startup, before any worker runs.
func (m *Manager) Recover(ctx context.Context) (int, error) {
	ops, err := m.store.ListOperations(ctx, "", models.StatusInProgress)
	if err != nil {
		return 0, err
	}

	now := m.now().UTC()
	recovered := 0
	for _, op := range ops {
		if !op.ResetInProgress(now) {
			continue
		}
		if err := m.store.SaveOperation(ctx, op); err != nil {
			return recovered, fmt.Errorf("recover %s: %w", op.OperationID, err)
		}
		recovered++
		m.metrics.RecordTransition(string(models.StatusPending))
	}

	if recovered > 0 {
		m.logger.WarnContext(ctx, "interrupted operations returned to pending",
			slog.Int("count", recovered))
	}
	return recovered, nil
}
