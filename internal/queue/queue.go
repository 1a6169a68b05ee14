// Package queue implements the per-device offline operation queue.
package queue

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/fleetsync/internal/metrics"
	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/storage"
)

// Operation describes a mutation to enqueue.
type Operation struct {
	// ID задается клиентом для идемпотентной постановки (пусто = сгенерировать)
	ID         string
	Type       models.OperationType
	EntityType string
	EntityID   string
	Priority   models.Priority
	Payload    json.RawMessage
	// MaxRetries ограничивает число попыток (0 = значение по умолчанию менеджера)
	MaxRetries int
}

// Queue is the operation queue of one device. Status transitions of one
// queue are serialized.
type Queue struct {
	store      storage.QueueStorage
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	deviceID   string
	maxRetries int
	mu         sync.Mutex
}

// DeviceID returns the owner of the queue.
func (q *Queue) DeviceID() string {
	return q.deviceID
}

// Enqueue stores a new PENDING operation and returns it. Enqueueing an ID
// that already exists in this queue returns the stored operation unchanged.
func (q *Queue) Enqueue(ctx context.Context, in Operation) (*models.QueuedOperation, error) {
	if in.Type == "" || in.EntityType == "" || in.EntityID == "" {
		return nil, fmt.Errorf("%w: operation_type, entity_type and entity_id are required", ErrInvalidOperation)
	}
	if in.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: max_retries must not be negative", ErrInvalidOperation)
	}

	priority, err := models.ParsePriority(string(in.Priority))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}
	maxRetries := in.MaxRetries
	if maxRetries == 0 {
		maxRetries = q.maxRetries
	}

	id := in.ID
	if id == "" {
		id = uuid.New().String()
	} else {
		existing, err := q.store.GetOperation(ctx, id)
		switch {
		case err == nil && existing.DeviceID != q.deviceID:
			return nil, fmt.Errorf("%w: %s", ErrWrongDevice, id)
		case err == nil:
			return existing, nil
		case !errors.Is(err, storage.ErrOperationNotFound):
			return nil, err
		}
	}

	now := q.now().UTC()
	op := &models.QueuedOperation{
		OperationID:   id,
		DeviceID:      q.deviceID,
		OperationType: in.Type,
		EntityType:    in.EntityType,
		EntityID:      in.EntityID,
		Payload:       in.Payload,
		Priority:      priority,
		Status:        models.StatusPending,
		MaxRetries:    maxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := q.store.SaveOperation(ctx, op); err != nil {
		return nil, err
	}

	q.metrics.RecordTransition(string(models.StatusPending))
	q.logger.DebugContext(ctx, "operation enqueued",
		slog.String("device_id", q.deviceID),
		slog.String("operation_id", op.OperationID),
		slog.String("operation_type", string(op.OperationType)),
		slog.String("priority", string(op.Priority)))
	return op, nil
}

// Pending returns up to limit PENDING and RETRY operations, highest
// priority first, then oldest first. limit <= 0 returns all of them.
func (q *Queue) Pending(ctx context.Context, limit int) ([]*models.QueuedOperation, error) {
	ops, err := q.store.ListOperations(ctx, q.deviceID, models.StatusPending, models.StatusRetry)
	if err != nil {
		return nil, err
	}
	sortForDequeue(ops)
	if limit > 0 && len(ops) > limit {
		ops = ops[:limit]
	}
	return ops, nil
}

// Get returns an operation of this queue.
func (q *Queue) Get(ctx context.Context, operationID string) (*models.QueuedOperation, error) {
	op, err := q.store.GetOperation(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if op.DeviceID != q.deviceID {
		return nil, fmt.Errorf("%w: %s", ErrWrongDevice, operationID)
	}
	return op, nil
}

// MarkInProgress claims a PENDING or RETRY operation.
func (q *Queue) MarkInProgress(ctx context.Context, operationID string) (*models.QueuedOperation, error) {
	return q.transition(ctx, operationID, func(op *models.QueuedOperation, now time.Time) error {
		return op.MarkInProgress(now)
	})
}

// MarkCompleted finishes an IN_PROGRESS operation.
func (q *Queue) MarkCompleted(ctx context.Context, operationID string) (*models.QueuedOperation, error) {
	return q.transition(ctx, operationID, func(op *models.QueuedOperation, now time.Time) error {
		return op.MarkCompleted(now)
	})
}

// MarkFailed records a failed attempt of an IN_PROGRESS operation. The
// returned operation is RETRY while attempts remain and FAILED afterwards.
func (q *Queue) MarkFailed(ctx context.Context, operationID string, cause error) (*models.QueuedOperation, error) {
	reason := "unknown error"
	if cause != nil {
		reason = cause.Error()
	}
	return q.transition(ctx, operationID, func(op *models.QueuedOperation, now time.Time) error {
		return op.MarkFailed(reason, now)
	})
}

func (q *Queue) transition(ctx context.Context, operationID string, apply func(*models.QueuedOperation, time.Time) error) (*models.QueuedOperation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	op, err := q.Get(ctx, operationID)
	if err != nil {
		return nil, err
	}
	from := op.Status
	if err := apply(op, q.now().UTC()); err != nil {
		return nil, fmt.Errorf("operation %s: %w", operationID, err)
	}
	if err := q.store.SaveOperation(ctx, op); err != nil {
		return nil, err
	}

	q.metrics.RecordTransition(string(op.Status))
	q.logger.DebugContext(ctx, "operation status changed",
		slog.String("device_id", q.deviceID),
		slog.String("operation_id", operationID),
		slog.String("from", string(from)),
		slog.String("to", string(op.Status)),
		slog.Int("retry_count", op.RetryCount))
	return op, nil
}

// Failed returns the terminally failed operations.
func (q *Queue) Failed(ctx context.Context) ([]*models.QueuedOperation, error) {
	return q.store.ListOperations(ctx, q.deviceID, models.StatusFailed)
}

// ByEntity returns every operation that targets one entity, oldest first.
func (q *Queue) ByEntity(ctx context.Context, entityType, entityID string) ([]*models.QueuedOperation, error) {
	ops, err := q.store.ListOperations(ctx, q.deviceID)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(ops, func(op *models.QueuedOperation) bool {
		return op.EntityType != entityType || op.EntityID != entityID
	}), nil
}

// Stats counts the operations of the queue per status and publishes the
// counts as queue depth gauges.
func (q *Queue) Stats(ctx context.Context) (models.QueueStats, error) {
	ops, err := q.store.ListOperations(ctx, q.deviceID)
	if err != nil {
		return models.QueueStats{}, err
	}

	var stats models.QueueStats
	for _, op := range ops {
		stats.Add(op.Status)
	}
	q.publish(stats)
	return stats, nil
}

func (q *Queue) publish(s models.QueueStats) {
	q.metrics.SetQueueDepth(q.deviceID, string(models.StatusPending), s.Pending)
	q.metrics.SetQueueDepth(q.deviceID, string(models.StatusInProgress), s.InProgress)
	q.metrics.SetQueueDepth(q.deviceID, string(models.StatusCompleted), s.Completed)
	q.metrics.SetQueueDepth(q.deviceID, string(models.StatusRetry), s.Retry)
	q.metrics.SetQueueDepth(q.deviceID, string(models.StatusFailed), s.Failed)
}

// ClearCompleted removes every COMPLETED operation.
func (q *Queue) ClearCompleted(ctx context.Context) (int, error) {
	return q.remove(ctx, models.StatusCompleted, time.Time{})
}

// ClearFailed removes every FAILED operation.
func (q *Queue) ClearFailed(ctx context.Context) (int, error) {
	return q.remove(ctx, models.StatusFailed, time.Time{})
}

// CleanupCompleted removes COMPLETED operations last updated before cutoff.
// A zero cutoff removes nothing.
func (q *Queue) CleanupCompleted(ctx context.Context, cutoff time.Time) (int, error) {
	if cutoff.IsZero() {
		return 0, nil
	}
	return q.remove(ctx, models.StatusCompleted, cutoff)
}

func (q *Queue) remove(ctx context.Context, status models.OperationStatus, cutoff time.Time) (int, error) {
	n, err := q.store.DeleteOperations(ctx, q.deviceID, status, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		q.logger.InfoContext(ctx, "queued operations removed",
			slog.String("device_id", q.deviceID),
			slog.String("status", string(status)),
			slog.Int("count", n))
	}
	return n, nil
}

// sortForDequeue orders operations by priority rank descending, then by
// creation time and ID ascending.
func sortForDequeue(ops []*models.QueuedOperation) {
	slices.SortStableFunc(ops, func(a, b *models.QueuedOperation) int {
		if c := cmp.Compare(b.Priority.Rank(), a.Priority.Rank()); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.OperationID, b.OperationID)
	})
}
