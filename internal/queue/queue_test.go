package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fleetsync/internal/metrics"
	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/storage"
	"github.com/iudanet/fleetsync/internal/storage/boltdb"
)

var baseTime = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	t := baseTime
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func setupManager(t *testing.T, opts ...Option) (*Manager, *boltdb.Storage) {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	opts = append([]Option{WithClock(stepClock())}, opts...)
	return NewManager(store, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...), store
}

func vehicleUpdate(id string, p models.Priority) Operation {
	return Operation{
		Type:       models.OpVehicleUpdate,
		EntityType: "Vehicle",
		EntityID:   id,
		Priority:   p,
		Payload:    json.RawMessage(`{"status":"maintenance"}`),
	}
}

func ids(ops []*models.QueuedOperation) []string {
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		out = append(out, op.EntityID)
	}
	return out
}

func TestEnqueue(t *testing.T) {
	ctx := context.Background()
	mgr, _ := setupManager(t, WithMaxRetries(5))
	q := mgr.Queue("device-a")

	op, err := q.Enqueue(ctx, vehicleUpdate("veh-1", ""))
	require.NoError(t, err)
	assert.NotEmpty(t, op.OperationID)
	assert.Equal(t, "device-a", op.DeviceID)
	assert.Equal(t, models.StatusPending, op.Status)
	assert.Equal(t, models.PriorityNormal, op.Priority)
	assert.Equal(t, 5, op.MaxRetries)
	assert.Zero(t, op.RetryCount)

	got, err := q.Get(ctx, op.OperationID)
	require.NoError(t, err)
	assert.Equal(t, op, got)

	explicit := vehicleUpdate("veh-2", models.PriorityLow)
	explicit.MaxRetries = 1
	op, err = q.Enqueue(ctx, explicit)
	require.NoError(t, err)
	assert.Equal(t, 1, op.MaxRetries)
}

func TestEnqueue_ClientID(t *testing.T) {
	ctx := context.Background()
	mgr, _ := setupManager(t)
	q := mgr.Queue("device-a")

	in := vehicleUpdate("veh-1", models.PriorityHigh)
	in.ID = "op-from-device"

	first, err := q.Enqueue(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "op-from-device", first.OperationID)

	// Повторная отправка того же ID не создает дубликат
	in.Payload = json.RawMessage(`{"status":"retired"}`)
	again, err := q.Enqueue(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	pending, err := q.Pending(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = mgr.Queue("device-b").Enqueue(ctx, in)
	assert.ErrorIs(t, err, ErrWrongDevice)
}

func TestEnqueue_Invalid(t *testing.T) {
	ctx := context.Background()
	mgr, _ := setupManager(t)
	q := mgr.Queue("device-a")

	tests := []struct {
		name string
		op   Operation
	}{
		{"missing type", Operation{EntityType: "Vehicle", EntityID: "veh-1"}},
		{"missing entity id", Operation{Type: models.OpVehicleUpdate, EntityType: "Vehicle"}},
		{"unknown priority", vehicleUpdate("veh-1", "urgent")},
		{"negative retries", Operation{Type: models.OpDelete, EntityType: "Vehicle", EntityID: "veh-1", MaxRetries: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := q.Enqueue(ctx, tt.op)
			assert.ErrorIs(t, err, ErrInvalidOperation)
		})
	}
}

func TestPending_Ordering(t *testing.T) {
	ctx := context.Background()
	mgr, _ := setupManager(t)
	q := mgr.Queue("device-a")

	for _, in := range []Operation{
		vehicleUpdate("low-1", models.PriorityLow),
		vehicleUpdate("normal-1", models.PriorityNormal),
		vehicleUpdate("critical-1", models.PriorityCritical),
		vehicleUpdate("high-1", models.PriorityHigh),
		vehicleUpdate("normal-2", models.PriorityNormal),
		vehicleUpdate("critical-2", models.PriorityCritical),
	} {
		_, err := q.Enqueue(ctx, in)
		require.NoError(t, err)
	}

	all, err := q.Pending(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"critical-1", "critical-2", "high-1", "normal-1", "normal-2", "low-1"}, ids(all))

	top, err := q.Pending(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"critical-1", "critical-2"}, ids(top))

	// Claimed operations leave the pool, RETRY ones return to it
	_, err = q.MarkInProgress(ctx, top[0].OperationID)
	require.NoError(t, err)
	_, err = q.MarkInProgress(ctx, top[1].OperationID)
	require.NoError(t, err)
	_, err = q.MarkFailed(ctx, top[1].OperationID, errors.New("timeout"))
	require.NoError(t, err)

	all, err = q.Pending(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"critical-2", "high-1", "normal-1", "normal-2", "low-1"}, ids(all))
}

func TestLifecycle_FailTwiceThenSucceed(t *testing.T) {
	ctx := context.Background()
	mgr, _ := setupManager(t)
	q := mgr.Queue("device-a")

	in := vehicleUpdate("veh-1", models.PriorityNormal)
	in.MaxRetries = 3
	op, err := q.Enqueue(ctx, in)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = q.MarkInProgress(ctx, op.OperationID)
		require.NoError(t, err)
		failed, err := q.MarkFailed(ctx, op.OperationID, errors.New("depot offline"))
		require.NoError(t, err)
		assert.Equal(t, models.StatusRetry, failed.Status)
	}

	_, err = q.MarkInProgress(ctx, op.OperationID)
	require.NoError(t, err)
	done, err := q.MarkCompleted(ctx, op.OperationID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Equal(t, 2, done.RetryCount)
	assert.Empty(t, done.ErrorMessage)

	stored, err := q.Get(ctx, op.OperationID)
	require.NoError(t, err)
	assert.Equal(t, done, stored)
}

func TestLifecycle_ExhaustedRetriesAreExcluded(t *testing.T) {
	ctx := context.Background()
	mgr, _ := setupManager(t)
	q := mgr.Queue("device-a")

	in := vehicleUpdate("veh-1", models.PriorityCritical)
	in.MaxRetries = 3
	op, err := q.Enqueue(ctx, in)
	require.NoError(t, err)

	var last *models.QueuedOperation
	for i := 0; i < 3; i++ {
		_, err = q.MarkInProgress(ctx, op.OperationID)
		require.NoError(t, err)
		last, err = q.MarkFailed(ctx, op.OperationID, errors.New("rejected"))
		require.NoError(t, err)
	}

	assert.Equal(t, models.StatusFailed, last.Status)
	assert.Equal(t, 3, last.RetryCount)
	assert.Equal(t, "rejected", last.ErrorMessage)

	pending, err := q.Pending(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)

	failed, err := q.Failed(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, op.OperationID, failed[0].OperationID)

	_, err = q.MarkInProgress(ctx, op.OperationID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestTransitions_Errors(t *testing.T) {
	ctx := context.Background()
	mgr, _ := setupManager(t)
	q := mgr.Queue("device-a")

	_, err := q.MarkInProgress(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrOperationNotFound)

	op, err := q.Enqueue(ctx, vehicleUpdate("veh-1", ""))
	require.NoError(t, err)

	_, err = q.MarkCompleted(ctx, op.OperationID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = mgr.Queue("device-b").MarkInProgress(ctx, op.OperationID)
	assert.ErrorIs(t, err, ErrWrongDevice)

	failed, err := q.MarkFailed(ctx, op.OperationID, nil)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Nil(t, failed)
}

func TestStatsAndCleanup(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	mgr, _ := setupManager(t, WithMetrics(metrics.New(reg)))
	q := mgr.Queue("device-a")

	var opIDs []string
	for _, id := range []string{"veh-1", "veh-2", "veh-3", "veh-4"} {
		op, err := q.Enqueue(ctx, vehicleUpdate(id, ""))
		require.NoError(t, err)
		opIDs = append(opIDs, op.OperationID)
	}

	// veh-1 и veh-2 выполнены, veh-3 в работе, veh-4 ожидает
	for _, id := range opIDs[:3] {
		_, err := q.MarkInProgress(ctx, id)
		require.NoError(t, err)
	}
	_, err := q.MarkCompleted(ctx, opIDs[0])
	require.NoError(t, err)
		_, err = q.MarkCompleted(ctx, opIDs[1])
	require.NoError(t, err)

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStats{Total: 4, Pending: 1, InProgress: 1, Completed: 2}, stats)
	count, err := testutil.GatherAndCount(reg, "fleetsync_queue_operations")
	require.NoError(t, err)
	assert.Equal(t, 5, count, "one gauge per status")

	byEntity, err := q.ByEntity(ctx, "Vehicle", "veh-3")
	require.NoError(t, err)
	require.Len(t, byEntity, 1)
	assert.Equal(t, opIDs[2], byEntity[0].OperationID)

	n, err := q.CleanupCompleted(ctx, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = q.CleanupCompleted(ctx, baseTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = q.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	stats, err = q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
}

func TestClearFailed(t *testing.T) {
	ctx := context.Background()
	mgr, _ := setupManager(t)
	q := mgr.Queue("device-a")

	in := vehicleUpdate("veh-1", "")
	in.MaxRetries = 1
	op, err := q.Enqueue(ctx, in)
	require.NoError(t, err)
	_, err = q.MarkInProgress(ctx, op.OperationID)
	require.NoError(t, err)
	_, err = q.MarkFailed(ctx, op.OperationID, errors.New("bad payload"))
	require.NoError(t, err)

	n, err := q.ClearFailed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = q.Get(ctx, op.OperationID)
	assert.ErrorIs(t, err, storage.ErrOperationNotFound)
}

func TestEnqueue_StorageError(t *testing.T) {
	boom := errors.New("disk full")
	store := &storage.QueueStorageMock{
		SaveOperationFunc: func(ctx context.Context, op *models.QueuedOperation) error {
			return boom
		},
	}
	mgr := NewManager(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := mgr.Queue("device-a").Enqueue(context.Background(), vehicleUpdate("veh-1", ""))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, store.SaveOperationCalls(), 1)
}
