package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/queue"
	"github.com/iudanet/fleetsync/internal/storage/boltdb"
	"github.com/iudanet/fleetsync/pkg/api"
)

// serveQueue routes a request through a mux so that path values are set
func serveQueue(h *QueueHandler, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/queue/{device}", h.Enqueue)
	mux.HandleFunc("GET /api/v1/queue/{device}/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/queue/{device}/pending", h.Pending)
	mux.HandleFunc("POST /api/v1/queue/{device}/clear-completed", h.ClearCompleted)
	mux.HandleFunc("POST /api/v1/queue/{device}/clear-failed", h.ClearFailed)
	mux.HandleFunc("GET /api/v1/queue/{device}/entities/{type}/{id}", h.ByEntity)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func setupQueueManager(t *testing.T) *queue.Manager {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return queue.NewManager(store, setupTestLogger())
}

func TestQueueHandler_Lifecycle(t *testing.T) {
	mgr := setupQueueManager(t)
	h := NewQueueHandler(setupTestLogger(), QueuesOf(mgr))

	w := serveQueue(h, http.MethodPost, "/api/v1/queue/truck-1", `{
		"operation_type": "vehicle_update",
		"entity_type": "Vehicle",
		"entity_id": "veh-1",
		"priority": "high",
		"payload": {"status": "maintenance"}
	}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	info := decodeBody[api.OperationInfo](t, w)
	assert.NotEmpty(t, info.OperationID)
	assert.Equal(t, "truck-1", info.DeviceID)
	assert.Equal(t, "pending", info.Status)
	assert.Equal(t, "high", info.Priority)
	assert.Equal(t, models.DefaultMaxRetries, info.MaxRetries)
	assert.JSONEq(t, `{"status":"maintenance"}`, string(info.Payload))

	w = serveQueue(h, http.MethodPost, "/api/v1/queue/truck-1", `{
		"operation_type": "stock_move",
		"entity_type": "StockMove",
		"entity_id": "mv-1",
		"payload": {"quantity": 3}
	}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	second := decodeBody[api.OperationInfo](t, w)

	w = serveQueue(h, http.MethodGet, "/api/v1/queue/truck-1/pending?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	pending := decodeBody[api.PendingResponse](t, w)
	require.Len(t, pending.Operations, 1)
	assert.Equal(t, info.OperationID, pending.Operations[0].OperationID, "high priority first")

	// Завершаем вторую операцию напрямую через очередь
	q := mgr.Queue("truck-1")
	_, err := q.MarkInProgress(context.Background(), second.OperationID)
	require.NoError(t, err)
	_, err = q.MarkCompleted(context.Background(), second.OperationID)
	require.NoError(t, err)

	w = serveQueue(h, http.MethodGet, "/api/v1/queue/truck-1/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, api.QueueStatsResponse{DeviceID: "truck-1", Total: 2, Pending: 1, Completed: 1},
		decodeBody[api.QueueStatsResponse](t, w))

	w = serveQueue(h, http.MethodPost, "/api/v1/queue/truck-1/clear-completed", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, api.ClearResponse{Removed: 1}, decodeBody[api.ClearResponse](t, w))

	w = serveQueue(h, http.MethodGet, "/api/v1/queue/truck-2/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, api.QueueStatsResponse{DeviceID: "truck-2"}, decodeBody[api.QueueStatsResponse](t, w))
}

func TestQueueHandler_EnqueueClientID(t *testing.T) {
	mgr := setupQueueManager(t)
	h := NewQueueHandler(setupTestLogger(), QueuesOf(mgr))

	body := `{"operation_id":"op-1","operation_type":"delete","entity_type":"Vehicle","entity_id":"veh-1"}`
	for i := 0; i < 2; i++ {
		w := serveQueue(h, http.MethodPost, "/api/v1/queue/truck-1", body)
		require.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "op-1", decodeBody[api.OperationInfo](t, w).OperationID)
	}

	stats, err := mgr.Queue("truck-1").Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)

	w := serveQueue(h, http.MethodPost, "/api/v1/queue/truck-2", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestQueueHandler_ByEntity(t *testing.T) {
	mgr := setupQueueManager(t)
	h := NewQueueHandler(setupTestLogger(), QueuesOf(mgr))

	for _, body := range []string{
		`{"operation_type":"vehicle_update","entity_type":"Vehicle","entity_id":"veh-1","payload":{"status":"active"}}`,
		`{"operation_type":"vehicle_update","entity_type":"Vehicle","entity_id":"veh-2","payload":{"status":"active"}}`,
		`{"operation_type":"delete","entity_type":"Vehicle","entity_id":"veh-1"}`,
	} {
		w := serveQueue(h, http.MethodPost, "/api/v1/queue/truck-1", body)
		require.Equal(t, http.StatusAccepted, w.Code)
	}

	w := serveQueue(h, http.MethodGet, "/api/v1/queue/truck-1/entities/Vehicle/veh-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[api.PendingResponse](t, w)
	require.Len(t, resp.Operations, 2)
	types := []string{resp.Operations[0].OperationType, resp.Operations[1].OperationType}
	assert.ElementsMatch(t, []string{"vehicle_update", "delete"}, types)
	for _, op := range resp.Operations {
		assert.Equal(t, "veh-1", op.EntityID)
	}

	// Чужое устройство не видит операции truck-1
	w = serveQueue(h, http.MethodGet, "/api/v1/queue/truck-2/entities/Vehicle/veh-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[api.PendingResponse](t, w).Operations)
}

func TestQueueHandler_ClearFailed(t *testing.T) {
	svc := &QueueServiceMock{
		ClearFailedFunc: func(ctx context.Context, deviceID string) (int, error) {
			return 2, nil
		},
	}
	h := NewQueueHandler(setupTestLogger(), svc)

	w := serveQueue(h, http.MethodPost, "/api/v1/queue/truck-1/clear-failed", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decodeBody[api.ClearResponse](t, w).Removed)

	calls := svc.ClearFailedCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "truck-1", calls[0].DeviceID)
}

func TestQueueHandler_Errors(t *testing.T) {
	boom := errors.New("disk full")
	svc := &QueueServiceMock{
		EnqueueFunc: func(ctx context.Context, deviceID string, op queue.Operation) (*models.QueuedOperation, error) {
			if op.EntityID == "" {
				return nil, fmt.Errorf("%w: entity_id is required", queue.ErrInvalidOperation)
			}
			return nil, boom
		},
		StatsFunc: func(ctx context.Context, deviceID string) (models.QueueStats, error) {
			return models.QueueStats{}, boom
		},
		PendingFunc: func(ctx context.Context, deviceID string, limit int) ([]*models.QueuedOperation, error) {
			return nil, boom
		},
		ClearCompletedFunc: func(ctx context.Context, deviceID string) (int, error) {
			return 0, boom
		},
		ClearFailedFunc: func(ctx context.Context, deviceID string) (int, error) {
			return 0, boom
		},
		ByEntityFunc: func(ctx context.Context, deviceID, entityType, entityID string) ([]*models.QueuedOperation, error) {
			return nil, boom
		},
	}
	h := NewQueueHandler(setupTestLogger(), svc)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{name: "enqueue invalid json", method: http.MethodPost, target: "/api/v1/queue/truck-1", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "enqueue invalid operation", method: http.MethodPost, target: "/api/v1/queue/truck-1", body: `{"operation_type":"delete"}`, wantStatus: http.StatusBadRequest},
		{name: "enqueue storage failure", method: http.MethodPost, target: "/api/v1/queue/truck-1", body: `{"operation_type":"delete","entity_type":"Vehicle","entity_id":"veh-1"}`, wantStatus: http.StatusInternalServerError},
		{name: "stats storage failure", method: http.MethodGet, target: "/api/v1/queue/truck-1/stats", wantStatus: http.StatusInternalServerError},
		{name: "pending bad limit", method: http.MethodGet, target: "/api/v1/queue/truck-1/pending?limit=abc", wantStatus: http.StatusBadRequest},
		{name: "pending negative limit", method: http.MethodGet, target: "/api/v1/queue/truck-1/pending?limit=-5", wantStatus: http.StatusBadRequest},
		{name: "pending storage failure", method: http.MethodGet, target: "/api/v1/queue/truck-1/pending", wantStatus: http.StatusInternalServerError},
		{name: "clear storage failure", method: http.MethodPost, target: "/api/v1/queue/truck-1/clear-completed", wantStatus: http.StatusInternalServerError},
		{name: "clear failed storage failure", method: http.MethodPost, target: "/api/v1/queue/truck-1/clear-failed", wantStatus: http.StatusInternalServerError},
		{name: "by entity storage failure", method: http.MethodGet, target: "/api/v1/queue/truck-1/entities/Vehicle/veh-1", wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveQueue(h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)

			var resp api.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, http.StatusText(tt.wantStatus), resp.Error)
		})
	}

	// Pending с неверным limit не доходит до очереди
	for _, call := range svc.PendingCalls() {
		assert.Zero(t, call.Limit)
	}
}

func TestToOperationInfo(t *testing.T) {
	created := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	op := &models.QueuedOperation{
		OperationID:   "op-1",
		DeviceID:      "truck-1",
		OperationType: models.OpWorkOrderUpdate,
		EntityType:    "WorkOrder",
		EntityID:      "wo-9",
		Priority:      models.PriorityCritical,
		Status:        models.StatusRetry,
		ErrorMessage:  "timeout",
		RetryCount:    1,
		MaxRetries:    3,
		CreatedAt:     created,
		UpdatedAt:     created.Add(time.Minute),
	}

	info := toOperationInfo(op)
	assert.Equal(t, "workorder_update", info.OperationType)
	assert.Equal(t, "critical", info.Priority)
	assert.Equal(t, "retry", info.Status)
	assert.Equal(t, "timeout", info.ErrorMessage)
	assert.Equal(t, 1, info.RetryCount)
	assert.Equal(t, created.Add(time.Minute), info.UpdatedAt)
}
