package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fleetsync/internal/engine"
	"github.com/iudanet/fleetsync/internal/entity"
	"github.com/iudanet/fleetsync/internal/metrics"
	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/queue"
	"github.com/iudanet/fleetsync/internal/resolver"
	"github.com/iudanet/fleetsync/internal/server/handlers"
	"github.com/iudanet/fleetsync/internal/server/middleware"
	"github.com/iudanet/fleetsync/internal/storage/sqlite"
	"github.com/iudanet/fleetsync/pkg/api"
)

type testServer struct {
	baseURL string
	errC    chan error
	cancel  context.CancelFunc
}

func startServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	eng := engine.New(store, resolver.New(logger), logger, engine.WithMetrics(m))
	mgr := queue.NewManager(store, logger, queue.WithMetrics(m))

	router := NewRouter(Routes{
		Sync:     handlers.NewSyncHandler(logger, eng, store, "server"),
		Queue:    handlers.NewQueueHandler(logger, handlers.QueuesOf(mgr)),
		Entities: handlers.NewEntityHandler(logger, eng),
		Devices:  handlers.NewDeviceHandler(logger, store),
		Health:   handlers.NewHealthHandler(logger, store, "test"),
		Metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	mws := []func(http.Handler) http.Handler{middleware.Logging(logger, m, "/health")}
	if rateLimit > 0 {
		limiter := middleware.NewRateLimiter(rateLimit, time.Minute, logger)
		t.Cleanup(limiter.Stop)
		mws = append(mws, middleware.RateLimit(limiter, logger))
	}
	srv := New(Config{ShutdownTimeout: 5 * time.Second}, router, logger, mws...)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ts := &testServer{
		baseURL: "http://" + ln.Addr().String(),
		errC:    make(chan error, 1),
		cancel:  cancel,
	}
	go func() { ts.errC <- srv.Serve(ctx, ln) }()
	t.Cleanup(cancel)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, device string, body any) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.baseURL+path, r)
	require.NoError(t, err)
	if device != "" {
		req.Header.Set(middleware.DeviceHeader, device)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func vehicleState(t *testing.T, device, status string) api.RemoteState {
	t.Helper()

	v := entity.NewVehicle("veh-1", device)
	v.UpdateStatus(status, time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC))
	payload, err := entity.Encode(v)
	require.NoError(t, err)

	return api.RemoteState{
		EntityType:  string(entity.TypeVehicle),
		EntityID:    "veh-1",
		DeviceID:    device,
		VectorClock: v.Clock().ToPortable(),
		Payload:     payload,
	}
}

func TestServer_SyncRoundTrip(t *testing.T) {
	ts := startServer(t, 0)

	resp := ts.do(t, http.MethodPost, "/api/v1/sync/push", "truck-1", api.PushRequest{
		DeviceID: "truck-1",
		States:   []api.RemoteState{vehicleState(t, "truck-1", "maintenance")},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	push := decode[api.PushResponse](t, resp)
	assert.Equal(t, 1, push.Result.EntitiesSynced)
	assert.Empty(t, push.Result.Errors)

	resp = ts.do(t, http.MethodPost, "/api/v1/sync/pull", "truck-2", api.PullRequest{DeviceID: "truck-2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pull := decode[api.PullResponse](t, resp)
	require.Len(t, pull.States, 1)
	assert.Equal(t, "truck-1", pull.States[0].DeviceID)
	assert.False(t, pull.HasMore)

	// Собственные изменения устройству не возвращаются
	resp = ts.do(t, http.MethodPost, "/api/v1/sync/bidirectional", "truck-1", api.BidirectionalRequest{DeviceID: "truck-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[api.BidirectionalResponse](t, resp).States)

	// Повторный pull с server_time ничего не возвращает
	resp = ts.do(t, http.MethodPost, "/api/v1/sync/pull", "truck-2", api.PullRequest{DeviceID: "truck-2", Since: pull.ServerTime})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[api.PullResponse](t, resp).States)
}

func TestServer_DevicesAndEntities(t *testing.T) {
	ts := startServer(t, 0)

	resp := ts.do(t, http.MethodPost, "/api/v1/devices/register", "truck-1", api.RegisterDeviceRequest{
		DeviceID:   "truck-1",
		DeviceName: "Truck 1 tablet",
		DeviceType: "tablet",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[models.Device](t, resp).LastPushAt.IsZero())

	resp = ts.do(t, http.MethodPost, "/api/v1/sync/push", "truck-1", api.PushRequest{
		DeviceID: "truck-1",
		States:   []api.RemoteState{vehicleState(t, "truck-1", "maintenance")},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/v1/devices/truck-1", "truck-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	device := decode[models.Device](t, resp)
	assert.False(t, device.LastPushAt.IsZero())
	assert.True(t, device.LastPullAt.IsZero())

	resp = ts.do(t, http.MethodGet, "/api/v1/entities/Vehicle", "truck-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []api.EntityRef{{EntityType: "Vehicle", EntityID: "veh-1"}}, decode[api.EntitiesResponse](t, resp).Entities)

	resp = ts.do(t, http.MethodGet, "/api/v1/entities/Vehicle/veh-1", "truck-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"truck-1"}, decode[engine.EntityState](t, resp).Devices)

	resp = ts.do(t, http.MethodGet, "/api/v1/sync/sessions/truck-1", "truck-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sessions := decode[handlers.SessionsResponse](t, resp)
	require.Len(t, sessions.Sessions, 1)
	assert.Equal(t, 1, sessions.Sessions[0].EntitiesSynced)

	resp = ts.do(t, http.MethodGet, "/api/v1/devices/truck-9", "truck-9", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_QueueAndHealth(t *testing.T) {
	ts := startServer(t, 0)

	resp := ts.do(t, http.MethodPost, "/api/v1/queue/truck-1", "truck-1", api.EnqueueRequest{
		OperationType: "vehicle_update",
		EntityType:    "Vehicle",
		EntityID:      "veh-1",
		Payload:       json.RawMessage(`{"status":"in_service"}`),
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/v1/queue/truck-1/stats", "truck-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[api.QueueStatsResponse](t, resp).Pending)

	resp = ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, handlers.HealthResponse{Status: "ok", Database: "ok", Version: "test"},
		decode[handlers.HealthResponse](t, resp))

	resp = ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `fleetsync_http_requests_total{method="POST",path="/api/v1/queue/{device}",status="202"} 1`)
	assert.Contains(t, string(body), `fleetsync_queue_transitions_total{status="pending"} 1`)
}

func TestServer_RoutingErrors(t *testing.T) {
	ts := startServer(t, 0)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/v1/unknown", "", nil).StatusCode)
	assert.Equal(t, http.StatusMethodNotAllowed, ts.do(t, http.MethodGet, "/api/v1/sync/push", "", nil).StatusCode)

	resp := ts.do(t, http.MethodPost, "/api/v1/sync/push", "", strings.Repeat("x", 3))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_RateLimitPerDevice(t *testing.T) {
	ts := startServer(t, 2)

	for i := 0; i < 2; i++ {
		resp := ts.do(t, http.MethodGet, "/api/v1/queue/truck-1/stats", "truck-1", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp := ts.do(t, http.MethodGet, "/api/v1/queue/truck-1/stats", "truck-1", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	resp = ts.do(t, http.MethodGet, "/api/v1/queue/truck-2/stats", "truck-2", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_ShutdownOnCancel(t *testing.T) {
	ts := startServer(t, 0)

	resp := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ts.cancel()
	select {
	case err := <-ts.errC:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
