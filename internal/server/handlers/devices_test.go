package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/storage"
	"github.com/iudanet/fleetsync/pkg/api"
)

func serveDevices(h *DeviceHandler, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/devices/register", h.Register)
	mux.HandleFunc("GET /api/v1/devices/{device}", h.Get)
	mux.HandleFunc("PUT /api/v1/devices/{device}/status", h.SetStatus)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

// memoryRegistry хранит устройства в map поверх DeviceRegistryMock
func memoryRegistry() *DeviceRegistryMock {
	devices := map[string]*models.Device{}
	return &DeviceRegistryMock{
		RegisterDeviceFunc: func(ctx context.Context, d *models.Device) error {
			if old, ok := devices[d.DeviceID]; ok {
				d.RegisteredAt = old.RegisteredAt
			}
			devices[d.DeviceID] = d
			return nil
		},
		GetDeviceFunc: func(ctx context.Context, deviceID string) (*models.Device, error) {
			d, ok := devices[deviceID]
			if !ok {
				return nil, storage.ErrDeviceNotFound
			}
			return d, nil
		},
		SetDeviceOfflineFunc: func(ctx context.Context, deviceID string, offline bool, at time.Time) error {
			d, ok := devices[deviceID]
			if !ok {
				return storage.ErrDeviceNotFound
			}
			d.IsOffline = offline
			d.UpdatedAt = at
			return nil
		},
	}
}

func TestDeviceHandler_Lifecycle(t *testing.T) {
	registry := memoryRegistry()
	h := NewDeviceHandler(setupTestLogger(), registry)
	h.now = func() time.Time { return serverTime }

	w := serveDevices(h, http.MethodPost, "/api/v1/devices/register", `{
		"device_id": "truck-1",
		"device_name": "Truck 1 tablet",
		"device_type": "tablet",
		"platform": "android",
		"capabilities": {"offline": true}
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	device := decodeBody[models.Device](t, w)
	assert.Equal(t, "truck-1", device.DeviceID)
	assert.Equal(t, "tablet", device.Type)
	assert.True(t, device.IsActive)
	assert.Equal(t, true, device.Capabilities["offline"])
	assert.True(t, serverTime.Equal(device.RegisteredAt))

	w = serveDevices(h, http.MethodPut, "/api/v1/devices/truck-1/status", `{"is_offline": true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeBody[models.Device](t, w).IsOffline)

	w = serveDevices(h, http.MethodGet, "/api/v1/devices/truck-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeBody[models.Device](t, w).IsOffline)

	calls := registry.SetDeviceOfflineCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "truck-1", calls[0].DeviceID)
	assert.True(t, serverTime.Equal(calls[0].At))
}

func TestDeviceHandler_Errors(t *testing.T) {
	boom := errors.New("database is locked")
	failing := &DeviceRegistryMock{
		RegisterDeviceFunc: func(ctx context.Context, d *models.Device) error {
			return boom
		},
		GetDeviceFunc: func(ctx context.Context, deviceID string) (*models.Device, error) {
			return nil, boom
		},
		SetDeviceOfflineFunc: func(ctx context.Context, deviceID string, offline bool, at time.Time) error {
			return boom
		},
	}

	tests := []struct {
		name       string
		registry   DeviceRegistry
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{name: "register invalid json", registry: memoryRegistry(), method: http.MethodPost, target: "/api/v1/devices/register", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "register without type", registry: memoryRegistry(), method: http.MethodPost, target: "/api/v1/devices/register", body: `{"device_id":"truck-1","device_name":"Truck 1"}`, wantStatus: http.StatusBadRequest},
		{name: "register storage failure", registry: failing, method: http.MethodPost, target: "/api/v1/devices/register", body: `{"device_id":"truck-1","device_name":"Truck 1","device_type":"mobile"}`, wantStatus: http.StatusInternalServerError},
		{name: "get unknown device", registry: memoryRegistry(), method: http.MethodGet, target: "/api/v1/devices/truck-9", wantStatus: http.StatusNotFound},
		{name: "get storage failure", registry: failing, method: http.MethodGet, target: "/api/v1/devices/truck-1", wantStatus: http.StatusInternalServerError},
		{name: "status unknown device", registry: memoryRegistry(), method: http.MethodPut, target: "/api/v1/devices/truck-9/status", body: `{"is_offline":true}`, wantStatus: http.StatusNotFound},
		{name: "status invalid json", registry: memoryRegistry(), method: http.MethodPut, target: "/api/v1/devices/truck-1/status", body: `[`, wantStatus: http.StatusBadRequest},
		{name: "status storage failure", registry: failing, method: http.MethodPut, target: "/api/v1/devices/truck-1/status", body: `{"is_offline":false}`, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveDevices(NewDeviceHandler(setupTestLogger(), tt.registry), tt.method, tt.target, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeBody[api.ErrorResponse](t, w)
			assert.Equal(t, http.StatusText(tt.wantStatus), resp.Error)
			assert.NotContains(t, w.Body.String(), boom.Error())
		})
	}
}
