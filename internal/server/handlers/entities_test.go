package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fleetsync/internal/crdt"
	"github.com/iudanet/fleetsync/internal/engine"
	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/pkg/api"
)

func serveEntities(h *EntityHandler, target string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/sync/sessions/{device}", h.Sessions)
	mux.HandleFunc("GET /api/v1/entities/{type}", h.Active)
	mux.HandleFunc("GET /api/v1/entities/{type}/{id}", h.State)
	mux.HandleFunc("GET /api/v1/entities/{type}/{id}/conflicts", h.Conflicts)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestEntityHandler_Reads(t *testing.T) {
	veh := models.EntityKey{EntityType: "Vehicle", EntityID: "veh-1"}
	svc := &EntityServiceMock{
		ActiveEntitiesFunc: func(ctx context.Context, entityType string) ([]models.EntityKey, error) {
			return []models.EntityKey{veh}, nil
		},
		EntityStateFunc: func(ctx context.Context, key models.EntityKey) (*engine.EntityState, error) {
			if key != veh {
				return nil, engine.ErrEntityNotFound
			}
			return &engine.EntityState{
				EntityType: key.EntityType,
				EntityID:   key.EntityID,
				Clock:      crdt.VectorClock{"truck-1": 2, "truck-2": 1},
				Payload:    json.RawMessage(`{"type":"Vehicle"}`),
				Devices:    []string{"truck-1", "truck-2"},
				UpdatedAt:  serverTime,
			}, nil
		},
		ConflictsFunc: func(ctx context.Context, key models.EntityKey) ([]*models.SyncConflict, error) {
			return []*models.SyncConflict{{ID: "c-1", EntityType: key.EntityType, EntityID: key.EntityID, Strategy: "crdt_merge"}}, nil
		},
		SessionsFunc: func(ctx context.Context, deviceID string, limit int) ([]*models.SyncSession, error) {
			return nil, nil
		},
	}
	h := NewEntityHandler(setupTestLogger(), svc)

	w := serveEntities(h, "/api/v1/entities/Vehicle")
	require.Equal(t, http.StatusOK, w.Code)
	active := decodeBody[api.EntitiesResponse](t, w)
	assert.Equal(t, []api.EntityRef{{EntityType: "Vehicle", EntityID: "veh-1"}}, active.Entities)
	assert.Equal(t, "Vehicle", svc.ActiveEntitiesCalls()[0].EntityType)

	w = serveEntities(h, "/api/v1/entities/Vehicle/veh-1")
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeBody[engine.EntityState](t, w)
	assert.Equal(t, crdt.VectorClock{"truck-1": 2, "truck-2": 1}, state.Clock)
	assert.Equal(t, []string{"truck-1", "truck-2"}, state.Devices)

	w = serveEntities(h, "/api/v1/entities/Vehicle/veh-9")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serveEntities(h, "/api/v1/entities/Vehicle/veh-1/conflicts")
	require.Equal(t, http.StatusOK, w.Code)
	conflicts := decodeBody[ConflictsResponse](t, w)
	require.Len(t, conflicts.Conflicts, 1)
	assert.Equal(t, "c-1", conflicts.Conflicts[0].ID)

	w = serveEntities(h, "/api/v1/sync/sessions/truck-1?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"device_id":"truck-1","sessions":[]}`, w.Body.String())

	w = serveEntities(h, "/api/v1/sync/sessions/truck-1")
	require.Equal(t, http.StatusOK, w.Code)

	calls := svc.SessionsCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, 5, calls[0].Limit)
	assert.Equal(t, defaultSessionLimit, calls[1].Limit)
}

func TestEntityHandler_Errors(t *testing.T) {
	boom := errors.New("database is locked")
	svc := &EntityServiceMock{
		ActiveEntitiesFunc: func(ctx context.Context, entityType string) ([]models.EntityKey, error) {
			return nil, boom
		},
		EntityStateFunc: func(ctx context.Context, key models.EntityKey) (*engine.EntityState, error) {
			return nil, boom
		},
		ConflictsFunc: func(ctx context.Context, key models.EntityKey) ([]*models.SyncConflict, error) {
			return nil, boom
		},
		SessionsFunc: func(ctx context.Context, deviceID string, limit int) ([]*models.SyncSession, error) {
			return nil, boom
		},
	}
	h := NewEntityHandler(setupTestLogger(), svc)

	tests := []struct {
		name       string
		target     string
		wantStatus int
	}{
		{name: "active storage failure", target: "/api/v1/entities/Vehicle", wantStatus: http.StatusInternalServerError},
		{name: "state storage failure", target: "/api/v1/entities/Vehicle/veh-1", wantStatus: http.StatusInternalServerError},
		{name: "conflicts storage failure", target: "/api/v1/entities/Vehicle/veh-1/conflicts", wantStatus: http.StatusInternalServerError},
		{name: "sessions bad limit", target: "/api/v1/sync/sessions/truck-1?limit=abc", wantStatus: http.StatusBadRequest},
		{name: "sessions zero limit", target: "/api/v1/sync/sessions/truck-1?limit=0", wantStatus: http.StatusBadRequest},
		{name: "sessions storage failure", target: "/api/v1/sync/sessions/truck-1", wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveEntities(h, tt.target)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeBody[api.ErrorResponse](t, w)
			assert.Equal(t, http.StatusText(tt.wantStatus), resp.Error)
			assert.NotContains(t, w.Body.String(), boom.Error())
		})
	}

	// Неверный limit не доходит до движка
	assert.Len(t, svc.SessionsCalls(), 1)
}
