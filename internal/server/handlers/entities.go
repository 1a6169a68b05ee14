package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/fleetsync/internal/engine"
	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/pkg/api"
)

// defaultSessionLimit ограничивает историю сессий без параметра limit
const defaultSessionLimit = 50

// EntityService is the read side of the sync engine used by EntityHandler.
type EntityService interface {
	ActiveEntities(ctx context.Context, entityType string) ([]models.EntityKey, error)
	EntityState(ctx context.Context, key models.EntityKey) (*engine.EntityState, error)
	Conflicts(ctx context.Context, key models.EntityKey) ([]*models.SyncConflict, error)
	Sessions(ctx context.Context, deviceID string, limit int) ([]*models.SyncSession, error)
}

// EntityHandler отдает объединенное состояние сущностей и журнал синхронизации
type EntityHandler struct {
	logger *slog.Logger
	engine EntityService
}

// NewEntityHandler создает новый handler сущностей
func NewEntityHandler(logger *slog.Logger, engine EntityService) *EntityHandler {
	return &EntityHandler{
		logger: logger,
		engine: engine,
	}
}

// ConflictsResponse lists resolved conflicts of one entity, newest first.
type ConflictsResponse struct {
	Conflicts []*models.SyncConflict `json:"conflicts"`
}

// SessionsResponse lists sync sessions of one device, newest first.
type SessionsResponse struct {
	DeviceID string                `json:"device_id"`
	Sessions []*models.SyncSession `json:"sessions"`
}

// Active обрабатывает GET /api/v1/entities/{type}
// Сущность, удаленная на любом устройстве, в список не попадает
func (h *EntityHandler) Active(w http.ResponseWriter, r *http.Request) {
	entityType := r.PathValue("type")

	keys, err := h.engine.ActiveEntities(r.Context(), entityType)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "active entities failed",
			slog.String("entity_type", entityType),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load entities")
		return
	}

	resp := api.EntitiesResponse{Entities: make([]api.EntityRef, 0, len(keys))}
	for _, k := range keys {
		resp.Entities = append(resp.Entities, api.EntityRef{EntityType: k.EntityType, EntityID: k.EntityID})
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// State обрабатывает GET /api/v1/entities/{type}/{id}
func (h *EntityHandler) State(w http.ResponseWriter, r *http.Request) {
	key := models.EntityKey{EntityType: r.PathValue("type"), EntityID: r.PathValue("id")}

	state, err := h.engine.EntityState(r.Context(), key)
	switch {
	case errors.Is(err, engine.ErrEntityNotFound):
		writeError(w, http.StatusNotFound, "entity "+key.String()+" not found")
		return
	case err != nil:
		h.logger.ErrorContext(r.Context(), "entity state failed",
			slog.String("entity", key.String()),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load entity")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, state)
}

// Conflicts обрабатывает GET /api/v1/entities/{type}/{id}/conflicts
func (h *EntityHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	key := models.EntityKey{EntityType: r.PathValue("type"), EntityID: r.PathValue("id")}

	conflicts, err := h.engine.Conflicts(r.Context(), key)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "conflicts failed",
			slog.String("entity", key.String()),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load conflicts")
		return
	}
	if conflicts == nil {
		conflicts = []*models.SyncConflict{}
	}

	writeJSON(w, h.logger, http.StatusOK, ConflictsResponse{Conflicts: conflicts})
}

// Sessions обрабатывает GET /api/v1/sync/sessions/{device}?limit=N
func (h *EntityHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("device")

	limit := defaultSessionLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = n
	}

	sessions, err := h.engine.Sessions(r.Context(), deviceID, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "sessions failed",
			slog.String("device_id", deviceID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load sessions")
		return
	}
	if sessions == nil {
		sessions = []*models.SyncSession{}
	}

	writeJSON(w, h.logger, http.StatusOK, SessionsResponse{DeviceID: deviceID, Sessions: sessions})
}
