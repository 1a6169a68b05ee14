package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/fleetsync/internal/engine"
	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/pkg/api"
)

// maxBodyBytes ограничивает размер тела запроса синхронизации
const maxBodyBytes = 16 << 20

// SyncService is the part of the sync engine used by SyncHandler.
type SyncService interface {
	SyncFrom(ctx context.Context, localDeviceID, sourceDeviceID string, states []api.RemoteState) (*api.SyncResult, error)
	ChangesFor(ctx context.Context, deviceID string, since time.Time, limit int) ([]*models.MetadataRecord, bool, error)
}

// DeviceTracker records when a device last exchanged changes.
type DeviceTracker interface {
	TouchDevice(ctx context.Context, deviceID string, dir models.SyncDirection, at time.Time) error
}

// SyncHandler обрабатывает запросы синхронизации устройств
type SyncHandler struct {
	logger   *slog.Logger
	engine   SyncService
	devices  DeviceTracker
	now      func() time.Time
	serverID string
}

// NewSyncHandler создает новый handler синхронизации.
// serverID записывается в vector clock при слиянии на сервере.
// devices может быть nil, тогда время синхронизации устройств не хранится.
func NewSyncHandler(logger *slog.Logger, engine SyncService, devices DeviceTracker, serverID string) *SyncHandler {
	return &SyncHandler{
		logger:   logger,
		engine:   engine,
		devices:  devices,
		serverID: serverID,
		now:      time.Now,
	}
}

// touch отмечает обмен в реестре; ошибка реестра не срывает синхронизацию
func (h *SyncHandler) touch(ctx context.Context, deviceID string, dir models.SyncDirection, at time.Time) {
	if h.devices == nil {
		return
	}
	if err := h.devices.TouchDevice(ctx, deviceID, dir, at); err != nil {
		h.logger.WarnContext(ctx, "failed to record device sync time",
			slog.String("device_id", deviceID),
			slog.String("direction", string(dir)),
			slog.Any("error", err))
	}
}

// Push обрабатывает POST /api/v1/sync/push
// Принимает локальные изменения устройства и сливает их в состояние сервера
func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	var req api.PushRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	serverTime := h.now().UTC()
	result, err := h.engine.SyncFrom(r.Context(), h.serverID, req.DeviceID, req.States)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "push failed",
			slog.String("device_id", req.DeviceID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to apply changes")
		return
	}

	h.touch(r.Context(), req.DeviceID, models.SyncPush, serverTime)
	writeJSON(w, h.logger, http.StatusOK, api.PushResponse{
		ServerTime: serverTime,
		Result:     *result,
	})
}

// Pull обрабатывает POST /api/v1/sync/pull
// Возвращает изменения других устройств после since
func (h *SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	var req api.PullRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}
	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must not be negative")
		return
	}

	// Время фиксируется до чтения, чтобы не потерять параллельные записи
	serverTime := h.now().UTC()
	records, hasMore, err := h.engine.ChangesFor(r.Context(), req.DeviceID, req.Since, req.Limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "pull failed",
			slog.String("device_id", req.DeviceID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load changes")
		return
	}
	h.touch(r.Context(), req.DeviceID, models.SyncPull, serverTime)
	if hasMore && len(records) > 0 {
		// Следующая страница начинается после последней отданной записи
		serverTime = records[len(records)-1].UpdatedAt
	}

	writeJSON(w, h.logger, http.StatusOK, api.PullResponse{
		ServerTime: serverTime,
		States:     engine.ToRemoteStates(records),
		HasMore:    hasMore,
	})
}

// Bidirectional обрабатывает POST /api/v1/sync/bidirectional
// Сначала применяет изменения устройства, затем возвращает изменения остальных
func (h *SyncHandler) Bidirectional(w http.ResponseWriter, r *http.Request) {
	var req api.BidirectionalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}
	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must not be negative")
		return
	}

	serverTime := h.now().UTC()
	result, err := h.engine.SyncFrom(r.Context(), h.serverID, req.DeviceID, req.States)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "bidirectional push failed",
			slog.String("device_id", req.DeviceID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to apply changes")
		return
	}

	records, hasMore, err := h.engine.ChangesFor(r.Context(), req.DeviceID, req.Since, req.Limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "bidirectional pull failed",
			slog.String("device_id", req.DeviceID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load changes")
		return
	}
	h.touch(r.Context(), req.DeviceID, models.SyncBoth, serverTime)
	if hasMore && len(records) > 0 {
		serverTime = records[len(records)-1].UpdatedAt
	}

	writeJSON(w, h.logger, http.StatusOK, api.BidirectionalResponse{
		ServerTime: serverTime,
		Result:     *result,
		States:     engine.ToRemoteStates(records),
		HasMore:    hasMore,
	})
}

// decodeJSON читает тело запроса в v. При ошибке пишет 400 и возвращает false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeJSON пишет успешный JSON ответ
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// writeError пишет ErrorResponse
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
