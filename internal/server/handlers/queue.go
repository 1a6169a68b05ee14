package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/queue"
	"github.com/iudanet/fleetsync/pkg/api"
)

//go:generate moq -out handlers_mock.go . SyncService DeviceTracker QueueService EntityService DeviceRegistry Pinger

// QueueService exposes the per-device operation queues by device ID.
type QueueService interface {
	Enqueue(ctx context.Context, deviceID string, op queue.Operation) (*models.QueuedOperation, error)
	Stats(ctx context.Context, deviceID string) (models.QueueStats, error)
	Pending(ctx context.Context, deviceID string, limit int) ([]*models.QueuedOperation, error)
	ClearCompleted(ctx context.Context, deviceID string) (int, error)
	ClearFailed(ctx context.Context, deviceID string) (int, error)
	ByEntity(ctx context.Context, deviceID, entityType, entityID string) ([]*models.QueuedOperation, error)
}

// managerQueues adapts queue.Manager to QueueService
type managerQueues struct {
	m *queue.Manager
}

// QueuesOf returns a QueueService backed by m.
func QueuesOf(m *queue.Manager) QueueService {
	return managerQueues{m: m}
}

func (q managerQueues) Enqueue(ctx context.Context, deviceID string, op queue.Operation) (*models.QueuedOperation, error) {
	return q.m.Queue(deviceID).Enqueue(ctx, op)
}

func (q managerQueues) Stats(ctx context.Context, deviceID string) (models.QueueStats, error) {
	return q.m.Queue(deviceID).Stats(ctx)
}

func (q managerQueues) Pending(ctx context.Context, deviceID string, limit int) ([]*models.QueuedOperation, error) {
	return q.m.Queue(deviceID).Pending(ctx, limit)
}

func (q managerQueues) ClearCompleted(ctx context.Context, deviceID string) (int, error) {
	return q.m.Queue(deviceID).ClearCompleted(ctx)
}

func (q managerQueues) ClearFailed(ctx context.Context, deviceID string) (int, error) {
	return q.m.Queue(deviceID).ClearFailed(ctx)
}

func (q managerQueues) ByEntity(ctx context.Context, deviceID, entityType, entityID string) ([]*models.QueuedOperation, error) {
	return q.m.Queue(deviceID).ByEntity(ctx, entityType, entityID)
}

// QueueHandler обрабатывает запросы к очередям операций устройств
type QueueHandler struct {
	logger *slog.Logger
	queues QueueService
}

// NewQueueHandler создает новый handler очередей
func NewQueueHandler(logger *slog.Logger, queues QueueService) *QueueHandler {
	return &QueueHandler{
		logger: logger,
		queues: queues,
	}
}

// Enqueue обрабатывает POST /api/v1/queue/{device}
func (h *QueueHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("device")
	if deviceID == "" {
		writeError(w, http.StatusBadRequest, "device is required")
		return
	}

	var req api.EnqueueRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	op, err := h.queues.Enqueue(r.Context(), deviceID, queue.Operation{
		ID:         req.OperationID,
		Type:       models.OperationType(req.OperationType),
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Priority:   models.Priority(req.Priority),
		Payload:    req.Payload,
		MaxRetries: req.MaxRetries,
	})
	switch {
	case errors.Is(err, queue.ErrInvalidOperation):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, queue.ErrWrongDevice):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.ErrorContext(r.Context(), "enqueue failed",
			slog.String("device_id", deviceID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to enqueue operation")
		return
	}

	writeJSON(w, h.logger, http.StatusAccepted, toOperationInfo(op))
}

// Stats обрабатывает GET /api/v1/queue/{device}/stats
func (h *QueueHandler) Stats(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("device")

	stats, err := h.queues.Stats(r.Context(), deviceID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "queue stats failed",
			slog.String("device_id", deviceID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load queue stats")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, api.QueueStatsResponse{
		DeviceID:   deviceID,
		Total:      stats.Total,
		Pending:    stats.Pending,
		InProgress: stats.InProgress,
		Completed:  stats.Completed,
		Retry:      stats.Retry,
		Failed:     stats.Failed,
	})
}

// Pending обрабатывает GET /api/v1/queue/{device}/pending?limit=N
func (h *QueueHandler) Pending(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("device")

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = n
	}

	ops, err := h.queues.Pending(r.Context(), deviceID, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "pending operations failed",
			slog.String("device_id", deviceID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load pending operations")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toPendingResponse(ops))
}

// ClearCompleted обрабатывает POST /api/v1/queue/{device}/clear-completed
func (h *QueueHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("device")

	n, err := h.queues.ClearCompleted(r.Context(), deviceID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "clear completed failed",
			slog.String("device_id", deviceID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to clear completed operations")
		return
	}

	h.logger.InfoContext(r.Context(), "completed operations cleared",
		slog.String("device_id", deviceID),
		slog.Int("removed", n))
	writeJSON(w, h.logger, http.StatusOK, api.ClearResponse{Removed: n})
}

// ClearFailed обрабатывает POST /api/v1/queue/{device}/clear-failed
func (h *QueueHandler) ClearFailed(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("device")

	n, err := h.queues.ClearFailed(r.Context(), deviceID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "clear failed operations failed",
			slog.String("device_id", deviceID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to clear failed operations")
		return
	}

	h.logger.InfoContext(r.Context(), "failed operations cleared",
		slog.String("device_id", deviceID),
		slog.Int("removed", n))
	writeJSON(w, h.logger, http.StatusOK, api.ClearResponse{Removed: n})
}

// ByEntity обрабатывает GET /api/v1/queue/{device}/entities/{type}/{id}
// Возвращает все операции устройства над сущностью в порядке создания
func (h *QueueHandler) ByEntity(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("device")
	entityType, entityID := r.PathValue("type"), r.PathValue("id")

	ops, err := h.queues.ByEntity(r.Context(), deviceID, entityType, entityID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "entity operations failed",
			slog.String("device_id", deviceID),
			slog.String("entity_type", entityType),
			slog.String("entity_id", entityID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load entity operations")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toPendingResponse(ops))
}

func toPendingResponse(ops []*models.QueuedOperation) api.PendingResponse {
	resp := api.PendingResponse{Operations: make([]api.OperationInfo, 0, len(ops))}
	for _, op := range ops {
		resp.Operations = append(resp.Operations, toOperationInfo(op))
	}
	return resp
}

func toOperationInfo(op *models.QueuedOperation) api.OperationInfo {
	return api.OperationInfo{
		OperationID:   op.OperationID,
		DeviceID:      op.DeviceID,
		OperationType: string(op.OperationType),
		EntityType:    op.EntityType,
		EntityID:      op.EntityID,
		Priority:      string(op.Priority),
		Status:        string(op.Status),
		ErrorMessage:  op.ErrorMessage,
		Payload:       op.Payload,
		RetryCount:    op.RetryCount,
		MaxRetries:    op.MaxRetries,
		CreatedAt:     op.CreatedAt,
		UpdatedAt:     op.UpdatedAt,
	}
}
