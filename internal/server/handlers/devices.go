package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/storage"
	"github.com/iudanet/fleetsync/pkg/api"
)

// DeviceRegistry is the device store used by DeviceHandler.
type DeviceRegistry interface {
	RegisterDevice(ctx context.Context, d *models.Device) error
	GetDevice(ctx context.Context, deviceID string) (*models.Device, error)
	SetDeviceOffline(ctx context.Context, deviceID string, offline bool, at time.Time) error
}

// DeviceHandler обрабатывает регистрацию устройств
type DeviceHandler struct {
	logger   *slog.Logger
	registry DeviceRegistry
	now      func() time.Time
}

// NewDeviceHandler создает новый handler реестра устройств
func NewDeviceHandler(logger *slog.Logger, registry DeviceRegistry) *DeviceHandler {
	return &DeviceHandler{
		logger:   logger,
		registry: registry,
		now:      time.Now,
	}
}

// Register обрабатывает POST /api/v1/devices/register
// Повторная регистрация обновляет описание и сохраняет историю синхронизации
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterDeviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DeviceID == "" || req.DeviceName == "" || req.DeviceType == "" {
		writeError(w, http.StatusBadRequest, "device_id, device_name and device_type are required")
		return
	}

	now := h.now().UTC()
	err := h.registry.RegisterDevice(r.Context(), &models.Device{
		DeviceID:     req.DeviceID,
		Name:         req.DeviceName,
		Type:         req.DeviceType,
		Platform:     req.Platform,
		AppVersion:   req.AppVersion,
		Capabilities: req.Capabilities,
		IsActive:     true,
		RegisteredAt: now,
		UpdatedAt:    now,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "device registration failed",
			slog.String("device_id", req.DeviceID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to register device")
		return
	}

	device, err := h.registry.GetDevice(r.Context(), req.DeviceID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load registered device",
			slog.String("device_id", req.DeviceID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to register device")
		return
	}

	h.logger.InfoContext(r.Context(), "device registered",
		slog.String("device_id", device.DeviceID),
		slog.String("device_type", device.Type))
	writeJSON(w, h.logger, http.StatusOK, device)
}

// Get обрабатывает GET /api/v1/devices/{device}
func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("device")

	device, err := h.registry.GetDevice(r.Context(), deviceID)
	switch {
	case errors.Is(err, storage.ErrDeviceNotFound):
		writeError(w, http.StatusNotFound, "device "+deviceID+" not found")
		return
	case err != nil:
		h.logger.ErrorContext(r.Context(), "failed to load device",
			slog.String("device_id", deviceID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load device")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, device)
}

// SetStatus обрабатывает PUT /api/v1/devices/{device}/status
func (h *DeviceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("device")

	var req api.DeviceStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.registry.SetDeviceOffline(r.Context(), deviceID, req.IsOffline, h.now().UTC())
	switch {
	case errors.Is(err, storage.ErrDeviceNotFound):
		writeError(w, http.StatusNotFound, "device "+deviceID+" not found")
		return
	case err != nil:
		h.logger.ErrorContext(r.Context(), "failed to update device status",
			slog.String("device_id", deviceID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to update device status")
		return
	}

	device, err := h.registry.GetDevice(r.Context(), deviceID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load device",
			slog.String("device_id", deviceID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load device")
		return
	}

	h.logger.InfoContext(r.Context(), "device status changed",
		slog.String("device_id", deviceID),
		slog.Bool("is_offline", req.IsOffline))
	writeJSON(w, h.logger, http.StatusOK, device)
}
