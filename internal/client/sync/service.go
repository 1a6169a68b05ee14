// Package sync replicates the device's metadata records with the sync server.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/fleetsync/internal/engine"
	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/storage"
	"github.com/iudanet/fleetsync/pkg/api"
)

//go:generate moq -out service_mock.go . Service APIClient Engine

// Имена маркеров синхронизации в storage.SyncStateStorage
const (
	pushMarker = "push"
	pullMarker = "pull"
)

// ErrStalledPagination indicates a server that reports more changes
// without advancing server_time.
var ErrStalledPagination = errors.New("pull pagination did not advance")

// Service определяет интерфейс синхронизации устройства
type Service interface {
	// Sync отправляет локальные изменения и применяет изменения других устройств
	Sync(ctx context.Context) (*SyncResult, error)

	// PendingCount возвращает количество локальных записей, еще не отправленных на сервер
	PendingCount(ctx context.Context) (int, error)
}

// APIClient is the transport used to reach the server.
type APIClient interface {
	Push(ctx context.Context, states []api.RemoteState) (*api.PushResponse, error)
	Pull(ctx context.Context, since time.Time, limit int) (*api.PullResponse, error)
}

// Engine is the local sync engine.
type Engine interface {
	ChangesSince(ctx context.Context, deviceID string, since time.Time) ([]*models.MetadataRecord, error)
	Sync(ctx context.Context, localDeviceID string, states []api.RemoteState) (*api.SyncResult, error)
}

// SyncResult contains sync operation results
type SyncResult struct {
	Errors    []string // ошибки отдельных записей (push и pull)
	Pushed    int      // количество отправленных на сервер записей
	Pulled    int      // количество полученных с сервера записей
	Merged    int      // количество записей, измененных локально
	Conflicts int      // количество разрешенных конфликтов (push и pull)
	Pages     int      // количество страниц pull
}

type service struct {
	client    APIClient
	engine    Engine
	markers   storage.SyncStateStorage
	logger    *slog.Logger
	deviceID  string
	pullLimit int
}

// NewService creates a new sync service for deviceID.
// pullLimit ограничивает размер страницы pull (0 = без ограничения).
func NewService(deviceID string, client APIClient, eng Engine, markers storage.SyncStateStorage, logger *slog.Logger, pullLimit int) Service {
	return &service{
		client:    client,
		engine:    eng,
		markers:   markers,
		logger:    logger,
		deviceID:  deviceID,
		pullLimit: pullLimit,
	}
}

// Sync performs full synchronization with server
// 1. Pushes own records changed after the push marker
// 2. Pulls other devices' records page by page after the pull marker
// 3. Merges pulled records into local storage through the engine
//
// A marker advances only after its step succeeded, so an interrupted sync
// is repeated from the last completed step.
func (s *service) Sync(ctx context.Context) (*SyncResult, error) {
	s.logger.InfoContext(ctx, "Starting synchronization", slog.String("device_id", s.deviceID))

	result := &SyncResult{Errors: []string{}}

	if err := s.push(ctx, result); err != nil {
		return nil, err
	}
	if err := s.pull(ctx, result); err != nil {
		return result, err
	}

	s.logger.InfoContext(ctx, "Synchronization completed",
		slog.String("device_id", s.deviceID),
		slog.Int("pushed", result.Pushed),
		slog.Int("pulled", result.Pulled),
		slog.Int("merged", result.Merged),
		slog.Int("conflicts", result.Conflicts),
		slog.Int("errors", len(result.Errors)))

	return result, nil
}

func (s *service) push(ctx context.Context, result *SyncResult) error {
	since, err := s.markers.GetSyncMarker(ctx, pushMarker)
	if err != nil {
		return fmt.Errorf("failed to get push marker: %w", err)
	}

	local, err := s.engine.ChangesSince(ctx, s.deviceID, since)
	if err != nil {
		return fmt.Errorf("failed to get local changes: %w", err)
	}
	if len(local) == 0 {
		return nil
	}

	s.logger.DebugContext(ctx, "Collected local changes", slog.Int("count", len(local)))

	resp, err := s.client.Push(ctx, engine.ToRemoteStates(local))
	if err != nil {
		return fmt.Errorf("push failed: %w", err)
	}

	result.Pushed = len(local)
	result.Conflicts += resp.Result.ConflictsResolved
	for _, e := range resp.Result.Errors {
		result.Errors = append(result.Errors, "push: "+e)
	}
	if len(resp.Result.Errors) > 0 {
		// Отклоненные записи не будут приняты и при повторе
		s.logger.WarnContext(ctx, "Server rejected records",
			slog.Int("rejected", len(resp.Result.Errors)))
	}

	// Маркер - время изменения последней отправленной записи
	latest := since
	for _, rec := range local {
		if rec.UpdatedAt.After(latest) {
			latest = rec.UpdatedAt
		}
	}
	if err := s.markers.SaveSyncMarker(ctx, pushMarker, latest); err != nil {
		return fmt.Errorf("failed to save push marker: %w", err)
	}
	return nil
}

func (s *service) pull(ctx context.Context, result *SyncResult) error {
	since, err := s.markers.GetSyncMarker(ctx, pullMarker)
	if err != nil {
		return fmt.Errorf("failed to get pull marker: %w", err)
	}

	for {
		resp, err := s.client.Pull(ctx, since, s.pullLimit)
		if err != nil {
			return fmt.Errorf("pull failed: %w", err)
		}
		result.Pages++
		result.Pulled += len(resp.States)

		if len(resp.States) > 0 {
			merged, err := s.engine.Sync(ctx, s.deviceID, resp.States)
			if err != nil {
				return fmt.Errorf("failed to merge pulled changes: %w", err)
			}
			result.Merged += merged.EntitiesSynced
			result.Conflicts += merged.ConflictsResolved
			for _, e := range merged.Errors {
				result.Errors = append(result.Errors, "pull: "+e)
			}
		}

		if err := s.markers.SaveSyncMarker(ctx, pullMarker, resp.ServerTime); err != nil {
			return fmt.Errorf("failed to save pull marker: %w", err)
		}

		if !resp.HasMore {
			return nil
		}
		if !resp.ServerTime.After(since) {
			return fmt.Errorf("%w: server_time %s", ErrStalledPagination, resp.ServerTime.Format(time.RFC3339Nano))
		}
		since = resp.ServerTime
	}
}

// PendingCount возвращает количество записей, ожидающих отправки
func (s *service) PendingCount(ctx context.Context) (int, error) {
	since, err := s.markers.GetSyncMarker(ctx, pushMarker)
	if err != nil {
		return 0, fmt.Errorf("failed to get push marker: %w", err)
	}

	local, err := s.engine.ChangesSince(ctx, s.deviceID, since)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending records: %w", err)
	}
	return len(local), nil
}
