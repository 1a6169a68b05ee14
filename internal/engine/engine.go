// Package engine merges remote CRDT metadata records into local storage
// and applies local mutations to the device's own records.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/fleetsync/internal/crdt"
	"github.com/iudanet/fleetsync/internal/metrics"
	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/resolver"
	"github.com/iudanet/fleetsync/internal/storage"
	"github.com/iudanet/fleetsync/pkg/api"
)

// metaStrategyValue is the conflict metadata key holding the value picked
// by a strategy other than CRDTMerge.
const metaStrategyValue = "strategy_value"

// Engine is the synchronization engine. It is safe for concurrent use;
// batches touching the same entity are serialized.
type Engine struct {
	store           storage.MetadataStorage
	resolver        *resolver.Resolver
	logger          *slog.Logger
	metrics         *metrics.Metrics
	locks           *keyedMutex
	now             func() time.Time
	strategies      map[string]resolver.Strategy
	defaultStrategy resolver.Strategy
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrategies sets the default conflict strategy and per-entity-type overrides.
func WithStrategies(defaultStrategy resolver.Strategy, perType map[string]resolver.Strategy) Option {
	return func(e *Engine) {
		if defaultStrategy != "" {
			e.defaultStrategy = defaultStrategy
		}
		for t, s := range perType {
			e.strategies[t] = s
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates a new sync engine
func New(store storage.MetadataStorage, res *resolver.Resolver, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		resolver:        res,
		logger:          logger,
		locks:           newKeyedMutex(),
		now:             time.Now,
		strategies:      make(map[string]resolver.Strategy),
		defaultStrategy: resolver.CRDTMerge,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Strategy returns the conflict strategy used for entityType.
func (e *Engine) Strategy(entityType string) resolver.Strategy {
	if s, ok := e.strategies[entityType]; ok {
		return s
	}
	return e.defaultStrategy
}

// Sync merges a batch of remote records into local storage on behalf of
// localDeviceID. It is SyncFrom with the source device taken from the batch.
func (e *Engine) Sync(ctx context.Context, localDeviceID string, states []api.RemoteState) (*api.SyncResult, error) {
	return e.SyncFrom(ctx, localDeviceID, "", states)
}

// SyncFrom merges a batch of remote records received from sourceDeviceID.
//
// Malformed records are rejected individually into the result errors;
// every other record is applied in a single transaction. A storage failure
// rolls the whole batch back and is returned as an error.
func (e *Engine) SyncFrom(ctx context.Context, localDeviceID, sourceDeviceID string, states []api.RemoteState) (*api.SyncResult, error) {
	started := e.now()
	for i := 0; sourceDeviceID == "" && i < len(states); i++ {
		sourceDeviceID = states[i].DeviceID
	}

	// Ошибки валидации известны до транзакции
	invalid := make(map[int]error)
	var keys []models.EntityKey
	for i := range states {
		if err := validateState(&states[i]); err != nil {
			invalid[i] = err
			continue
		}
		keys = append(keys, models.EntityKey{EntityType: states[i].EntityType, EntityID: states[i].EntityID})
	}

	release := e.locks.lockAll(keys)
	defer release()

	var result *api.SyncResult
	err := e.store.WithTx(ctx, func(tx storage.MetadataTx) error {
		result = &api.SyncResult{Errors: []string{}}

		for i := range states {
			st := &states[i]
			if err, ok := invalid[i]; ok {
				e.reject(ctx, result, i, st, err)
				continue
			}
			if err := e.syncRecord(ctx, tx, localDeviceID, st, result); err != nil {
				var recErr *recordError
				if errors.As(err, &recErr) {
					e.reject(ctx, result, i, st, recErr.err)
					continue
				}
				return err
			}
		}

		session := &models.SyncSession{
			ID:                  uuid.New().String(),
			DeviceID:            sourceDeviceID,
			Status:              models.SessionCompleted,
			EntitiesReceived:    len(states),
			EntitiesSynced:      result.EntitiesSynced,
			ConflictsResolved:   result.ConflictsResolved,
			TombstonesProcessed: result.TombstonesProcessed,
			Errors:              result.Errors,
			StartedAt:           started.UTC(),
			CompletedAt:         e.now().UTC(),
		}
		return tx.RecordSession(ctx, session)
	})
	if err != nil {
		e.logger.ErrorContext(ctx, "sync batch rolled back",
			slog.String("source_device", sourceDeviceID),
			slog.Int("records", len(states)),
			slog.Any("error", err))
		return nil, fmt.Errorf("sync batch: %w", err)
	}

	e.metrics.ObserveSyncBatch(e.now().Sub(started))
	e.metrics.RecordTombstones(result.TombstonesProcessed)

	e.logger.InfoContext(ctx, "sync batch applied",
		slog.String("source_device", sourceDeviceID),
		slog.Int("received", len(states)),
		slog.Int("entities_synced", result.EntitiesSynced),
		slog.Int("conflicts_resolved", result.ConflictsResolved),
		slog.Int("tombstones_processed", result.TombstonesProcessed),
		slog.Int("errors", len(result.Errors)))

	return result, nil
}

// recordError marks a failure of one record that must not abort the batch.
type recordError struct {
	err error
}

func (e *recordError) Error() string { return e.err.Error() }
func (e *recordError) Unwrap() error { return e.err }

func (e *Engine) reject(ctx context.Context, result *api.SyncResult, i int, st *api.RemoteState, err error) {
	result.Errors = append(result.Errors,
		fmt.Sprintf("record %d (%s/%s@%s): %v", i, st.EntityType, st.EntityID, st.DeviceID, err))
	e.metrics.RecordSyncRecord(st.EntityType, metrics.OutcomeRejected)

	e.logger.WarnContext(ctx, "remote record rejected",
		slog.Int("index", i),
		slog.String("entity_type", st.EntityType),
		slog.String("entity_id", st.EntityID),
		slog.String("device_id", st.DeviceID),
		slog.Any("error", err))
}

// syncRecord applies one remote record. Errors not wrapped in recordError
// are storage failures.
func (e *Engine) syncRecord(ctx context.Context, tx storage.MetadataTx, localDeviceID string, st *api.RemoteState, result *api.SyncResult) error {
	now := e.now().UTC()
	remote := &models.MetadataRecord{
		EntityType:  st.EntityType,
		EntityID:    st.EntityID,
		DeviceID:    st.DeviceID,
		VectorClock: crdt.VectorClockFromPortable(st.VectorClock),
		Payload:     st.Payload,
		Tombstone:   st.Tombstone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	remoteTS := st.UpdatedAt
	if remoteTS.IsZero() {
		remoteTS = now
	}

	local, err := tx.GetRecord(ctx, remote.Key())
	switch {
	case errors.Is(err, storage.ErrRecordNotFound):
		local = nil
	case err != nil:
		return fmt.Errorf("failed to load %s/%s@%s: %w", st.EntityType, st.EntityID, st.DeviceID, err)
	}

	var outcome string
	var conflict *models.SyncConflict
	next := remote

	switch {
	case local == nil:
		outcome = metrics.OutcomeInserted
	default:
		switch local.VectorClock.Compare(remote.VectorClock) {
		case crdt.Before:
			outcome = metrics.OutcomeOverwritten
		case crdt.After, crdt.Equal:
			e.metrics.RecordSyncRecord(st.EntityType, metrics.OutcomeSkipped)
			return nil
		case crdt.Concurrent:
			next, conflict, err = e.resolveConcurrent(ctx, localDeviceID, local, remote, remoteTS)
			if err != nil {
				return &recordError{err: err}
			}
			outcome = metrics.OutcomeMerged
		}
	}

	if err := tx.PutRecord(ctx, next); err != nil {
		return fmt.Errorf("failed to save %s/%s@%s: %w", st.EntityType, st.EntityID, st.DeviceID, err)
	}

	result.EntitiesSynced++
	if st.Tombstone {
		result.TombstonesProcessed++
	}
	if conflict != nil {
		if err := tx.RecordConflict(ctx, conflict); err != nil {
			return fmt.Errorf("failed to record conflict: %w", err)
		}
		result.ConflictsResolved++
		result.Conflicts = append(result.Conflicts, api.ConflictInfo{
			EntityType:           conflict.EntityType,
			EntityID:             conflict.EntityID,
			LocalDevice:          conflict.LocalDevice,
			RemoteDevice:         conflict.RemoteDevice,
			Strategy:             conflict.Strategy,
			WinnerDevice:         conflict.WinnerDevice,
			RequiresManualReview: conflict.RequiresManualReview,
		})
		e.metrics.RecordConflict(conflict.EntityType, conflict.Strategy)
	}
	e.metrics.RecordSyncRecord(st.EntityType, outcome)
	return nil
}

// resolveConcurrent merges clocks and payloads of two concurrent records
// through the strategy configured for the entity type.
func (e *Engine) resolveConcurrent(ctx context.Context, localDeviceID string, local, remote *models.MetadataRecord, remoteTS time.Time) (*models.MetadataRecord, *models.SyncConflict, error) {
	entityType := remote.EntityType
	strategy := e.Strategy(entityType)

	res, err := e.resolver.Resolve(ctx, resolver.Conflict{
		EntityType:      entityType,
		EntityID:        remote.EntityID,
		LocalValue:      local.Payload,
		RemoteValue:     remote.Payload,
		LocalTimestamp:  local.UpdatedAt,
		RemoteTimestamp: remoteTS,
		LocalDevice:     localDeviceID,
		RemoteDevice:    remote.DeviceID,
		LocalClock:      local.VectorClock,
		RemoteClock:     remote.VectorClock,
		Merge: func(l, r any) (any, error) {
			return mergePayloads(entityType, l.(json.RawMessage), r.(json.RawMessage))
		},
	}, strategy)
	if err != nil {
		return nil, nil, err
	}

	picked, err := payloadOf(res.Value)
	if err != nil {
		return nil, nil, err
	}

	// Запись всегда получает CRDT-слияние: clock покрывает обе стороны, и
	// выбор одной стороны целиком потерял бы теги и счетчики другой.
	// Выбор стратегии остается в аудите конфликта
	payload := picked
	meta := res.Metadata
	if res.Strategy != resolver.CRDTMerge {
		payload, err = mergePayloads(entityType, local.Payload, remote.Payload)
		if err != nil {
			return nil, nil, fmt.Errorf("crdt merge: %w", err)
		}
		meta = maps.Clone(res.Metadata)
		if meta == nil {
			meta = make(map[string]any, 1)
		}
		meta[metaStrategyValue] = picked
	}
	if !emptyPayload(payload) {
		if err := checkPayload(entityType, remote.EntityID, payload); err != nil {
			return nil, nil, fmt.Errorf("resolved value: %w", err)
		}
	}

	merged := remote.Clone()
	merged.VectorClock = local.VectorClock.Merge(remote.VectorClock)
	merged.Payload = payload
	merged.Tombstone = local.Tombstone || remote.Tombstone
	merged.CreatedAt = local.CreatedAt

	conflict := &models.SyncConflict{
		ID:                   uuid.New().String(),
		EntityType:           entityType,
		EntityID:             remote.EntityID,
		LocalDevice:          localDeviceID,
		RemoteDevice:         remote.DeviceID,
		LocalClock:           local.VectorClock.Clone(),
		RemoteClock:          remote.VectorClock.Clone(),
		LocalPayload:         local.Payload,
		RemotePayload:        remote.Payload,
		ResolvedPayload:      payload,
		Strategy:             string(res.Strategy),
		WinnerDevice:         res.WinnerDevice,
		RequiresManualReview: res.RequiresManualReview(),
		Metadata:             meta,
		DetectedAt:           res.ResolvedAt,
	}

	e.logger.InfoContext(ctx, "concurrent update resolved",
		slog.String("entity_type", entityType),
		slog.String("entity_id", remote.EntityID),
		slog.String("device_id", remote.DeviceID),
		slog.String("strategy", conflict.Strategy),
		slog.String("local_clock", local.VectorClock.String()),
		slog.String("remote_clock", remote.VectorClock.String()))

	return merged, conflict, nil
}

func validateState(st *api.RemoteState) error {
	switch {
	case st.EntityType == "":
		return fmt.Errorf("%w: missing entity_type", ErrInvalidState)
	case st.EntityID == "":
		return fmt.Errorf("%w: missing entity_id", ErrInvalidState)
	case st.DeviceID == "":
		return fmt.Errorf("%w: missing device_id", ErrInvalidState)
	}

	if emptyPayload(st.Payload) {
		if st.Tombstone {
			return nil
		}
		return fmt.Errorf("%w: missing crdt_payload", ErrInvalidState)
	}
	return checkPayload(st.EntityType, st.EntityID, st.Payload)
}
