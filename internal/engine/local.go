package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/fleetsync/internal/crdt"
	"github.com/iudanet/fleetsync/internal/entity"
	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/storage"
	"github.com/iudanet/fleetsync/pkg/api"
)

// ApplyOperation applies a queued local mutation to the record of
// op.DeviceID and appends it to the operation log.
// OpDelete tombstones the record; other operation types must target a
// composite entity and act on the state merged from every device record.
// An operation already present in the log is not applied again.
func (e *Engine) ApplyOperation(ctx context.Context, op *models.QueuedOperation) error {
	key := models.EntityKey{EntityType: op.EntityType, EntityID: op.EntityID}
	release := e.locks.lockAll([]models.EntityKey{key})
	defer release()

	now := e.now().UTC()
	duplicate := false
	err := e.store.WithTx(ctx, func(tx storage.MetadataTx) error {
		if op.OperationID != "" {
			applied, err := tx.OperationApplied(ctx, op.OperationID)
			if err != nil {
				return err
			}
			if applied {
				duplicate = true
				return nil
			}
		}

		rec, err := loadOwnRecord(ctx, tx, op.EntityType, op.EntityID, op.DeviceID, now)
		if err != nil {
			return err
		}

		if op.OperationType == models.OpDelete {
			tombstone(rec, op.DeviceID)
		} else {
			observed, err := tx.ListEntityRecords(ctx, key)
			if err != nil {
				return err
			}
			if err := applyMutation(rec, observed, op, now); err != nil {
				return err
			}
		}
		rec.UpdatedAt = now

		if err := tx.PutRecord(ctx, rec); err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}
		return tx.RecordOperation(ctx, &models.OperationLog{
			ID:            uuid.New().String(),
			OperationID:   op.OperationID,
			OperationType: op.OperationType,
			EntityType:    op.EntityType,
			EntityID:      op.EntityID,
			DeviceID:      op.DeviceID,
			Payload:       op.Payload,
			VectorClock:   rec.VectorClock.Clone(),
			AppliedAt:     now,
		})
	})
	if err != nil {
		return fmt.Errorf("apply %s %s/%s: %w", op.OperationType, op.EntityType, op.EntityID, err)
	}
	if duplicate {
		e.logger.InfoContext(ctx, "operation already applied, skipping",
			slog.String("operation_id", op.OperationID),
			slog.String("entity_type", op.EntityType),
			slog.String("entity_id", op.EntityID))
		return nil
	}

	e.metrics.RecordOperationApplied(string(op.OperationType))
	e.logger.DebugContext(ctx, "operation applied",
		slog.String("operation_id", op.OperationID),
		slog.String("operation_type", string(op.OperationType)),
		slog.String("entity_type", op.EntityType),
		slog.String("entity_id", op.EntityID))
	return nil
}

// MarkTombstone marks the record of deviceID for an entity as deleted.
// It reports false when that device holds no record of the entity.
func (e *Engine) MarkTombstone(ctx context.Context, key models.RecordKey) (bool, error) {
	release := e.locks.lockAll([]models.EntityKey{{EntityType: key.EntityType, EntityID: key.EntityID}})
	defer release()

	found := false
	err := e.store.WithTx(ctx, func(tx storage.MetadataTx) error {
		rec, err := tx.GetRecord(ctx, key)
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		tombstone(rec, key.DeviceID)
		rec.UpdatedAt = e.now().UTC()
		return tx.PutRecord(ctx, rec)
	})
	if err != nil {
		return false, fmt.Errorf("mark tombstone %s/%s: %w", key.EntityType, key.EntityID, err)
	}

	if found {
		e.logger.InfoContext(ctx, "entity marked as tombstone",
			slog.String("entity_type", key.EntityType),
			slog.String("entity_id", key.EntityID),
			slog.String("device_id", key.DeviceID))
	}
	return found, nil
}

// EntityState is the state of an entity merged across all device records.
type EntityState struct {
	UpdatedAt  time.Time        `json:"updated_at"`
	Clock      crdt.VectorClock `json:"vector_clock"`
	EntityType string           `json:"entity_type"`
	EntityID   string           `json:"entity_id"`
	Payload    json.RawMessage  `json:"crdt_payload"`
	Devices    []string         `json:"devices"`
	Tombstone  bool             `json:"tombstone"`
}

// EntityState merges every device record of key. Deletion by any device
// deletes the entity.
func (e *Engine) EntityState(ctx context.Context, key models.EntityKey) (*EntityState, error) {
	records, err := e.store.ListEntityRecords(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, key)
	}

	state := &EntityState{
		EntityType: key.EntityType,
		EntityID:   key.EntityID,
		Clock:      crdt.NewVectorClock(),
	}
	for _, rec := range records {
		payload, err := mergePayloads(key.EntityType, state.Payload, rec.Payload)
		if err != nil {
			return nil, fmt.Errorf("merge %s@%s: %w", key, rec.DeviceID, err)
		}
		state.Payload = payload
		state.Clock = state.Clock.Merge(rec.VectorClock)
		state.Tombstone = state.Tombstone || rec.Tombstone
		state.Devices = append(state.Devices, rec.DeviceID)
		if rec.UpdatedAt.After(state.UpdatedAt) {
			state.UpdatedAt = rec.UpdatedAt
		}
	}
	slices.Sort(state.Devices)
	return state, nil
}

// Entity decodes the merged state of a composite entity.
func (e *Engine) Entity(ctx context.Context, key models.EntityKey) (entity.Entity, error) {
	if !entity.IsComposite(key.EntityType) {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownType, key.EntityType)
	}
	state, err := e.EntityState(ctx, key)
	if err != nil {
		return nil, err
	}
	if emptyPayload(state.Payload) {
		return entity.New(entity.Type(key.EntityType), key.EntityID, "")
	}
	return entity.Decode(state.Payload)
}

// DeviceState returns the records of deviceID, optionally limited to entityTypes.
func (e *Engine) DeviceState(ctx context.Context, deviceID string, entityTypes ...string) ([]*models.MetadataRecord, error) {
	records, err := e.store.ListChanges(ctx, storage.ChangeFilter{DeviceID: deviceID})
	if err != nil {
		return nil, err
	}
	if len(entityTypes) == 0 {
		return records, nil
	}
	return slices.DeleteFunc(records, func(r *models.MetadataRecord) bool {
		return !slices.Contains(entityTypes, r.EntityType)
	}), nil
}

// ChangesSince returns the records of deviceID updated after since.
func (e *Engine) ChangesSince(ctx context.Context, deviceID string, since time.Time) ([]*models.MetadataRecord, error) {
	return e.store.ListChanges(ctx, storage.ChangeFilter{DeviceID: deviceID, Since: since})
}

// ChangesFor returns records of other devices updated after since, which
// is what deviceID has not seen yet. hasMore reports a truncated result.
func (e *Engine) ChangesFor(ctx context.Context, deviceID string, since time.Time, limit int) (records []*models.MetadataRecord, hasMore bool, err error) {
	filter := storage.ChangeFilter{ExcludeDeviceID: deviceID, Since: since}
	if limit > 0 {
		filter.Limit = limit + 1
	}
	records, err = e.store.ListChanges(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	if limit <= 0 || len(records) <= limit {
		return records, false, nil
	}

	// Продолжение идет строго после updated_at последней записи, поэтому
	// страница не может разрывать записи с одинаковым updated_at
	boundary := records[limit-1].UpdatedAt
	if !records[limit].UpdatedAt.Equal(boundary) {
		return records[:limit], true, nil
	}
	return e.extendPage(ctx, deviceID, records[:limit], boundary)
}

// extendPage appends every record updated exactly at boundary to page.
func (e *Engine) extendPage(ctx context.Context, deviceID string, page []*models.MetadataRecord, boundary time.Time) ([]*models.MetadataRecord, bool, error) {
	tail, err := e.store.ListChanges(ctx, storage.ChangeFilter{
		ExcludeDeviceID: deviceID,
		Since:           boundary.Add(-time.Nanosecond),
	})
	if err != nil {
		return nil, false, err
	}

	out := slices.DeleteFunc(page, func(r *models.MetadataRecord) bool {
		return r.UpdatedAt.Equal(boundary)
	})
	hasMore := false
	for _, r := range tail {
		if r.UpdatedAt.After(boundary) {
			hasMore = true
			break
		}
		out = append(out, r)
	}
	return out, hasMore, nil
}

// ActiveEntities returns the entities of entityType that are not deleted.
func (e *Engine) ActiveEntities(ctx context.Context, entityType string) ([]models.EntityKey, error) {
	return e.store.ListActiveEntities(ctx, entityType)
}

// Conflicts returns the resolved conflicts of an entity, newest first.
func (e *Engine) Conflicts(ctx context.Context, key models.EntityKey) ([]*models.SyncConflict, error) {
	return e.store.ListConflicts(ctx, key)
}

// Sessions returns the latest sync sessions of a device.
func (e *Engine) Sessions(ctx context.Context, deviceID string, limit int) ([]*models.SyncSession, error) {
	return e.store.ListSessions(ctx, deviceID, limit)
}

// ToRemoteStates converts stored records to their wire form.
func ToRemoteStates(records []*models.MetadataRecord) []api.RemoteState {
	states := make([]api.RemoteState, 0, len(records))
	for _, r := range records {
		states = append(states, api.RemoteState{
			EntityType:  r.EntityType,
			EntityID:    r.EntityID,
			DeviceID:    r.DeviceID,
			VectorClock: r.VectorClock.ToPortable(),
			Payload:     r.Payload,
			Tombstone:   r.Tombstone,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return states
}

// loadOwnRecord returns the record of deviceID or a fresh one.
func loadOwnRecord(ctx context.Context, tx storage.MetadataTx, entityType, entityID, deviceID string, now time.Time) (*models.MetadataRecord, error) {
	key := models.RecordKey{EntityType: entityType, EntityID: entityID, DeviceID: deviceID}
	rec, err := tx.GetRecord(ctx, key)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, storage.ErrRecordNotFound) {
		return nil, err
	}
	return &models.MetadataRecord{
		EntityType:  entityType,
		EntityID:    entityID,
		DeviceID:    deviceID,
		VectorClock: crdt.NewVectorClock(),
		CreatedAt:   now,
	}, nil
}

// applyMutation applies op to the entity state merged from observed, the
// records of every device, and stores the result in rec. The merged state
// is re-owned by op.DeviceID so that removals cover tags added elsewhere.
// The record clock absorbs the observed clocks and ticks once.
func applyMutation(rec *models.MetadataRecord, observed []*models.MetadataRecord, op *models.QueuedOperation, now time.Time) error {
	if !entity.IsComposite(op.EntityType) {
		return fmt.Errorf("%w: %s on %s", entity.ErrUnsupportedOperation, op.OperationType, op.EntityType)
	}

	// Слияние в пустую сущность устройства дает состояние, принадлежащее ему
	ent, err := entity.New(entity.Type(op.EntityType), op.EntityID, op.DeviceID)
	if err != nil {
		return err
	}
	clock := rec.VectorClock.Clone()
	for _, r := range withOwn(observed, rec) {
		clock = clock.Merge(r.VectorClock)
		if emptyPayload(r.Payload) {
			continue
		}
		other, err := entity.Decode(r.Payload)
		if err != nil {
			return fmt.Errorf("record of %s: %w", r.DeviceID, err)
		}
		if ent, err = entity.Merge(ent, other); err != nil {
			return err
		}
	}

	if err := entity.Apply(ent, op.OperationType, op.Payload, now); err != nil {
		return err
	}

	payload, err := entity.Encode(ent)
	if err != nil {
		return err
	}
	rec.Payload = payload
	rec.VectorClock = clock
	rec.VectorClock.Increment(op.DeviceID)
	return nil
}

// withOwn returns observed with rec substituted for the stored record of
// the same device, or appended when the device has none yet.
func withOwn(observed []*models.MetadataRecord, rec *models.MetadataRecord) []*models.MetadataRecord {
	out := make([]*models.MetadataRecord, 0, len(observed)+1)
	for _, r := range observed {
		if r.DeviceID != rec.DeviceID {
			out = append(out, r)
		}
	}
	return append(out, rec)
}

func tombstone(rec *models.MetadataRecord, deviceID string) {
	rec.Tombstone = true
	rec.VectorClock.Increment(deviceID)
}
