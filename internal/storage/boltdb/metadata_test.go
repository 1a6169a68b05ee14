package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fleetsync/internal/crdt"
	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/storage"
)

func TestMetadata_PutGet(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	rec := testRecord("veh-1", "device-a", t0)
	putRecords(t, s, rec)

	got, err := s.GetRecord(ctx, rec.Key())
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	updated := rec.Clone()
	updated.VectorClock = crdt.VectorClock{"device-a": 2}
	updated.Tombstone = true
	updated.CreatedAt = t0.Add(time.Hour)
	updated.UpdatedAt = t0.Add(time.Hour)
	putRecords(t, s, updated)

	got, err = s.GetRecord(ctx, rec.Key())
	require.NoError(t, err)
	assert.True(t, got.Tombstone)
	assert.Equal(t, t0, got.CreatedAt)
	assert.Equal(t, t0.Add(time.Hour), got.UpdatedAt)

	_, err = s.GetRecord(ctx, models.RecordKey{EntityType: "Vehicle", EntityID: "veh-9", DeviceID: "device-a"})
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestMetadata_WithTxRollback(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx storage.MetadataTx) error {
		if err := tx.PutRecord(ctx, testRecord("veh-1", "device-a", t0)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.GetRecord(ctx, models.RecordKey{EntityType: "Vehicle", EntityID: "veh-1", DeviceID: "device-a"})
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestMetadata_WithTxCanceledContext(t *testing.T) {
	s := setupTestStorage(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithTx(ctx, func(storage.MetadataTx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestMetadata_ListChanges(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	putRecords(t, s,
		testRecord("veh-2", "device-a", t0.Add(2*time.Second)),
		testRecord("veh-1", "device-a", t0),
		testRecord("veh-1", "device-b", t0.Add(time.Second)),
	)

	tests := []struct {
		name     string
		filter   storage.ChangeFilter
		expected []string
	}{
		{"all ordered by updated_at", storage.ChangeFilter{}, []string{"veh-1/device-a", "veh-1/device-b", "veh-2/device-a"}},
		{"since is exclusive", storage.ChangeFilter{Since: t0}, []string{"veh-1/device-b", "veh-2/device-a"}},
		{"only device", storage.ChangeFilter{DeviceID: "device-b"}, []string{"veh-1/device-b"}},
		{"exclude device", storage.ChangeFilter{ExcludeDeviceID: "device-b"}, []string{"veh-1/device-a", "veh-2/device-a"}},
		{"limit", storage.ChangeFilter{Limit: 2}, []string{"veh-1/device-a", "veh-1/device-b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := s.ListChanges(ctx, tt.filter)
			require.NoError(t, err)

			got := make([]string, 0, len(records))
			for _, r := range records {
				got = append(got, r.EntityID+"/"+r.DeviceID)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMetadata_EntityRecordsPrefix(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	// veh-10 не должен попасть в префикс veh-1
	putRecords(t, s,
		testRecord("veh-1", "device-a", t0),
		testRecord("veh-1", "device-b", t0),
		testRecord("veh-10", "device-a", t0),
	)

	records, err := s.ListEntityRecords(ctx, models.EntityKey{EntityType: "Vehicle", EntityID: "veh-1"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "device-a", records[0].DeviceID)
	assert.Equal(t, "device-b", records[1].DeviceID)
}

func TestMetadata_ListActiveEntities(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	dead := testRecord("veh-2", "device-a", t0)
	dead.Tombstone = true
	wo := testRecord("wo-1", "device-a", t0)
	wo.EntityType = "WorkOrder"
	putRecords(t, s, testRecord("veh-1", "device-a", t0), testRecord("veh-1", "device-b", t0), dead, wo)

	active, err := s.ListActiveEntities(ctx, "Vehicle")
	require.NoError(t, err)
	assert.Equal(t, []models.EntityKey{{EntityType: "Vehicle", EntityID: "veh-1"}}, active)

	all, err := s.ListActiveEntities(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []models.EntityKey{
		{EntityType: "Vehicle", EntityID: "veh-1"},
		{EntityType: "WorkOrder", EntityID: "wo-1"},
	}, all)
}

func TestMetadata_ActiveExcludesEntityDeletedOnAnyDevice(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	deletedByB := testRecord("veh-1", "device-b", t0)
	deletedByB.Tombstone = true
	putRecords(t, s, testRecord("veh-1", "device-a", t0), deletedByB, testRecord("veh-2", "device-a", t0))

	active, err := s.ListActiveEntities(ctx, "Vehicle")
	require.NoError(t, err)
	assert.Equal(t, []models.EntityKey{{EntityType: "Vehicle", EntityID: "veh-2"}}, active)
}

func TestMetadata_TxReadsEntityRecordsAndOperationLog(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	putRecords(t, s, testRecord("veh-1", "device-a", t0))
	key := models.EntityKey{EntityType: "Vehicle", EntityID: "veh-1"}

	err := s.WithTx(ctx, func(tx storage.MetadataTx) error {
		if err := tx.PutRecord(ctx, testRecord("veh-1", "device-b", t0)); err != nil {
			return err
		}
		records, err := tx.ListEntityRecords(ctx, key)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "device-b", records[1].DeviceID)

		applied, err := tx.OperationApplied(ctx, "op-1")
		require.NoError(t, err)
		assert.False(t, applied)

		return tx.RecordOperation(ctx, &models.OperationLog{
			ID:          uuid.NewString(),
			OperationID: "op-1",
			EntityType:  key.EntityType,
			EntityID:    key.EntityID,
			DeviceID:    "device-b",
			AppliedAt:   t0,
		})
	})
	require.NoError(t, err)

	err = s.WithTx(ctx, func(tx storage.MetadataTx) error {
		applied, err := tx.OperationApplied(ctx, "op-1")
		require.NoError(t, err)
		assert.True(t, applied)
		return nil
	})
	require.NoError(t, err)
}

func TestMetadata_AuditTrailOrdering(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	key := models.EntityKey{EntityType: "Vehicle", EntityID: "veh-1"}
	conflict := func(at time.Time) *models.SyncConflict {
		return &models.SyncConflict{
			ID:           uuid.NewString(),
			EntityType:   key.EntityType,
			EntityID:     key.EntityID,
			LocalDevice:  "device-a",
			RemoteDevice: "device-b",
			Strategy:     "crdt_merge",
			DetectedAt:   at,
		}
	}
	entry := func(opID string, at time.Time) *models.OperationLog {
		return &models.OperationLog{
			ID:            uuid.NewString(),
			OperationID:   opID,
			OperationType: models.OpVehicleUpdate,
			EntityType:    key.EntityType,
			EntityID:      key.EntityID,
			DeviceID:      "device-a",
			AppliedAt:     at,
		}
	}
	session := func(at time.Time) *models.SyncSession {
		return &models.SyncSession{
			ID:          uuid.NewString(),
			DeviceID:    "device-a",
			Status:      models.SessionCompleted,
			StartedAt:   at,
			CompletedAt: at,
		}
	}

	err := s.WithTx(ctx, func(tx storage.MetadataTx) error {
		for i := 0; i < 3; i++ {
			at := t0.Add(time.Duration(i) * time.Minute)
			if err := tx.RecordConflict(ctx, conflict(at)); err != nil {
				return err
			}
			if err := tx.RecordOperation(ctx, entry("op-"+string(rune('a'+i)), at)); err != nil {
				return err
			}
			if err := tx.RecordSession(ctx, session(at)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	conflicts, err := s.ListConflicts(ctx, key)
	require.NoError(t, err)
	require.Len(t, conflicts, 3)
	assert.Equal(t, t0.Add(2*time.Minute), conflicts[0].DetectedAt)
	assert.Equal(t, t0, conflicts[2].DetectedAt)

	entries, err := s.ListOperationLog(ctx, key)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "op-a", entries[0].OperationID)
	assert.Equal(t, "op-c", entries[2].OperationID)

	sessions, err := s.ListSessions(ctx, "device-a", 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, t0.Add(2*time.Minute), sessions[0].StartedAt)
	assert.Equal(t, t0.Add(time.Minute), sessions[1].StartedAt)

	none, err := s.ListSessions(ctx, "device-z", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMetadata_ConflictRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	c := &models.SyncConflict{
		ID:                   uuid.NewString(),
		EntityType:           "Vehicle",
		EntityID:             "veh-1",
		LocalDevice:          "device-a",
		RemoteDevice:         "device-b",
		LocalClock:           crdt.VectorClock{"device-a": 1},
		RemoteClock:          crdt.VectorClock{"device-b": 1},
		LocalPayload:         json.RawMessage(`{"l":1}`),
		RemotePayload:        json.RawMessage(`{"r":1}`),
		ResolvedPayload:      json.RawMessage(`{"m":1}`),
		Strategy:             "manual",
		WinnerDevice:         "device-a",
		RequiresManualReview: true,
		Metadata:             map[string]any{"requires_manual_review": true},
		DetectedAt:           t0,
	}
	require.NoError(t, s.WithTx(ctx, func(tx storage.MetadataTx) error {
		return tx.RecordConflict(ctx, c)
	}))

	got, err := s.ListConflicts(ctx, models.EntityKey{EntityType: "Vehicle", EntityID: "veh-1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, c, got[0])
}
