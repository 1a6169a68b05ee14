package models

import (
	"encoding/json"
	"time"

	"github.com/iudanet/fleetsync/internal/crdt"
)

// MetadataRecord is the persisted replicated state of one entity as seen
// from one device. Records are keyed by (EntityType, EntityID, DeviceID)
// and are never physically deleted; deletion sets Tombstone.
type MetadataRecord struct {
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	VectorClock crdt.VectorClock `json:"vector_clock"`
	EntityType  string           `json:"entity_type"`
	EntityID    string           `json:"entity_id"`
	DeviceID    string           `json:"device_id"`
	Payload     json.RawMessage  `json:"crdt_payload"`
	Tombstone   bool             `json:"tombstone"`
}

// Key returns the unique key of the record.
func (r *MetadataRecord) Key() RecordKey {
	return RecordKey{EntityType: r.EntityType, EntityID: r.EntityID, DeviceID: r.DeviceID}
}

// Clone returns a deep copy of the record.
func (r *MetadataRecord) Clone() *MetadataRecord {
	if r == nil {
		return nil
	}
	clone := *r
	clone.VectorClock = r.VectorClock.Clone()
	if r.Payload != nil {
		clone.Payload = append(json.RawMessage(nil), r.Payload...)
	}
	return &clone
}

// RecordKey identifies a metadata record.
type RecordKey struct {
	EntityType string
	EntityID   string
	DeviceID   string
}

// EntityKey identifies an entity across all devices.
type EntityKey struct {
	EntityType string
	EntityID   string
}

// String renders the key as "type/id".
func (k EntityKey) String() string {
	return k.EntityType + "/" + k.EntityID
}

// SyncConflict describes one concurrent comparison detected during sync
// and the resolution that was applied. Conflicts are audit records only.
type SyncConflict struct {
	DetectedAt           time.Time        `json:"detected_at"`
	LocalClock           crdt.VectorClock `json:"local_clock"`
	RemoteClock          crdt.VectorClock `json:"remote_clock"`
	Metadata             map[string]any   `json:"metadata,omitempty"`
	ID                   string           `json:"id"`
	EntityType           string           `json:"entity_type"`
	EntityID             string           `json:"entity_id"`
	LocalDevice          string           `json:"local_device"`
	RemoteDevice         string           `json:"remote_device"`
	Strategy             string           `json:"strategy"`
	WinnerDevice         string           `json:"winner_device"`
	LocalPayload         json.RawMessage  `json:"local_payload"`
	RemotePayload        json.RawMessage  `json:"remote_payload"`
	ResolvedPayload      json.RawMessage  `json:"resolved_payload"`
	RequiresManualReview bool             `json:"requires_manual_review"`
}

// OperationLog is an audit entry for a locally applied mutation.
type OperationLog struct {
	AppliedAt     time.Time        `json:"applied_at"`
	VectorClock   crdt.VectorClock `json:"vector_clock"`
	ID            string           `json:"id"`
	OperationID   string           `json:"operation_id"`
	OperationType OperationType    `json:"operation_type"`
	EntityType    string           `json:"entity_type"`
	EntityID      string           `json:"entity_id"`
	DeviceID      string           `json:"device_id"`
	Payload       json.RawMessage  `json:"payload,omitempty"`
}

// SessionStatus is the lifecycle state of a sync session.
type SessionStatus string

const (
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

// SyncSession records the statistics of one inbound sync batch.
type SyncSession struct {
	StartedAt           time.Time     `json:"started_at"`
	CompletedAt         time.Time     `json:"completed_at"`
	ID                  string        `json:"id"`
	DeviceID            string        `json:"device_id"`
	Status              SessionStatus `json:"status"`
	Errors              []string      `json:"errors,omitempty"`
	EntitiesReceived    int           `json:"entities_received"`
	EntitiesSynced      int           `json:"entities_synced"`
	ConflictsResolved   int           `json:"conflicts_resolved"`
	TombstonesProcessed int           `json:"tombstones_processed"`
}
