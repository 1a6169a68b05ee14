// Package storage defines the persistence contracts of the sync core.
// The server uses the sqlite implementation; devices use boltdb.
package storage

import (
	"context"
	"time"

	"github.com/iudanet/fleetsync/internal/models"
)

//go:generate moq -out storage_mock.go . MetadataStorage MetadataTx QueueStorage DeviceStorage

// ChangeFilter selects metadata records for replication.
type ChangeFilter struct {
	// Since отбирает записи с updated_at строго позже этого момента (zero = все)
	Since time.Time
	// DeviceID оставляет только записи этого устройства
	DeviceID string
	// ExcludeDeviceID исключает записи этого устройства
	ExcludeDeviceID string
	// Limit ограничивает количество записей (0 = без ограничения)
	Limit int
}

// Matches reports whether rec passes the filter.
func (f ChangeFilter) Matches(rec *models.MetadataRecord) bool {
	if !f.Since.IsZero() && !rec.UpdatedAt.After(f.Since) {
		return false
	}
	if f.DeviceID != "" && rec.DeviceID != f.DeviceID {
		return false
	}
	if f.ExcludeDeviceID != "" && rec.DeviceID == f.ExcludeDeviceID {
		return false
	}
	return true
}

// MetadataTx is a read-modify-write unit over metadata records.
// All writes made through one MetadataTx commit or roll back together.
type MetadataTx interface {
	// GetRecord returns ErrRecordNotFound when the record does not exist
	GetRecord(ctx context.Context, key models.RecordKey) (*models.MetadataRecord, error)

	// PutRecord inserts or replaces a record
	PutRecord(ctx context.Context, rec *models.MetadataRecord) error

	// ListEntityRecords returns every device's record of one entity
	ListEntityRecords(ctx context.Context, key models.EntityKey) ([]*models.MetadataRecord, error)

	// OperationApplied reports whether the operation log holds operationID
	OperationApplied(ctx context.Context, operationID string) (bool, error)

	// RecordConflict appends a conflict to the audit log
	RecordConflict(ctx context.Context, conflict *models.SyncConflict) error

	// RecordOperation appends a local mutation to the audit log
	RecordOperation(ctx context.Context, entry *models.OperationLog) error

	// RecordSession stores sync session statistics
	RecordSession(ctx context.Context, session *models.SyncSession) error
}

// MetadataStorage persists CRDT metadata records and their audit trail.
type MetadataStorage interface {
	// WithTx runs fn inside a transaction; a returned error rolls it back
	WithTx(ctx context.Context, fn func(tx MetadataTx) error) error

	// GetRecord returns ErrRecordNotFound when the record does not exist
	GetRecord(ctx context.Context, key models.RecordKey) (*models.MetadataRecord, error)

	// ListEntityRecords returns every device's record of one entity
	ListEntityRecords(ctx context.Context, key models.EntityKey) ([]*models.MetadataRecord, error)

	// ListChanges returns records matching the filter ordered by updated_at
	ListChanges(ctx context.Context, filter ChangeFilter) ([]*models.MetadataRecord, error)

	// ListActiveEntities returns keys of entities of entityType with at least
	// one non-tombstoned record (all types when entityType is empty)
	ListActiveEntities(ctx context.Context, entityType string) ([]models.EntityKey, error)

	// ListConflicts returns recorded conflicts of one entity, newest first
	ListConflicts(ctx context.Context, key models.EntityKey) ([]*models.SyncConflict, error)

	// ListOperationLog returns applied local mutations of one entity, oldest first
	ListOperationLog(ctx context.Context, key models.EntityKey) ([]*models.OperationLog, error)

	// ListSessions returns the latest sync sessions of a device, newest first
	ListSessions(ctx context.Context, deviceID string, limit int) ([]*models.SyncSession, error)
}

// QueueStorage persists queued operations.
type QueueStorage interface {
	// SaveOperation inserts or replaces an operation
	SaveOperation(ctx context.Context, op *models.QueuedOperation) error

	// GetOperation returns ErrOperationNotFound when the operation does not exist
	GetOperation(ctx context.Context, operationID string) (*models.QueuedOperation, error)

	// ListOperations returns operations of a device (all devices when deviceID
	// is empty) with any of the given statuses (all when none given),
	// ordered by created_at ascending
	ListOperations(ctx context.Context, deviceID string, statuses ...models.OperationStatus) ([]*models.QueuedOperation, error)

	// ListQueueDevices returns devices that have at least one queued operation
	ListQueueDevices(ctx context.Context) ([]string, error)

	// DeleteOperations removes operations of a device (all devices when
	// deviceID is empty) in status whose updated_at is before cutoff
	// (any time when cutoff is zero) and returns the number removed
	DeleteOperations(ctx context.Context, deviceID string, status models.OperationStatus, cutoff time.Time) (int, error)
}

// SyncStateStorage keeps device-side synchronization markers.
type SyncStateStorage interface {
	// SaveSyncMarker stores a named point in time
	SaveSyncMarker(ctx context.Context, name string, t time.Time) error

	// GetSyncMarker returns the zero time when the marker was never saved
	GetSyncMarker(ctx context.Context, name string) (time.Time, error)
}

// DeviceStorage is the registry of devices known to the server.
type DeviceStorage interface {
	// RegisterDevice inserts a device or refreshes its descriptive fields;
	// registered_at and sync timestamps of a known device are kept
	RegisterDevice(ctx context.Context, d *models.Device) error

	// GetDevice returns ErrDeviceNotFound when the device is not registered
	GetDevice(ctx context.Context, deviceID string) (*models.Device, error)

	// SetDeviceOffline returns ErrDeviceNotFound when the device is not registered
	SetDeviceOffline(ctx context.Context, deviceID string, offline bool, at time.Time) error

	// TouchDevice records a sync exchange; unregistered devices are ignored
	TouchDevice(ctx context.Context, deviceID string, dir models.SyncDirection, at time.Time) error
}
