package boltdb

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/storage"
)

// WithTx runs fn inside a single read-write bbolt transaction.
// bbolt serializes writers, so records read inside fn cannot change under it.
func (s *Storage) WithTx(ctx context.Context, fn func(tx storage.MetadataTx) error) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&metadataTx{tx: tx})
	})
}

// metadataTx implements storage.MetadataTx over *bbolt.Tx
type metadataTx struct {
	tx *bbolt.Tx
}

func (t *metadataTx) GetRecord(ctx context.Context, key models.RecordKey) (*models.MetadataRecord, error) {
	return getRecord(t.tx, key)
}

func (t *metadataTx) PutRecord(ctx context.Context, rec *models.MetadataRecord) error {
	b := t.tx.Bucket(bucketMetadata)
	key := recordKey(rec.Key())

	toStore := rec
	// created_at сохраняется от первой вставки
	if existing := b.Get(key); existing != nil {
		var prev models.MetadataRecord
		if err := decodeValue(existing, &prev); err != nil {
			return err
		}
		toStore = rec.Clone()
		toStore.CreatedAt = prev.CreatedAt
	}

	data, err := encodeValue(toStore)
	if err != nil {
		return err
	}
	if err := b.Put(key, data); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

func (t *metadataTx) ListEntityRecords(ctx context.Context, key models.EntityKey) ([]*models.MetadataRecord, error) {
	return listEntityRecords(t.tx, key)
}

func (t *metadataTx) OperationApplied(ctx context.Context, operationID string) (bool, error) {
	return t.tx.Bucket(bucketApplied).Get([]byte(operationID)) != nil, nil
}

func (t *metadataTx) RecordConflict(ctx context.Context, c *models.SyncConflict) error {
	data, err := encodeValue(c)
	if err != nil {
		return err
	}
	key := joinKey(c.EntityType, c.EntityID, sortableNano(nanoOf(c.DetectedAt)), c.ID)
	if err := t.tx.Bucket(bucketConflicts).Put(key, data); err != nil {
		return fmt.Errorf("failed to save conflict: %w", err)
	}
	return nil
}

func (t *metadataTx) RecordOperation(ctx context.Context, e *models.OperationLog) error {
	data, err := encodeValue(e)
	if err != nil {
		return err
	}
	key := joinKey(e.EntityType, e.EntityID, sortableNano(nanoOf(e.AppliedAt)), e.ID)
	if err := t.tx.Bucket(bucketOperations).Put(key, data); err != nil {
		return fmt.Errorf("failed to save operation log: %w", err)
	}
	// Индекс operation_id -> ключ журнала
	if err := t.tx.Bucket(bucketApplied).Put([]byte(e.OperationID), key); err != nil {
		return fmt.Errorf("failed to index operation: %w", err)
	}
	return nil
}

func (t *metadataTx) RecordSession(ctx context.Context, sess *models.SyncSession) error {
	data, err := encodeValue(sess)
	if err != nil {
		return err
	}
	key := joinKey(sess.DeviceID, sortableNano(nanoOf(sess.StartedAt)), sess.ID)
	if err := t.tx.Bucket(bucketSessions).Put(key, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetRecord retrieves a single metadata record
func (s *Storage) GetRecord(ctx context.Context, key models.RecordKey) (*models.MetadataRecord, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var rec *models.MetadataRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		rec, err = getRecord(tx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListEntityRecords returns the records of every device for one entity
func (s *Storage) ListEntityRecords(ctx context.Context, key models.EntityKey) ([]*models.MetadataRecord, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var records []*models.MetadataRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		records, err = listEntityRecords(tx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func listEntityRecords(tx *bbolt.Tx, key models.EntityKey) ([]*models.MetadataRecord, error) {
	var records []*models.MetadataRecord
	prefix := prefixKey(key.EntityType, key.EntityID)
	err := scanPrefix(tx.Bucket(bucketMetadata), prefix, func(_, v []byte) error {
		var rec models.MetadataRecord
		if err := decodeValue(v, &rec); err != nil {
			return err
		}
		records = append(records, &rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListChanges returns records matching the filter ordered by updated_at
func (s *Storage) ListChanges(ctx context.Context, filter storage.ChangeFilter) ([]*models.MetadataRecord, error) {
	records, err := s.scanRecords(filter.Matches)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].UpdatedAt.Before(records[j].UpdatedAt)
	})
	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}
	return records, nil
}

// ListActiveEntities returns entities none of whose records is a tombstone
func (s *Storage) ListActiveEntities(ctx context.Context, entityType string) ([]models.EntityKey, error) {
	records, err := s.scanRecords(func(rec *models.MetadataRecord) bool {
		return entityType == "" || rec.EntityType == entityType
	})
	if err != nil {
		return nil, err
	}

	var keys []models.EntityKey
	deleted := make(map[models.EntityKey]bool)
	// Записи уже упорядочены по ключу bbolt: type, id, device
	for _, rec := range records {
		k := models.EntityKey{EntityType: rec.EntityType, EntityID: rec.EntityID}
		if _, ok := deleted[k]; !ok {
			keys = append(keys, k)
		}
		deleted[k] = deleted[k] || rec.Tombstone
	}
	return slices.DeleteFunc(keys, func(k models.EntityKey) bool {
		return deleted[k]
	}), nil
}

// ListConflicts returns recorded conflicts of one entity, newest first
func (s *Storage) ListConflicts(ctx context.Context, key models.EntityKey) ([]*models.SyncConflict, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var conflicts []*models.SyncConflict
	err := s.db.View(func(tx *bbolt.Tx) error {
		return scanPrefix(tx.Bucket(bucketConflicts), prefixKey(key.EntityType, key.EntityID), func(_, v []byte) error {
			var c models.SyncConflict
			if err := decodeValue(v, &c); err != nil {
				return err
			}
			conflicts = append(conflicts, &c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	reverse(conflicts)
	return conflicts, nil
}

// ListOperationLog returns applied mutations of one entity, oldest first
func (s *Storage) ListOperationLog(ctx context.Context, key models.EntityKey) ([]*models.OperationLog, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var entries []*models.OperationLog
	err := s.db.View(func(tx *bbolt.Tx) error {
		return scanPrefix(tx.Bucket(bucketOperations), prefixKey(key.EntityType, key.EntityID), func(_, v []byte) error {
			var e models.OperationLog
			if err := decodeValue(v, &e); err != nil {
				return err
			}
			entries = append(entries, &e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListSessions returns the latest sync sessions of a device, newest first
func (s *Storage) ListSessions(ctx context.Context, deviceID string, limit int) ([]*models.SyncSession, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}
	if limit <= 0 {
		limit = 50
	}

	var sessions []*models.SyncSession
	err := s.db.View(func(tx *bbolt.Tx) error {
		return scanPrefix(tx.Bucket(bucketSessions), prefixKey(deviceID), func(_, v []byte) error {
			var sess models.SyncSession
			if err := decodeValue(v, &sess); err != nil {
				return err
			}
			sessions = append(sessions, &sess)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	reverse(sessions)
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// scanRecords returns all metadata records accepted by keep in key order
func (s *Storage) scanRecords(keep func(*models.MetadataRecord) bool) ([]*models.MetadataRecord, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var records []*models.MetadataRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMetadata).ForEach(func(_, v []byte) error {
			var rec models.MetadataRecord
			if err := decodeValue(v, &rec); err != nil {
				return err
			}
			if keep(&rec) {
				records = append(records, &rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func getRecord(tx *bbolt.Tx, key models.RecordKey) (*models.MetadataRecord, error) {
	data := tx.Bucket(bucketMetadata).Get(recordKey(key))
	if data == nil {
		return nil, storage.ErrRecordNotFound
	}

	var rec models.MetadataRecord
	if err := decodeValue(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func recordKey(k models.RecordKey) []byte {
	return joinKey(k.EntityType, k.EntityID, k.DeviceID)
}

func nanoOf(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
