package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/storage"
)

const recordColumns = `entity_type, entity_id, device_id, vector_clock, crdt_payload,
	tombstone, created_at, updated_at`

// WithTx runs fn inside a database transaction.
// The transaction is rolled back when fn returns an error.
func (s *Storage) WithTx(ctx context.Context, fn func(tx storage.MetadataTx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&metadataTx{q: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to rollback: %w", rbErr))
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// metadataTx implements storage.MetadataTx over *sql.Tx
type metadataTx struct {
	q queryer
}

func (t *metadataTx) GetRecord(ctx context.Context, key models.RecordKey) (*models.MetadataRecord, error) {
	return getRecord(ctx, t.q, key)
}

func (t *metadataTx) PutRecord(ctx context.Context, rec *models.MetadataRecord) error {
	return putRecord(ctx, t.q, rec)
}

func (t *metadataTx) ListEntityRecords(ctx context.Context, key models.EntityKey) ([]*models.MetadataRecord, error) {
	return listEntityRecords(ctx, t.q, key)
}

func (t *metadataTx) OperationApplied(ctx context.Context, operationID string) (bool, error) {
	var n int
	err := t.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM crdt_operations WHERE operation_id = ?`, operationID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check operation log: %w", err)
	}
	return n > 0, nil
}

func (t *metadataTx) RecordConflict(ctx context.Context, c *models.SyncConflict) error {
	localClock, err := encodeClock(c.LocalClock)
	if err != nil {
		return err
	}
	remoteClock, err := encodeClock(c.RemoteClock)
	if err != nil {
		return err
	}
	var meta []byte
	if len(c.Metadata) > 0 {
		if meta, err = json.Marshal(c.Metadata); err != nil {
			return fmt.Errorf("failed to marshal conflict metadata: %w", err)
		}
	}

	query := `
		INSERT INTO sync_conflicts (
			id, entity_type, entity_id, local_device, remote_device,
			local_clock, remote_clock, local_payload, remote_payload, resolved_payload,
			strategy, winner_device, requires_manual_review, metadata, detected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = t.q.ExecContext(ctx, query,
		c.ID, c.EntityType, c.EntityID, c.LocalDevice, c.RemoteDevice,
		localClock, remoteClock, []byte(c.LocalPayload), []byte(c.RemotePayload), []byte(c.ResolvedPayload),
		c.Strategy, c.WinnerDevice, boolToInt(c.RequiresManualReview), string(meta), timeToNano(c.DetectedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert conflict: %w", err)
	}
	return nil
}

func (t *metadataTx) RecordOperation(ctx context.Context, e *models.OperationLog) error {
	clock, err := encodeClock(e.VectorClock)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO crdt_operations (
			id, operation_id, operation_type, entity_type, entity_id,
			device_id, payload, vector_clock, applied_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = t.q.ExecContext(ctx, query,
		e.ID, e.OperationID, string(e.OperationType), e.EntityType, e.EntityID,
		e.DeviceID, []byte(e.Payload), clock, timeToNano(e.AppliedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert operation log: %w", err)
	}
	return nil
}

func (t *metadataTx) RecordSession(ctx context.Context, sess *models.SyncSession) error {
	errs, err := json.Marshal(sess.Errors)
	if err != nil {
		return fmt.Errorf("failed to marshal session errors: %w", err)
	}

	query := `
		INSERT INTO sync_sessions (
			id, device_id, status, entities_received, entities_synced,
			conflicts_resolved, tombstones_processed, errors, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = t.q.ExecContext(ctx, query,
		sess.ID, sess.DeviceID, string(sess.Status), sess.EntitiesReceived, sess.EntitiesSynced,
		sess.ConflictsResolved, sess.TombstonesProcessed, string(errs),
		timeToNano(sess.StartedAt), timeToNano(sess.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync session: %w", err)
	}
	return nil
}

// GetRecord retrieves a single metadata record
// Returns storage.ErrRecordNotFound if the record doesn't exist
func (s *Storage) GetRecord(ctx context.Context, key models.RecordKey) (*models.MetadataRecord, error) {
	return getRecord(ctx, s.db, key)
}

// ListEntityRecords returns the records of every device for one entity
func (s *Storage) ListEntityRecords(ctx context.Context, key models.EntityKey) ([]*models.MetadataRecord, error) {
	return listEntityRecords(ctx, s.db, key)
}

// ListChanges returns records matching the filter ordered by updated_at
func (s *Storage) ListChanges(ctx context.Context, filter storage.ChangeFilter) ([]*models.MetadataRecord, error) {
	var (
		where []string
		args  []any
	)
	if !filter.Since.IsZero() {
		where = append(where, "updated_at > ?")
		args = append(args, timeToNano(filter.Since))
	}
	if filter.DeviceID != "" {
		where = append(where, "device_id = ?")
		args = append(args, filter.DeviceID)
	}
	if filter.ExcludeDeviceID != "" {
		where = append(where, "device_id <> ?")
		args = append(args, filter.ExcludeDeviceID)
	}

	query := `SELECT ` + recordColumns + ` FROM crdt_metadata`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY updated_at, entity_type, entity_id, device_id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListActiveEntities returns entities none of whose records is a tombstone
func (s *Storage) ListActiveEntities(ctx context.Context, entityType string) ([]models.EntityKey, error) {
	// Удаление на любом устройстве удаляет сущность целиком
	query := `
		SELECT entity_type, entity_id
		FROM crdt_metadata
		WHERE ? = '' OR entity_type = ?
		GROUP BY entity_type, entity_id
		HAVING MAX(tombstone) = 0
		ORDER BY entity_type, entity_id
	`
	rows, err := s.db.QueryContext(ctx, query, entityType, entityType)
	if err != nil {
		return nil, fmt.Errorf("failed to query active entities: %w", err)
	}
	defer rows.Close()

	var keys []models.EntityKey
	for rows.Next() {
		var k models.EntityKey
		if err := rows.Scan(&k.EntityType, &k.EntityID); err != nil {
			return nil, fmt.Errorf("failed to scan entity key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return keys, nil
}

// ListConflicts returns recorded conflicts of one entity, newest first
func (s *Storage) ListConflicts(ctx context.Context, key models.EntityKey) ([]*models.SyncConflict, error) {
	query := `
		SELECT id, entity_type, entity_id, local_device, remote_device,
		       local_clock, remote_clock, local_payload, remote_payload, resolved_payload,
		       strategy, winner_device, requires_manual_review, metadata, detected_at
		FROM sync_conflicts
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY detected_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, key.EntityType, key.EntityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []*models.SyncConflict
	for rows.Next() {
		var (
			c                                   models.SyncConflict
			localClock, remoteClock             string
			localPayload, remotePayload, merged []byte
			manual                              int
			meta                                sql.NullString
			detectedAt                          int64
		)
		if err := rows.Scan(
			&c.ID, &c.EntityType, &c.EntityID, &c.LocalDevice, &c.RemoteDevice,
			&localClock, &remoteClock, &localPayload, &remotePayload, &merged,
			&c.Strategy, &c.WinnerDevice, &manual, &meta, &detectedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conflict: %w", err)
		}
		if c.LocalClock, err = decodeClock(localClock); err != nil {
			return nil, err
		}
		if c.RemoteClock, err = decodeClock(remoteClock); err != nil {
			return nil, err
		}
		if meta.Valid && meta.String != "" {
			if err := json.Unmarshal([]byte(meta.String), &c.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal conflict metadata: %w", err)
			}
		}
		c.LocalPayload = localPayload
		c.RemotePayload = remotePayload
		c.ResolvedPayload = merged
		c.RequiresManualReview = intToBool(manual)
		c.DetectedAt = nanoToTime(detectedAt)
		conflicts = append(conflicts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return conflicts, nil
}

// ListOperationLog returns applied mutations of one entity, oldest first
func (s *Storage) ListOperationLog(ctx context.Context, key models.EntityKey) ([]*models.OperationLog, error) {
	query := `
		SELECT id, operation_id, operation_type, entity_type, entity_id,
		       device_id, payload, vector_clock, applied_at
		FROM crdt_operations
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY applied_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, key.EntityType, key.EntityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query operation log: %w", err)
	}
	defer rows.Close()

	var entries []*models.OperationLog
	for rows.Next() {
		var (
			e         models.OperationLog
			opType    string
			payload   []byte
			clock     string
			appliedAt int64
		)
		if err := rows.Scan(&e.ID, &e.OperationID, &opType, &e.EntityType, &e.EntityID,
			&e.DeviceID, &payload, &clock, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan operation log: %w", err)
		}
		if e.VectorClock, err = decodeClock(clock); err != nil {
			return nil, err
		}
		e.OperationType = models.OperationType(opType)
		e.Payload = payload
		e.AppliedAt = nanoToTime(appliedAt)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return entries, nil
}

// ListSessions returns the latest sync sessions of a device, newest first
func (s *Storage) ListSessions(ctx context.Context, deviceID string, limit int) ([]*models.SyncSession, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, device_id, status, entities_received, entities_synced,
		       conflicts_resolved, tombstones_processed, errors, started_at, completed_at
		FROM sync_sessions
		WHERE device_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.SyncSession
	for rows.Next() {
		var (
			sess                   models.SyncSession
			status                 string
			errs                   sql.NullString
			startedAt, completedAt int64
		)
		if err := rows.Scan(&sess.ID, &sess.DeviceID, &status, &sess.EntitiesReceived, &sess.EntitiesSynced,
			&sess.ConflictsResolved, &sess.TombstonesProcessed, &errs, &startedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if errs.Valid && errs.String != "" && errs.String != "null" {
			if err := json.Unmarshal([]byte(errs.String), &sess.Errors); err != nil {
				return nil, fmt.Errorf("failed to unmarshal session errors: %w", err)
			}
		}
		sess.Status = models.SessionStatus(status)
		sess.StartedAt = nanoToTime(startedAt)
		sess.CompletedAt = nanoToTime(completedAt)
		sessions = append(sessions, &sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return sessions, nil
}

func listEntityRecords(ctx context.Context, q queryer, key models.EntityKey) ([]*models.MetadataRecord, error) {
	query := `SELECT ` + recordColumns + `
		FROM crdt_metadata
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY device_id
	`
	rows, err := q.QueryContext(ctx, query, key.EntityType, key.EntityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entity records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func getRecord(ctx context.Context, q queryer, key models.RecordKey) (*models.MetadataRecord, error) {
	query := `SELECT ` + recordColumns + `
		FROM crdt_metadata
		WHERE entity_type = ? AND entity_id = ? AND device_id = ?
	`
	rec, err := scanRecord(q.QueryRowContext(ctx, query, key.EntityType, key.EntityID, key.DeviceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

func putRecord(ctx context.Context, q queryer, rec *models.MetadataRecord) error {
	clock, err := encodeClock(rec.VectorClock)
	if err != nil {
		return err
	}

	// created_at сохраняется от первой вставки
	query := `
		INSERT INTO crdt_metadata (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (entity_type, entity_id, device_id) DO UPDATE SET
			vector_clock = excluded.vector_clock,
			crdt_payload = excluded.crdt_payload,
			tombstone    = excluded.tombstone,
			updated_at   = excluded.updated_at
	`
	_, err = q.ExecContext(ctx, query,
		rec.EntityType, rec.EntityID, rec.DeviceID, clock, []byte(rec.Payload),
		boolToInt(rec.Tombstone), timeToNano(rec.CreatedAt), timeToNano(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.MetadataRecord, error) {
	var (
		rec                  models.MetadataRecord
		clock                string
		payload              []byte
		tombstone            int
		createdAt, updatedAt int64
	)
	if err := row.Scan(&rec.EntityType, &rec.EntityID, &rec.DeviceID, &clock, &payload,
		&tombstone, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	vc, err := decodeClock(clock)
	if err != nil {
		return nil, err
	}
	rec.VectorClock = vc
	rec.Payload = payload
	rec.Tombstone = intToBool(tombstone)
	rec.CreatedAt = nanoToTime(createdAt)
	rec.UpdatedAt = nanoToTime(updatedAt)
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]*models.MetadataRecord, error) {
	var records []*models.MetadataRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return records, nil
}
