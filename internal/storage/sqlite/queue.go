package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/storage"
)

const queueColumns = `operation_id, device_id, operation_type, entity_type, entity_id,
	payload, priority, status, retry_count, max_retries, error_message, created_at, updated_at`

// SaveOperation inserts or replaces a queued operation
func (s *Storage) SaveOperation(ctx context.Context, op *models.QueuedOperation) error {
	query := `
		INSERT INTO sync_queue (` + queueColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (operation_id) DO UPDATE SET
			status        = excluded.status,
			priority      = excluded.priority,
			payload       = excluded.payload,
			retry_count   = excluded.retry_count,
			max_retries   = excluded.max_retries,
			error_message = excluded.error_message,
			updated_at    = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		op.OperationID, op.DeviceID, string(op.OperationType), op.EntityType, op.EntityID,
		[]byte(op.Payload), string(op.Priority), string(op.Status), op.RetryCount, op.MaxRetries,
		op.ErrorMessage, timeToNano(op.CreatedAt), timeToNano(op.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save operation: %w", err)
	}
	return nil
}

// GetOperation retrieves a queued operation by ID
// Returns storage.ErrOperationNotFound if it doesn't exist
func (s *Storage) GetOperation(ctx context.Context, operationID string) (*models.QueuedOperation, error) {
	query := `SELECT ` + queueColumns + ` FROM sync_queue WHERE operation_id = ?`

	op, err := scanOperation(s.db.QueryRowContext(ctx, query, operationID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrOperationNotFound
		}
		return nil, fmt.Errorf("failed to get operation: %w", err)
	}
	return op, nil
}

// ListOperations returns operations filtered by device and status, oldest first
func (s *Storage) ListOperations(ctx context.Context, deviceID string, statuses ...models.OperationStatus) ([]*models.QueuedOperation, error) {
	var (
		where []string
		args  []any
	)
	if deviceID != "" {
		where = append(where, "device_id = ?")
		args = append(args, deviceID)
	}
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, st := range statuses {
			placeholders[i] = "?"
			args = append(args, string(st))
		}
		where = append(where, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := `SELECT ` + queueColumns + ` FROM sync_queue`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, operation_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	var ops []*models.QueuedOperation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return ops, nil
}

// ListQueueDevices returns devices that have queued operations
func (s *Storage) ListQueueDevices(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT device_id FROM sync_queue ORDER BY device_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query queue devices: %w", err)
	}
	defer rows.Close()

	var devices []string
	for rows.Next() {
		var device string
		if err := rows.Scan(&device); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return devices, nil
}

// DeleteOperations removes operations in status updated before cutoff
func (s *Storage) DeleteOperations(ctx context.Context, deviceID string, status models.OperationStatus, cutoff time.Time) (int, error) {
	where := []string{"status = ?"}
	args := []any{string(status)}
	if deviceID != "" {
		where = append(where, "device_id = ?")
		args = append(args, deviceID)
	}
	if !cutoff.IsZero() {
		where = append(where, "updated_at < ?")
		args = append(args, timeToNano(cutoff))
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE `+strings.Join(where, " AND "), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete operations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

func scanOperation(row rowScanner) (*models.QueuedOperation, error) {
	var (
		op                      models.QueuedOperation
		opType, priority, state string
		payload                 []byte
		createdAt, updatedAt    int64
	)
	if err := row.Scan(&op.OperationID, &op.DeviceID, &opType, &op.EntityType, &op.EntityID,
		&payload, &priority, &state, &op.RetryCount, &op.MaxRetries, &op.ErrorMessage,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	op.OperationType = models.OperationType(opType)
	op.Priority = models.Priority(priority)
	op.Status = models.OperationStatus(state)
	op.Payload = payload
	op.CreatedAt = nanoToTime(createdAt)
	op.UpdatedAt = nanoToTime(updatedAt)
	return &op, nil
}
