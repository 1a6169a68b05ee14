package boltdb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/storage"
)

// SaveOperation inserts or replaces a queued operation
func (s *Storage) SaveOperation(ctx context.Context, op *models.QueuedOperation) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := encodeValue(op)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketQueue).Put([]byte(op.OperationID), data); err != nil {
			return fmt.Errorf("failed to save operation: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

// GetOperation retrieves a queued operation by ID
func (s *Storage) GetOperation(ctx context.Context, operationID string) (*models.QueuedOperation, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var op *models.QueuedOperation
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketQueue).Get([]byte(operationID))
		if data == nil {
			return storage.ErrOperationNotFound
		}
		op = &models.QueuedOperation{}
		return decodeValue(data, op)
	})
	if err != nil {
		return nil, err
	}
	return op, nil
}

// ListOperations returns operations filtered by device and status, oldest first
func (s *Storage) ListOperations(ctx context.Context, deviceID string, statuses ...models.OperationStatus) ([]*models.QueuedOperation, error) {
	wanted := make(map[models.OperationStatus]bool, len(statuses))
	for _, st := range statuses {
		wanted[st] = true
	}

	ops, err := s.scanOperations(func(op *models.QueuedOperation) bool {
		if deviceID != "" && op.DeviceID != deviceID {
			return false
		}
		return len(wanted) == 0 || wanted[op.Status]
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(ops, func(i, j int) bool {
		if !ops[i].CreatedAt.Equal(ops[j].CreatedAt) {
			return ops[i].CreatedAt.Before(ops[j].CreatedAt)
		}
		return ops[i].OperationID < ops[j].OperationID
	})
	return ops, nil
}

// ListQueueDevices returns devices that have queued operations
func (s *Storage) ListQueueDevices(ctx context.Context) ([]string, error) {
	ops, err := s.scanOperations(func(*models.QueuedOperation) bool { return true })
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var devices []string
	for _, op := range ops {
		if _, ok := seen[op.DeviceID]; ok {
			continue
		}
		seen[op.DeviceID] = struct{}{}
		devices = append(devices, op.DeviceID)
	}
	sort.Strings(devices)
	return devices, nil
}

// DeleteOperations removes operations in status updated before cutoff
func (s *Storage) DeleteOperations(ctx context.Context, deviceID string, status models.OperationStatus, cutoff time.Time) (int, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	deleted := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketQueue)

		// Собираем ключи заранее: удалять во время ForEach нельзя
		var keys [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var op models.QueuedOperation
			if err := decodeValue(v, &op); err != nil {
				return err
			}
			if op.Status != status || (deviceID != "" && op.DeviceID != deviceID) {
				return nil
			}
			if !cutoff.IsZero() && !op.UpdatedAt.Before(cutoff) {
				return nil
			}
			keys = append(keys, append([]byte(nil), k...))
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return fmt.Errorf("failed to delete operation: %w", err)
			}
		}
		deleted = len(keys)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *Storage) scanOperations(keep func(*models.QueuedOperation) bool) ([]*models.QueuedOperation, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var ops []*models.QueuedOperation
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketQueue).ForEach(func(_, v []byte) error {
			var op models.QueuedOperation
			if err := decodeValue(v, &op); err != nil {
				return err
			}
			if keep(&op) {
				ops = append(ops, &op)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ops, nil
}
