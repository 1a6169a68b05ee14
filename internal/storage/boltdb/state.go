package boltdb

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/fleetsync/internal/storage"
)

// SaveSyncMarker stores a named synchronization point
func (s *Storage) SaveSyncMarker(ctx context.Context, name string, t time.Time) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := encodeValue(t.UTC())
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketState).Put([]byte(name), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save sync marker %s: %w", name, err)
	}
	return nil
}

// GetSyncMarker returns the zero time if the marker was never saved
func (s *Storage) GetSyncMarker(ctx context.Context, name string) (time.Time, error) {
	if s.db == nil {
		return time.Time{}, storage.ErrStorageClosed
	}

	var t time.Time
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketState).Get([]byte(name))
		if data == nil {
			return nil
		}
		return decodeValue(data, &t)
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get sync marker %s: %w", name, err)
	}
	return t, nil
}
