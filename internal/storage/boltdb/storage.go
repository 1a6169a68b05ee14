// Package boltdb implements the device-local sync storage on bbolt.
// Values are JSON documents compressed with snappy.
package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang/snappy"
	"go.etcd.io/bbolt"
)

var (
	// BoltDB bucket names
	bucketMetadata   = []byte("crdt_metadata")
	bucketConflicts  = []byte("sync_conflicts")
	bucketOperations = []byte("crdt_operations")
	bucketApplied    = []byte("crdt_applied")
	bucketSessions   = []byte("sync_sessions")
	bucketQueue      = []byte("sync_queue")
	bucketState      = []byte("sync_state")

	allBuckets = [][]byte{
		bucketMetadata, bucketConflicts, bucketOperations, bucketApplied,
		bucketSessions, bucketQueue, bucketState,
	}
)

// keySep separates key parts; IDs never contain NUL
const keySep = "\x00"

// Storage represents BoltDB storage implementation for devices
type Storage struct {
	db *bbolt.DB
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// encodeValue сериализует значение в JSON и сжимает snappy
func encodeValue(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	return snappy.Encode(nil, data), nil
}

// decodeValue копирует данные из bbolt, поэтому результат валиден вне транзакции
func decodeValue(data []byte, v any) error {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return fmt.Errorf("failed to decompress value: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return nil
}

func joinKey(parts ...string) []byte {
	return []byte(strings.Join(parts, keySep))
}

// prefixKey returns parts joined with a trailing separator for prefix scans
func prefixKey(parts ...string) []byte {
	return []byte(strings.Join(parts, keySep) + keySep)
}

// scanPrefix calls fn for every key in bucket starting with prefix
func scanPrefix(b *bbolt.Bucket, prefix []byte, fn func(k, v []byte) error) error {
	c := b.Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

// sortableNano formats a unix-nano timestamp so that byte order matches time order
func sortableNano(n int64) string {
	return fmt.Sprintf("%020d", n)
}
