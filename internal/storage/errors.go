package storage

import "errors"

// Common storage errors
var (
	// ErrRecordNotFound indicates that a metadata record does not exist
	ErrRecordNotFound = errors.New("metadata record not found")

	// ErrOperationNotFound indicates that a queued operation does not exist
	ErrOperationNotFound = errors.New("queued operation not found")

	// ErrDeviceNotFound indicates that a device is not registered
	ErrDeviceNotFound = errors.New("device not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
