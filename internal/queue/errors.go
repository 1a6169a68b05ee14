package queue

import "errors"

var (
	// ErrInvalidOperation indicates an enqueue request without required fields
	ErrInvalidOperation = errors.New("invalid queued operation")

	// ErrWrongDevice indicates an operation owned by another device's queue
	ErrWrongDevice = errors.New("operation belongs to another device")
)
