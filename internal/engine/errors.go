package engine

import "errors"

var (
	// ErrInvalidState is returned for a remote record that cannot be applied
	ErrInvalidState = errors.New("invalid remote state")
	// ErrPayloadMismatch is returned when a payload describes another entity
	ErrPayloadMismatch = errors.New("payload does not match record key")
	// ErrEntityNotFound is returned when no device holds a record of the entity
	ErrEntityNotFound = errors.New("entity not found")
)
