package entity

import "errors"

var (
	// ErrUnknownType indicates an unsupported entity type
	ErrUnknownType = errors.New("unknown entity type")

	// ErrTypeMismatch indicates an attempt to merge different entity types
	ErrTypeMismatch = errors.New("entity type mismatch")

	// ErrIDMismatch indicates an attempt to merge different entities of one type
	ErrIDMismatch = errors.New("entity id mismatch")

	// ErrMalformed indicates a portable entity payload with missing or invalid fields
	ErrMalformed = errors.New("malformed entity payload")

	// ErrUnsupportedOperation indicates an operation type that does not apply to the entity
	ErrUnsupportedOperation = errors.New("operation not supported for entity")

	// ErrOutOfRange indicates a numeric mutation that cannot be represented
	ErrOutOfRange = errors.New("value out of range")

	// ErrEmptyUpdate indicates a mutation payload without any field to change
	ErrEmptyUpdate = errors.New("update contains no changes")
)
