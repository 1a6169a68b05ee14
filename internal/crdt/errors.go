package crdt

import "errors"

// CRDT errors
var (
	// ErrUnknownType indicates that a portable payload names an unsupported CRDT type
	ErrUnknownType = errors.New("unknown CRDT type")

	// ErrKindMismatch indicates an attempt to merge two different CRDT kinds
	ErrKindMismatch = errors.New("cannot merge different CRDT kinds")

	// ErrMalformed indicates a portable payload with missing or invalid fields
	ErrMalformed = errors.New("malformed CRDT payload")

	// ErrNegativeAmount indicates a negative increment or decrement amount
	ErrNegativeAmount = errors.New("amount must not be negative")
)
