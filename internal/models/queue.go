package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition indicates a queued operation state change that the
// state machine does not allow.
var ErrInvalidTransition = errors.New("invalid operation status transition")

// DefaultMaxRetries is used when an operation is enqueued without an explicit limit.
const DefaultMaxRetries = 3

// OperationType names a queued mutation.
type OperationType string

const (
	OpVehicleUpdate   OperationType = "vehicle_update"
	OpWorkOrderUpdate OperationType = "workorder_update"
	OpStockMove       OperationType = "stock_move"
	OpDelete          OperationType = "delete"
)

// OperationStatus is a state of the queued operation state machine:
// PENDING -> IN_PROGRESS -> {COMPLETED, RETRY, FAILED}; RETRY -> IN_PROGRESS.
type OperationStatus string

const (
	StatusPending    OperationStatus = "pending"
	StatusInProgress OperationStatus = "in_progress"
	StatusCompleted  OperationStatus = "completed"
	StatusRetry      OperationStatus = "retry"
	StatusFailed     OperationStatus = "failed"
)

// AllStatuses lists every operation status.
var AllStatuses = []OperationStatus{
	StatusPending, StatusInProgress, StatusCompleted, StatusRetry, StatusFailed,
}

// Valid reports whether s is a known status.
func (s OperationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusRetry, StatusFailed:
		return true
	default:
		return false
	}
}

// Priority orders queued operations; higher rank is dequeued first.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank returns the numeric rank of the priority. Unknown priorities rank as normal.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	default:
		return 1
	}
}

// ParsePriority converts a wire value into a Priority. Empty means normal.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return p, nil
	case "":
		return PriorityNormal, nil
	default:
		return "", fmt.Errorf("unknown priority %q", s)
	}
}

// QueuedOperation is a local mutation waiting to be applied.
type QueuedOperation struct {
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	OperationID   string          `json:"operation_id"`
	DeviceID      string          `json:"device_id"`
	OperationType OperationType   `json:"operation_type"`
	EntityType    string          `json:"entity_type"`
	EntityID      string          `json:"entity_id"`
	Priority      Priority        `json:"priority"`
	Status        OperationStatus `json:"status"`
	ErrorMessage  string          `json:"error_message,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	RetryCount    int             `json:"retry_count"`
	MaxRetries    int             `json:"max_retries"`
}

// IsDequeueable reports whether the operation belongs to the pending pool.
func (op *QueuedOperation) IsDequeueable() bool {
	return op.Status == StatusPending || op.Status == StatusRetry
}

// CanRetry reports whether another attempt is allowed.
func (op *QueuedOperation) CanRetry() bool {
	return op.RetryCount < op.MaxRetries
}

// MarkInProgress moves a pending or retrying operation to IN_PROGRESS.
func (op *QueuedOperation) MarkInProgress(now time.Time) error {
	if !op.IsDequeueable() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, op.Status, StatusInProgress)
	}
	op.Status = StatusInProgress
	op.UpdatedAt = now
	return nil
}

// MarkCompleted finishes an in-progress operation.
func (op *QueuedOperation) MarkCompleted(now time.Time) error {
	if op.Status != StatusInProgress {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, op.Status, StatusCompleted)
	}
	op.Status = StatusCompleted
	op.ErrorMessage = ""
	op.UpdatedAt = now
	return nil
}

// MarkFailed records a failed attempt. The operation returns to the pool as
// RETRY until RetryCount reaches MaxRetries, then becomes terminally FAILED.
func (op *QueuedOperation) MarkFailed(reason string, now time.Time) error {
	if op.Status != StatusInProgress {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, op.Status, StatusFailed)
	}
	op.RetryCount++
	op.ErrorMessage = reason
	op.UpdatedAt = now
	if op.RetryCount >= op.MaxRetries {
		op.Status = StatusFailed
	} else {
		op.Status = StatusRetry
	}
	return nil
}

// ResetInProgress returns an interrupted operation to PENDING.
// It reports whether the status changed.
func (op *QueuedOperation) ResetInProgress(now time.Time) bool {
	if op.Status != StatusInProgress {
		return false
	}
	op.Status = StatusPending
	op.UpdatedAt = now
	return true
}

// Clone returns a deep copy of the operation.
func (op *QueuedOperation) Clone() *QueuedOperation {
	if op == nil {
		return nil
	}
	clone := *op
	if op.Payload != nil {
		clone.Payload = append(json.RawMessage(nil), op.Payload...)
	}
	return &clone
}

// QueueStats counts operations per status.
type QueueStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Retry      int `json:"retry"`
	Failed     int `json:"failed"`
}

// Add counts one operation of status s.
func (s *QueueStats) Add(status OperationStatus) {
	s.Total++
	switch status {
	case StatusPending:
		s.Pending++
	case StatusInProgress:
		s.InProgress++
	case StatusCompleted:
		s.Completed++
	case StatusRetry:
		s.Retry++
	case StatusFailed:
		s.Failed++
	}
}

// Merge adds other's counts to s.
func (s *QueueStats) Merge(other QueueStats) {
	s.Total += other.Total
	s.Pending += other.Pending
	s.InProgress += other.InProgress
	s.Completed += other.Completed
	s.Retry += other.Retry
	s.Failed += other.Failed
}
