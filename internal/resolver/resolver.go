// Package resolver provides business-level strategies for reconciling
// concurrent writes on top of the automatic CRDT merge.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/iudanet/fleetsync/internal/crdt"
)

// ErrUnknownStrategy is returned by ParseStrategy for unrecognized names.
var ErrUnknownStrategy = errors.New("unknown resolution strategy")

// Strategy selects how a conflict is resolved.
type Strategy string

const (
	CRDTMerge      Strategy = "crdt_merge"
	NewestWins     Strategy = "newest_wins"
	OldestWins     Strategy = "oldest_wins"
	PriorityDevice Strategy = "priority_device"
	Custom         Strategy = "custom"
	Manual         Strategy = "manual"
)

// ParseStrategy converts a configuration value into a Strategy. Empty means CRDTMerge.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(s); st {
	case CRDTMerge, NewestWins, OldestWins, PriorityDevice, Custom, Manual:
		return st, nil
	case "":
		return CRDTMerge, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// MergeFunc combines two values with CRDT semantics.
type MergeFunc func(local, remote any) (any, error)

// Conflict carries everything a strategy may look at.
type Conflict struct {
	LocalTimestamp  time.Time
	RemoteTimestamp time.Time
	LocalValue      any
	RemoteValue     any
	LocalClock      crdt.VectorClock
	RemoteClock     crdt.VectorClock
	// Merge is used by CRDTMerge; nil means last-writer-wins on the raw values
	Merge        MergeFunc
	EntityType   string
	EntityID     string
	FieldName    string
	LocalDevice  string
	RemoteDevice string
}

// IsConcurrent reports whether neither side causally precedes the other.
func (c Conflict) IsConcurrent() bool {
	return c.LocalClock.IsConcurrent(c.RemoteClock)
}

// Resolution is the uniform outcome of every strategy.
type Resolution struct {
	ResolvedAt   time.Time      `json:"resolved_at"`
	Value        any            `json:"resolved_value"`
	Metadata     map[string]any `json:"metadata"`
	Strategy     Strategy       `json:"strategy"`
	WinnerDevice string         `json:"winner_device"`
}

// RequiresManualReview reports whether an operator must confirm the value.
func (r *Resolution) RequiresManualReview() bool {
	v, _ := r.Metadata["requires_manual_review"].(bool)
	return v
}

// CustomHandler resolves a conflict with entity-specific business rules.
type CustomHandler func(c Conflict) (any, error)

// CustomOutcome is the result of running a custom handler.
// A handler that is missing, fails or panics is reported here, not raised.
type CustomOutcome struct {
	Value   any
	Err     error
	Handler bool
}

// Resolver dispatches conflicts to strategies. It is safe for concurrent use.
type Resolver struct {
	logger   *slog.Logger
	now      func() time.Time
	handlers map[string]CustomHandler
	priority []string
	mu       sync.RWMutex
}

// New creates a resolver without custom handlers or device priorities.
func New(logger *slog.Logger) *Resolver {
	return &Resolver{
		logger:   logger,
		now:      time.Now,
		handlers: make(map[string]CustomHandler),
	}
}

// SetPriorityDevices sets the device order for PriorityDevice, highest first.
func (r *Resolver) SetPriorityDevices(deviceIDs []string) {
	r.mu.Lock()
	r.priority = slices.Clone(deviceIDs)
	r.mu.Unlock()

	r.logger.Info("device priority set", slog.Any("devices", deviceIDs))
}

// RegisterCustomHandler installs the Custom handler for entityType.
func (r *Resolver) RegisterCustomHandler(entityType string, h CustomHandler) {
	r.mu.Lock()
	r.handlers[entityType] = h
	r.mu.Unlock()

	r.logger.Info("custom conflict handler registered", slog.String("entity_type", entityType))
}

// Resolve resolves c with strategy. Only a failing Merge function is
// returned as an error; unknown strategies and failing custom handlers
// degrade to CRDTMerge.
func (r *Resolver) Resolve(ctx context.Context, c Conflict, strategy Strategy) (*Resolution, error) {
	switch strategy {
	case CRDTMerge:
		return r.crdtMerge(c)
	case NewestWins:
		return r.newestWins(c), nil
	case OldestWins:
		return r.oldestWins(c), nil
	case PriorityDevice:
		return r.priorityDevice(ctx, c)
	case Custom:
		return r.custom(ctx, c)
	case Manual:
		return r.manual(c), nil
	default:
		r.logger.WarnContext(ctx, "unknown strategy, falling back to crdt merge",
			slog.String("strategy", string(strategy)),
			slog.String("entity_type", c.EntityType))
		return r.crdtMerge(c)
	}
}

// RunCustom runs the handler registered for c.EntityType.
func (r *Resolver) RunCustom(c Conflict) (out CustomOutcome) {
	r.mu.RLock()
	h, ok := r.handlers[c.EntityType]
	r.mu.RUnlock()
	if !ok {
		return CustomOutcome{}
	}

	out.Handler = true
	defer func() {
		if p := recover(); p != nil {
			out.Value = nil
			out.Err = fmt.Errorf("custom handler panic: %v", p)
		}
	}()
	out.Value, out.Err = h(c)
	return out
}

func (r *Resolver) crdtMerge(c Conflict) (*Resolution, error) {
	meta := timestampMeta(c)

	if c.Merge != nil {
		value, err := c.Merge(c.LocalValue, c.RemoteValue)
		if err != nil {
			return nil, fmt.Errorf("crdt merge %s/%s: %w", c.EntityType, c.EntityID, err)
		}
		winner, _ := newest(c)
		return r.resolution(CRDTMerge, value, winner, meta), nil
	}

	local := crdt.NewLWWRegister(c.LocalDevice)
	local.Set(c.LocalValue, c.LocalTimestamp)
	remote := crdt.NewLWWRegister(c.RemoteDevice)
	remote.Set(c.RemoteValue, c.RemoteTimestamp)

	merged := local.Merge(remote)
	return r.resolution(CRDTMerge, merged.Get(), merged.Writer(), meta), nil
}

func (r *Resolver) newestWins(c Conflict) *Resolution {
	winner, value := newest(c)
	return r.resolution(NewestWins, value, winner, timestampMeta(c))
}

func (r *Resolver) oldestWins(c Conflict) *Resolution {
	winner, value := c.LocalDevice, c.LocalValue
	switch {
	case c.RemoteTimestamp.Before(c.LocalTimestamp):
		winner, value = c.RemoteDevice, c.RemoteValue
	case c.RemoteTimestamp.Equal(c.LocalTimestamp) && c.RemoteDevice < c.LocalDevice:
		winner, value = c.RemoteDevice, c.RemoteValue
	}
	return r.resolution(OldestWins, value, winner, timestampMeta(c))
}

func (r *Resolver) priorityDevice(ctx context.Context, c Conflict) (*Resolution, error) {
	r.mu.RLock()
	localRank := slices.Index(r.priority, c.LocalDevice)
	remoteRank := slices.Index(r.priority, c.RemoteDevice)
	r.mu.RUnlock()

	if localRank < 0 && remoteRank < 0 {
		r.logger.DebugContext(ctx, "no ranked device in conflict, falling back to crdt merge",
			slog.String("local_device", c.LocalDevice),
			slog.String("remote_device", c.RemoteDevice))
		return r.crdtMerge(c)
	}

	winner, value := c.LocalDevice, c.LocalValue
	if remoteRank >= 0 && (localRank < 0 || remoteRank < localRank) {
		winner, value = c.RemoteDevice, c.RemoteValue
	}

	// -1 означает, что устройство не ранжировано
	return r.resolution(PriorityDevice, value, winner, map[string]any{
		"local_priority":  localRank,
		"remote_priority": remoteRank,
	}), nil
}

func (r *Resolver) custom(ctx context.Context, c Conflict) (*Resolution, error) {
	out := r.RunCustom(c)
	switch {
	case !out.Handler:
		r.logger.WarnContext(ctx, "no custom handler, falling back to crdt merge",
			slog.String("entity_type", c.EntityType))
		return r.fallback(c, "no_handler")
	case out.Err != nil:
		r.logger.ErrorContext(ctx, "custom handler failed, falling back to crdt merge",
			slog.String("entity_type", c.EntityType),
			slog.String("entity_id", c.EntityID),
			slog.Any("error", out.Err))
		return r.fallback(c, out.Err.Error())
	}

	winner := c.LocalDevice
	if reflect.DeepEqual(out.Value, c.RemoteValue) {
		winner = c.RemoteDevice
	}
	return r.resolution(Custom, out.Value, winner, map[string]any{
		"handler": c.EntityType,
	}), nil
}

func (r *Resolver) fallback(c Conflict, reason string) (*Resolution, error) {
	res, err := r.crdtMerge(c)
	if err != nil {
		return nil, err
	}
	res.Metadata["fallback_from"] = string(Custom)
	res.Metadata["fallback_reason"] = reason
	return res, nil
}

func (r *Resolver) manual(c Conflict) *Resolution {
	return r.resolution(Manual, c.LocalValue, c.LocalDevice, map[string]any{
		"requires_manual_review": true,
		"local_value":            c.LocalValue,
		"remote_value":           c.RemoteValue,
	})
}

func (r *Resolver) resolution(s Strategy, value any, winner string, meta map[string]any) *Resolution {
	return &Resolution{
		Strategy:     s,
		Value:        value,
		WinnerDevice: winner,
		Metadata:     meta,
		ResolvedAt:   r.now().UTC(),
	}
}

// newest picks the later timestamp; equal timestamps go to the larger device ID.
func newest(c Conflict) (string, any) {
	switch {
	case c.RemoteTimestamp.After(c.LocalTimestamp):
		return c.RemoteDevice, c.RemoteValue
	case c.LocalTimestamp.After(c.RemoteTimestamp):
		return c.LocalDevice, c.LocalValue
	case c.RemoteDevice > c.LocalDevice:
		return c.RemoteDevice, c.RemoteValue
	default:
		return c.LocalDevice, c.LocalValue
	}
}

func timestampMeta(c Conflict) map[string]any {
	return map[string]any{
		"local_timestamp":  c.LocalTimestamp.UTC().Format(time.RFC3339Nano),
		"remote_timestamp": c.RemoteTimestamp.UTC().Format(time.RFC3339Nano),
	}
}
