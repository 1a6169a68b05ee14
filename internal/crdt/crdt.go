// Package crdt implements the conflict-free replicated data types used to
// synchronize fleet records between disconnected devices: a vector clock,
// a last-write-wins register, an observed-remove set and grow-only and
// positive-negative counters.
//
// All merges are pure: they return a new value and never modify their
// inputs, so replicas can be merged concurrently without locking.
package crdt

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind identifies a CRDT variant in the portable encoding.
type Kind string

const (
	KindLWWRegister Kind = "lww_register"
	KindORSet       Kind = "or_set"
	KindGCounter    Kind = "g_counter"
	KindPNCounter   Kind = "pn_counter"
)

// Value is the closed set of CRDT variants.
// Only types in this package implement it.
type Value interface {
	json.Marshaler

	// Kind returns the variant tag used in the portable encoding
	Kind() Kind

	// DeviceID returns the replica that owns this value
	DeviceID() string

	// Clock returns a copy of the value's vector clock
	Clock() VectorClock

	isValue()
}

// Merge combines two values of the same kind.
// The result is owned by a's device.
func Merge(a, b Value) (Value, error) {
	switch x := a.(type) {
	case *LWWRegister:
		y, ok := b.(*LWWRegister)
		if !ok {
			return nil, mismatch(a, b)
		}
		return x.Merge(y), nil
	case *ORSet:
		y, ok := b.(*ORSet)
		if !ok {
			return nil, mismatch(a, b)
		}
		return x.Merge(y), nil
	case *GCounter:
		y, ok := b.(*GCounter)
		if !ok {
			return nil, mismatch(a, b)
		}
		return x.Merge(y), nil
	case *PNCounter:
		y, ok := b.(*PNCounter)
		if !ok {
			return nil, mismatch(a, b)
		}
		return x.Merge(y), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, a)
	}
}

func mismatch(a, b Value) error {
	if b == nil {
		return fmt.Errorf("%w: %s with nil", ErrKindMismatch, a.Kind())
	}
	return fmt.Errorf("%w: %s with %s", ErrKindMismatch, a.Kind(), b.Kind())
}

// New creates an empty value of the given kind owned by deviceID.
func New(kind Kind, deviceID string) (Value, error) {
	switch kind {
	case KindLWWRegister:
		return NewLWWRegister(deviceID), nil
	case KindORSet:
		return NewORSet(deviceID), nil
	case KindGCounter:
		return NewGCounter(deviceID), nil
	case KindPNCounter:
		return NewPNCounter(deviceID), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}
}

// Encode serializes a value into its portable JSON form.
func Encode(v Value) ([]byte, error) {
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", v.Kind(), err)
	}
	return data, nil
}

// Decode restores a value from its portable JSON form.
func Decode(data []byte) (Value, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var v interface {
		Value
		json.Unmarshaler
	}
	switch head.Type {
	case KindLWWRegister:
		v = &LWWRegister{}
	case KindORSet:
		v = &ORSet{}
	case KindGCounter:
		v = &GCounter{}
	case KindPNCounter:
		v = &PNCounter{}
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, head.Type)
	}

	if err := v.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return v, nil
}

// envelope is the portable wire form shared by every variant.
type envelope struct {
	Clock    VectorClock     `json:"clock"`
	Type     Kind            `json:"type"`
	DeviceID string          `json:"device_id"`
	State    json.RawMessage `json:"state"`
}

func marshalEnvelope(kind Kind, deviceID string, clock VectorClock, state any) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = NewVectorClock()
	}
	return json.Marshal(envelope{
		Type:     kind,
		DeviceID: deviceID,
		Clock:    clock,
		State:    raw,
	})
}

func unmarshalEnvelope(data []byte, kind Kind) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type != kind {
		return nil, fmt.Errorf("%w: expected %s, got %q", ErrKindMismatch, kind, env.Type)
	}
	if env.DeviceID == "" {
		return nil, fmt.Errorf("%w: missing device_id", ErrMalformed)
	}
	if env.Clock == nil {
		env.Clock = NewVectorClock()
	}
	return &env, nil
}

// isNull reports whether a raw state is absent or JSON null.
func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
