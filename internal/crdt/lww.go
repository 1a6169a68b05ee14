package crdt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// LWWRegister is a Last-Write-Wins register.
// Concurrent writes resolve to the later timestamp; equal timestamps
// resolve to the lexically larger writer device ID, then to the larger
// JSON encoding of the value.
//
// Values are expected to be JSON-compatible (string, float64, bool, nil,
// map[string]any, []any) so that they survive the portable encoding intact.
type LWWRegister struct {
	timestamp time.Time
	value     any
	clock     VectorClock
	deviceID  string
	writer    string
	set       bool
}

// NewLWWRegister creates an empty register owned by deviceID.
func NewLWWRegister(deviceID string) *LWWRegister {
	return &LWWRegister{
		deviceID: deviceID,
		clock:    NewVectorClock(),
	}
}

func (r *LWWRegister) isValue() {}

// Kind returns KindLWWRegister.
func (r *LWWRegister) Kind() Kind { return KindLWWRegister }

// DeviceID returns the owning device.
func (r *LWWRegister) DeviceID() string { return r.deviceID }

// Clock returns a copy of the register's clock.
func (r *LWWRegister) Clock() VectorClock { return r.clock.Clone() }

// Set writes value at ts on behalf of the owning device and ticks the clock.
func (r *LWWRegister) Set(value any, ts time.Time) {
	r.value = value
	r.timestamp = ts.UTC()
	r.writer = r.deviceID
	r.set = true
	r.clock.Increment(r.deviceID)
}

// Get returns the current value, or nil when the register was never written.
func (r *LWWRegister) Get() any {
	return r.value
}

// IsSet reports whether the register holds a value.
func (r *LWWRegister) IsSet() bool { return r.set }

// Timestamp returns the timestamp of the winning write.
func (r *LWWRegister) Timestamp() time.Time { return r.timestamp }

// Writer returns the device that produced the winning write.
func (r *LWWRegister) Writer() string { return r.writer }

// wins reports whether r's write beats other's.
func (r *LWWRegister) wins(other *LWWRegister) bool {
	if !other.set {
		return r.set
	}
	if !r.set {
		return false
	}
	if !r.timestamp.Equal(other.timestamp) {
		return r.timestamp.After(other.timestamp)
	}
	if r.writer != other.writer {
		return r.writer > other.writer
	}
	// Две записи одного устройства в одну метку времени
	return bytes.Compare(canonicalValue(r.value), canonicalValue(other.value)) > 0
}

// canonicalValue renders v for ordering. encoding/json sorts map keys, so
// equal values render equally.
func canonicalValue(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte(fmt.Sprintf("%#v", v))
	}
	return data
}

// Merge returns a new register holding the winning write of r and other
// and the merged clock. Neither input is modified.
func (r *LWWRegister) Merge(other *LWWRegister) *LWWRegister {
	out := &LWWRegister{
		deviceID: r.deviceID,
		clock:    r.clock.Merge(other.clock),
	}

	winner := r
	if other.wins(r) {
		winner = other
	}
	out.value = winner.value
	out.timestamp = winner.timestamp
	out.writer = winner.writer
	out.set = winner.set

	return out
}

// lwwState is the portable form of a written register.
type lwwState struct {
	Value     any       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`
}

// MarshalJSON implements json.Marshaler.
func (r *LWWRegister) MarshalJSON() ([]byte, error) {
	var state *lwwState
	if r.set {
		state = &lwwState{
			Value:     r.value,
			Timestamp: r.timestamp,
			DeviceID:  r.writer,
		}
	}
	return marshalEnvelope(KindLWWRegister, r.deviceID, r.clock, state)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *LWWRegister) UnmarshalJSON(data []byte) error {
	env, err := unmarshalEnvelope(data, KindLWWRegister)
	if err != nil {
		return err
	}

	*r = LWWRegister{
		deviceID: env.DeviceID,
		clock:    env.Clock,
	}
	if isNull(env.State) {
		return nil
	}

	var state lwwState
	if err := json.Unmarshal(env.State, &state); err != nil {
		return fmt.Errorf("%w: lww state: %v", ErrMalformed, err)
	}
	if state.DeviceID == "" {
		return fmt.Errorf("%w: lww write without device_id", ErrMalformed)
	}

	r.value = state.Value
	r.timestamp = state.Timestamp.UTC()
	r.writer = state.DeviceID
	r.set = true
	return nil
}
