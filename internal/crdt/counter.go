package crdt

import (
	"encoding/json"
	"fmt"
)

// counts is the per-device contribution map shared by both counters.
type counts map[string]uint64

func (c counts) sum() uint64 {
	var total uint64
	for _, n := range c {
		total += n
	}
	return total
}

func (c counts) merge(other counts) counts {
	out := make(counts, len(c)+len(other))
	for device, n := range c {
		out[device] = n
	}
	for device, n := range other {
		if n > out[device] {
			out[device] = n
		}
	}
	return out
}

// GCounter is a grow-only counter: each device tracks its own total and
// the value is the sum over all devices.
type GCounter struct {
	counts   counts
	clock    VectorClock
	deviceID string
}

// NewGCounter creates a zero counter owned by deviceID.
func NewGCounter(deviceID string) *GCounter {
	return &GCounter{
		deviceID: deviceID,
		clock:    NewVectorClock(),
		counts:   make(counts),
	}
}

func (g *GCounter) isValue() {}

// Kind returns KindGCounter.
func (g *GCounter) Kind() Kind { return KindGCounter }

// DeviceID returns the owning device.
func (g *GCounter) DeviceID() string { return g.deviceID }

// Clock returns a copy of the counter's clock.
func (g *GCounter) Clock() VectorClock { return g.clock.Clone() }

// Increment adds amount to the owning device's contribution.
func (g *GCounter) Increment(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeAmount, amount)
	}
	if g.counts == nil {
		g.counts = make(counts)
	}
	g.counts[g.deviceID] += uint64(amount)
	g.clock.Increment(g.deviceID)
	return nil
}

// Value returns the sum of all device contributions.
func (g *GCounter) Value() uint64 {
	return g.counts.sum()
}

// Merge returns the pointwise maximum of both counters.
func (g *GCounter) Merge(other *GCounter) *GCounter {
	return &GCounter{
		deviceID: g.deviceID,
		clock:    g.clock.Merge(other.clock),
		counts:   g.counts.merge(other.counts),
	}
}

type gCounterState struct {
	Counts counts `json:"counts"`
}

// MarshalJSON implements json.Marshaler.
func (g *GCounter) MarshalJSON() ([]byte, error) {
	c := g.counts
	if c == nil {
		c = counts{}
	}
	return marshalEnvelope(KindGCounter, g.deviceID, g.clock, gCounterState{Counts: c})
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *GCounter) UnmarshalJSON(data []byte) error {
	env, err := unmarshalEnvelope(data, KindGCounter)
	if err != nil {
		return err
	}

	*g = *NewGCounter(env.DeviceID)
	g.clock = env.Clock
	if isNull(env.State) {
		return nil
	}

	var state gCounterState
	if err := json.Unmarshal(env.State, &state); err != nil {
		return fmt.Errorf("%w: g_counter state: %v", ErrMalformed, err)
	}
	if state.Counts != nil {
		g.counts = state.Counts
	}
	return nil
}

// PNCounter supports both increments and decrements by pairing two
// grow-only tallies. Value is positive minus negative.
type PNCounter struct {
	positive counts
	negative counts
	clock    VectorClock
	deviceID string
}

// NewPNCounter creates a zero counter owned by deviceID.
func NewPNCounter(deviceID string) *PNCounter {
	return &PNCounter{
		deviceID: deviceID,
		clock:    NewVectorClock(),
		positive: make(counts),
		negative: make(counts),
	}
}

func (p *PNCounter) isValue() {}

// Kind returns KindPNCounter.
func (p *PNCounter) Kind() Kind { return KindPNCounter }

// DeviceID returns the owning device.
func (p *PNCounter) DeviceID() string { return p.deviceID }

// Clock returns a copy of the counter's clock.
func (p *PNCounter) Clock() VectorClock { return p.clock.Clone() }

// Increment adds amount to the positive tally.
func (p *PNCounter) Increment(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeAmount, amount)
	}
	if p.positive == nil {
		p.positive = make(counts)
	}
	p.positive[p.deviceID] += uint64(amount)
	p.clock.Increment(p.deviceID)
	return nil
}

// Decrement adds amount to the negative tally.
func (p *PNCounter) Decrement(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeAmount, amount)
	}
	if p.negative == nil {
		p.negative = make(counts)
	}
	p.negative[p.deviceID] += uint64(amount)
	p.clock.Increment(p.deviceID)
	return nil
}

// Add increments for positive delta and decrements for negative delta.
func (p *PNCounter) Add(delta int64) error {
	if delta < 0 {
		return p.Decrement(-delta)
	}
	return p.Increment(delta)
}

// Value returns positive minus negative.
func (p *PNCounter) Value() int64 {
	return int64(p.positive.sum()) - int64(p.negative.sum())
}

// Merge merges both tallies independently.
func (p *PNCounter) Merge(other *PNCounter) *PNCounter {
	return &PNCounter{
		deviceID: p.deviceID,
		clock:    p.clock.Merge(other.clock),
		positive: p.positive.merge(other.positive),
		negative: p.negative.merge(other.negative),
	}
}

type pnCounterState struct {
	Positive counts `json:"positive"`
	Negative counts `json:"negative"`
}

// MarshalJSON implements json.Marshaler.
func (p *PNCounter) MarshalJSON() ([]byte, error) {
	state := pnCounterState{Positive: p.positive, Negative: p.negative}
	if state.Positive == nil {
		state.Positive = counts{}
	}
	if state.Negative == nil {
		state.Negative = counts{}
	}
	return marshalEnvelope(KindPNCounter, p.deviceID, p.clock, state)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PNCounter) UnmarshalJSON(data []byte) error {
	env, err := unmarshalEnvelope(data, KindPNCounter)
	if err != nil {
		return err
	}

	*p = *NewPNCounter(env.DeviceID)
	p.clock = env.Clock
	if isNull(env.State) {
		return nil
	}

	var state pnCounterState
	if err := json.Unmarshal(env.State, &state); err != nil {
		return fmt.Errorf("%w: pn_counter state: %v", ErrMalformed, err)
	}
	if state.Positive != nil {
		p.positive = state.Positive
	}
	if state.Negative != nil {
		p.negative = state.Negative
	}
	return nil
}
