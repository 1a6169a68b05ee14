package crdt

import (
	"sort"
	"strconv"
	"strings"
)

// Relation описывает причинно-следственное отношение двух векторных часов.
type Relation int

const (
	// Equal - часы совпадают покомпонентно
	Equal Relation = iota
	// Before - левые часы строго предшествуют правым
	Before
	// After - левые часы строго следуют за правыми
	After
	// Concurrent - ни одни часы не доминируют, настоящий конфликт
	Concurrent
)

// String returns the wire name of the relation.
func (r Relation) String() string {
	switch r {
	case Equal:
		return "EQUAL"
	case Before:
		return "BEFORE"
	case After:
		return "AFTER"
	case Concurrent:
		return "CONCURRENT"
	default:
		return "UNKNOWN"
	}
}

// VectorClock maps a device ID to the number of events that device produced.
// Missing keys are treated as zero. A device only increments its own entry.
//
// VectorClock values carry no locks; every operation except Increment
// returns a new clock and leaves the receiver untouched.
type VectorClock map[string]uint64

// NewVectorClock creates an empty clock.
func NewVectorClock() VectorClock {
	return make(VectorClock)
}

// Increment ticks the counter of deviceID and returns the new value.
func (vc *VectorClock) Increment(deviceID string) uint64 {
	if *vc == nil {
		*vc = make(VectorClock)
	}
	(*vc)[deviceID]++
	return (*vc)[deviceID]
}

// Get returns the counter for deviceID (zero if absent).
func (vc VectorClock) Get(deviceID string) uint64 {
	return vc[deviceID]
}

// Clone returns a deep copy of the clock. A nil clock clones to an empty one.
func (vc VectorClock) Clone() VectorClock {
	out := make(VectorClock, len(vc))
	for device, counter := range vc {
		out[device] = counter
	}
	return out
}

// Merge returns the pointwise maximum of both clocks over the union of keys.
func (vc VectorClock) Merge(other VectorClock) VectorClock {
	out := vc.Clone()
	for device, counter := range other {
		if counter > out[device] {
			out[device] = counter
		}
	}
	return out
}

// Compare determines how vc relates to other.
func (vc VectorClock) Compare(other VectorClock) Relation {
	less, greater := false, false

	for device, counter := range vc {
		switch theirs := other[device]; {
		case counter < theirs:
			less = true
		case counter > theirs:
			greater = true
		}
	}
	// Ключи, которых нет в vc, считаются нулями
	for device, theirs := range other {
		if _, ok := vc[device]; !ok && theirs > 0 {
			less = true
		}
	}

	switch {
	case less && greater:
		return Concurrent
	case less:
		return Before
	case greater:
		return After
	default:
		return Equal
	}
}

// HappensBefore reports whether vc strictly precedes other.
func (vc VectorClock) HappensBefore(other VectorClock) bool {
	return vc.Compare(other) == Before
}

// IsConcurrent reports whether neither clock dominates the other.
func (vc VectorClock) IsConcurrent(other VectorClock) bool {
	return vc.Compare(other) == Concurrent
}

// Equal reports whether both clocks are pointwise equal (zeros ignored).
func (vc VectorClock) Equal(other VectorClock) bool {
	return vc.Compare(other) == Equal
}

// String renders the clock with device IDs in sorted order.
func (vc VectorClock) String() string {
	devices := make([]string, 0, len(vc))
	for device := range vc {
		devices = append(devices, device)
	}
	sort.Strings(devices)

	var b strings.Builder
	b.WriteByte('{')
	for i, device := range devices {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(device)
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(vc[device], 10))
	}
	b.WriteByte('}')
	return b.String()
}

// ToPortable returns the wire form of the clock.
func (vc VectorClock) ToPortable() map[string]uint64 {
	return vc.Clone()
}

// VectorClockFromPortable restores a clock from its wire form.
func VectorClockFromPortable(m map[string]uint64) VectorClock {
	return VectorClock(m).Clone()
}
