package crdt

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Tag uniquely identifies a single add operation of an OR-Set element.
type Tag struct {
	ID       string
	DeviceID string
}

// MarshalJSON encodes the tag as a two-element array [id, device_id].
func (t Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{t.ID, t.DeviceID})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tag) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	t.ID, t.DeviceID = pair[0], pair[1]
	return nil
}

type tagSet map[Tag]struct{}

// ORSet is an Observed-Remove set of string elements.
//
// Every Add attaches a fresh tag; Remove tombstones only the tags the
// replica has observed at that moment, so a concurrent add that was never
// observed by the remover survives the merge.
type ORSet struct {
	adds       map[string]tagSet
	tombstones map[string]tagSet
	clock      VectorClock
	deviceID   string
}

// NewORSet creates an empty set owned by deviceID.
func NewORSet(deviceID string) *ORSet {
	return &ORSet{
		deviceID:   deviceID,
		clock:      NewVectorClock(),
		adds:       make(map[string]tagSet),
		tombstones: make(map[string]tagSet),
	}
}

func (s *ORSet) isValue() {}

// Kind returns KindORSet.
func (s *ORSet) Kind() Kind { return KindORSet }

// DeviceID returns the owning device.
func (s *ORSet) DeviceID() string { return s.deviceID }

// Clock returns a copy of the set's clock.
func (s *ORSet) Clock() VectorClock { return s.clock.Clone() }

// Add inserts element under a new unique tag.
func (s *ORSet) Add(element string) {
	s.ensure()
	tag := Tag{ID: uuid.NewString(), DeviceID: s.deviceID}
	if s.adds[element] == nil {
		s.adds[element] = make(tagSet)
	}
	s.adds[element][tag] = struct{}{}
	s.clock.Increment(s.deviceID)
}

// Remove tombstones every tag of element currently observed by this replica.
func (s *ORSet) Remove(element string) {
	s.ensure()
	if tags, ok := s.adds[element]; ok {
		if s.tombstones[element] == nil {
			s.tombstones[element] = make(tagSet)
		}
		for tag := range tags {
			s.tombstones[element][tag] = struct{}{}
		}
		delete(s.adds, element)
	}
	s.clock.Increment(s.deviceID)
}

// Contains reports whether element has at least one live tag.
func (s *ORSet) Contains(element string) bool {
	for tag := range s.adds[element] {
		if _, removed := s.tombstones[element][tag]; !removed {
			return true
		}
	}
	return false
}

// Elements returns the live elements in sorted order.
func (s *ORSet) Elements() []string {
	out := make([]string, 0, len(s.adds))
	for element := range s.adds {
		if s.Contains(element) {
			out = append(out, element)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of live elements.
func (s *ORSet) Len() int {
	return len(s.Elements())
}

// Merge returns the union of both replicas' tags and tombstones with fully
// tombstoned elements pruned. Neither input is modified.
func (s *ORSet) Merge(other *ORSet) *ORSet {
	out := NewORSet(s.deviceID)
	out.clock = s.clock.Merge(other.clock)

	unionInto(out.adds, s.adds)
	unionInto(out.adds, other.adds)
	unionInto(out.tombstones, s.tombstones)
	unionInto(out.tombstones, other.tombstones)

	for element := range out.adds {
		if !out.Contains(element) {
			delete(out.adds, element)
		}
	}
	return out
}

func (s *ORSet) ensure() {
	if s.adds == nil {
		s.adds = make(map[string]tagSet)
	}
	if s.tombstones == nil {
		s.tombstones = make(map[string]tagSet)
	}
}

func unionInto(dst, src map[string]tagSet) {
	for element, tags := range src {
		if dst[element] == nil {
			dst[element] = make(tagSet, len(tags))
		}
		for tag := range tags {
			dst[element][tag] = struct{}{}
		}
	}
}

func sortedTags(tags tagSet) []Tag {
	out := make([]Tag, 0, len(tags))
	for tag := range tags {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].DeviceID < out[j].DeviceID
	})
	return out
}

type orSetTombstone struct {
	Element  string `json:"element"`
	UniqueID string `json:"unique_id"`
	DeviceID string `json:"device_id"`
}

type orSetState struct {
	Elements   map[string][]Tag `json:"elements"`
	Tombstones []orSetTombstone `json:"tombstones"`
}

// MarshalJSON implements json.Marshaler.
func (s *ORSet) MarshalJSON() ([]byte, error) {
	state := orSetState{
		Elements:   make(map[string][]Tag, len(s.adds)),
		Tombstones: []orSetTombstone{},
	}
	for element, tags := range s.adds {
		state.Elements[element] = sortedTags(tags)
	}

	elements := make([]string, 0, len(s.tombstones))
	for element := range s.tombstones {
		elements = append(elements, element)
	}
	sort.Strings(elements)
	for _, element := range elements {
		for _, tag := range sortedTags(s.tombstones[element]) {
			state.Tombstones = append(state.Tombstones, orSetTombstone{
				Element:  element,
				UniqueID: tag.ID,
				DeviceID: tag.DeviceID,
			})
		}
	}

	return marshalEnvelope(KindORSet, s.deviceID, s.clock, state)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *ORSet) UnmarshalJSON(data []byte) error {
	env, err := unmarshalEnvelope(data, KindORSet)
	if err != nil {
		return err
	}

	*s = *NewORSet(env.DeviceID)
	s.clock = env.Clock
	if isNull(env.State) {
		return nil
	}

	var state orSetState
	if err := json.Unmarshal(env.State, &state); err != nil {
		return fmt.Errorf("%w: or_set state: %v", ErrMalformed, err)
	}

	for element, tags := range state.Elements {
		set := make(tagSet, len(tags))
		for _, tag := range tags {
			set[tag] = struct{}{}
		}
		s.adds[element] = set
	}
	for _, ts := range state.Tombstones {
		if s.tombstones[ts.Element] == nil {
			s.tombstones[ts.Element] = make(tagSet)
		}
		s.tombstones[ts.Element][Tag{ID: ts.UniqueID, DeviceID: ts.DeviceID}] = struct{}{}
	}
	return nil
}
