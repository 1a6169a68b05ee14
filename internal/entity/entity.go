// Package entity composes CRDT primitives into the fleet records that are
// replicated between devices. Each composite carries a single vector clock
// that ticks once per mutation; its fields merge independently.
package entity

import (
	"encoding/json"
	"fmt"

	"github.com/iudanet/fleetsync/internal/crdt"
)

// Type names a composite entity on the wire.
type Type string

const (
	TypeVehicle   Type = "Vehicle"
	TypeWorkOrder Type = "WorkOrder"
	TypeStockMove Type = "StockMove"
)

// IsComposite reports whether entityType is handled by this package.
// Other entity types carry a bare CRDT primitive as payload.
func IsComposite(entityType string) bool {
	switch Type(entityType) {
	case TypeVehicle, TypeWorkOrder, TypeStockMove:
		return true
	default:
		return false
	}
}

// Entity is the closed set of composite fleet records.
type Entity interface {
	json.Marshaler

	EntityType() Type
	EntityID() string
	DeviceID() string
	Clock() crdt.VectorClock

	isEntity()
}

// New creates an empty entity of the given type owned by deviceID.
func New(entityType Type, id, deviceID string) (Entity, error) {
	switch entityType {
	case TypeVehicle:
		return NewVehicle(id, deviceID), nil
	case TypeWorkOrder:
		return NewWorkOrder(id, deviceID), nil
	case TypeStockMove:
		return NewStockMove(id, deviceID), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, entityType)
	}
}

// Merge combines two replicas of the same entity. The result is owned by a's device.
func Merge(a, b Entity) (Entity, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: merge %s with nil", ErrTypeMismatch, a.EntityType())
	}
	if a.EntityType() != b.EntityType() {
		return nil, fmt.Errorf("%w: %s with %s", ErrTypeMismatch, a.EntityType(), b.EntityType())
	}
	if a.EntityID() != b.EntityID() {
		return nil, fmt.Errorf("%w: %q with %q", ErrIDMismatch, a.EntityID(), b.EntityID())
	}

	switch x := a.(type) {
	case *Vehicle:
		return x.Merge(b.(*Vehicle)), nil
	case *WorkOrder:
		return x.Merge(b.(*WorkOrder)), nil
	case *StockMove:
		return x.Merge(b.(*StockMove)), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, a)
	}
}

// Encode serializes an entity into its portable JSON form.
func Encode(e Entity) ([]byte, error) {
	data, err := e.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s %s: %w", e.EntityType(), e.EntityID(), err)
	}
	return data, nil
}

// Decode restores an entity from its portable JSON form.
func Decode(data []byte) (Entity, error) {
	env, err := unmarshalEnvelope(data)
	if err != nil {
		return nil, err
	}

	switch env.EntityType {
	case TypeVehicle:
		return decodeVehicle(env)
	case TypeWorkOrder:
		return decodeWorkOrder(env)
	case TypeStockMove:
		return decodeStockMove(env)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.EntityType)
	}
}

type envelope struct {
	Clock      crdt.VectorClock           `json:"clock"`
	Fields     map[string]json.RawMessage `json:"fields"`
	EntityType Type                       `json:"entity_type"`
	EntityID   string                     `json:"entity_id"`
	DeviceID   string                     `json:"device_id"`
}

func marshalEnvelope(t Type, id, deviceID string, clock crdt.VectorClock, fields map[string]crdt.Value) ([]byte, error) {
	raw := make(map[string]json.RawMessage, len(fields))
	for name, v := range fields {
		data, err := crdt.Encode(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		raw[name] = data
	}
	if clock == nil {
		clock = crdt.NewVectorClock()
	}
	return json.Marshal(envelope{
		EntityType: t,
		EntityID:   id,
		DeviceID:   deviceID,
		Clock:      clock,
		Fields:     raw,
	})
}

func unmarshalEnvelope(data []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.EntityType == "" {
		return nil, fmt.Errorf("%w: missing entity_type", ErrMalformed)
	}
	if env.EntityID == "" {
		return nil, fmt.Errorf("%w: missing entity_id", ErrMalformed)
	}
	if env.DeviceID == "" {
		return nil, fmt.Errorf("%w: missing device_id", ErrMalformed)
	}
	if env.Clock == nil {
		env.Clock = crdt.NewVectorClock()
	}
	return &env, nil
}

// fieldDecoder decodes named fields of one envelope, defaulting absent
// fields to empty values owned by the envelope's device.
type fieldDecoder struct {
	env *envelope
	err error
}

func (d *fieldDecoder) value(name string, kind crdt.Kind) crdt.Value {
	if d.err != nil {
		return nil
	}
	raw, ok := d.env.Fields[name]
	if !ok {
		v, err := crdt.New(kind, d.env.DeviceID)
		d.err = err
		return v
	}
	v, err := crdt.Decode(raw)
	if err != nil {
		d.err = fmt.Errorf("field %s: %w", name, err)
		return nil
	}
	if v.Kind() != kind {
		d.err = fmt.Errorf("%w: field %s is %s, want %s", ErrMalformed, name, v.Kind(), kind)
		return nil
	}
	return v
}

func (d *fieldDecoder) lww(name string) *crdt.LWWRegister {
	v, _ := d.value(name, crdt.KindLWWRegister).(*crdt.LWWRegister)
	return v
}

func (d *fieldDecoder) orSet(name string) *crdt.ORSet {
	v, _ := d.value(name, crdt.KindORSet).(*crdt.ORSet)
	return v
}

func (d *fieldDecoder) pnCounter(name string) *crdt.PNCounter {
	v, _ := d.value(name, crdt.KindPNCounter).(*crdt.PNCounter)
	return v
}

// stringValue returns the register's value as a string, or "" when unset.
func stringValue(r *crdt.LWWRegister) string {
	s, _ := r.Get().(string)
	return s
}
