package entity

import (
	"time"

	"github.com/iudanet/fleetsync/internal/crdt"
)

// Vehicle field names in the portable encoding.
const (
	FieldStatus         = "status"
	FieldCurrentMileage = "current_mileage"
	FieldModel          = "model"
	FieldManufacturer   = "manufacturer"
	FieldLocation       = "location"
)

// Vehicle is a replicated fleet vehicle. All fields are LWW registers.
type Vehicle struct {
	status         *crdt.LWWRegister
	currentMileage *crdt.LWWRegister
	model          *crdt.LWWRegister
	manufacturer   *crdt.LWWRegister
	location       *crdt.LWWRegister
	clock          crdt.VectorClock
	id             string
	deviceID       string
}

// VehicleUpdate is the mutation payload of a vehicle_update operation.
// Nil fields are left unchanged.
type VehicleUpdate struct {
	Status         *string  `json:"status,omitempty"`
	CurrentMileage *float64 `json:"current_mileage,omitempty"`
	Model          *string  `json:"model,omitempty"`
	Manufacturer   *string  `json:"manufacturer,omitempty"`
	Location       *string  `json:"location,omitempty"`
}

// NewVehicle creates an empty vehicle replica.
func NewVehicle(id, deviceID string) *Vehicle {
	return &Vehicle{
		id:             id,
		deviceID:       deviceID,
		clock:          crdt.NewVectorClock(),
		status:         crdt.NewLWWRegister(deviceID),
		currentMileage: crdt.NewLWWRegister(deviceID),
		model:          crdt.NewLWWRegister(deviceID),
		manufacturer:   crdt.NewLWWRegister(deviceID),
		location:       crdt.NewLWWRegister(deviceID),
	}
}

func (v *Vehicle) isEntity() {}

// EntityType returns TypeVehicle.
func (v *Vehicle) EntityType() Type { return TypeVehicle }

// EntityID returns the vehicle ID.
func (v *Vehicle) EntityID() string { return v.id }

// DeviceID returns the owning device.
func (v *Vehicle) DeviceID() string { return v.deviceID }

// Clock returns a copy of the entity clock.
func (v *Vehicle) Clock() crdt.VectorClock { return v.clock.Clone() }

func (v *Vehicle) Status() string       { return stringValue(v.status) }
func (v *Vehicle) Model() string        { return stringValue(v.model) }
func (v *Vehicle) Manufacturer() string { return stringValue(v.manufacturer) }
func (v *Vehicle) Location() string     { return stringValue(v.location) }

// CurrentMileage returns the odometer reading, 0 when never set.
func (v *Vehicle) CurrentMileage() float64 {
	m, _ := v.currentMileage.Get().(float64)
	return m
}

// UpdateStatus sets the status at ts.
func (v *Vehicle) UpdateStatus(status string, ts time.Time) {
	v.Update(VehicleUpdate{Status: &status}, ts)
}

// UpdateMileage sets the odometer reading at ts.
func (v *Vehicle) UpdateMileage(mileage float64, ts time.Time) {
	v.Update(VehicleUpdate{CurrentMileage: &mileage}, ts)
}

// Update applies every non-nil field of u as one mutation.
func (v *Vehicle) Update(u VehicleUpdate, ts time.Time) {
	if u.Status != nil {
		v.status.Set(*u.Status, ts)
	}
	if u.CurrentMileage != nil {
		v.currentMileage.Set(*u.CurrentMileage, ts)
	}
	if u.Model != nil {
		v.model.Set(*u.Model, ts)
	}
	if u.Manufacturer != nil {
		v.manufacturer.Set(*u.Manufacturer, ts)
	}
	if u.Location != nil {
		v.location.Set(*u.Location, ts)
	}
	v.clock.Increment(v.deviceID)
}

func (u VehicleUpdate) empty() bool {
	return u.Status == nil && u.CurrentMileage == nil && u.Model == nil &&
		u.Manufacturer == nil && u.Location == nil
}

// Merge returns a new vehicle with every field merged. Inputs are not modified.
func (v *Vehicle) Merge(other *Vehicle) *Vehicle {
	return &Vehicle{
		id:             v.id,
		deviceID:       v.deviceID,
		clock:          v.clock.Merge(other.clock),
		status:         v.status.Merge(other.status),
		currentMileage: v.currentMileage.Merge(other.currentMileage),
		model:          v.model.Merge(other.model),
		manufacturer:   v.manufacturer.Merge(other.manufacturer),
		location:       v.location.Merge(other.location),
	}
}

func (v *Vehicle) fields() map[string]crdt.Value {
	return map[string]crdt.Value{
		FieldStatus:         v.status,
		FieldCurrentMileage: v.currentMileage,
		FieldModel:          v.model,
		FieldManufacturer:   v.manufacturer,
		FieldLocation:       v.location,
	}
}

// MarshalJSON implements json.Marshaler.
func (v *Vehicle) MarshalJSON() ([]byte, error) {
	return marshalEnvelope(TypeVehicle, v.id, v.deviceID, v.clock, v.fields())
}

func decodeVehicle(env *envelope) (*Vehicle, error) {
	d := &fieldDecoder{env: env}
	v := &Vehicle{
		id:             env.EntityID,
		deviceID:       env.DeviceID,
		clock:          env.Clock,
		status:         d.lww(FieldStatus),
		currentMileage: d.lww(FieldCurrentMileage),
		model:          d.lww(FieldModel),
		manufacturer:   d.lww(FieldManufacturer),
		location:       d.lww(FieldLocation),
	}
	if d.err != nil {
		return nil, d.err
	}
	return v, nil
}
