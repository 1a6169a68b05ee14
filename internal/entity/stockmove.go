package entity

import (
	"fmt"
	"math"
	"time"

	"github.com/iudanet/fleetsync/internal/crdt"
)

const (
	FieldQuantity   = "quantity"
	FieldMoveType   = "move_type"
	FieldPartNo     = "part_no"
	FieldLocationID = "location_id"
)

// StockMove is a replicated inventory movement. Quantity is a PN-Counter so
// concurrent adjustments from several devices all count.
type StockMove struct {
	quantity   *crdt.PNCounter
	moveType   *crdt.LWWRegister
	partNo     *crdt.LWWRegister
	locationID *crdt.LWWRegister
	clock      crdt.VectorClock
	id         string
	deviceID   string
}

// StockMoveUpdate is the mutation payload of a stock_move operation.
type StockMoveUpdate struct {
	MoveType      *string `json:"move_type,omitempty"`
	PartNo        *string `json:"part_no,omitempty"`
	LocationID    *string `json:"location_id,omitempty"`
	QuantityDelta int64   `json:"quantity_delta,omitempty"`
}

// NewStockMove creates an empty stock move replica.
func NewStockMove(id, deviceID string) *StockMove {
	return &StockMove{
		id:         id,
		deviceID:   deviceID,
		clock:      crdt.NewVectorClock(),
		quantity:   crdt.NewPNCounter(deviceID),
		moveType:   crdt.NewLWWRegister(deviceID),
		partNo:     crdt.NewLWWRegister(deviceID),
		locationID: crdt.NewLWWRegister(deviceID),
	}
}

func (s *StockMove) isEntity() {}

// EntityType returns TypeStockMove.
func (s *StockMove) EntityType() Type { return TypeStockMove }

// EntityID returns the stock move ID.
func (s *StockMove) EntityID() string { return s.id }

// DeviceID returns the owning device.
func (s *StockMove) DeviceID() string { return s.deviceID }

// Clock returns a copy of the entity clock.
func (s *StockMove) Clock() crdt.VectorClock { return s.clock.Clone() }

func (s *StockMove) Quantity() int64    { return s.quantity.Value() }
func (s *StockMove) MoveType() string   { return stringValue(s.moveType) }
func (s *StockMove) PartNo() string     { return stringValue(s.partNo) }
func (s *StockMove) LocationID() string { return stringValue(s.locationID) }

// AdjustQuantity increments for positive delta and decrements for negative.
func (s *StockMove) AdjustQuantity(delta int64, ts time.Time) error {
	return s.Update(StockMoveUpdate{QuantityDelta: delta}, ts)
}

// Update applies u as one mutation. On error s is left unchanged.
func (s *StockMove) Update(u StockMoveUpdate, ts time.Time) error {
	// -MinInt64 не помещается в int64
	if u.QuantityDelta == math.MinInt64 {
		return fmt.Errorf("%w: quantity_delta %d", ErrOutOfRange, u.QuantityDelta)
	}
	if u.QuantityDelta != 0 {
		if err := s.quantity.Add(u.QuantityDelta); err != nil {
			return err
		}
	}
	if u.MoveType != nil {
		s.moveType.Set(*u.MoveType, ts)
	}
	if u.PartNo != nil {
		s.partNo.Set(*u.PartNo, ts)
	}
	if u.LocationID != nil {
		s.locationID.Set(*u.LocationID, ts)
	}
	s.clock.Increment(s.deviceID)
	return nil
}

func (u StockMoveUpdate) empty() bool {
	return u.QuantityDelta == 0 && u.MoveType == nil && u.PartNo == nil && u.LocationID == nil
}

// Merge returns a new stock move with every field merged.
func (s *StockMove) Merge(other *StockMove) *StockMove {
	return &StockMove{
		id:         s.id,
		deviceID:   s.deviceID,
		clock:      s.clock.Merge(other.clock),
		quantity:   s.quantity.Merge(other.quantity),
		moveType:   s.moveType.Merge(other.moveType),
		partNo:     s.partNo.Merge(other.partNo),
		locationID: s.locationID.Merge(other.locationID),
	}
}

func (s *StockMove) fields() map[string]crdt.Value {
	return map[string]crdt.Value{
		FieldQuantity:   s.quantity,
		FieldMoveType:   s.moveType,
		FieldPartNo:     s.partNo,
		FieldLocationID: s.locationID,
	}
}

// MarshalJSON implements json.Marshaler.
func (s *StockMove) MarshalJSON() ([]byte, error) {
	return marshalEnvelope(TypeStockMove, s.id, s.deviceID, s.clock, s.fields())
}

func decodeStockMove(env *envelope) (*StockMove, error) {
	d := &fieldDecoder{env: env}
	s := &StockMove{
		id:         env.EntityID,
		deviceID:   env.DeviceID,
		clock:      env.Clock,
		quantity:   d.pnCounter(FieldQuantity),
		moveType:   d.lww(FieldMoveType),
		partNo:     d.lww(FieldPartNo),
		locationID: d.lww(FieldLocationID),
	}
	if d.err != nil {
		return nil, d.err
	}
	return s, nil
}
