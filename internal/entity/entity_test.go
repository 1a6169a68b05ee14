package entity

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fleetsync/internal/crdt"
	"github.com/iudanet/fleetsync/internal/models"
)

var t0 = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return t0.Add(time.Duration(seconds) * time.Second)
}

func TestVehicle_StatusConvergence(t *testing.T) {
	// Устройство A ставит in_service в t=10, B независимо ставит maintenance в t=11
	a := NewVehicle("veh-1", "device-a")
	a.UpdateStatus("in_service", at(10))
	b := NewVehicle("veh-1", "device-b")
	b.UpdateStatus("maintenance", at(11))

	assert.Equal(t, crdt.Concurrent, a.Clock().Compare(b.Clock()))

	replicaA := a.Merge(b)
	replicaB := b.Merge(a)

	assert.Equal(t, "maintenance", replicaA.Status())
	assert.Equal(t, "maintenance", replicaB.Status())
	assert.True(t, replicaA.Clock().Equal(replicaB.Clock()))
}

func TestVehicle_FieldsMergeIndependently(t *testing.T) {
	a := NewVehicle("veh-1", "device-a")
	a.UpdateMileage(120500, at(5))
	b := NewVehicle("veh-1", "device-b")
	b.Update(VehicleUpdate{Location: ptr("depot-north")}, at(3))

	merged := a.Merge(b)

	assert.Equal(t, 120500.0, merged.CurrentMileage())
	assert.Equal(t, "depot-north", merged.Location())
	assert.Equal(t, crdt.VectorClock{"device-a": 1, "device-b": 1}, merged.Clock())
}

func TestVehicle_UpdateTicksClockOnce(t *testing.T) {
	v := NewVehicle("veh-1", "device-a")

	v.Update(VehicleUpdate{
		Status:       ptr("idle"),
		Model:        ptr("Actros"),
		Manufacturer: ptr("Mercedes-Benz"),
	}, at(1))

	assert.Equal(t, uint64(1), v.Clock().Get("device-a"))
	assert.Equal(t, "idle", v.Status())
	assert.Equal(t, "Actros", v.Model())
	assert.Equal(t, "Mercedes-Benz", v.Manufacturer())
}

func TestWorkOrder_Tasks(t *testing.T) {
	a := NewWorkOrder("wo-1", "device-a")
	a.AddTask("task-oil", at(1))
	a.AddTask("task-brakes", at(2))

	b := NewWorkOrder("wo-1", "device-b").Merge(a)
	b.RemoveTask("task-oil", at(3))
	a.AddTask("task-lights", at(4))

	merged := a.Merge(b)
	assert.Equal(t, []string{"task-brakes", "task-lights"}, merged.Tasks())
	assert.False(t, merged.HasTask("task-oil"))
}

func TestWorkOrder_TimesAndStatus(t *testing.T) {
	w := NewWorkOrder("wo-1", "device-a")
	start := time.Date(2025, 6, 1, 9, 30, 0, 0, time.FixedZone("CET", 3600))

	w.Update(WorkOrderUpdate{
		Status:      ptr("in_progress"),
		Priority:    ptr("high"),
		ActualStart: &start,
	}, at(1))

	got, ok := w.ActualStart()
	require.True(t, ok)
	assert.True(t, got.Equal(start))
	_, ok = w.ActualEnd()
	assert.False(t, ok)
	assert.Equal(t, "in_progress", w.Status())
	assert.Equal(t, "high", w.Priority())
}

func TestStockMove_ConcurrentAdjustmentsAllCount(t *testing.T) {
	a := NewStockMove("sm-1", "device-a")
	require.NoError(t, a.Update(StockMoveUpdate{QuantityDelta: 10, PartNo: ptr("P-100")}, at(1)))

	b := NewStockMove("sm-1", "device-b").Merge(a)
	require.NoError(t, b.AdjustQuantity(-3, at(2)))
	require.NoError(t, a.AdjustQuantity(5, at(2)))

	assert.Equal(t, int64(12), a.Merge(b).Quantity())
	assert.Equal(t, int64(12), b.Merge(a).Quantity())
	assert.Equal(t, "P-100", b.Merge(a).PartNo())
}

func TestStockMove_RejectsUnrepresentableDelta(t *testing.T) {
	s := NewStockMove("sm-1", "device-a")
	require.NoError(t, s.AdjustQuantity(7, at(1)))

	err := Apply(s, models.OpStockMove, json.RawMessage(`{"quantity_delta":-9223372036854775808,"part_no":"P-1"}`), at(2))
	require.ErrorIs(t, err, ErrOutOfRange)

	assert.Equal(t, int64(7), s.Quantity())
	assert.Empty(t, s.PartNo())
	assert.Equal(t, uint64(1), s.Clock().Get("device-a"), "rejected delta must not tick the clock")

	require.NoError(t, s.AdjustQuantity(math.MinInt64+1, at(3)))
	assert.Equal(t, int64(7)+math.MinInt64+1, s.Quantity())
}

func TestMerge_Errors(t *testing.T) {
	_, err := Merge(NewVehicle("v1", "a"), NewWorkOrder("v1", "a"))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Merge(NewVehicle("v1", "a"), NewVehicle("v2", "a"))
	assert.ErrorIs(t, err, ErrIDMismatch)

	_, err = Merge(NewVehicle("v1", "a"), nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestMerge_Dispatch(t *testing.T) {
	a := NewStockMove("sm-1", "device-a")
	require.NoError(t, a.AdjustQuantity(4, at(1)))
	b := NewStockMove("sm-1", "device-b")
	require.NoError(t, b.AdjustQuantity(6, at(1)))

	merged, err := Merge(a, b)
	require.NoError(t, err)

	sm, ok := merged.(*StockMove)
	require.True(t, ok)
	assert.Equal(t, int64(10), sm.Quantity())
	assert.Equal(t, "device-a", sm.DeviceID())
}

func TestNew(t *testing.T) {
	for _, typ := range []Type{TypeVehicle, TypeWorkOrder, TypeStockMove} {
		e, err := New(typ, "id-1", "device-a")
		require.NoError(t, err)
		assert.Equal(t, typ, e.EntityType())
		assert.Equal(t, "id-1", e.EntityID())
		assert.True(t, IsComposite(string(typ)))
	}

	_, err := New("Driver", "id-1", "device-a")
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.False(t, IsComposite("Driver"))
}

func TestCodec_RoundTrip(t *testing.T) {
	v := NewVehicle("veh-1", "device-a")
	v.Update(VehicleUpdate{Status: ptr("idle"), CurrentMileage: ptrF(1000.5)}, at(1))

	w := NewWorkOrder("wo-1", "device-b")
	w.AddTask("t1", at(1))
	w.AddTask("t2", at(2))
	w.RemoveTask("t1", at(3))
	w.UpdateStatus("open", at(4))

	s := NewStockMove("sm-1", "device-c")
	require.NoError(t, s.Update(StockMoveUpdate{QuantityDelta: -4, MoveType: ptr("issue"), LocationID: ptr("bin-7")}, at(1)))

	for _, e := range []Entity{v, w, s} {
		t.Run(string(e.EntityType()), func(t *testing.T) {
			data, err := Encode(e)
			require.NoError(t, err)

			decoded, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, e, decoded)
		})
	}
}

func TestDecode_MissingFieldsDefaultToEmpty(t *testing.T) {
	data := []byte(`{"entity_type":"Vehicle","entity_id":"veh-1","device_id":"device-a","clock":{"device-a":2},"fields":{}}`)

	e, err := Decode(data)
	require.NoError(t, err)

	v, ok := e.(*Vehicle)
	require.True(t, ok)
	assert.Equal(t, "", v.Status())
	assert.Equal(t, uint64(2), v.Clock().Get("device-a"))
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		expected error
		name     string
		data     string
	}{
		{
			name:     "not json",
			data:     `[`,
			expected: ErrMalformed,
		},
		{
			name:     "missing entity type",
			data:     `{"entity_id":"x","device_id":"a"}`,
			expected: ErrMalformed,
		},
		{
			name:     "missing entity id",
			data:     `{"entity_type":"Vehicle","device_id":"a"}`,
			expected: ErrMalformed,
		},
		{
			name:     "unknown entity type",
			data:     `{"entity_type":"Driver","entity_id":"x","device_id":"a"}`,
			expected: ErrUnknownType,
		},
		{
			name:     "field of wrong kind",
			data:     `{"entity_type":"StockMove","entity_id":"x","device_id":"a","fields":{"quantity":{"type":"g_counter","device_id":"a","clock":{},"state":{"counts":{}}}}}`,
			expected: ErrMalformed,
		},
		{
			name:     "field with unknown crdt type",
			data:     `{"entity_type":"WorkOrder","entity_id":"x","device_id":"a","fields":{"tasks":{"type":"rga","device_id":"a"}}}`,
			expected: crdt.ErrUnknownType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func ptr(s string) *string { return &s }

func ptrF(f float64) *float64 { return &f }
