package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fleetsync/internal/models"
)

func TestApply(t *testing.T) {
	tests := []struct {
		check   func(t *testing.T, e Entity)
		entity  func() Entity
		name    string
		opType  models.OperationType
		payload string
	}{
		{
			name:    "vehicle update",
			entity:  func() Entity { return NewVehicle("veh-1", "device-a") },
			opType:  models.OpVehicleUpdate,
			payload: `{"status":"in_service","current_mileage":4200}`,
			check: func(t *testing.T, e Entity) {
				v := e.(*Vehicle)
				assert.Equal(t, "in_service", v.Status())
				assert.Equal(t, 4200.0, v.CurrentMileage())
			},
		},
		{
			name:    "work order update",
			entity:  func() Entity { return NewWorkOrder("wo-1", "device-a") },
			opType:  models.OpWorkOrderUpdate,
			payload: `{"status":"closed","add_tasks":["t1","t2"],"actual_end":"2025-06-01T10:00:00Z"}`,
			check: func(t *testing.T, e Entity) {
				w := e.(*WorkOrder)
				assert.Equal(t, "closed", w.Status())
				assert.Equal(t, []string{"t1", "t2"}, w.Tasks())
				_, ok := w.ActualEnd()
				assert.True(t, ok)
			},
		},
		{
			name:    "stock move",
			entity:  func() Entity { return NewStockMove("sm-1", "device-a") },
			opType:  models.OpStockMove,
			payload: `{"quantity_delta":-2,"move_type":"issue"}`,
			check: func(t *testing.T, e Entity) {
				s := e.(*StockMove)
				assert.Equal(t, int64(-2), s.Quantity())
				assert.Equal(t, "issue", s.MoveType())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.entity()

			err := Apply(e, tt.opType, json.RawMessage(tt.payload), at(1))
			require.NoError(t, err)

			tt.check(t, e)
			assert.Equal(t, uint64(1), e.Clock().Get("device-a"))
		})
	}
}

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		expected error
		name     string
		opType   models.OperationType
		payload  string
	}{
		{
			name:     "operation for another entity",
			opType:   models.OpStockMove,
			payload:  `{"quantity_delta":1}`,
			expected: ErrUnsupportedOperation,
		},
		{
			name:     "delete is not a mutation",
			opType:   models.OpDelete,
			payload:  `{}`,
			expected: ErrUnsupportedOperation,
		},
		{
			name:     "empty payload",
			opType:   models.OpVehicleUpdate,
			payload:  ``,
			expected: ErrEmptyUpdate,
		},
		{
			name:     "no fields",
			opType:   models.OpVehicleUpdate,
			payload:  `{}`,
			expected: ErrEmptyUpdate,
		},
		{
			name:     "invalid json",
			opType:   models.OpVehicleUpdate,
			payload:  `{"status":`,
			expected: ErrMalformed,
		},
		{
			name:     "wrong field type",
			opType:   models.OpVehicleUpdate,
			payload:  `{"current_mileage":"far"}`,
			expected: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVehicle("veh-1", "device-a")

			err := Apply(v, tt.opType, json.RawMessage(tt.payload), at(1))

			assert.ErrorIs(t, err, tt.expected)
			assert.Empty(t, v.Clock(), "failed apply must not tick the clock")
		})
	}
}

func TestOperationFor(t *testing.T) {
	op, ok := OperationFor(TypeWorkOrder)
	assert.True(t, ok)
	assert.Equal(t, models.OpWorkOrderUpdate, op)

	_, ok = OperationFor("Driver")
	assert.False(t, ok)
}
