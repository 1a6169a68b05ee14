package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/iudanet/fleetsync/internal/models"
)

// OperationFor returns the mutation operation type that targets entityType.
func OperationFor(entityType Type) (models.OperationType, bool) {
	switch entityType {
	case TypeVehicle:
		return models.OpVehicleUpdate, true
	case TypeWorkOrder:
		return models.OpWorkOrderUpdate, true
	case TypeStockMove:
		return models.OpStockMove, true
	default:
		return "", false
	}
}

// Apply decodes payload as the mutation of opType and applies it to e at ts.
// The entity's clock ticks once on success; on error e is left unchanged.
func Apply(e Entity, opType models.OperationType, payload json.RawMessage, ts time.Time) error {
	expected, _ := OperationFor(e.EntityType())
	if opType != expected {
		return fmt.Errorf("%w: %s on %s", ErrUnsupportedOperation, opType, e.EntityType())
	}

	switch x := e.(type) {
	case *Vehicle:
		var u VehicleUpdate
		if err := decodeUpdate(payload, &u); err != nil {
			return err
		}
		if u.empty() {
			return ErrEmptyUpdate
		}
		x.Update(u, ts)
	case *WorkOrder:
		var u WorkOrderUpdate
		if err := decodeUpdate(payload, &u); err != nil {
			return err
		}
		if u.empty() {
			return ErrEmptyUpdate
		}
		x.Update(u, ts)
	case *StockMove:
		var u StockMoveUpdate
		if err := decodeUpdate(payload, &u); err != nil {
			return err
		}
		if u.empty() {
			return ErrEmptyUpdate
		}
		return x.Update(u, ts)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownType, e)
	}
	return nil
}

func decodeUpdate(payload json.RawMessage, dst any) error {
	if len(payload) == 0 {
		return ErrEmptyUpdate
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
