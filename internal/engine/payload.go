package engine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/iudanet/fleetsync/internal/crdt"
	"github.com/iudanet/fleetsync/internal/entity"
)

func emptyPayload(p json.RawMessage) bool {
	p = bytes.TrimSpace(p)
	return len(p) == 0 || bytes.Equal(p, []byte("null"))
}

// checkPayload verifies that p decodes as the CRDT of entityType/entityID.
// Composite entity types carry an entity envelope, others a bare primitive.
func checkPayload(entityType, entityID string, p json.RawMessage) error {
	if !entity.IsComposite(entityType) {
		_, err := crdt.Decode(p)
		return err
	}

	e, err := entity.Decode(p)
	if err != nil {
		return err
	}
	if string(e.EntityType()) != entityType || e.EntityID() != entityID {
		return fmt.Errorf("%w: payload is %s/%s", ErrPayloadMismatch, e.EntityType(), e.EntityID())
	}
	return nil
}

// mergePayloads merges two portable CRDT payloads of the same entity.
// The result is owned by local's device. An empty side yields the other.
func mergePayloads(entityType string, local, remote json.RawMessage) (json.RawMessage, error) {
	switch {
	case emptyPayload(local):
		return remote, nil
	case emptyPayload(remote):
		return local, nil
	}

	if entity.IsComposite(entityType) {
		a, err := entity.Decode(local)
		if err != nil {
			return nil, fmt.Errorf("local payload: %w", err)
		}
		b, err := entity.Decode(remote)
		if err != nil {
			return nil, fmt.Errorf("remote payload: %w", err)
		}
		merged, err := entity.Merge(a, b)
		if err != nil {
			return nil, err
		}
		return entity.Encode(merged)
	}

	a, err := crdt.Decode(local)
	if err != nil {
		return nil, fmt.Errorf("local payload: %w", err)
	}
	b, err := crdt.Decode(remote)
	if err != nil {
		return nil, fmt.Errorf("remote payload: %w", err)
	}
	merged, err := crdt.Merge(a, b)
	if err != nil {
		return nil, err
	}
	return crdt.Encode(merged)
}

// payloadOf converts a resolved value back into a portable payload.
func payloadOf(v any) (json.RawMessage, error) {
	switch x := v.(type) {
	case json.RawMessage:
		return x, nil
	case []byte:
		return json.RawMessage(x), nil
	case nil:
		return nil, nil
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return nil, fmt.Errorf("encode resolved value: %w", err)
		}
		return data, nil
	}
}
