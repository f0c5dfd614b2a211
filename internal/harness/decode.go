package harness

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/yartsul/action"
)

// encodePayload converts a scenario payload to JSON. A nil payload encodes
// to nil.
func encodePayload(payload any) (json.RawMessage, error) {
	if payload == nil {
		return nil, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return raw, nil
}

// decodeAction rebuilds an action from its tag and JSON payload. Registered
// tags get a typed payload; anything else is dispatched untyped.
func decodeAction(reg *action.Registry, tag string, raw json.RawMessage) (action.Action, error) {
	if _, ok := reg.Lookup(tag); ok {
		return reg.Decode(tag, raw)
	}

	a := action.Action{Tag: tag}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &a.Payload); err != nil {
			return action.Action{}, fmt.Errorf("decode %q: %w", tag, err)
		}
	}
	return a, nil
}

// toGeneric decodes JSON into plain maps, slices and float64 numbers so
// states and YAML expectations compare on equal terms.
func toGeneric(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
