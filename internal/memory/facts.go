package memory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotObject is returned when fact JSON is valid but not an object.
var ErrNotObject = errors.New("facts payload is not a JSON object")

// FactsFromJSON decodes a JSON object into a FactMap. String values are kept as-is,
// other values keep their compact JSON text, and nulls are dropped.
func FactsFromJSON(raw []byte) (FactMap, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if obj == nil {
		return nil, ErrNotObject
	}

	out := make(FactMap, len(obj))
	for k, v := range obj {
		v = bytes.TrimSpace(v)
		if len(v) == 0 || string(v) == "null" {
			continue
		}
		if v[0] == '"' {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, fmt.Errorf("decode fact %q: %w", k, err)
			}
			out[k] = s
			continue
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, v); err != nil {
			return nil, fmt.Errorf("decode fact %q: %w", k, err)
		}
		out[k] = compact.String()
	}
	return out, nil
}
