package memory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// wireRoleAgent is how agent turns are stored in the cache payload.
const wireRoleAgent = "model"

var errUnexpectedShape = errors.New("unexpected transcript shape")

type wirePart struct {
	Text string `json:"text"`
}

type wireTurn struct {
	Role  string     `json:"role"`
	Parts []wirePart `json:"parts,omitempty"`
	Text  string     `json:"text,omitempty"`
}

func (t Turn) MarshalJSON() ([]byte, error) {
	role := string(t.Role)
	if t.Role == RoleAgent {
		role = wireRoleAgent
	}
	return json.Marshal(wireTurn{Role: role, Parts: []wirePart{{Text: t.Text}}})
}

func (t *Turn) UnmarshalJSON(data []byte) error {
	var w wireTurn
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(w.Role)) {
	case wireRoleAgent, string(RoleAgent), "assistant", "bot":
		t.Role = RoleAgent
	default:
		t.Role = Role(w.Role)
	}
	if len(w.Parts) == 0 {
		t.Text = w.Text
		return nil
	}
	var b strings.Builder
	for _, p := range w.Parts {
		b.WriteString(p.Text)
	}
	t.Text = b.String()
	return nil
}

func encodeTranscript(t Transcript) ([]byte, error) {
	if t == nil {
		t = Transcript{}
	}
	return json.Marshal(t)
}

// decodeTranscript accepts a JSON list of turns, a single turn object (coerced to a
// one-element transcript) or either of those wrapped in a JSON string.
func decodeTranscript(raw []byte) (Transcript, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Transcript{}, nil
	}
	switch raw[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, fmt.Errorf("decode transcript list: %w", err)
		}
		out := make(Transcript, 0, len(elems))
		for _, elem := range elems {
			// null elements carry no turn.
			if string(bytes.TrimSpace(elem)) == "null" {
				continue
			}
			var turn Turn
			if err := json.Unmarshal(elem, &turn); err != nil {
				return nil, fmt.Errorf("decode transcript list: %w", err)
			}
			out = append(out, turn)
		}
		return out, nil
	case '{':
		var one Turn
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("decode transcript object: %w", err)
		}
		return Transcript{one}, nil
	case '"':
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("decode transcript string: %w", err)
		}
		inner = strings.TrimSpace(inner)
		if inner == "" || inner[0] == '"' {
			return nil, errUnexpectedShape
		}
		return decodeTranscript([]byte(inner))
	case 'n':
		if string(raw) == "null" {
			return Transcript{}, nil
		}
	}
	return nil, errUnexpectedShape
}
