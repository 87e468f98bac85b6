package schema

import (
	"bytes"
	"encoding/json"
)

// WireTool is the tools/list entry shape for one Definition.
type WireTool struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	InputSchema *InputSchema `json:"inputSchema"`
}

// InputSchema marshals to {"type":"object","properties":{...},"required":[...]}.
// Go maps serialize in key order, not insertion order, so the properties
// object is written by hand to keep declaration order on the wire.
type InputSchema struct {
	props []Prop
}

func (s *InputSchema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"object","properties":{`)

	for i, p := range s.props {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		}{Type: string(p.Type), Description: p.Description})
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}

	buf.WriteString(`},"required":`)

	required := make([]string, 0, len(s.props))
	for _, p := range s.props {
		if p.Required {
			required = append(required, p.Name)
		}
	}
	req, err := json.Marshal(required)
	if err != nil {
		return nil, err
	}
	buf.Write(req)
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// WireSchema produces the wire representation of the Definition. Pure: no
// side effects, no I/O, safe to call repeatedly.
func (d *Definition) WireSchema() *WireTool {
	return &WireTool{
		Name:        d.name,
		Description: d.description,
		InputSchema: &InputSchema{props: d.Params()},
	}
}
