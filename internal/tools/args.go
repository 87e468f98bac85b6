package tools

import (
	"encoding/json"

	"github.com/anvilmcp/anvil/internal/schema"
)

// Args is the bound argument mapping a tool is invoked with. Values carry
// the types produced by JSON decoding (string, float64, bool, ...).
type Args map[string]any

// Bind decodes the arguments into a typed request struct via JSON tags.
func (a Args) Bind(v any) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (a Args) String(key string) (string, bool) {
	s, ok := a[key].(string)
	return s, ok
}

func (a Args) StringOr(key, fallback string) string {
	if s, ok := a.String(key); ok {
		return s
	}
	return fallback
}

func (a Args) Float(key string) (float64, bool) {
	return toFloat(a[key])
}

func (a Args) Int(key string) (int, bool) {
	f, ok := toFloat(a[key])
	if !ok {
		return 0, false
	}
	return int(f), true
}

func (a Args) IntOr(key string, fallback int) int {
	if n, ok := a.Int(key); ok {
		return n
	}
	return fallback
}

func (a Args) Bool(key string) (bool, bool) {
	b, ok := a[key].(bool)
	return b, ok
}

func (a Args) BoolOr(key string, fallback bool) bool {
	if b, ok := a.Bool(key); ok {
		return b
	}
	return fallback
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// BindArguments maps an incoming arguments object onto a Definition's
// declared parameters: required names must be present, unknown keys are
// dropped, optional absences stay absent.
func BindArguments(def *schema.Definition, raw map[string]any) (Args, error) {
	bound := make(Args, len(raw))
	for _, p := range def.Params() {
		v, ok := raw[p.Name]
		if !ok {
			if p.Required {
				return nil, &MissingArgumentError{Tool: def.Name(), Param: p.Name}
			}
			continue
		}
		bound[p.Name] = v
	}
	return bound, nil
}
