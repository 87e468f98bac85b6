package tools

import (
	"errors"
	"testing"

	"github.com/anvilmcp/anvil/internal/schema"
)

func addDef(t *testing.T) *schema.Definition {
	t.Helper()
	def := schema.NewDefinition("add")
	if err := def.AddParameter("x", schema.TypeNumber, "first operand", true); err != nil {
		t.Fatal(err)
	}
	if err := def.AddParameter("y", schema.TypeNumber, "second operand", true); err != nil {
		t.Fatal(err)
	}
	if err := def.AddParameter("label", schema.TypeString, "optional label", false); err != nil {
		t.Fatal(err)
	}
	return def
}

func TestBindArgumentsMissingRequired(t *testing.T) {
	_, err := BindArguments(addDef(t), map[string]any{"x": 5.0})
	if err == nil {
		t.Fatal("expected error for missing required argument")
	}

	var missing *MissingArgumentError
	if !errors.As(err, &missing) {
		t.Fatalf("error type = %T, want *MissingArgumentError", err)
	}
	if missing.Param != "y" {
		t.Errorf("missing param = %q, want %q", missing.Param, "y")
	}
	if got := err.Error(); got != "missing required argument: y" {
		t.Errorf("error message = %q", got)
	}
}

func TestBindArgumentsDropsUnknownKeys(t *testing.T) {
	args, err := BindArguments(addDef(t), map[string]any{
		"x":      5.0,
		"y":      3.0,
		"bogus":  true,
		"extra2": "ignored",
	})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if _, ok := args["bogus"]; ok {
		t.Error("unknown key survived binding")
	}
	if len(args) != 2 {
		t.Errorf("bound %d keys, want 2", len(args))
	}
}

func TestBindArgumentsOptionalMayBeAbsent(t *testing.T) {
	args, err := BindArguments(addDef(t), map[string]any{"x": 1.0, "y": 2.0})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if _, ok := args["label"]; ok {
		t.Error("absent optional key materialized")
	}
}

func TestArgsAccessors(t *testing.T) {
	args := Args{
		"name":    "anvil",
		"count":   float64(42),
		"enabled": true,
	}

	if v, ok := args.String("name"); !ok || v != "anvil" {
		t.Errorf("String(name) = %q, %v", v, ok)
	}
	if _, ok := args.String("count"); ok {
		t.Error("String(count) should fail for non-string value")
	}
	if v := args.StringOr("missing", "fallback"); v != "fallback" {
		t.Errorf("StringOr default = %q", v)
	}

	if v, ok := args.Float("count"); !ok || v != 42 {
		t.Errorf("Float(count) = %v, %v", v, ok)
	}
	if v, ok := args.Int("count"); !ok || v != 42 {
		t.Errorf("Int(count) = %v, %v", v, ok)
	}
	if v := args.IntOr("missing", 7); v != 7 {
		t.Errorf("IntOr default = %d", v)
	}

	if v, ok := args.Bool("enabled"); !ok || !v {
		t.Errorf("Bool(enabled) = %v, %v", v, ok)
	}
	if v := args.BoolOr("missing", true); !v {
		t.Error("BoolOr default not applied")
	}
}

func TestArgsBindIntoStruct(t *testing.T) {
	type addReq struct {
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Label string  `json:"label"`
	}

	args := Args{"x": 5.0, "y": 3.0, "label": "sum"}
	var req addReq
	if err := args.Bind(&req); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if req.X != 5 || req.Y != 3 || req.Label != "sum" {
		t.Errorf("bound struct = %+v", req)
	}
}
