package tools

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/anvilmcp/anvil/internal/schema"
)

// InvokeFunc is a tool's behavior.
type InvokeFunc func(ctx context.Context, args Args) (any, error)

// Invoker is the minimal behavior contract for Define.
type Invoker interface {
	Invoke(ctx context.Context, args Args) (any, error)
}

// Builder declares a tool's identity and parameter contract, then
// materializes a runnable instance with Build. Declaration errors stick to
// the builder and surface from Build, so chains stay unconditional.
type Builder struct {
	def *schema.Definition
	fn  InvokeFunc
	err error
}

func NewBuilder() *Builder {
	return &Builder{def: schema.NewDefinition("")}
}

// Define seeds a builder from a value carrying invoke behavior. The tool
// name defaults to the value's type name, snake_cased with any Tool suffix
// trimmed; Name overrides it. The default is a convenience, not a contract.
func Define(v Invoker) *Builder {
	b := NewBuilder()
	b.def.SetName(defaultName(v))
	b.fn = v.Invoke
	return b
}

func (b *Builder) Name(name string) *Builder {
	b.def.SetName(name)
	return b
}

func (b *Builder) Description(description string) *Builder {
	b.def.SetDescription(description)
	return b
}

// Required declares a parameter the caller must supply.
func (b *Builder) Required(name string, typ schema.Type, description string) *Builder {
	return b.add(name, typ, description, true)
}

// Optional declares a parameter the caller may omit.
func (b *Builder) Optional(name string, typ schema.Type, description string) *Builder {
	return b.add(name, typ, description, false)
}

func (b *Builder) add(name string, typ schema.Type, description string, required bool) *Builder {
	if err := b.def.AddParameter(name, typ, description, required); err != nil && b.err == nil {
		b.err = err
	}
	return b
}

// Handler sets the invoke behavior. A tool built without one reports
// ErrNotImplemented when called.
func (b *Builder) Handler(fn InvokeFunc) *Builder {
	b.fn = fn
	return b
}

func (b *Builder) Build() (Tool, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.def.Name() == "" {
		return nil, errors.New("tool name is required")
	}
	return &builtTool{def: b.def, fn: b.fn}, nil
}

type builtTool struct {
	def *schema.Definition
	fn  InvokeFunc
}

func (t *builtTool) Definition() *schema.Definition {
	return t.def
}

func (t *builtTool) Invoke(ctx context.Context, args Args) (any, error) {
	if t.fn == nil {
		return nil, ErrNotImplemented
	}
	return t.fn(ctx, args)
}

func defaultName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return toSnake(strings.TrimSuffix(t.Name(), "Tool"))
}

func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
