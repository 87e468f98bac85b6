// Package schema holds the declarative description of a tool: its name,
// description, and ordered parameter list, plus the translation of that
// description into the protocol's JSON Schema wire shape.
package schema

import "fmt"

// Type is a parameter's JSON Schema type. The vocabulary below covers the
// common cases; any other string is passed through to the wire untouched.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Prop is one declared parameter. Immutable once added to a Definition.
type Prop struct {
	Name        string
	Type        Type
	Description string
	Required    bool
}

// DuplicateParameterError reports a second declaration of the same
// parameter name within one Definition.
type DuplicateParameterError struct {
	Tool  string
	Param string
}

func (e *DuplicateParameterError) Error() string {
	return fmt.Sprintf("duplicate parameter %q in tool %q", e.Param, e.Tool)
}

// Definition describes one tool. It is mutated only while the tool is being
// declared; once the tool is registered it must be treated as read-only.
type Definition struct {
	name        string
	description string
	props       []Prop
}

func NewDefinition(name string) *Definition {
	return &Definition{name: name}
}

func (d *Definition) SetName(name string) {
	d.name = name
}

func (d *Definition) SetDescription(description string) {
	d.description = description
}

// AddParameter appends a parameter, preserving declaration order.
func (d *Definition) AddParameter(name string, typ Type, description string, required bool) error {
	for _, p := range d.props {
		if p.Name == name {
			return &DuplicateParameterError{Tool: d.name, Param: name}
		}
	}

	d.props = append(d.props, Prop{
		Name:        name,
		Type:        typ,
		Description: description,
		Required:    required,
	})
	return nil
}

func (d *Definition) Name() string {
	return d.name
}

func (d *Definition) Description() string {
	return d.description
}

// Params returns the parameters in declaration order. The slice is a copy.
func (d *Definition) Params() []Prop {
	out := make([]Prop, len(d.props))
	copy(out, d.props)
	return out
}

func (d *Definition) Param(name string) (Prop, bool) {
	for _, p := range d.props {
		if p.Name == name {
			return p, true
		}
	}
	return Prop{}, false
}

// RequiredNames returns the required parameter names in declaration order.
func (d *Definition) RequiredNames() []string {
	names := make([]string, 0, len(d.props))
	for _, p := range d.props {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}
