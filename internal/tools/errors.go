package tools

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is returned by a tool that was declared without invoke
// behavior. It surfaces at invocation time, never at construction time.
var ErrNotImplemented = errors.New("tool invoke not implemented")

// ErrToolExists is wrapped by Registry.Register on a duplicate name.
var ErrToolExists = errors.New("tool already registered")

// MissingArgumentError reports a required parameter absent from a call's
// arguments mapping.
type MissingArgumentError struct {
	Tool  string
	Param string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument: %s", e.Param)
}
