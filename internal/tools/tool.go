// Package tools defines the tool contract, the builder used to declare
// tools, argument binding, and the ordered registry a server exposes.
package tools

import (
	"context"

	"github.com/anvilmcp/anvil/internal/schema"
)

// Tool is one callable unit of behavior bound to exactly one Definition.
// Invocations are blocking; the dispatcher imposes no timeout.
type Tool interface {
	Definition() *schema.Definition
	Invoke(ctx context.Context, args Args) (any, error)
}

// Annotated is an optional extension surfaced in the tools/list entry for
// tools that declare MCP behavior hints.
type Annotated interface {
	Tool
	Title() string
	Annotations() map[string]bool
}
