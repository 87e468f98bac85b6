package mcp

import (
	"github.com/anvilmcp/anvil/internal/schema"
	"github.com/anvilmcp/anvil/pkg/version"
)

// Options is the server identity supplied at construction. Zero values are
// filled in with defaults; nothing is discovered dynamically.
type Options struct {
	ServerName      string
	ServerVersion   string
	ProtocolVersion string
	Capabilities    map[string]any
}

func (o Options) withDefaults() Options {
	if o.ServerName == "" {
		o.ServerName = "anvil"
	}
	if o.ServerVersion == "" {
		o.ServerVersion = "1.0.0"
	}
	if o.ProtocolVersion == "" {
		o.ProtocolVersion = version.ProtocolVersion
	}
	if o.Capabilities == nil {
		o.Capabilities = map[string]any{
			"tools": map[string]any{},
		}
	}
	return o
}

type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      ServerInfo     `json:"serverInfo"`
}

// toolEntry is one tools/list row: the Definition's wire schema plus the
// optional annotation fields for tools that declare behavior hints.
type toolEntry struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	InputSchema *schema.InputSchema `json:"inputSchema"`
	Title       string              `json:"title,omitempty"`
	Annotations map[string]bool     `json:"annotations,omitempty"`
}

type ListToolsResult struct {
	Tools []toolEntry `json:"tools"`
}

type CallToolResult struct {
	Content []any `json:"content"`
}
