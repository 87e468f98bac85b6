// Package mcp implements the request dispatcher behind the protocol's
// initialize / tools/list / tools/call methods and the stdio server loop.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"runtime/debug"
	"sync"

	"github.com/anvilmcp/anvil/internal/logger"
	"github.com/anvilmcp/anvil/internal/tools"
	"github.com/anvilmcp/anvil/pkg/protocol"
)

var log = logger.ForComponent("mcp")

// Handler routes one decoded request to the matching method handler and
// produces the response. It is stateless across requests: every call is
// independent given the same registry and options. Multiple transports may
// dispatch through one Handler concurrently, so the handshake fields are
// mutex-guarded.
type Handler struct {
	registry *tools.Registry
	opts     Options

	mu          sync.Mutex
	initialized bool
	clientInfo  ClientInfo
}

func NewHandler(registry *tools.Registry, opts Options) *Handler {
	return &Handler{
		registry: registry,
		opts:     opts.withDefaults(),
	}
}

// Handle dispatches by method name. Every response echoes the request id
// verbatim; absent and null ids both come back as null. Nothing a tool does
// propagates past this boundary.
func (h *Handler) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	switch req.Method {
	case "initialize":
		return protocol.NewResponse(req.ID, h.handleInitialize(req))
	case "ping":
		return protocol.NewResponse(req.ID, map[string]any{})
	case "notifications/initialized":
		h.mu.Lock()
		h.initialized = true
		h.mu.Unlock()
		return protocol.NewResponse(req.ID, map[string]any{})
	case "tools/list":
		return protocol.NewResponse(req.ID, h.handleListTools())
	case "tools/call":
		result, rpcErr := h.handleCallTool(ctx, req.Params)
		if rpcErr != nil {
			return protocol.NewErrorResponse(req.ID, rpcErr.Code, rpcErr.Message)
		}
		return protocol.NewResponse(req.ID, result)
	case "":
		return protocol.NewErrorResponse(req.ID, protocol.CodeInvalidRequest, protocol.MsgInvalidRequest)
	default:
		log.Debug("unknown method", "method", req.Method)
		return protocol.NewErrorResponse(req.ID, protocol.CodeMethodNotFound, protocol.MsgMethodNotFound)
	}
}

// handleInitialize always succeeds with the configured identity; the
// client's offered protocol version is recorded but not negotiated against.
func (h *Handler) handleInitialize(req *protocol.Request) *InitializeResult {
	if req.Params != nil {
		if info, ok := req.Params["clientInfo"].(map[string]any); ok {
			h.mu.Lock()
			h.clientInfo.Name, _ = info["name"].(string)
			h.clientInfo.Version, _ = info["version"].(string)
			h.mu.Unlock()
		}
	}

	return &InitializeResult{
		ProtocolVersion: h.opts.ProtocolVersion,
		Capabilities:    h.opts.Capabilities,
		ServerInfo: ServerInfo{
			Name:    h.opts.ServerName,
			Version: h.opts.ServerVersion,
		},
	}
}

// Initialized reports whether the client has sent the
// notifications/initialized handshake.
func (h *Handler) Initialized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.initialized
}

// Client returns the identity the client reported during initialize.
func (h *Handler) Client() ClientInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clientInfo
}

func (h *Handler) handleListTools() *ListToolsResult {
	list := h.registry.List()
	entries := make([]toolEntry, len(list))

	for i, t := range list {
		w := t.Definition().WireSchema()
		entry := toolEntry{
			Name:        w.Name,
			Description: w.Description,
			InputSchema: w.InputSchema,
		}
		if annotated, ok := t.(tools.Annotated); ok {
			entry.Title = annotated.Title()
			entry.Annotations = annotated.Annotations()
		}
		entries[i] = entry
	}

	return &ListToolsResult{Tools: entries}
}

func (h *Handler) handleCallTool(ctx context.Context, params map[string]any) (*CallToolResult, *protocol.Error) {
	name, ok := params["name"].(string)
	if !ok || name == "" {
		return nil, &protocol.Error{Code: protocol.CodeInvalidParams, Message: protocol.MsgInvalidParams}
	}

	raw := map[string]any{}
	if v, present := params["arguments"]; present && v != nil {
		raw, ok = v.(map[string]any)
		if !ok {
			return nil, &protocol.Error{Code: protocol.CodeInvalidParams, Message: protocol.MsgInvalidParams}
		}
	}

	tool, found := h.registry.Get(name)
	if !found {
		return nil, &protocol.Error{
			Code:    protocol.CodeInvalidParams,
			Message: fmt.Sprintf("Unknown tool: %s", name),
		}
	}

	args, err := tools.BindArguments(tool.Definition(), raw)
	if err != nil {
		return nil, &protocol.Error{Code: protocol.CodeInternalError, Message: err.Error()}
	}

	result, err := h.invoke(ctx, tool, args)
	if err != nil {
		log.Error("tool call failed", "tool", name, "error", err)
		return nil, &protocol.Error{Code: protocol.CodeInternalError, Message: err.Error()}
	}

	return &CallToolResult{Content: coerceContent(result)}, nil
}

// invoke runs the tool, converting a panic into an error carrying the
// recovered value and stack trace. The detail is client-side debugging
// information and is never suppressed.
func (h *Handler) invoke(ctx context.Context, tool tools.Tool, args tools.Args) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			log.Error("tool panic recovered",
				"tool", tool.Definition().Name(),
				"panic", r,
				"stack", string(stack))
			err = fmt.Errorf("tool panicked: %v\n%s", r, stack)
		}
	}()

	return tool.Invoke(ctx, args)
}

// coerceContent shapes a tool's return value into the content array. A
// slice result is used verbatim, each element assumed to already be a
// well-formed content item; anything else becomes one text item.
func coerceContent(result any) []any {
	switch v := result.(type) {
	case []any:
		if v == nil {
			return []any{}
		}
		return v
	case []protocol.Content:
		items := make([]any, len(v))
		for i, c := range v {
			items[i] = c
		}
		return items
	default:
		rv := reflect.ValueOf(result)
		if rv.Kind() == reflect.Slice {
			items := make([]any, rv.Len())
			for i := range items {
				items[i] = rv.Index(i).Interface()
			}
			return items
		}
		return []any{protocol.TextContent{Text: textOf(result)}}
	}
}

func textOf(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
