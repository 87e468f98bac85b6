// Package protocol defines the JSON-RPC 2.0 wire types the server speaks,
// the fixed MCP error codes, and the content-item payload variants.
package protocol

// Version is the JSON-RPC protocol version tag carried by every message.
const Version = "2.0"

// Fixed error codes. Clients match on these exactly.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Default messages for the fixed codes.
const (
	MsgParseError     = "Invalid JSON"
	MsgInvalidRequest = "Invalid request"
	MsgMethodNotFound = "Method not found"
	MsgInvalidParams  = "Invalid params"
	MsgInternalError  = "Internal error"
)

type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      any            `json:"id,omitempty"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
}

// Response always carries an id field: absent and null request ids both
// round-trip as id null, so omitempty is deliberately not used.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// NewResponse builds a success response echoing the request id verbatim.
func NewResponse(id, result any) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Result:  result,
	}
}

// NewErrorResponse builds an error response echoing the request id verbatim.
func NewErrorResponse(id any, code int, message string) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	}
}

// NewParseErrorResponse reports a transport-level decode failure. The
// request id is unknowable at that point, so it is always null.
func NewParseErrorResponse() *Response {
	return NewErrorResponse(nil, CodeParseError, MsgParseError)
}
