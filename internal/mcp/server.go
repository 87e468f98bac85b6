package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/anvilmcp/anvil/internal/tools"
	"github.com/anvilmcp/anvil/pkg/protocol"
)

const (
	initialLineBuffer = 64 * 1024
	maxLineBuffer     = 10 * 1024 * 1024
)

// Server binds a registry and dispatcher to the line-oriented stdio
// transport: one JSON value per input line, one JSON value per output line.
type Server struct {
	registry *tools.Registry
	handler  *Handler
}

func NewServer(registry *tools.Registry, opts Options) *Server {
	return &Server{
		registry: registry,
		handler:  NewHandler(registry, opts),
	}
}

// Handle resolves one decoded request into one decoded response. Pure with
// respect to I/O; transports own the encoding on either side.
func (s *Server) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	return s.handler.Handle(ctx, req)
}

// ProcessStream reads requests line by line until EOF, a write error, or
// context cancellation. Blank lines are skipped; an undecodable line gets a
// parse-error response with a null id. One request is fully resolved before
// the next line is read.
func (s *Server) ProcessStream(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, initialLineBuffer), maxLineBuffer)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req protocol.Request
		if err := json.Unmarshal(line, &req); err != nil {
			log.Warn("discarding undecodable input line", "error", err)
			if err := encoder.Encode(protocol.NewParseErrorResponse()); err != nil {
				return err
			}
			continue
		}

		if err := encoder.Encode(s.handler.Handle(ctx, &req)); err != nil {
			return err
		}
	}

	return scanner.Err()
}

func (s *Server) Registry() *tools.Registry {
	return s.registry
}
