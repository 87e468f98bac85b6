package daemon

import (
	"context"
	"fmt"
	"net"

	"github.com/sourcegraph/jsonrpc2"
)

// Client dials the daemon socket and speaks the same Content-Length
// framing the daemon serves.
type Client struct {
	rpc *jsonrpc2.Conn
}

func Dial(ctx context.Context, socketPath string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial daemon %s: %w", socketPath, err)
	}

	stream := jsonrpc2.NewBufferedStream(conn, jsonrpc2.VSCodeObjectCodec{})
	return &Client{
		rpc: jsonrpc2.NewConn(ctx, stream, noopHandler{}),
	}, nil
}

// Call issues one request and decodes the result into result, which may be
// nil. A server-side error response comes back as *jsonrpc2.Error.
func (c *Client) Call(ctx context.Context, method string, params, result any) error {
	return c.rpc.Call(ctx, method, params, result)
}

func (c *Client) Notify(ctx context.Context, method string, params any) error {
	return c.rpc.Notify(ctx, method, params)
}

func (c *Client) Close() error {
	return c.rpc.Close()
}

// noopHandler discards server-initiated messages; the daemon never sends
// any.
type noopHandler struct{}

func (noopHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {}
