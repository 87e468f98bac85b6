// Package daemon serves the dispatcher over a unix socket. Each accepted
// connection speaks Content-Length-framed JSON-RPC via jsonrpc2; requests
// on one connection are handled sequentially.
package daemon

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/anvilmcp/anvil/internal/logger"
	"github.com/anvilmcp/anvil/internal/mcp"
	"github.com/anvilmcp/anvil/pkg/protocol"
)

var log = logger.ForComponent("daemon")

type Daemon struct {
	socketPath string
	server     *mcp.Server

	listener net.Listener
	conns    map[*jsonrpc2.Conn]struct{}
	connMu   sync.Mutex

	done         chan struct{}
	shutdownOnce sync.Once
}

func New(socketPath string, server *mcp.Server) *Daemon {
	return &Daemon{
		socketPath: socketPath,
		server:     server,
		conns:      make(map[*jsonrpc2.Conn]struct{}),
		done:       make(chan struct{}),
	}
}

// Start opens the socket and begins accepting connections in the
// background. It returns once the listener is live.
func (d *Daemon) Start(ctx context.Context) error {
	listener, err := listenSocket(d.socketPath)
	if err != nil {
		return err
	}
	d.listener = listener

	log.Info("daemon listening", "socket", d.socketPath)
	go d.acceptLoop(ctx)
	return nil
}

func (d *Daemon) acceptLoop(ctx context.Context) {
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-d.done:
				return
			default:
				log.Warn("accept failed", "error", err)
				continue
			}
		}

		stream := jsonrpc2.NewBufferedStream(conn, jsonrpc2.VSCodeObjectCodec{})
		rpc := jsonrpc2.NewConn(ctx, stream, &connHandler{server: d.server})

		d.connMu.Lock()
		d.conns[rpc] = struct{}{}
		d.connMu.Unlock()

		go func() {
			<-rpc.DisconnectNotify()
			d.connMu.Lock()
			delete(d.conns, rpc)
			d.connMu.Unlock()
		}()
	}
}

// Shutdown closes the listener, every live connection, and removes the
// socket file. Safe to call more than once.
func (d *Daemon) Shutdown() {
	d.shutdownOnce.Do(func() {
		close(d.done)

		if d.listener != nil {
			d.listener.Close()
		}

		d.connMu.Lock()
		for rpc := range d.conns {
			rpc.Close()
		}
		d.conns = make(map[*jsonrpc2.Conn]struct{})
		d.connMu.Unlock()

		os.Remove(d.socketPath)
		log.Info("daemon stopped", "socket", d.socketPath)
	})
}

func (d *Daemon) SocketPath() string {
	return d.socketPath
}

// connHandler adapts jsonrpc2 requests into the core's request shape and
// replies with the dispatcher's result. jsonrpc2 invokes it serially per
// connection and enforces notification semantics, so notifications get no
// reply on this transport.
type connHandler struct {
	server *mcp.Server
}

func (h *connHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	coreReq := &protocol.Request{
		JSONRPC: protocol.Version,
		Method:  req.Method,
	}
	if !req.Notif {
		coreReq.ID = requestID(req.ID)
	}

	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &coreReq.Params); err != nil {
			if req.Notif {
				return
			}
			conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{
				Code:    protocol.CodeInvalidRequest,
				Message: protocol.MsgInvalidRequest,
			})
			return
		}
	}

	resp := h.server.Handle(ctx, coreReq)
	if req.Notif {
		return
	}

	if resp.Error != nil {
		if err := conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{
			Code:    int64(resp.Error.Code),
			Message: resp.Error.Message,
		}); err != nil {
			log.Warn("error reply failed", "method", req.Method, "error", err)
		}
		return
	}

	if err := conn.Reply(ctx, req.ID, resp.Result); err != nil {
		log.Warn("reply failed", "method", req.Method, "error", err)
	}
}

func requestID(id jsonrpc2.ID) any {
	if id.IsString {
		return id.Str
	}
	return id.Num
}
