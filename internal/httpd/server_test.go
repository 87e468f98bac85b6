package httpd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anvilmcp/anvil/internal/mcp"
	"github.com/anvilmcp/anvil/internal/schema"
	"github.com/anvilmcp/anvil/internal/tools"
)

func newTestServer(t *testing.T, token string) *Server {
	t.Helper()

	reg := tools.NewRegistry()
	add, err := tools.NewBuilder().
		Name("add").
		Required("x", schema.TypeNumber, "First addend").
		Required("y", schema.TypeNumber, "Second addend").
		Handler(func(ctx context.Context, args tools.Args) (any, error) {
			x, _ := args.Float("x")
			y, _ := args.Float("y")
			return fmt.Sprintf("%g", x+y), nil
		}).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := reg.Register(add); err != nil {
		t.Fatalf("register: %v", err)
	}

	return New(Config{
		Addr:       "127.0.0.1:0",
		Token:      token,
		ServerName: "anvil-test",
		Version:    "0.0.1",
		InstanceID: "instance-1",
	}, mcp.NewServer(reg, mcp.Options{ServerName: "anvil-test"}))
}

func postRPC(t *testing.T, s *Server, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestRPCRoundTrip(t *testing.T) {
	s := newTestServer(t, "")

	rec := postRPC(t, s, "", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"add","arguments":{"x":5,"y":3}}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		ID     float64 `json:"id"`
		Result struct {
			Content []map[string]any `json:"content"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != 1 {
		t.Errorf("id = %v", resp.ID)
	}
	if len(resp.Result.Content) != 1 || resp.Result.Content[0]["text"] != "8" {
		t.Errorf("content = %v", resp.Result.Content)
	}
}

func TestRPCMalformedBodyIsParseError(t *testing.T) {
	s := newTestServer(t, "")

	rec := postRPC(t, s, "", "{broken")
	// JSON-RPC errors are payload, not transport, errors.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id, present := resp["id"]; !present || id != nil {
		t.Errorf("id = %v, want null", resp["id"])
	}
	errObj := resp["error"].(map[string]any)
	if errObj["code"].(float64) != -32700 || errObj["message"] != "Invalid JSON" {
		t.Errorf("error = %v", errObj)
	}
}

func TestRPCRequiresToken(t *testing.T) {
	s := newTestServer(t, "sekrit")

	if rec := postRPC(t, s, "", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want 401", rec.Code)
	}
	if rec := postRPC(t, s, "wrong", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", rec.Code)
	}
	if rec := postRPC(t, s, "tirkes", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("same-length wrong token: status = %d, want 401", rec.Code)
	}
	if rec := postRPC(t, s, "sekrit", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`); rec.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", rec.Code)
	}
}

func TestHealthBypassesAuth(t *testing.T) {
	s := newTestServer(t, "sekrit")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var health map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health["status"] != "ok" || health["server"] != "anvil-test" {
		t.Errorf("health = %v", health)
	}
	if health["tools"].(float64) != 1 {
		t.Errorf("tools = %v", health["tools"])
	}
}
