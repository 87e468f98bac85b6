package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/anvilmcp/anvil/internal/schema"
	"github.com/anvilmcp/anvil/internal/tools"
)

func newStreamServer(t *testing.T) *Server {
	t.Helper()
	reg := tools.NewRegistry()
	if err := reg.Register(addTool(t)); err != nil {
		t.Fatalf("register: %v", err)
	}
	return NewServer(reg, Options{ServerName: "anvil-test"})
}

func runStream(t *testing.T, s *Server, input string) []map[string]any {
	t.Helper()
	var out bytes.Buffer
	if err := s.ProcessStream(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("ProcessStream: %v", err)
	}

	var responses []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp map[string]any
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("undecodable response line %q: %v", line, err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func TestProcessStreamMalformedLine(t *testing.T) {
	s := newStreamServer(t)

	responses := runStream(t, s, "{not json\n")
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}

	errObj, ok := responses[0]["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object in %v", responses[0])
	}
	if code := errObj["code"].(float64); code != -32700 {
		t.Errorf("code = %v, want -32700", code)
	}
	if errObj["message"] != "Invalid JSON" {
		t.Errorf("message = %v", errObj["message"])
	}

	// The id is unknowable for an undecodable line; it must still be
	// present, and null.
	id, present := responses[0]["id"]
	if !present {
		t.Fatal("response missing id field")
	}
	if id != nil {
		t.Errorf("id = %v, want null", id)
	}
}

func TestProcessStreamSkipsBlankLines(t *testing.T) {
	s := newStreamServer(t)

	input := "\n\n" + `{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n\n"
	responses := runStream(t, s, input)
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
}

func TestProcessStreamOneResponsePerRequest(t *testing.T) {
	s := newStreamServer(t)

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"add","arguments":{"x":5,"y":3}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":3,"method":"nope"}`,
	}, "\n") + "\n"

	responses := runStream(t, s, input)
	if len(responses) != 4 {
		t.Fatalf("got %d responses, want 4", len(responses))
	}

	if responses[0]["id"].(float64) != 1 {
		t.Errorf("responses[0] id = %v", responses[0]["id"])
	}

	result := responses[1]["result"].(map[string]any)
	content := result["content"].([]any)
	item := content[0].(map[string]any)
	if item["type"] != "text" || item["text"] != "8" {
		t.Errorf("content[0] = %v", item)
	}

	// Id-less request still gets a response, with id null.
	if id, present := responses[2]["id"]; !present || id != nil {
		t.Errorf("notification response id = %v (present=%v), want null", id, present)
	}

	errObj := responses[3]["error"].(map[string]any)
	if errObj["code"].(float64) != -32601 {
		t.Errorf("responses[3] error = %v", errObj)
	}
}

func TestProcessStreamFailureDoesNotStopServing(t *testing.T) {
	reg := tools.NewRegistry()
	panicking, err := tools.NewBuilder().
		Name("kaboom").
		Handler(func(ctx context.Context, args tools.Args) (any, error) {
			panic("short circuit")
		}).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := reg.Register(panicking); err != nil {
		t.Fatalf("register: %v", err)
	}
	s := NewServer(reg, Options{})

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"kaboom"}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	}, "\n") + "\n"

	responses := runStream(t, s, input)
	if len(responses) != 2 {
		t.Fatalf("got %d responses, want 2", len(responses))
	}
	if _, failed := responses[0]["error"]; !failed {
		t.Error("panicking call did not report an error")
	}
	if _, failed := responses[1]["error"]; failed {
		t.Error("server did not recover for the next request")
	}
}

func TestProcessStreamWireSchemaShape(t *testing.T) {
	reg := tools.NewRegistry()
	tool, err := tools.NewBuilder().
		Name("greet").
		Description("Format a greeting").
		Required("name", schema.TypeString, "Who to greet").
		Optional("loud", schema.TypeBoolean, "Shout the greeting").
		Handler(func(ctx context.Context, args tools.Args) (any, error) {
			return "hi", nil
		}).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := reg.Register(tool); err != nil {
		t.Fatalf("register: %v", err)
	}
	s := NewServer(reg, Options{})

	responses := runStream(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`+"\n")
	result := responses[0]["result"].(map[string]any)
	entries := result["tools"].([]any)
	if len(entries) != 1 {
		t.Fatalf("got %d tools, want 1", len(entries))
	}

	entry := entries[0].(map[string]any)
	if entry["name"] != "greet" {
		t.Errorf("name = %v", entry["name"])
	}
	inputSchema := entry["inputSchema"].(map[string]any)
	if inputSchema["type"] != "object" {
		t.Errorf("inputSchema.type = %v", inputSchema["type"])
	}
	required := inputSchema["required"].([]any)
	if len(required) != 1 || required[0] != "name" {
		t.Errorf("required = %v, want [name]", required)
	}
	props := inputSchema["properties"].(map[string]any)
	if len(props) != 2 {
		t.Errorf("properties = %v", props)
	}
}
