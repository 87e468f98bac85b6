package scratch

import (
	"context"
	"fmt"

	"github.com/anvilmcp/anvil/internal/schema"
	"github.com/anvilmcp/anvil/internal/tools"
)

// GetTools builds the scratchpad toolset over one shared in-memory store.
func GetTools() ([]tools.Tool, error) {
	store, err := NewStore()
	if err != nil {
		return nil, err
	}
	return GetToolsFromStore(store), nil
}

func GetToolsFromStore(store *Store) []tools.Tool {
	return []tools.Tool{
		NewPutTool(store),
		NewGetTool(store),
		NewListTool(store),
		NewDeleteTool(store),
	}
}

type PutTool struct {
	def   *schema.Definition
	store *Store
}

func NewPutTool(store *Store) *PutTool {
	def := schema.NewDefinition("scratch_put")
	def.SetDescription("Store a value under a key in the in-memory scratchpad; overwrites an existing value")
	def.AddParameter("key", schema.TypeString, "Entry key, unique within this server run", true)
	def.AddParameter("value", schema.TypeString, "Value to store", true)

	return &PutTool{def: def, store: store}
}

func (t *PutTool) Definition() *schema.Definition {
	return t.def
}

func (t *PutTool) Title() string {
	return "Scratchpad Put"
}

func (t *PutTool) Annotations() map[string]bool {
	return tools.SafeWriteAnnotations()
}

func (t *PutTool) Invoke(ctx context.Context, args tools.Args) (any, error) {
	key, _ := args.String("key")
	if key == "" {
		return nil, fmt.Errorf("key must not be empty")
	}
	value, _ := args.String("value")

	return t.store.Put(key, value)
}

type GetTool struct {
	def   *schema.Definition
	store *Store
}

func NewGetTool(store *Store) *GetTool {
	def := schema.NewDefinition("scratch_get")
	def.SetDescription("Fetch the scratchpad entry stored under a key")
	def.AddParameter("key", schema.TypeString, "Entry key", true)

	return &GetTool{def: def, store: store}
}

func (t *GetTool) Definition() *schema.Definition {
	return t.def
}

func (t *GetTool) Title() string {
	return "Scratchpad Get"
}

func (t *GetTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *GetTool) Invoke(ctx context.Context, args tools.Args) (any, error) {
	key, _ := args.String("key")
	return t.store.Get(key)
}

type ListTool struct {
	def   *schema.Definition
	store *Store
}

func NewListTool(store *Store) *ListTool {
	def := schema.NewDefinition("scratch_list")
	def.SetDescription("List all scratchpad entries")

	return &ListTool{def: def, store: store}
}

func (t *ListTool) Definition() *schema.Definition {
	return t.def
}

func (t *ListTool) Title() string {
	return "Scratchpad List"
}

func (t *ListTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *ListTool) Invoke(ctx context.Context, args tools.Args) (any, error) {
	entries, err := t.store.List()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"entries": entries,
		"count":   len(entries),
	}, nil
}

type DeleteTool struct {
	def   *schema.Definition
	store *Store
}

func NewDeleteTool(store *Store) *DeleteTool {
	def := schema.NewDefinition("scratch_delete")
	def.SetDescription("Remove the scratchpad entry stored under a key")
	def.AddParameter("key", schema.TypeString, "Entry key", true)

	return &DeleteTool{def: def, store: store}
}

func (t *DeleteTool) Definition() *schema.Definition {
	return t.def
}

func (t *DeleteTool) Title() string {
	return "Scratchpad Delete"
}

func (t *DeleteTool) Annotations() map[string]bool {
	return tools.DestructiveAnnotations()
}

func (t *DeleteTool) Invoke(ctx context.Context, args tools.Args) (any, error) {
	key, _ := args.String("key")
	if err := t.store.Delete(key); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": key}, nil
}
