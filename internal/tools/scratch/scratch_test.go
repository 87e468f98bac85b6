package scratch

import (
	"context"
	"errors"
	"testing"

	"github.com/anvilmcp/anvil/internal/tools"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore()
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Put("alpha", "one")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if created.ID == "" {
		t.Error("entry has no id")
	}

	got, err := store.Get("alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Value != "one" || got.ID != created.ID {
		t.Errorf("got %+v", got)
	}

	updated, err := store.Put("alpha", "two")
	if err != nil {
		t.Fatalf("Put update: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("update changed id: %s -> %s", created.ID, updated.ID)
	}
	if updated.Value != "two" {
		t.Errorf("value = %q", updated.Value)
	}

	if err := store.Delete("alpha"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get("alpha"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: %v", err)
	}
}

func TestStoreListOrdersByKey(t *testing.T) {
	store := newTestStore(t)

	for _, key := range []string{"zulu", "alpha", "mike"} {
		if _, err := store.Put(key, key); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"alpha", "mike", "zulu"}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries", len(entries))
	}
	for i, entry := range entries {
		if entry.Key != want[i] {
			t.Errorf("entries[%d].Key = %q, want %q", i, entry.Key, want[i])
		}
	}
}

func TestStoreDeleteMissingKey(t *testing.T) {
	store := newTestStore(t)

	if err := store.Delete("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(ghost) = %v, want ErrNotFound", err)
	}
}

func TestToolsShareOneStore(t *testing.T) {
	store := newTestStore(t)
	toolset := GetToolsFromStore(store)
	if len(toolset) != 4 {
		t.Fatalf("got %d tools", len(toolset))
	}

	byName := map[string]tools.Tool{}
	for _, tool := range toolset {
		byName[tool.Definition().Name()] = tool
	}
	ctx := context.Background()

	if _, err := byName["scratch_put"].Invoke(ctx, tools.Args{"key": "k", "value": "v"}); err != nil {
		t.Fatalf("scratch_put: %v", err)
	}

	got, err := byName["scratch_get"].Invoke(ctx, tools.Args{"key": "k"})
	if err != nil {
		t.Fatalf("scratch_get: %v", err)
	}
	if got.(*Entry).Value != "v" {
		t.Errorf("value = %q", got.(*Entry).Value)
	}

	listed, err := byName["scratch_list"].Invoke(ctx, tools.Args{})
	if err != nil {
		t.Fatalf("scratch_list: %v", err)
	}
	if listed.(map[string]any)["count"] != 1 {
		t.Errorf("count = %v", listed.(map[string]any)["count"])
	}

	if _, err := byName["scratch_delete"].Invoke(ctx, tools.Args{"key": "k"}); err != nil {
		t.Fatalf("scratch_delete: %v", err)
	}
	if _, err := byName["scratch_get"].Invoke(ctx, tools.Args{"key": "k"}); err == nil {
		t.Error("expected error after delete")
	}
}

func TestPutRejectsEmptyKey(t *testing.T) {
	store := newTestStore(t)
	put := NewPutTool(store)

	if _, err := put.Invoke(context.Background(), tools.Args{"key": "", "value": "v"}); err == nil {
		t.Fatal("expected error for empty key")
	}
}
