package files

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/anvilmcp/anvil/internal/schema"
	"github.com/anvilmcp/anvil/internal/tools"
)

type WatchResult struct {
	Event     string `json:"event"`
	Path      string `json:"path"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// WatchTool blocks until the first filesystem event under a path, or the
// timeout. One shot: the watcher is torn down when the call returns.
type WatchTool struct {
	def            *schema.Definition
	sb             *Sandbox
	defaultTimeout time.Duration
}

func NewWatchTool(sb *Sandbox, defaultTimeout time.Duration) *WatchTool {
	def := schema.NewDefinition("fs_watch")
	def.SetDescription("Wait for the next filesystem event under a path, or time out")
	def.AddParameter("path", schema.TypeString, "File or directory to watch, relative to the root", true)
	def.AddParameter("timeout_ms", schema.TypeInteger, "Give up after this many milliseconds", false)

	return &WatchTool{def: def, sb: sb, defaultTimeout: defaultTimeout}
}

func (t *WatchTool) Definition() *schema.Definition {
	return t.def
}

func (t *WatchTool) Title() string {
	return "Watch Path"
}

func (t *WatchTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *WatchTool) Invoke(ctx context.Context, args tools.Args) (any, error) {
	path, _ := args.String("path")
	abs, err := t.sb.Resolve(path)
	if err != nil {
		return nil, err
	}

	timeout := t.defaultTimeout
	if ms, ok := args.Int("timeout_ms"); ok && ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(abs); err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	start := time.Now()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil, fmt.Errorf("watcher closed unexpectedly")
			}
			return WatchResult{
				Event:     strings.ToLower(event.Op.String()),
				Path:      t.sb.Rel(event.Name),
				ElapsedMS: time.Since(start).Milliseconds(),
			}, nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil, fmt.Errorf("watcher closed unexpectedly")
			}
			return nil, fmt.Errorf("watch %s: %w", path, err)
		case <-timer.C:
			return WatchResult{
				Event:     "timeout",
				Path:      path,
				ElapsedMS: time.Since(start).Milliseconds(),
			}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
