package files

import (
	"time"

	"github.com/anvilmcp/anvil/internal/tools"
)

// GetTools builds the filesystem toolset rooted at root.
func GetTools(root string, watchTimeout time.Duration) ([]tools.Tool, error) {
	sb, err := NewSandbox(root)
	if err != nil {
		return nil, err
	}

	read, err := NewReadTool(sb)
	if err != nil {
		return nil, err
	}

	return []tools.Tool{
		NewGlobTool(sb),
		read,
		NewWatchTool(sb, watchTimeout),
	}, nil
}
