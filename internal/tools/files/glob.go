package files

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"

	"github.com/anvilmcp/anvil/internal/schema"
	"github.com/anvilmcp/anvil/internal/tools"
)

const defaultGlobLimit = 100

type GlobMatch struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	SizeHuman string    `json:"size_human"`
	Modified  time.Time `json:"modified"`
}

type GlobResult struct {
	Pattern   string      `json:"pattern"`
	Dir       string      `json:"dir"`
	Matches   []GlobMatch `json:"matches"`
	Count     int         `json:"count"`
	Truncated bool        `json:"truncated"`
}

// GlobTool matches files under the sandbox root with doublestar patterns
// (`**` spans directories).
type GlobTool struct {
	def *schema.Definition
	sb  *Sandbox
}

func NewGlobTool(sb *Sandbox) *GlobTool {
	def := schema.NewDefinition("fs_glob")
	def.SetDescription("Find files under the sandbox root matching a glob pattern (** matches across directories)")
	def.AddParameter("pattern", schema.TypeString, "Glob pattern, e.g. **/*.go", true)
	def.AddParameter("dir", schema.TypeString, "Subdirectory to search from (default: the root)", false)
	def.AddParameter("limit", schema.TypeInteger, "Maximum matches to return (default: 100)", false)

	return &GlobTool{def: def, sb: sb}
}

func (t *GlobTool) Definition() *schema.Definition {
	return t.def
}

func (t *GlobTool) Title() string {
	return "Find Files"
}

func (t *GlobTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *GlobTool) Invoke(ctx context.Context, args tools.Args) (any, error) {
	pattern, _ := args.String("pattern")
	dir, err := t.sb.Resolve(args.StringOr("dir", "."))
	if err != nil {
		return nil, err
	}
	limit := args.IntOr("limit", defaultGlobLimit)
	if limit <= 0 {
		limit = defaultGlobLimit
	}

	names, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, err
	}

	result := GlobResult{
		Pattern: pattern,
		Dir:     t.sb.Rel(dir),
		Matches: make([]GlobMatch, 0, len(names)),
	}

	for _, name := range names {
		if len(result.Matches) >= limit {
			result.Truncated = true
			break
		}

		abs := filepath.Join(dir, name)
		info, err := os.Stat(abs)
		if err != nil || info.IsDir() {
			continue
		}

		result.Matches = append(result.Matches, GlobMatch{
			Path:      t.sb.Rel(abs),
			Size:      info.Size(),
			SizeHuman: humanize.Bytes(uint64(info.Size())),
			Modified:  info.ModTime().UTC(),
		})
	}

	result.Count = len(result.Matches)
	return result, nil
}
