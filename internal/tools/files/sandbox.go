// Package files provides the filesystem toolset: glob, read, and watch,
// all confined to a configured sandbox root.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sandbox confines every path the toolset touches to one directory
// subtree. Requests use paths relative to the root; anything resolving
// outside it is rejected.
type Sandbox struct {
	root string
}

func NewSandbox(root string) (*Sandbox, error) {
	if !filepath.IsAbs(root) {
		return nil, fmt.Errorf("sandbox root %q must be an absolute path", root)
	}

	// Pin the root to its real path so containment checks below compare
	// like with like when the root itself sits behind a symlink.
	real, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("sandbox root: %w", err)
	}

	info, err := os.Stat(real)
	if err != nil {
		return nil, fmt.Errorf("sandbox root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("sandbox root %q is not a directory", root)
	}

	return &Sandbox{root: real}, nil
}

func (s *Sandbox) Root() string {
	return s.root
}

// Resolve maps a request path to an absolute path inside the root.
// Absolute request paths are accepted only when they already point inside.
// Symlinks are followed before the containment check, so a link planted
// inside the root cannot reach outside it.
func (s *Sandbox) Resolve(path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.root, abs)
	}
	abs = filepath.Clean(abs)

	if !s.contains(abs) {
		return "", fmt.Errorf("path %q escapes the sandbox root", path)
	}

	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("resolve %s: %w", path, err)
		}
		// The leaf does not exist yet; its closest existing ancestor
		// still must resolve inside the root.
		realDir, dirErr := filepath.EvalSymlinks(filepath.Dir(abs))
		if dirErr != nil {
			return "", fmt.Errorf("resolve %s: %w", path, dirErr)
		}
		if !s.contains(realDir) {
			return "", fmt.Errorf("path %q escapes the sandbox root", path)
		}
		return filepath.Join(realDir, filepath.Base(abs)), nil
	}

	if !s.contains(real) {
		return "", fmt.Errorf("path %q escapes the sandbox root", path)
	}
	return real, nil
}

func (s *Sandbox) contains(abs string) bool {
	return abs == s.root || strings.HasPrefix(abs, s.root+string(filepath.Separator))
}

// Rel converts an absolute path back to the root-relative form reported to
// clients.
func (s *Sandbox) Rel(abs string) string {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return abs
	}
	return rel
}
