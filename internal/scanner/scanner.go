// Package scanner discovers CMake files under a checked-out source tree.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// ErrRootMissing is returned when the scan root does not exist, which
// usually means the sparse checkout has not been fetched yet.
var ErrRootMissing = fmt.Errorf("scan root not found")

// DefaultPatterns match the fixture candidates: standalone CMake
// scripts and directory list files.
var DefaultPatterns = []string{"*.cmake", "CMakeLists.txt"}

// Scanner walks a directory tree collecting files whose base name
// matches one of the configured glob patterns. Matching is by base name
// only; the recursive descent covers the directory component.
type Scanner struct {
	root     string
	patterns []glob.Glob
}

// New compiles the given patterns for scanning under root.
func New(root string, patterns []string) (*Scanner, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		compiled = append(compiled, g)
	}
	return &Scanner{root: root, patterns: compiled}, nil
}

// Scan returns the matching file paths in deterministic (lexical walk)
// order. Directories are never returned.
func (s *Scanner) Scan() ([]string, error) {
	if _, err := os.Stat(s.root); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootMissing, s.root)
		}
		return nil, fmt.Errorf("stat scan root: %w", err)
	}

	var files []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if s.matches(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}
	return files, nil
}

// Root returns the directory the scanner walks.
func (s *Scanner) Root() string {
	return s.root
}

func (s *Scanner) matches(name string) bool {
	for _, g := range s.patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}
