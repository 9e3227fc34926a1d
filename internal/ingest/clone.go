// Package ingest fetches the upstream CMake repository via a sparse,
// blob-filtered shallow clone.
package ingest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Cloner manages the sparse checkout of one upstream repository.
type Cloner struct {
	url       string
	dir       string // clone destination, e.g. /tmp/cmake-tests/CMake
	sparseDir string // subdirectory to materialize, e.g. Tests
	logger    *logrus.Logger
}

// NewCloner creates a cloner for url into dir, restricted to sparseDir.
func NewCloner(url, dir, sparseDir string, logger *logrus.Logger) *Cloner {
	return &Cloner{url: url, dir: dir, sparseDir: sparseDir, logger: logger}
}

// Dir returns the clone destination directory.
func (c *Cloner) Dir() string {
	return c.dir
}

// SparseRoot returns the on-disk path of the sparse subdirectory.
func (c *Cloner) SparseRoot() string {
	return filepath.Join(c.dir, c.sparseDir)
}

// Clone performs the sparse checkout. An existing valid clone is reused
// as-is; an existing but broken directory is removed and re-cloned.
// Set force to always start from a fresh clone.
func (c *Cloner) Clone(ctx context.Context, force bool) error {
	if _, err := os.Stat(c.dir); err == nil {
		if !force && isValidGitRepo(c.dir) {
			c.logger.WithField("dir", c.dir).Info("reusing existing clone")
			return nil
		}
		if err := os.RemoveAll(c.dir); err != nil {
			return fmt.Errorf("remove stale clone %s: %w", c.dir, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(c.dir), 0755); err != nil {
		return fmt.Errorf("create clone parent directory: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"url":    c.url,
		"sparse": c.sparseDir,
	}).Info("cloning repository (sparse checkout)")

	// Blob-filtered shallow clone keeps the transfer small; the sparse
	// checkout then materializes only the one subdirectory we sample.
	if err := c.git(ctx, "clone",
		"--depth", "1",
		"--filter=blob:none",
		"--sparse",
		c.url,
		c.dir,
	); err != nil {
		return err
	}

	return c.git(ctx, "-C", c.dir, "sparse-checkout", "set", c.sparseDir)
}

func (c *Cloner) git(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s failed: %w, output: %s", args[0], err, string(output))
	}
	return nil
}

// isValidGitRepo checks if directory is a valid git repository.
func isValidGitRepo(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir()
}
