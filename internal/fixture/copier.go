// Package fixture materializes a selection as a flat fixture directory.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wysaid/cmakepick/internal/sampler"
)

// CopiedFile records where one selection landed.
type CopiedFile struct {
	sampler.Selection
	DestName string
}

// Copier writes selected files into a single destination directory,
// flattening each file's relative path into its name.
type Copier struct {
	destDir string
	logger  *logrus.Logger
}

// NewCopier creates a copier targeting destDir. The directory is
// created on the first Copy call.
func NewCopier(destDir string, logger *logrus.Logger) *Copier {
	return &Copier{destDir: destDir, logger: logger}
}

// Copy writes every selected file into the destination directory and
// returns the copies in selection order.
func (c *Copier) Copy(selected []sampler.Selection) ([]CopiedFile, error) {
	if err := os.MkdirAll(c.destDir, 0755); err != nil {
		return nil, fmt.Errorf("create fixture directory %s: %w", c.destDir, err)
	}

	used := make(map[string]bool)
	copies := make([]CopiedFile, 0, len(selected))

	for _, sel := range selected {
		name := uniqueName(FlattenName(sel.RelPath), used)
		used[name] = true

		data, err := os.ReadFile(sel.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", sel.Path, err)
		}
		dest := filepath.Join(c.destDir, name)
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", dest, err)
		}

		c.logger.WithFields(logrus.Fields{
			"file":   name,
			"bucket": sel.Bucket,
		}).Debug("copied fixture")

		copies = append(copies, CopiedFile{Selection: sel, DestName: name})
	}

	return copies, nil
}

// DestDir returns the directory copies are written to.
func (c *Copier) DestDir() string {
	return c.destDir
}

// FlattenName turns a relative path into a single filename by replacing
// path separators with underscores.
func FlattenName(relPath string) string {
	name := strings.ReplaceAll(relPath, "/", "_")
	return strings.ReplaceAll(name, "\\", "_")
}

// uniqueName disambiguates flattened names that collide by inserting a
// counter before the extension: Foo_CMakeLists.txt, Foo_CMakeLists_2.txt.
func uniqueName(name string, used map[string]bool) string {
	if !used[name] {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !used[candidate] {
			return candidate
		}
	}
}
