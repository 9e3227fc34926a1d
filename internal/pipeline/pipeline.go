// Package pipeline runs the full fixture selection: clone, scan,
// score, sample, copy, report, record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wysaid/cmakepick/internal/config"
	"github.com/wysaid/cmakepick/internal/fixture"
	"github.com/wysaid/cmakepick/internal/ingest"
	"github.com/wysaid/cmakepick/internal/metrics"
	"github.com/wysaid/cmakepick/internal/report"
	"github.com/wysaid/cmakepick/internal/sampler"
	"github.com/wysaid/cmakepick/internal/scanner"
	"github.com/wysaid/cmakepick/internal/storage"
)

// ErrNoFiles means the scan found nothing worth analyzing. The CLI
// turns this into a non-zero exit.
var ErrNoFiles = errors.New("no analyzable CMake files found")

// Pipeline wires the selection stages together. The store is optional;
// without one, runs simply are not recorded.
type Pipeline struct {
	cfg    *config.Config
	logger *logrus.Logger
	store  *storage.Store
}

// New creates a pipeline. store may be nil.
func New(cfg *config.Config, logger *logrus.Logger, store *storage.Store) *Pipeline {
	return &Pipeline{cfg: cfg, logger: logger, store: store}
}

// Result summarizes one completed selection run.
type Result struct {
	RunID    string
	Analyzed []*metrics.FileMetrics
	Selected []sampler.Selection
	Copies   []fixture.CopiedFile
	DestDir  string
	Duration time.Duration
}

// Fetch ensures the sparse checkout exists.
func (p *Pipeline) Fetch(ctx context.Context, force bool) error {
	cloner := ingest.NewCloner(p.cfg.Source.RepoURL, p.cfg.CloneDir(), p.cfg.Source.SparseDir, p.logger)
	return cloner.Clone(ctx, force)
}

// Analyze scans the checkout and scores every matching file. Files
// that cannot be read are skipped; files with too few non-empty lines
// are excluded. The returned set is sorted by complexity descending.
func (p *Pipeline) Analyze(ctx context.Context) ([]*metrics.FileMetrics, error) {
	scan, err := scanner.New(p.cfg.ScanRoot(), p.cfg.Source.Patterns)
	if err != nil {
		return nil, err
	}

	files, err := scan.Scan()
	if err != nil {
		return nil, err
	}
	p.logger.WithField("count", len(files)).Info("found CMake files")

	var analyzed []*metrics.FileMetrics
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			// Unreadable files are skipped, not fatal.
			p.logger.WithError(err).WithField("file", path).Debug("skipping unreadable file")
			continue
		}
		rel, err := filepath.Rel(scan.Root(), path)
		if err != nil {
			rel = filepath.Base(path)
		}
		if m := metrics.Analyze(path, filepath.ToSlash(rel), string(data)); m != nil {
			analyzed = append(analyzed, m)
		}
	}

	if len(analyzed) == 0 {
		return nil, ErrNoFiles
	}
	p.logger.WithField("count", len(analyzed)).Info("analyzed files")

	sampler.SortByComplexity(analyzed)
	return analyzed, nil
}

// RecordAnalysis stores an analyze-only run, with no selection marked.
// It is a no-op without a configured store and returns the run ID
// otherwise.
func (p *Pipeline) RecordAnalysis(ctx context.Context, started time.Time, analyzed []*metrics.FileMetrics) (string, error) {
	if p.store == nil {
		return "", nil
	}
	run := storage.Run{
		ID:            uuid.New().String(),
		RepoURL:       p.cfg.Source.RepoURL,
		StartedAt:     started,
		CompletedAt:   time.Now(),
		AnalyzedCount: len(analyzed),
	}
	if err := p.store.RecordRun(ctx, run, analyzed, nil); err != nil {
		return "", err
	}
	return run.ID, nil
}

// Run executes the whole selection and materializes the fixture
// directory at destDir (the configured default when empty).
func (p *Pipeline) Run(ctx context.Context, force bool, destDir string, limit int) (*Result, error) {
	started := time.Now()

	if err := p.Fetch(ctx, force); err != nil {
		return nil, fmt.Errorf("clone failed: %w", err)
	}

	analyzed, err := p.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	if destDir == "" {
		destDir = p.cfg.Output.FixtureDir
	}
	if limit <= 0 {
		limit = p.cfg.Selection.Cap
	}

	selected := sampler.Select(analyzed, p.cfg.Selection.Buckets, limit)

	copier := fixture.NewCopier(destDir, p.logger)
	copies, err := copier.Copy(selected)
	if err != nil {
		return nil, err
	}

	writer := report.NewWriter(p.cfg.Source.RepoURL, p.cfg.Source.SparseDir)
	if err := writer.WriteAll(destDir, copies); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:    uuid.New().String(),
		Analyzed: analyzed,
		Selected: selected,
		Copies:   copies,
		DestDir:  destDir,
		Duration: time.Since(started),
	}

	if p.store != nil {
		run := storage.Run{
			ID:            result.RunID,
			RepoURL:       p.cfg.Source.RepoURL,
			StartedAt:     started,
			CompletedAt:   time.Now(),
			AnalyzedCount: len(analyzed),
			SelectedCount: len(selected),
		}
		if err := p.store.RecordRun(ctx, run, analyzed, selected); err != nil {
			// Recording is bookkeeping; the fixtures are already on disk.
			p.logger.WithError(err).Warn("failed to record run")
		}
	}

	return result, nil
}
