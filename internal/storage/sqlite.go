// Package storage persists selection runs so past picks stay auditable.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/wysaid/cmakepick/internal/metrics"
	"github.com/wysaid/cmakepick/internal/sampler"
)

// Run is one recorded analyze/select invocation.
type Run struct {
	ID            string    `db:"id"`
	RepoURL       string    `db:"repo_url"`
	StartedAt     time.Time `db:"started_at"`
	CompletedAt   time.Time `db:"completed_at"`
	AnalyzedCount int       `db:"analyzed_count"`
	SelectedCount int       `db:"selected_count"`
}

// Store keeps runs and their per-file metrics in a local SQLite file.
type Store struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewStore opens (creating if needed) the run store at path.
func NewStore(path string, logger *logrus.Logger) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	store := &Store{db: db, logger: logger}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		repo_url TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		completed_at DATETIME NOT NULL,
		analyzed_count INTEGER NOT NULL,
		selected_count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS file_metrics (
		run_id TEXT NOT NULL,
		rel_path TEXT NOT NULL,
		lines INTEGER NOT NULL,
		non_empty_lines INTEGER NOT NULL,
		commands INTEGER NOT NULL,
		comments INTEGER NOT NULL,
		functions INTEGER NOT NULL,
		macros INTEGER NOT NULL,
		if_blocks INTEGER NOT NULL,
		foreach_loops INTEGER NOT NULL,
		while_loops INTEGER NOT NULL,
		multiline_commands INTEGER NOT NULL,
		complexity INTEGER NOT NULL,
		bucket TEXT,
		selected INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, rel_path),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_file_metrics_run ON file_metrics(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun stores a completed run together with its analyzed metrics.
// The selection is marked on the matching metric rows. Row-level insert
// failures are logged and skipped so a finished selection is never
// thrown away over a bookkeeping hiccup.
func (s *Store) RecordRun(ctx context.Context, run Run, analyzed []*metrics.FileMetrics, selected []sampler.Selection) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, repo_url, started_at, completed_at, analyzed_count, selected_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.RepoURL, run.StartedAt, run.CompletedAt, run.AnalyzedCount, run.SelectedCount,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	buckets := make(map[string]string, len(selected))
	for _, sel := range selected {
		buckets[sel.RelPath] = sel.Bucket
	}

	for _, m := range analyzed {
		bucket, isSelected := buckets[m.RelPath]
		var bucketVal interface{}
		if isSelected {
			bucketVal = bucket
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO file_metrics (
				run_id, rel_path, lines, non_empty_lines, commands, comments,
				functions, macros, if_blocks, foreach_loops, while_loops,
				multiline_commands, complexity, bucket, selected
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, m.RelPath, m.Lines, m.NonEmptyLines, m.Commands, m.Comments,
			m.Functions, m.Macros, m.IfBlocks, m.ForeachLoops, m.WhileLoops,
			m.MultilineCmds, m.Complexity, bucketVal, isSelected,
		)
		if err != nil {
			s.logger.WithError(err).WithField("file", m.RelPath).Warn("failed to record file metrics")
		}
	}

	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	err := s.db.SelectContext(ctx, &runs, `
		SELECT id, repo_url, started_at, completed_at, analyzed_count, selected_count
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// SelectedFiles returns the rel paths chosen in a given run, with
// their buckets, ordered by complexity descending.
func (s *Store) SelectedFiles(ctx context.Context, runID string) ([]metrics.FileMetrics, error) {
	var files []metrics.FileMetrics
	err := s.db.SelectContext(ctx, &files, `
		SELECT rel_path, lines, non_empty_lines, commands, comments,
		       functions, macros, if_blocks, foreach_loops, while_loops,
		       multiline_commands, complexity
		FROM file_metrics
		WHERE run_id = ? AND selected = 1
		ORDER BY complexity DESC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query selected files: %w", err)
	}
	return files, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
