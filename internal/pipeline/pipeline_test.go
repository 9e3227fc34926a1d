package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wysaid/cmakepick/internal/config"
	"github.com/wysaid/cmakepick/internal/storage"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

// fakeCheckout lays out a pre-cloned tree so Fetch short-circuits and
// the pipeline runs without git or network access.
func fakeCheckout(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Source.WorkDir = t.TempDir()
	cfg.Output.FixtureDir = filepath.Join(t.TempDir(), "fixtures")

	require.NoError(t, os.MkdirAll(filepath.Join(cfg.CloneDir(), ".git"), 0755))
	require.NoError(t, os.MkdirAll(cfg.ScanRoot(), 0755))
	return cfg
}

func addFile(t *testing.T, cfg *config.Config, rel, content string) {
	t.Helper()
	path := filepath.Join(cfg.ScanRoot(), filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// simpleFile builds content with n set() commands, one per line.
func simpleFile(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "set(VAR_%d %d)\n", i, i)
	}
	return sb.String()
}

func TestRunEndToEnd(t *testing.T) {
	cfg := fakeCheckout(t)
	addFile(t, cfg, "Alpha/CMakeLists.txt", simpleFile(10))
	addFile(t, cfg, "Beta/CMakeLists.txt", simpleFile(12))
	addFile(t, cfg, "Gamma/util.cmake", simpleFile(8))
	addFile(t, cfg, "ignored/notes.txt", simpleFile(10))

	p := New(cfg, testLogger(), nil)
	result, err := p.Run(context.Background(), false, "", 0)
	require.NoError(t, err)

	// All three CMake files are simple-tier candidates; the .txt file
	// never enters the analyzed set.
	assert.Len(t, result.Analyzed, 3)
	assert.Len(t, result.Selected, 3)
	assert.Len(t, result.Copies, 3)

	for _, c := range result.Copies {
		_, err := os.Stat(filepath.Join(cfg.Output.FixtureDir, c.DestName))
		assert.NoError(t, err, "fixture %s should exist", c.DestName)
	}

	readme, err := os.ReadFile(filepath.Join(cfg.Output.FixtureDir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "contains 3 representative test files")

	_, err = os.Stat(filepath.Join(cfg.Output.FixtureDir, "manifest.yaml"))
	assert.NoError(t, err)
}

func TestRunNoAnalyzableFiles(t *testing.T) {
	cfg := fakeCheckout(t)
	// Present but too small to analyze.
	addFile(t, cfg, "Tiny/CMakeLists.txt", "project(x)\n")

	p := New(cfg, testLogger(), nil)
	_, err := p.Run(context.Background(), false, "", 0)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestRunDeterministicSelection(t *testing.T) {
	cfg := fakeCheckout(t)
	for i := 0; i < 30; i++ {
		addFile(t, cfg, fmt.Sprintf("Case%02d/CMakeLists.txt", i), simpleFile(8+i))
	}

	p := New(cfg, testLogger(), nil)
	first, err := p.Run(context.Background(), false, "", 0)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), false, filepath.Join(t.TempDir(), "again"), 0)
	require.NoError(t, err)

	require.Equal(t, len(first.Selected), len(second.Selected))
	for i := range first.Selected {
		assert.Equal(t, first.Selected[i].RelPath, second.Selected[i].RelPath)
	}
}

func testStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "runs.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAnalysisWritesRun(t *testing.T) {
	cfg := fakeCheckout(t)
	addFile(t, cfg, "Alpha/CMakeLists.txt", simpleFile(10))
	addFile(t, cfg, "Beta/helpers.cmake", simpleFile(8))

	store := testStore(t)
	p := New(cfg, testLogger(), store)
	ctx := context.Background()
	started := time.Now()

	analyzed, err := p.Analyze(ctx)
	require.NoError(t, err)

	runID, err := p.RecordAnalysis(ctx, started, analyzed)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	runs, err := store.ListRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, len(analyzed), runs[0].AnalyzedCount)
	// Analyze-only runs select nothing.
	assert.Equal(t, 0, runs[0].SelectedCount)

	files, err := store.SelectedFiles(ctx, runID)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRecordAnalysisWithoutStore(t *testing.T) {
	p := New(config.Default(), testLogger(), nil)
	runID, err := p.RecordAnalysis(context.Background(), time.Now(), nil)
	assert.NoError(t, err)
	assert.Empty(t, runID)
}

func TestRunRecordsSelection(t *testing.T) {
	cfg := fakeCheckout(t)
	addFile(t, cfg, "Alpha/CMakeLists.txt", simpleFile(10))
	addFile(t, cfg, "Beta/CMakeLists.txt", simpleFile(12))

	store := testStore(t)
	p := New(cfg, testLogger(), store)
	ctx := context.Background()

	result, err := p.Run(ctx, false, "", 0)
	require.NoError(t, err)

	runs, err := store.ListRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].ID)
	assert.Equal(t, len(result.Analyzed), runs[0].AnalyzedCount)
	assert.Equal(t, len(result.Selected), runs[0].SelectedCount)
}

func TestAnalyzeMissingCheckout(t *testing.T) {
	cfg := config.Default()
	cfg.Source.WorkDir = filepath.Join(t.TempDir(), "empty")

	p := New(cfg, testLogger(), nil)
	_, err := p.Analyze(context.Background())
	assert.Error(t, err)
}
