package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tldrscope/internal/domain"
	"tldrscope/internal/infra/config"
	"tldrscope/internal/infra/process"
)

func writeCaptures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, process.IndexFileName), []byte(forestIndex), 0o644))
	for name, text := range forestCommands {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".tldr"), []byte(text), 0o644))
	}
	return dir
}

func testSettings(t *testing.T) config.Settings {
	t.Helper()
	root := t.TempDir()
	return config.Settings{
		Dialect:         domain.DialectAuto,
		DocFlag:         domain.DefaultDocFlag,
		TopN:            domain.DefaultTopN,
		OutputDir:       filepath.Join(root, "out"),
		Formats:         []string{"json", "markdown"},
		ArchivePath:     filepath.Join(root, "archive.db"),
		MetricsTextfile: filepath.Join(root, "metrics", "tldrscope.prom"),
		LogLevel:        domain.DefaultLogLevel,
		WatchDebounce:   20 * time.Millisecond,
	}
}

func TestService_AnalyzeWritesArchivesAndExportsMetrics(t *testing.T) {
	settings := testSettings(t)
	service, cleanup, err := InitializeService(settings, nil)
	require.NoError(t, err)
	defer cleanup()

	source, err := process.NewFileSource(writeCaptures(t))
	require.NoError(t, err)

	result, err := service.Analyze(context.Background(), source)
	require.NoError(t, err)
	require.Len(t, result.Paths, 2)
	assert.Equal(t, filepath.Join(settings.OutputDir, "forest_tldr_analytics.json"), result.Paths[0])
	assert.Equal(t, filepath.Join(settings.OutputDir, "forest_tldr_report.md"), result.Paths[1])
	assert.Equal(t, []string{"gone"}, result.Report.Inaccessible)

	entries, err := service.Archive().List("forest")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, result.Report.RunID, entries[0].RunID)

	metrics, err := os.ReadFile(settings.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "tldrscope_runs_total")
	assert.True(t, strings.Contains(string(metrics), `tldrscope_accessible_commands{tool="forest"} 2`))
}

func TestService_ValidateWritesNoReports(t *testing.T) {
	settings := testSettings(t)
	settings.ArchivePath = ""
	service, cleanup, err := InitializeService(settings, nil)
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, service.Archive())

	source, err := process.NewFileSource(writeCaptures(t))
	require.NoError(t, err)

	v, err := service.Validate(context.Background(), source)
	require.NoError(t, err)
	assert.False(t, v.Success)

	_, err = os.Stat(settings.OutputDir)
	assert.True(t, os.IsNotExist(err))
}

func TestWatch_RerunsOnChange(t *testing.T) {
	dir := writeCaptures(t)
	index := filepath.Join(dir, process.IndexFileName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, index, 20*time.Millisecond, nil, func(context.Context) error {
			runs.Add(1)
			return nil
		})
	}()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	// Give the watcher a moment to register before touching the file.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(index, []byte(forestIndex+"\n"), 0o644))
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_RequiresExistingPath(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), 0, nil, func(context.Context) error { return nil })
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeInvalidArgument, code)
}
