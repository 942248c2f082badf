package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/app"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/verbosity"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output    string
	LogOutput string
	// Err is the construction or run error, whichever happened first.
	Err error
	App *app.App
}

// WriteFiles writes files, keyed by relative path, under dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// RunIntegrationTest writes files into a fresh working directory, builds an
// App from cfg with that directory as WorkDir and runs it. Logs are captured
// at diagnostic level when cfg leaves the verbosity at its zero value.
func RunIntegrationTest(t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()

	workDir := t.TempDir()
	WriteFiles(t, workDir, files)
	cfg.WorkDir = workDir
	if cfg.Verbosity == verbosity.Quiet {
		cfg.Verbosity = verbosity.Diagnostic
	}

	out, logs := &SafeBuffer{}, &SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("TASKGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	result := &HarnessResult{}
	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		result.Err = err
		return result
	}

	result.App, result.Err = app.NewApp(out, logs, appConfig, modules...)
	if result.Err == nil {
		result.Err = result.App.Run(context.Background())
	}
	result.Output = out.String()
	result.LogOutput = logs.String()
	return result
}
