package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Workspace is a scratch directory holding config and output files of one test
type Workspace struct {
	Dir    string
	binary string
}

// Result is the captured outcome of one CLI invocation
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// SetupTestWorkspace creates a workspace under the test's temp dir.
// PRESERVE_TEST_WORKSPACE=true keeps a copy under tmp_integration_tests/ for debugging.
func SetupTestWorkspace(t *testing.T) *Workspace {
	t.Helper()

	dir := t.TempDir()
	if os.Getenv("PRESERVE_TEST_WORKSPACE") == "true" {
		root, err := filepath.Abs(filepath.Join("..", "tmp_integration_tests"))
		require.NoError(t, err, "failed to resolve workspace root")

		dir = filepath.Join(root, strings.ReplaceAll(t.Name(), "/", "_"))
		require.NoError(t, os.MkdirAll(dir, 0755), "failed to create test workspace directory")
		t.Logf("Workspace preserved in: %s", dir)
	}

	binary, err := filepath.Abs(GetTaskflowBinaryPath())
	require.NoError(t, err, "failed to resolve taskflow binary")

	return &Workspace{Dir: dir, binary: binary}
}

// WriteConfig writes a YAML config file into the workspace and returns its path
func (w *Workspace) WriteConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(w.Dir, "taskflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "failed to write config")
	return path
}

// Path returns a path inside the workspace
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Run executes the taskflow binary inside the workspace
func (w *Workspace) Run(t *testing.T, args ...string) Result {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, w.binary, args...)
	cmd.Dir = w.Dir
	cmd.Env = append(os.Environ(), "LOG_MODE=", "LOG_FORMAT=")

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
	} else {
		require.NoError(t, err, "failed to run taskflow")
	}

	t.Logf("taskflow %s\nstdout:\n%s\nstderr:\n%s", strings.Join(args, " "), result.Stdout, result.Stderr)
	return result
}
