package integration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxkimambo/taskflow/integration_tests/internal/testutil"
)

func TestHelloWorldWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ws := testutil.SetupTestWorkspace(t)
	metrics := ws.Path("run.prom")

	result := ws.Run(t, "run", "hello_world_workflow", "--arg", "a=1", "--arg", "b=2", "--metrics-file", metrics)
	require.Equal(t, 0, result.ExitCode)

	assert.Contains(t, result.Stdout, "hello_world#1")
	assert.Contains(t, result.Stdout, "SUCCEEDED")
	assert.Contains(t, result.Stdout, "SKIPPED")
	assert.Contains(t, result.Stdout, "Result: true")
	assert.Contains(t, result.Stdout, "REGISTRY-001", "duplicate hello_world declaration is reported")

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `taskflow_invocations_total{status="SKIPPED",task="hello_world"} 1`)
}

func TestContainerFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ws := testutil.SetupTestWorkspace(t)
	// "false" stands in for a container runtime whose container exits 1
	config := ws.WriteConfig(t, "container:\n  runtime: \"false\"\n")

	t.Run("unrescued", func(t *testing.T) {
		result := ws.Run(t, "--config", config, "run", "python_exit_workflow")
		assert.Equal(t, 1, result.ExitCode)
		assert.Contains(t, result.Stdout, "FAILED")
		assert.Contains(t, result.Stderr, "WORKFLOW-001")
	})

	t.Run("rescued by OR", func(t *testing.T) {
		result := ws.Run(t, "--config", config, "run", "fallback_workflow", "--arg", "a=1", "--arg", "b=2")
		assert.Equal(t, 0, result.ExitCode)
		assert.Contains(t, result.Stdout, "python_exit#1")
		assert.Contains(t, result.Stdout, "FAILED")
		assert.Contains(t, result.Stdout, "Result: true")
	})
}

func TestPlanAndListings(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ws := testutil.SetupTestWorkspace(t)

	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "plan",
			args:     []string{"plan", "hello_world_workflow", "--arg", "a=1", "--arg", "b=2"},
			contains: []string{"hello_world#1", "hello_world#2", "control"},
		},
		{
			name:     "tasks",
			args:     []string{"tasks"},
			contains: []string{"hello_world", "python_exit", "CONTAINER"},
		},
		{
			name:     "workflows",
			args:     []string{"workflows"},
			contains: []string{"hello_world_workflow", "python_exit_workflow", "fallback_workflow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ws.Run(t, tt.args...)
			require.Equal(t, 0, result.ExitCode)
			for _, s := range tt.contains {
				assert.Contains(t, result.Stdout, s)
			}
		})
	}
}
