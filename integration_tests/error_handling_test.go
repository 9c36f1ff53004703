package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxkimambo/taskflow/integration_tests/internal/testutil"
)

func TestErrorHandling(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ws := testutil.SetupTestWorkspace(t)
	badConfig := ws.WriteConfig(t, "max_parallel_tasks: 0\n")

	tests := []struct {
		name          string
		args          []string
		expectedError string
	}{
		{
			name:          "unknown_workflow",
			args:          []string{"run", "does_not_exist"},
			expectedError: "VALIDATION-003",
		},
		{
			name:          "missing_workflow_argument",
			args:          []string{"run", "hello_world_workflow", "--arg", "a=1"},
			expectedError: "VALIDATION-002",
		},
		{
			name:          "malformed_argument",
			args:          []string{"run", "hello_world_workflow", "--arg", "a"},
			expectedError: "expected name=value",
		},
		{
			name:          "invalid_config",
			args:          []string{"--config", badConfig, "tasks"},
			expectedError: "CONFIGURATION-001",
		},
		{
			name:          "missing_config",
			args:          []string{"--config", ws.Path("missing.yaml"), "tasks"},
			expectedError: "cannot read file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ws.Run(t, tt.args...)
			assert.NotEqual(t, 0, result.ExitCode)
			assert.Contains(t, result.Stderr, tt.expectedError)
		})
	}
}
