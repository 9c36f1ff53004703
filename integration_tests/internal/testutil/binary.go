package testutil

import (
	"os"
	"path/filepath"
)

// GetTaskflowBinaryPath returns the path to the taskflow binary for integration tests.
// It checks multiple locations in order of preference:
// 1. Current directory (./taskflow)
// 2. Parent directory (../taskflow)
// 3. bin directory (../bin/taskflow)
func GetTaskflowBinaryPath() string {
	if _, err := os.Stat("taskflow"); err == nil {
		return "./taskflow"
	}

	if _, err := os.Stat("../taskflow"); err == nil {
		return "../taskflow"
	}

	binPath := filepath.Join("..", "bin", "taskflow")
	if _, err := os.Stat(binPath); err == nil {
		return binPath
	}

	return "./taskflow"
}
