package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxkimambo/taskflow/internal/task"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name     string
		pairs    []string
		expected task.Args
		wantErr  bool
	}{
		{name: "empty", pairs: nil, expected: task.Args{}},
		{name: "typed values", pairs: []string{"a=1", "b=2.5", "c=true", "d=hello"},
			expected: task.Args{"a": 1, "b": 2.5, "c": true, "d": "hello"}},
		{name: "value with equals", pairs: []string{"q=x=y"}, expected: task.Args{"q": "x=y"}},
		{name: "empty value", pairs: []string{"a="}, expected: task.Args{"a": ""}},
		{name: "missing equals", pairs: []string{"a"}, wantErr: true},
		{name: "missing name", pairs: []string{"=1"}, wantErr: true},
		{name: "duplicate", pairs: []string{"a=1", "a=2"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := parseArgs(tt.pairs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, args)
		})
	}
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{name: "tasks", args: []string{"tasks"}, contains: []string{"hello_world", "python_exit", "python:3.12"}},
		{name: "workflows", args: []string{"workflows"}, contains: []string{"hello_world_workflow", "fallback_workflow"}},
		{name: "plan", args: []string{"plan", "hello_world_workflow", "--arg", "a=1", "--arg", "b=2"},
			contains: []string{"hello_world#1", "hello_world#2", "control"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetArgs(append(tt.args, "--quiet"))

			require.NoError(t, rootCmd.Execute())
			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func TestUnknownWorkflow(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"plan", "nope", "--quiet"})

	err := rootCmd.Execute()
	assert.Error(t, err)
}
