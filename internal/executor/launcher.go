package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
)

// LaunchSpec is everything a container runtime needs to start one process
type LaunchSpec struct {
	Image      string
	Entrypoint string
	Args       []string
	Env        map[string]string
}

// LaunchResult is the captured outcome of a finished container process
type LaunchResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Launcher starts a container and waits for it to exit. A non-zero exit is a
// LaunchResult, not an error; errors mean the process could not be run at all.
type Launcher interface {
	Launch(ctx context.Context, spec LaunchSpec) (*LaunchResult, error)
}

// CLILauncher runs containers through a docker-compatible CLI
type CLILauncher struct {
	// Runtime is the CLI binary, e.g. docker or podman
	Runtime string
	// Pull is passed as --pull when set (always, missing, never)
	Pull string
	// ExtraArgs are inserted after "run"
	ExtraArgs []string
}

// NewCLILauncher creates a launcher for the given runtime binary
func NewCLILauncher(runtime string) *CLILauncher {
	if runtime == "" {
		runtime = "docker"
	}
	return &CLILauncher{Runtime: runtime}
}

// Command returns the argv used to launch spec
func (l *CLILauncher) Command(spec LaunchSpec) []string {
	argv := []string{l.Runtime, "run", "--rm"}
	if l.Pull != "" {
		argv = append(argv, "--pull="+l.Pull)
	}
	argv = append(argv, l.ExtraArgs...)
	if spec.Entrypoint != "" {
		argv = append(argv, "--entrypoint", spec.Entrypoint)
	}

	keys := make([]string, 0, len(spec.Env))
	for k := range spec.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		argv = append(argv, "-e", fmt.Sprintf("%s=%s", k, spec.Env[k]))
	}

	argv = append(argv, spec.Image)
	return append(argv, spec.Args...)
}

// Launch runs the container to completion and captures its output
func (l *CLILauncher) Launch(ctx context.Context, spec LaunchSpec) (*LaunchResult, error) {
	if spec.Image == "" {
		return nil, fmt.Errorf("container image is required")
	}

	argv := l.Command(spec)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &LaunchResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("container %s cancelled: %w", spec.Image, ctx.Err())
	}
	return nil, fmt.Errorf("failed to start %s: %w", l.Runtime, err)
}
