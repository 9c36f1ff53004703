package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/maxkimambo/taskflow/internal/logger"
	"github.com/maxkimambo/taskflow/internal/task"
)

// ContainerExecutor runs CONTAINER tasks through a Launcher
type ContainerExecutor struct {
	launcher Launcher
}

// NewContainerExecutor creates a container executor
func NewContainerExecutor(launcher Launcher) *ContainerExecutor {
	return &ContainerExecutor{launcher: launcher}
}

// Execute launches the task's image. A non-zero exit is FAILED with the exit
// code and captured output in the error; stdout becomes the value otherwise.
func (e *ContainerExecutor) Execute(ctx context.Context, t *task.Task, args task.Args) *Result {
	start := time.Now()
	spec := t.Spec()

	launch := LaunchSpec{
		Image:      spec.BaseImage,
		Entrypoint: spec.Entrypoint,
		Args:       BindArgs(spec.Args, args),
		Env:        spec.Env,
	}

	logger.Op.WithFields(map[string]interface{}{
		"task":       t.Name(),
		"image":      launch.Image,
		"entrypoint": launch.Entrypoint,
		"args":       launch.Args,
	}).Debug("Launching container")

	out, err := e.launcher.Launch(ctx, launch)
	if err != nil {
		return failed(start, err)
	}

	result := &Result{
		ExitCode:  out.ExitCode,
		Stdout:    out.Stdout,
		Stderr:    out.Stderr,
		StartTime: start,
		EndTime:   time.Now(),
	}
	if out.ExitCode != 0 {
		result.Status = StatusFailed
		result.Err = &ExitError{Code: out.ExitCode, Output: combinedOutput(out)}
		return result
	}

	result.Status = StatusSucceeded
	result.Value = strings.TrimSpace(out.Stdout)
	return result
}

// ExitError reports a container that exited non-zero
type ExitError struct {
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("container exited with code %d", e.Code)
	}
	return fmt.Sprintf("container exited with code %d: %s", e.Code, e.Output)
}

func combinedOutput(out *LaunchResult) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(out.Stdout); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(out.Stderr); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n")
}

// BindArgs substitutes {{name}} placeholders in the declared args with bound
// argument values. Bound arguments no placeholder consumed are appended as
// --name=value in name order.
func BindArgs(declared []string, args task.Args) []string {
	names := args.Names()
	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, "{{"+name+"}}", task.Format(args[name]))
	}
	// One left-to-right pass: substituted values are never scanned again
	replacer := strings.NewReplacer(pairs...)

	used := make(map[string]bool, len(args))
	out := make([]string, 0, len(declared)+len(args))
	for _, a := range declared {
		for _, name := range names {
			if strings.Contains(a, "{{"+name+"}}") {
				used[name] = true
			}
		}
		out = append(out, replacer.Replace(a))
	}

	for _, name := range names {
		if !used[name] {
			out = append(out, fmt.Sprintf("--%s=%s", name, task.Format(args[name])))
		}
	}
	return out
}
