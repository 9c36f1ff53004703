// Package catalog declares the built-in example tasks and workflows.
package catalog

import (
	"context"
	stderrors "errors"
	"sort"

	"github.com/maxkimambo/taskflow/internal/engine"
	"github.com/maxkimambo/taskflow/internal/errors"
	"github.com/maxkimambo/taskflow/internal/flow"
	"github.com/maxkimambo/taskflow/internal/logger"
	"github.com/maxkimambo/taskflow/internal/task"
)

var exampleMetadata = map[string]string{
	"author":  "taskflow",
	"version": "1.0.0",
}

func helloWorldSpec(description string) task.Spec {
	return task.Spec{
		Name:        "hello_world",
		Type:        task.TypePython,
		Description: description,
		Metadata:    exampleMetadata,
		BaseImage:   "python:3.12",
		Entrypoint:  "python",
		Params:      []string{"a", "b"},
	}
}

func helloWorld(ctx context.Context, args task.Args) (interface{}, error) {
	logger.User.Info("Hello, World!")
	return true, nil
}

// RegisterTasks registers the example tasks. The second hello_world
// declaration is a deliberate duplicate: its conflict is returned as a warning
// and the first declaration stays registered. Any other error aborts.
func RegisterTasks(reg *task.Registry) ([]error, error) {
	var warnings []error

	if _, err := reg.Register(helloWorldSpec("Prints a greeting and returns true"), helloWorld); err != nil {
		return nil, err
	}
	if _, err := reg.Register(helloWorldSpec("Second declaration under the same name"), helloWorld); err != nil {
		if !stderrors.Is(err, errors.ErrRegistrationConflict) {
			return nil, err
		}
		warnings = append(warnings, err)
	}

	if _, err := reg.Register(task.Spec{
		Name:        "python_exit",
		Type:        task.TypeContainer,
		Description: "Runs a python container that exits with status 1",
		Metadata:    exampleMetadata,
		BaseImage:   "python:3.12",
		Entrypoint:  "python",
		Args:        []string{"-c", "exit(1)"},
	}, nil); err != nil {
		return nil, err
	}

	return warnings, nil
}

// Workflows holds the workflows the CLI can run, by name
type Workflows struct {
	byName map[string]*engine.Workflow
}

// NewWorkflows defines the example workflows
func NewWorkflows() *Workflows {
	w := &Workflows{byName: make(map[string]*engine.Workflow)}

	w.add(engine.MustDefine(engine.WorkflowSpec{
		Name:        "hello_world_workflow",
		Description: "hello_world(a, b) OR hello_world(a, b); the second call is skipped",
		Params:      []string{"a", "b"},
		Metadata:    exampleMetadata,
	}, func(args task.Args) flow.Expr {
		return flow.NewOr(
			flow.Invoke("hello_world", task.Args{"a": args["a"], "b": args["b"]}),
			flow.Invoke("hello_world", task.Args{"a": args["a"], "b": args["b"]}),
		)
	}))

	w.add(engine.MustDefine(engine.WorkflowSpec{
		Name:        "python_exit_workflow",
		Description: "Runs python_exit alone; the run fails with exit code 1",
		Metadata:    exampleMetadata,
	}, func(args task.Args) flow.Expr {
		return flow.Invoke("python_exit", nil)
	}))

	w.add(engine.MustDefine(engine.WorkflowSpec{
		Name:        "fallback_workflow",
		Description: "python_exit() OR hello_world(a, b); the failure is rescued",
		Params:      []string{"a", "b"},
		Metadata:    exampleMetadata,
	}, func(args task.Args) flow.Expr {
		return flow.NewOr(
			flow.Invoke("python_exit", nil),
			flow.Invoke("hello_world", task.Args{"a": args["a"], "b": args["b"]}),
		)
	}))

	return w
}

func (w *Workflows) add(wf *engine.Workflow) {
	w.byName[wf.Name()] = wf
}

// Lookup returns the workflow defined under name
func (w *Workflows) Lookup(name string) (*engine.Workflow, error) {
	wf, ok := w.byName[name]
	if !ok {
		return nil, errors.NewInvalidWorkflowError(name, "no workflow is defined under this name").
			WithTroubleshooting("Run 'taskflow workflows' to list the defined workflows")
	}
	return wf, nil
}

// List returns the workflows sorted by name
func (w *Workflows) List() []*engine.Workflow {
	out := make([]*engine.Workflow, 0, len(w.byName))
	for _, wf := range w.byName {
		out = append(out, wf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
