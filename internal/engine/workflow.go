package engine

import (
	"fmt"
	"strings"

	"github.com/maxkimambo/taskflow/internal/errors"
	"github.com/maxkimambo/taskflow/internal/flow"
	"github.com/maxkimambo/taskflow/internal/task"
)

// WorkflowSpec describes a workflow the way TaskSpec describes a task
type WorkflowSpec struct {
	Name        string
	Description string
	// Params lists the argument names a run must bind. Empty means any.
	Params   []string
	Metadata map[string]string
}

// ComposeFunc builds the expression tree of one run from its arguments
type ComposeFunc func(args task.Args) flow.Expr

// Workflow is a named composition of task calls
type Workflow struct {
	spec    WorkflowSpec
	compose ComposeFunc
}

// Define creates a workflow. Nothing is resolved until the workflow runs.
func Define(spec WorkflowSpec, compose ComposeFunc) (*Workflow, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, errors.NewInvalidWorkflowError(spec.Name, "name is required")
	}
	if compose == nil {
		return nil, errors.NewInvalidWorkflowError(spec.Name, "compose function is required")
	}
	spec.Params = append([]string(nil), spec.Params...)
	return &Workflow{spec: spec, compose: compose}, nil
}

// MustDefine defines the workflow and panics on error
func MustDefine(spec WorkflowSpec, compose ComposeFunc) *Workflow {
	wf, err := Define(spec, compose)
	if err != nil {
		panic(err)
	}
	return wf
}

// Name returns the workflow name
func (w *Workflow) Name() string {
	return w.spec.Name
}

// Spec returns the workflow spec
func (w *Workflow) Spec() WorkflowSpec {
	return w.spec
}

// Compose checks args against the declared params and builds a fresh
// expression tree. A panic in the compose function is reported as an error.
func (w *Workflow) Compose(args task.Args) (expr flow.Expr, err error) {
	if args == nil {
		args = task.Args{}
	}
	if err := w.checkArgs(args); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			expr = nil
			err = errors.NewInvalidWorkflowError(w.spec.Name, fmt.Sprintf("compose panicked: %v", r))
		}
	}()

	expr = w.compose(args)
	if err := flow.Validate(expr); err != nil {
		return nil, errors.NewInvalidWorkflowError(w.spec.Name, err.Error())
	}
	return expr, nil
}

func (w *Workflow) checkArgs(args task.Args) error {
	if len(w.spec.Params) == 0 {
		return nil
	}
	declared := make(map[string]bool, len(w.spec.Params))
	for _, p := range w.spec.Params {
		declared[p] = true
		if _, ok := args[p]; !ok {
			return errors.NewInvalidArgumentsError(w.spec.Name, w.spec.Name, "missing "+p).
				WithContext("params", w.spec.Params)
		}
	}
	for _, name := range args.Names() {
		if !declared[name] {
			return errors.NewInvalidArgumentsError(w.spec.Name, w.spec.Name, "unexpected "+name).
				WithContext("params", w.spec.Params)
		}
	}
	return nil
}
