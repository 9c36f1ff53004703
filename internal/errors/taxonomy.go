package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes, unique within their category
const (
	CodeRegistrationConflict = "001"
	CodeUnknownTask          = "002"

	CodeCyclicDependency    = "001"
	CodeUnsupportedTaskType = "002"

	CodeInvalidTaskSpec  = "001"
	CodeInvalidArguments = "002"
	CodeInvalidWorkflow  = "003"

	CodeInvalidConfig = "001"

	CodeExecutionFailure = "001"

	CodeWorkflowExecution = "001"
	CodeRunInterrupted    = "002"
)

// Sentinels for errors.Is. Only Category and Code are compared.
var (
	ErrRegistrationConflict = &Error{Category: ErrorCategoryRegistry, Code: CodeRegistrationConflict}
	ErrUnknownTask          = &Error{Category: ErrorCategoryRegistry, Code: CodeUnknownTask}
	ErrCyclicDependency     = &Error{Category: ErrorCategoryGraph, Code: CodeCyclicDependency}
	ErrUnsupportedTaskType  = &Error{Category: ErrorCategoryGraph, Code: CodeUnsupportedTaskType}
	ErrInvalidTaskSpec      = &Error{Category: ErrorCategoryValidation, Code: CodeInvalidTaskSpec}
	ErrInvalidArguments     = &Error{Category: ErrorCategoryValidation, Code: CodeInvalidArguments}
	ErrInvalidWorkflow      = &Error{Category: ErrorCategoryValidation, Code: CodeInvalidWorkflow}
	ErrInvalidConfig        = &Error{Category: ErrorCategoryConfiguration, Code: CodeInvalidConfig}
	ErrExecutionFailure     = &Error{Category: ErrorCategoryExecution, Code: CodeExecutionFailure}
	ErrWorkflowExecution    = &Error{Category: ErrorCategoryWorkflow, Code: CodeWorkflowExecution}
	ErrRunInterrupted       = &Error{Category: ErrorCategoryWorkflow, Code: CodeRunInterrupted}
)

// NewRegistrationConflictError creates an error for a task name that is already registered
func NewRegistrationConflictError(name string) *Error {
	return NewError(ErrorCategoryRegistry, CodeRegistrationConflict,
		fmt.Sprintf("task '%s' is already registered", name),
		"Task registration").
		WithContext("task", name).
		WithTroubleshooting(
			"Give every declared task a unique name",
			"Check for a copy-pasted declaration that kept the original name",
		)
}

// NewUnknownTaskError creates an error for a reference to a task that was never registered.
// referencedBy is empty when the workflow invokes the task directly.
func NewUnknownTaskError(name, referencedBy string) *Error {
	msg := fmt.Sprintf("task '%s' is not registered", name)
	if referencedBy != "" {
		msg = fmt.Sprintf("task '%s' depends on unregistered task '%s'", referencedBy, name)
	}
	err := NewError(ErrorCategoryRegistry, CodeUnknownTask, msg, "Task lookup").
		WithContext("task", name).
		WithTroubleshooting(
			"Register the task before defining workflows that use it",
			"Run 'taskflow tasks' to list the registered tasks",
		)
	if referencedBy != "" {
		err = err.WithContext("referenced_by", referencedBy)
	}
	return err
}

// NewCyclicDependencyError creates an error naming the invocations left on a cycle
func NewCyclicDependencyError(members []string) *Error {
	return NewError(ErrorCategoryGraph, CodeCyclicDependency,
		fmt.Sprintf("dependency cycle between: %s", strings.Join(members, ", ")),
		"Dependency resolution").
		WithContext("cycle", members).
		WithTroubleshooting(
			"Remove one of the declared dependencies between the listed tasks",
			"A task must not list itself in its dependencies",
		)
}

// NewUnsupportedTaskTypeError creates an error for a task type without an executor
func NewUnsupportedTaskTypeError(taskName, taskType string) *Error {
	return NewError(ErrorCategoryGraph, CodeUnsupportedTaskType,
		fmt.Sprintf("no executor for task type '%s' (task '%s')", taskType, taskName),
		"Executor selection").
		WithContext("task", taskName).
		WithContext("type", taskType)
}

// NewInvalidTaskSpecError creates an error for a spec that cannot be registered
func NewInvalidTaskSpecError(name, reason string) *Error {
	return NewError(ErrorCategoryValidation, CodeInvalidTaskSpec,
		fmt.Sprintf("invalid spec for task '%s': %s", name, reason),
		"Task registration").
		WithContext("task", name)
}

// NewInvalidArgumentsError creates an error for a call whose arguments do not match the task parameters
func NewInvalidArgumentsError(invocationID, taskName, reason string) *Error {
	return NewError(ErrorCategoryValidation, CodeInvalidArguments,
		fmt.Sprintf("invalid arguments for '%s': %s", invocationID, reason),
		"Dependency resolution").
		WithContext("invocation", invocationID).
		WithContext("task", taskName)
}

// NewInvalidWorkflowError creates an error for a workflow definition or composition that cannot run
func NewInvalidWorkflowError(workflow, reason string) *Error {
	return NewError(ErrorCategoryValidation, CodeInvalidWorkflow,
		fmt.Sprintf("invalid workflow '%s': %s", workflow, reason),
		"Workflow definition").
		WithContext("workflow", workflow)
}

// NewInvalidConfigError creates an error for a configuration value that fails validation
func NewInvalidConfigError(field string, value interface{}, reason string) *Error {
	return NewError(ErrorCategoryConfiguration, CodeInvalidConfig,
		fmt.Sprintf("invalid value for %s: %v (%s)", field, value, reason),
		"Configuration loading").
		WithContext("field", field).
		WithContext("value", value).
		WithTroubleshooting("Use --help to see available options and defaults")
}

// NewExecutionFailureError wraps the failure of a single invocation
func NewExecutionFailureError(invocationID, taskName string, originalErr error) *Error {
	return NewError(ErrorCategoryExecution, CodeExecutionFailure,
		fmt.Sprintf("invocation '%s' failed", invocationID),
		"Task execution").
		WithContext("invocation", invocationID).
		WithContext("task", taskName).
		WithOriginalError(originalErr)
}

// NewWorkflowExecutionError wraps the first failure that no short-circuit masked
func NewWorkflowExecutionError(workflow, invocationID, taskName string, originalErr error) *Error {
	return NewError(ErrorCategoryWorkflow, CodeWorkflowExecution,
		fmt.Sprintf("workflow '%s' failed at invocation '%s' (task '%s')", workflow, invocationID, taskName),
		"Workflow run").
		WithContext("workflow", workflow).
		WithContext("invocation", invocationID).
		WithContext("task", taskName).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Inspect the invocation's error detail in the run report",
			"Re-run with --verbose to see every state transition",
		)
}

// NewRunInterruptedError reports a run abandoned because its context ended
func NewRunInterruptedError(workflow string, cause error) *Error {
	return NewError(ErrorCategoryWorkflow, CodeRunInterrupted,
		fmt.Sprintf("workflow '%s' was interrupted", workflow),
		"Workflow run").
		WithContext("workflow", workflow).
		WithOriginalError(cause)
}

// IsStructural reports whether err was raised before any invocation could start
func IsStructural(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Category {
	case ErrorCategoryRegistry, ErrorCategoryGraph, ErrorCategoryValidation, ErrorCategoryConfiguration:
		return true
	}
	return false
}

// ContextValue returns the value stored under key in the first *Error of the chain
func ContextValue(err error, key string) (interface{}, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return nil, false
	}
	v, ok := e.Context[key]
	return v, ok
}
