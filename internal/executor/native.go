package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/maxkimambo/taskflow/internal/task"
)

// NativeExecutor calls the task body in-process
type NativeExecutor struct{}

// NewNativeExecutor creates a native executor
func NewNativeExecutor() *NativeExecutor {
	return &NativeExecutor{}
}

// Execute calls the body with args. Errors and panics become a FAILED result.
func (e *NativeExecutor) Execute(ctx context.Context, t *task.Task, args task.Args) (result *Result) {
	start := time.Now()

	body := t.Body()
	if body == nil {
		return failed(start, fmt.Errorf("task %s has no body", t.Name()))
	}

	defer func() {
		if r := recover(); r != nil {
			result = failed(start, fmt.Errorf("task %s panicked: %v", t.Name(), r))
		}
	}()

	value, err := body(ctx, args)
	if err != nil {
		return failed(start, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return failed(start, ctxErr)
	}
	return succeeded(start, value)
}
