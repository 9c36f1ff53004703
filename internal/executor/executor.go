package executor

import (
	"context"
	"time"

	"github.com/maxkimambo/taskflow/internal/task"
)

// Executor runs one attempt of a task with bound arguments. Implementations
// never return a nil Result and never retry.
type Executor interface {
	Execute(ctx context.Context, t *task.Task, args task.Args) *Result
}

// Status represents the lifecycle state of an invocation
type Status int

const (
	// StatusPending indicates the invocation is waiting for its predecessors
	StatusPending Status = iota
	// StatusReady indicates all predecessors are settled
	StatusReady
	// StatusRunning indicates the invocation is executing
	StatusRunning
	// StatusSucceeded indicates the invocation returned a value
	StatusSucceeded
	// StatusFailed indicates the backend reported an error
	StatusFailed
	// StatusSkipped indicates a short-circuit made the invocation unnecessary
	StatusSkipped
	// StatusCancelled indicates the invocation was abandoned after a failure
	StatusCancelled
)

// String returns a string representation of the Status
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusReady:
		return "READY"
	case StatusRunning:
		return "RUNNING"
	case StatusSucceeded:
		return "SUCCEEDED"
	case StatusFailed:
		return "FAILED"
	case StatusSkipped:
		return "SKIPPED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transition is possible
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusSkipped, StatusCancelled:
		return true
	}
	return false
}

// Result is the outcome of one execution attempt
type Result struct {
	Status Status
	Value  interface{}
	Err    error

	// Container backends only
	ExitCode int
	Stdout   string
	Stderr   string

	StartTime time.Time
	EndTime   time.Time
}

// Duration returns how long the attempt took
func (r *Result) Duration() time.Duration {
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

func succeeded(start time.Time, value interface{}) *Result {
	return &Result{Status: StatusSucceeded, Value: value, StartTime: start, EndTime: time.Now()}
}

func failed(start time.Time, err error) *Result {
	return &Result{Status: StatusFailed, Err: err, StartTime: start, EndTime: time.Now()}
}
