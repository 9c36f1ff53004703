package engine

import (
	"time"

	"github.com/maxkimambo/taskflow/internal/executor"
	"github.com/maxkimambo/taskflow/internal/task"
)

// Transition is one entry of an invocation's status history
type Transition struct {
	Status executor.Status
	At     time.Time
}

// Invocation is the state and result of one task call in a run
type Invocation struct {
	ID     string
	Task   string
	Type   task.Type
	Args   task.Args
	Status executor.Status
	Value  interface{}
	Err    error
	// Cause is the invocation whose failure cancelled this one
	Cause    string
	Attempts int
	ExitCode int
	Stdout   string
	Stderr   string
	History  []Transition

	StartTime time.Time
	EndTime   time.Time
}

func (i *Invocation) transition(status executor.Status) {
	i.Status = status
	i.History = append(i.History, Transition{Status: status, At: time.Now()})
}

// Duration returns the time spent executing, zero if the invocation never ran
func (i *Invocation) Duration() time.Duration {
	if i.StartTime.IsZero() || i.EndTime.IsZero() {
		return 0
	}
	return i.EndTime.Sub(i.StartTime)
}

// Statuses returns the history as a list of statuses
func (i *Invocation) Statuses() []executor.Status {
	out := make([]executor.Status, len(i.History))
	for n, t := range i.History {
		out[n] = t.Status
	}
	return out
}

// RunResult is the outcome of one workflow run
type RunResult struct {
	RunID    string
	Workflow string
	Value    interface{}
	// Err is the WorkflowExecutionError of a failed run
	Err error
	// Invocations are in creation order
	Invocations []*Invocation

	StartTime time.Time
	EndTime   time.Time
}

// Succeeded reports whether the run produced a value
func (r *RunResult) Succeeded() bool {
	return r.Err == nil
}

// Invocation returns the invocation with the given ID
func (r *RunResult) Invocation(id string) (*Invocation, bool) {
	for _, inv := range r.Invocations {
		if inv.ID == id {
			return inv, true
		}
	}
	return nil, false
}

// Counts returns the number of invocations per final status
func (r *RunResult) Counts() map[executor.Status]int {
	counts := make(map[executor.Status]int)
	for _, inv := range r.Invocations {
		counts[inv.Status]++
	}
	return counts
}

// Duration returns the wall time of the run
func (r *RunResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
