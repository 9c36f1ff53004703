package executor

import (
	"fmt"
	"sort"
	"sync"

	"github.com/maxkimambo/taskflow/internal/errors"
	"github.com/maxkimambo/taskflow/internal/task"
)

// Table selects the executor for a task by its type
type Table struct {
	mu        sync.RWMutex
	executors map[task.Type]Executor
}

// NewTable creates an empty executor table
func NewTable() *Table {
	return &Table{
		executors: make(map[task.Type]Executor),
	}
}

// DefaultTable wires the native executor for NATIVE and PYTHON tasks and a
// container executor over launcher for CONTAINER tasks
func DefaultTable(launcher Launcher) *Table {
	t := NewTable()
	native := NewNativeExecutor()
	t.MustRegister(task.TypeNative, native)
	t.MustRegister(task.TypePython, native)
	t.MustRegister(task.TypeContainer, NewContainerExecutor(launcher))
	return t
}

// Register adds an executor for a task type. A type can only be registered once.
func (t *Table) Register(taskType task.Type, executor Executor) error {
	if executor == nil {
		return fmt.Errorf("cannot register nil executor for %s", taskType)
	}
	if taskType == "" {
		return fmt.Errorf("executor task type cannot be empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.executors[taskType]; exists {
		return fmt.Errorf("executor already registered for task type %s", taskType)
	}
	t.executors[taskType] = executor
	return nil
}

// MustRegister registers the executor and panics on error
func (t *Table) MustRegister(taskType task.Type, executor Executor) {
	if err := t.Register(taskType, executor); err != nil {
		panic(err)
	}
}

// For returns the executor for tk or an UnsupportedTaskType error
func (t *Table) For(tk *task.Task) (Executor, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	executor, ok := t.executors[tk.Type()]
	if !ok {
		return nil, errors.NewUnsupportedTaskTypeError(tk.Name(), tk.Type().String())
	}
	return executor, nil
}

// Types returns the supported task types in sorted order
func (t *Table) Types() []task.Type {
	t.mu.RLock()
	defer t.mu.RUnlock()

	types := make([]task.Type, 0, len(t.executors))
	for k := range t.executors {
		types = append(types, k)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
