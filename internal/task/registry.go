package task

import (
	"sort"
	"sync"

	"github.com/maxkimambo/taskflow/internal/errors"
	"github.com/maxkimambo/taskflow/internal/logger"
)

// Registry maps task names to registered tasks. It is owned by whoever creates it;
// there is no process-wide instance.
type Registry struct {
	mu     sync.RWMutex
	tasks  map[string]*Task
	order  []string
	closed bool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]*Task),
	}
}

// Register validates spec and binds it to body.
// A name that is already registered fails with a RegistrationConflict and the first
// registration is kept.
func (r *Registry) Register(spec Spec, body Body) (*Task, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if body == nil && spec.Type != TypeContainer {
		return nil, errors.NewInvalidTaskSpecError(spec.Name, "a body is required for "+spec.Type.String()+" tasks")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errors.NewInvalidTaskSpecError(spec.Name, "registry is closed")
	}

	if _, exists := r.tasks[spec.Name]; exists {
		logger.Op.WithFields(map[string]interface{}{
			"task": spec.Name,
		}).Warn("Rejected duplicate task registration")
		return nil, errors.NewRegistrationConflictError(spec.Name)
	}

	t := &Task{spec: spec.clone(), body: body}
	r.tasks[spec.Name] = t
	r.order = append(r.order, spec.Name)

	logger.Op.WithFields(map[string]interface{}{
		"task": spec.Name,
		"type": spec.Type.String(),
	}).Debug("Registered task")

	return t, nil
}

// MustRegister registers the task and panics on error
func (r *Registry) MustRegister(spec Spec, body Body) *Task {
	t, err := r.Register(spec, body)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the task registered under name
func (r *Registry) Lookup(name string) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[name]
	if !ok {
		return nil, errors.NewUnknownTaskError(name, "")
	}
	return t, nil
}

// Has reports whether a task is registered under name
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tasks[name]
	return ok
}

// List returns the registered tasks in registration order
func (r *Registry) List() []*Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Task, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tasks[name])
	}
	return out
}

// Names returns the registered task names sorted alphabetically
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tasks
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// Close ends the registration phase. Lookups keep working; further
// registrations are rejected.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}
