package task

import "context"

// Body is the executable logic bound to a native task
type Body func(ctx context.Context, args Args) (interface{}, error)

// Task is a registered Spec bound to its body. Immutable after registration.
type Task struct {
	spec Spec
	body Body
}

// Spec returns a copy of the task's spec
func (t *Task) Spec() Spec {
	return t.spec.clone()
}

// Name returns the unique task name
func (t *Task) Name() string {
	return t.spec.Name
}

// Type returns the task type
func (t *Task) Type() Type {
	return t.spec.Type
}

// Body returns the bound callable. Container tasks may have none.
func (t *Task) Body() Body {
	return t.body
}
