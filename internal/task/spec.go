package task

import (
	"strings"
	"time"

	"github.com/maxkimambo/taskflow/internal/errors"
)

// Type selects the backend that runs a task
type Type string

const (
	// TypeNative runs the registered Go body in-process
	TypeNative Type = "NATIVE"
	// TypePython is accepted for declarations written against the Python SDK and runs natively
	TypePython Type = "PYTHON"
	// TypeContainer launches base_image with entrypoint and args
	TypeContainer Type = "CONTAINER"
)

// String returns the type name
func (t Type) String() string {
	return string(t)
}

// ParseType converts a case-insensitive type name
func ParseType(s string) Type {
	return Type(strings.ToUpper(strings.TrimSpace(s)))
}

// Spec is the immutable description of one unit of work
type Spec struct {
	Name         string
	Type         Type
	Description  string
	Dependencies []string
	Metadata     map[string]string
	BaseImage    string
	Entrypoint   string
	Args         []string
	Env          map[string]string

	// Params lists the argument names a call must bind. Empty means any.
	Params []string
	// Retries is the number of extra attempts after a failed execution.
	// Nil uses the engine default; use RetryCount to set it.
	Retries *uint64
	// Timeout bounds a single attempt. Zero uses the engine default.
	Timeout time.Duration
}

// Validate checks if the spec can be registered
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.NewInvalidTaskSpecError(s.Name, "name is required")
	}
	if s.Type == "" {
		return errors.NewInvalidTaskSpecError(s.Name, "type is required")
	}
	if s.Type == TypeContainer && s.BaseImage == "" {
		return errors.NewInvalidTaskSpecError(s.Name, "base_image is required for CONTAINER tasks")
	}
	if s.Timeout < 0 {
		return errors.NewInvalidTaskSpecError(s.Name, "timeout must not be negative")
	}
	seen := make(map[string]bool, len(s.Params))
	for _, p := range s.Params {
		if seen[p] {
			return errors.NewInvalidTaskSpecError(s.Name, "duplicate parameter "+p)
		}
		seen[p] = true
	}
	return nil
}

// clone returns a deep copy so the registry never shares slices or maps with the caller
func (s Spec) clone() Spec {
	c := s
	c.Dependencies = append([]string(nil), s.Dependencies...)
	c.Args = append([]string(nil), s.Args...)
	c.Params = append([]string(nil), s.Params...)
	c.Metadata = copyMap(s.Metadata)
	c.Env = copyMap(s.Env)
	if s.Retries != nil {
		c.Retries = RetryCount(*s.Retries)
	}
	return c
}

// RetryCount returns n as a Spec.Retries value. RetryCount(0) opts a task out
// of the engine's default retries.
func RetryCount(n uint64) *uint64 {
	return &n
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
