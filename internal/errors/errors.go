package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorCategory represents the category of error
type ErrorCategory string

const (
	// ErrorCategoryRegistry represents task registration and lookup errors
	ErrorCategoryRegistry ErrorCategory = "REGISTRY"
	// ErrorCategoryGraph represents structural errors found while resolving a workflow
	ErrorCategoryGraph ErrorCategory = "GRAPH"
	// ErrorCategoryValidation represents invalid task specs or call arguments
	ErrorCategoryValidation ErrorCategory = "VALIDATION"
	// ErrorCategoryConfiguration represents configuration errors
	ErrorCategoryConfiguration ErrorCategory = "CONFIGURATION"
	// ErrorCategoryExecution represents failures of a single invocation
	ErrorCategoryExecution ErrorCategory = "EXECUTION"
	// ErrorCategoryWorkflow represents a workflow run that could not produce a result
	ErrorCategoryWorkflow ErrorCategory = "WORKFLOW"
)

// Error represents a structured error with context and troubleshooting information
type Error struct {
	Category        ErrorCategory
	Code            string
	Message         string
	Operation       string
	Context         map[string]interface{}
	Troubleshooting []string
	OriginalError   error
}

// Error implements the error interface
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s-%s: %s", e.Category, e.Code, e.Message))

	if e.Operation != "" {
		sb.WriteString(fmt.Sprintf(" (operation: %s)", e.Operation))
	}

	if e.OriginalError != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.OriginalError))
	}

	return sb.String()
}

// Unwrap returns the original error for error chain compatibility
func (e *Error) Unwrap() error {
	return e.OriginalError
}

// Is reports whether target is an *Error of the same category and code.
// This lets the sentinel values below be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// ContextKeys returns the context keys in sorted order
func (e *Error) ContextKeys() []string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewError creates a new structured error with the specified parameters
func NewError(category ErrorCategory, code, message, operation string) *Error {
	return &Error{
		Category:        category,
		Code:            code,
		Message:         message,
		Operation:       operation,
		Context:         make(map[string]interface{}),
		Troubleshooting: []string{},
	}
}

// WithContext adds context information to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	e.Context[key] = value
	return e
}

// WithTroubleshooting adds troubleshooting steps to the error
func (e *Error) WithTroubleshooting(steps ...string) *Error {
	e.Troubleshooting = append(e.Troubleshooting, steps...)
	return e
}

// WithOriginalError adds the original error to the structured error
func (e *Error) WithOriginalError(err error) *Error {
	e.OriginalError = err
	return e
}
