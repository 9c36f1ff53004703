package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Summary provides a brief summary of the error for logs
func Summary(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return fmt.Sprintf("%s-%s: %s", e.Category, e.Code, e.Message)
	}

	errStr := err.Error()
	if len(errStr) > 100 {
		return errStr[:97] + "..."
	}
	return errStr
}

// FormatForCLI formats an error for command-line display with proper spacing
func FormatForCLI(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return fmt.Sprintf("\nError: %v\n", err)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\nError [%s-%s]\n", e.Category, e.Code))
	sb.WriteString(fmt.Sprintf("  %s\n", e.Message))

	if e.Operation != "" {
		sb.WriteString(fmt.Sprintf("\nFailed Operation: %s\n", e.Operation))
	}

	if len(e.Context) > 0 {
		sb.WriteString("\nDetails:\n")
		for _, key := range e.ContextKeys() {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", key, e.Context[key]))
		}
	}

	if len(e.Troubleshooting) > 0 {
		sb.WriteString("\nHow to resolve:\n")
		for i, step := range e.Troubleshooting {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
		}
	}

	if e.OriginalError != nil {
		sb.WriteString(fmt.Sprintf("\nTechnical details: %v\n", e.OriginalError))
	}

	return sb.String()
}

// Code extracts the error code for reporting
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return fmt.Sprintf("%s-%s", e.Category, e.Code)
	}
	return "UNKNOWN"
}
