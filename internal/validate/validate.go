// Package validate collects shape and request validation failures.
package validate

import (
	"fmt"
	"strings"
)

// Validator accumulates validation errors
type Validator struct {
	errors []string
}

// New creates a new validator
func New() *Validator {
	return &Validator{
		errors: make([]string, 0),
	}
}

// Addf records a failure
func (v *Validator) Addf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

// Check records msg when ok is false
func (v *Validator) Check(ok bool, format string, args ...any) {
	if !ok {
		v.Addf(format, args...)
	}
}

// RequireNonEmpty validates that a string field is not empty
func (v *Validator) RequireNonEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.errors = append(v.errors, fmt.Sprintf("%s is required", field))
	}
}

// RequireNoPathTraversal validates that a path doesn't contain ..
func (v *Validator) RequireNoPathTraversal(field, value string) {
	if strings.Contains(value, "..") {
		v.errors = append(v.errors, fmt.Sprintf("%s contains invalid path traversal", field))
	}
}

// RequireOneOf validates that value is one of allowed. Empty is accepted.
func (v *Validator) RequireOneOf(field, value string, allowed []string) {
	if value == "" {
		return
	}

	for _, a := range allowed {
		if value == a {
			return
		}
	}

	v.errors = append(v.errors, fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")))
}

// IsValid returns true if there are no validation errors
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []string {
	return v.errors
}

// Error returns a single string with all errors
func (v *Validator) Error() string {
	return strings.Join(v.errors, "; ")
}

// Err wraps the collected failures in sentinel, or returns nil when valid.
func (v *Validator) Err(sentinel error) error {
	if v.IsValid() {
		return nil
	}
	return fmt.Errorf("%w: %s", sentinel, v.Error())
}
