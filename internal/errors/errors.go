// Package errors provides centralized error handling with component and
// category metadata for the decision pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"time"
)

// ErrorCategory groups errors for logging and diagnostics.
type ErrorCategory string

const (
	CategorySensorRead    ErrorCategory = "sensor-read"
	CategoryInference     ErrorCategory = "inference"
	CategoryModelLoad     ErrorCategory = "model-loading"
	CategoryTransmission  ErrorCategory = "transmission"
	CategoryRateLimit     ErrorCategory = "rate-limit"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryValidation    ErrorCategory = "validation"
	CategoryDatastore     ErrorCategory = "datastore"
	CategoryTimeout       ErrorCategory = "timeout"
	CategoryGeneric       ErrorCategory = "generic"
)

// ComponentUnknown is used when the component was not set by the caller.
const ComponentUnknown = "unknown"

// EnhancedError wraps an error with component, category and context metadata.
type EnhancedError struct {
	Err       error
	Component string
	Category  ErrorCategory
	Context   map[string]any
	Timestamp time.Time
}

// Error implements the error interface.
func (ee *EnhancedError) Error() string {
	return ee.Err.Error()
}

// Unwrap implements the error unwrapping interface.
func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// Is matches EnhancedErrors by category, otherwise defers to the wrapped error.
func (ee *EnhancedError) Is(target error) bool {
	if ee2, ok := target.(*EnhancedError); ok {
		return ee.Category == ee2.Category
	}
	return stderrors.Is(ee.Err, target)
}

// GetContext returns a copy of the error context.
func (ee *EnhancedError) GetContext() map[string]any {
	if ee.Context == nil {
		return nil
	}
	cp := make(map[string]any, len(ee.Context))
	maps.Copy(cp, ee.Context)
	return cp
}

// LogArgs flattens the error metadata into slog key-value pairs.
func (ee *EnhancedError) LogArgs() []any {
	args := []any{"component", ee.Component, "category", string(ee.Category)}
	for k, v := range ee.Context {
		args = append(args, k, v)
	}
	return args
}

// ErrorBuilder provides a fluent interface for creating enhanced errors.
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New creates a builder wrapping err.
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf creates a builder wrapping a formatted error.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

// Component sets the component name.
func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

// Category sets the error category.
func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Context adds a key-value pair to the error context.
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// Timing adds operation timing context.
func (eb *ErrorBuilder) Timing(operation string, duration time.Duration) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context["operation"] = operation
	eb.context["duration_ms"] = duration.Milliseconds()
	return eb
}

// Build creates the EnhancedError.
func (eb *ErrorBuilder) Build() *EnhancedError {
	ee := &EnhancedError{
		Err:       eb.err,
		Component: eb.component,
		Category:  eb.category,
		Context:   eb.context,
		Timestamp: time.Now(),
	}
	if ee.Component == "" {
		ee.Component = ComponentUnknown
	}
	if ee.Category == "" {
		ee.Category = CategoryGeneric
	}
	return ee
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
