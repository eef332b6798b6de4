// Package errors provides categorized errors with attached context.
//
// Errors are built with a small builder so call sites can record where a
// failure belongs (configuration, missing path, parse failure, database) and
// which inputs were involved:
//
//	return errors.New(err).
//	    Category(errors.CategoryNotFound).
//	    Context("path", dbPath).
//	    Build()
//
// The standard library helpers Is, As, Unwrap and Join are re-exported so
// callers only need to import this package.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"sort"
	"strings"
)

// ErrorCategory groups errors by the kind of failure.
type ErrorCategory string

const (
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryNotFound      ErrorCategory = "not-found"
	CategoryFileIO        ErrorCategory = "file-io"
	CategoryFileParsing   ErrorCategory = "file-parsing"
	CategoryDatabase      ErrorCategory = "database"
	CategoryValidation    ErrorCategory = "validation"
	CategoryEmptyResult   ErrorCategory = "empty-result"
	CategoryImage         ErrorCategory = "image-processing"
	CategoryGeneric       ErrorCategory = "generic"
)

// Sentinel errors shared across packages.
var (
	// ErrNoAnnotations is returned when a dataset scan collects zero records.
	ErrNoAnnotations = stderrors.New("no annotations found")

	// ErrMissingKey is returned when a required configuration key is empty.
	ErrMissingKey = stderrors.New("missing required configuration key")
)

// EnhancedError wraps an error with a category and context values.
type EnhancedError struct {
	Err      error
	Category ErrorCategory
	Context  map[string]any
}

// Error renders the wrapped message followed by sorted context pairs.
func (ee *EnhancedError) Error() string {
	if len(ee.Context) == 0 {
		return ee.Err.Error()
	}
	keys := make([]string, 0, len(ee.Context))
	for k := range ee.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(ee.Err.Error())
	b.WriteString(" (")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", k, ee.Context[k])
	}
	b.WriteString(")")
	return b.String()
}

// Unwrap implements the error unwrapping interface.
func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// Is matches another EnhancedError by category, otherwise defers to the
// wrapped error chain.
func (ee *EnhancedError) Is(target error) bool {
	if other, ok := target.(*EnhancedError); ok {
		return ee.Category == other.Category
	}
	return stderrors.Is(ee.Err, target)
}

// GetContext returns a copy of the context map.
func (ee *EnhancedError) GetContext() map[string]any {
	return maps.Clone(ee.Context)
}

// ErrorBuilder accumulates category and context before Build.
type ErrorBuilder struct {
	err      error
	category ErrorCategory
	context  map[string]any
}

// New starts a builder around err.
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err, category: CategoryGeneric}
}

// Newf starts a builder around a formatted error. %w verbs are honoured.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

// Category sets the error category.
func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Context attaches a key/value pair.
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// Build returns the finished error.
func (eb *ErrorBuilder) Build() *EnhancedError {
	return &EnhancedError{
		Err:      eb.err,
		Category: eb.category,
		Context:  eb.context,
	}
}

// IsCategory reports whether any EnhancedError in err's chain has category.
func IsCategory(err error, category ErrorCategory) bool {
	var ee *EnhancedError
	for err != nil {
		if stderrors.As(err, &ee) {
			if ee.Category == category {
				return true
			}
			err = ee.Err
			continue
		}
		return false
	}
	return false
}

// IsNotFound is shorthand for IsCategory(err, CategoryNotFound).
func IsNotFound(err error) bool {
	return IsCategory(err, CategoryNotFound)
}

// NewStd creates a plain error, like the standard errors.New.
func NewStd(text string) error {
	return stderrors.New(text)
}

// Is wraps errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As wraps errors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap wraps errors.Unwrap.
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Join wraps errors.Join.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
