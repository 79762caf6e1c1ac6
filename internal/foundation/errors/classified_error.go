package errors

import (
	stderrors "errors"
	"fmt"
)

// ClassifiedError is an error with category, severity, retry hint and context.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  ErrorContext
}

func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.category, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.category, e.message)
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory     { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity     { return e.severity }
func (e *ClassifiedError) RetryStrategy() RetryStrategy { return e.retry }
func (e *ClassifiedError) Message() string             { return e.message }
func (e *ClassifiedError) Context() ErrorContext       { return e.context }

// Is matches another ClassifiedError with the same category and message.
func (e *ClassifiedError) Is(target error) bool {
	other, ok := target.(*ClassifiedError)
	if !ok {
		return false
	}
	return e.category == other.category && e.message == other.message
}

// CanRetry reports whether a retry could plausibly succeed.
func (e *ClassifiedError) CanRetry() bool {
	return e.retry == RetryBackoff || e.retry == RetryRateLimit
}

// AsClassified finds the first ClassifiedError in err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory reports whether err's chain carries a ClassifiedError of category.
func HasCategory(err error, category ErrorCategory) bool {
	if classified, ok := AsClassified(err); ok {
		return classified.category == category
	}
	return false
}

// GetCategory returns the category of err, or CategoryInternal.
func GetCategory(err error) ErrorCategory {
	if classified, ok := AsClassified(err); ok {
		return classified.category
	}
	return CategoryInternal
}
