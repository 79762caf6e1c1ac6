package errors

import "maps"

// ErrorCategory is the broad area an error belongs to.
type ErrorCategory string

const (
	// User-facing configuration and input errors.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryAuth       ErrorCategory = "auth"

	// Content tree errors.
	CategoryFileSystem  ErrorCategory = "filesystem"
	CategoryFrontmatter ErrorCategory = "frontmatter"

	// External collaborators.
	CategoryAgent  ErrorCategory = "agent"
	CategoryCache  ErrorCategory = "cache"
	CategoryEvents ErrorCategory = "events"
	CategoryGit    ErrorCategory = "git"

	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Continues degraded
	SeverityInfo    ErrorSeverity = "info"
)

// RetryStrategy is a hint for callers that may retry. The tagging path
// itself never retries; the hint is surfaced in logs.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryBackoff    RetryStrategy = "backoff"
	RetryRateLimit  RetryStrategy = "rate_limit"
	RetryUserAction RetryStrategy = "user"
)

// ErrorContext holds structured key/value context for an error.
type ErrorContext map[string]any

// Set adds or updates a value, allocating the map when needed.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// GetString returns a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	v, ok := c[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Merge combines two contexts; other wins on conflicts.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	if c == nil {
		return other
	}
	if other == nil {
		return c
	}
	out := make(ErrorContext, len(c)+len(other))
	maps.Copy(out, c)
	maps.Copy(out, other)
	return out
}
