package errors

// ErrorBuilder builds ClassifiedError values.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts a builder with error severity and no retry.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
		context:  make(ErrorContext),
	}}
}

// WrapError starts a builder around an existing error.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.err.severity = severity
	return b
}

func (b *ErrorBuilder) WithRetry(strategy RetryStrategy) *ErrorBuilder {
	b.err.retry = strategy
	return b
}

func (b *ErrorBuilder) WithCause(cause error) *ErrorBuilder {
	b.err.cause = cause
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.Set(key, value)
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder   { return b.WithSeverity(SeverityFatal) }
func (b *ErrorBuilder) Warning() *ErrorBuilder { return b.WithSeverity(SeverityWarning) }

// Build returns the finished error. The builder may be reused afterwards.
func (b *ErrorBuilder) Build() *ClassifiedError {
	out := b.err
	return &out
}

// ConfigError creates a configuration error that needs user action.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).WithRetry(RetryUserAction).Fatal()
}

// ValidationError creates an input validation error.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).WithRetry(RetryUserAction)
}

// FileSystemError creates a filesystem error.
func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message)
}

// FrontmatterError creates a front matter parsing or writing error.
func FrontmatterError(message string) *ErrorBuilder {
	return NewError(CategoryFrontmatter, message).WithRetry(RetryUserAction)
}

// AgentError creates a text-generation agent error (usually transient).
func AgentError(message string) *ErrorBuilder {
	return NewError(CategoryAgent, message).WithRetry(RetryBackoff).Warning()
}
