package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter maps errors to exit codes and stderr messages.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
}

// NewCLIErrorAdapter creates a CLI error adapter. A nil logger uses slog.Default().
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, stderr: os.Stderr}
}

// ExitCodeFor returns the process exit code for err.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	classified, ok := AsClassified(err)
	if !ok {
		return 1
	}
	switch classified.Category() {
	case CategoryValidation:
		return 2
	case CategoryAuth:
		return 5
	case CategoryConfig:
		return 7
	case CategoryAgent, CategoryGit, CategoryEvents:
		return 8
	case CategoryInternal:
		return 10
	case CategoryFileSystem, CategoryFrontmatter, CategoryCache:
		return 11
	case CategoryRuntime:
		return 12
	default:
		return 1
	}
}

// FormatError renders err for a terminal user.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	classified, ok := AsClassified(err)
	if !ok || a.verbose {
		return fmt.Sprintf("Error: %v", err)
	}
	if classified.Category() == CategoryInternal {
		return "Internal error occurred (use -v for details)"
	}
	if classified.cause != nil {
		return fmt.Sprintf("Error: %s: %v", classified.Message(), classified.cause)
	}
	return "Error: " + classified.Message()
}

// Handle logs err, prints it and returns the exit code. It does not exit.
func (a *CLIErrorAdapter) Handle(err error) int {
	if err == nil {
		return 0
	}
	a.log(err)
	_, _ = fmt.Fprintln(a.stderr, a.FormatError(err))
	return a.ExitCodeFor(err)
}

func (a *CLIErrorAdapter) log(err error) {
	classified, ok := AsClassified(err)
	if !ok {
		if a.verbose {
			a.logger.Error("Unclassified error", "error", err)
		}
		return
	}
	if !a.verbose && classified.Severity() != SeverityFatal {
		return
	}
	attrs := []slog.Attr{slog.String("category", string(classified.Category()))}
	for k, v := range classified.Context() {
		attrs = append(attrs, slog.Any(k, v))
	}
	if classified.CanRetry() {
		attrs = append(attrs, slog.Bool("retryable", true))
	}
	a.logger.LogAttrs(context.Background(), levelFor(classified.Severity()), classified.Message(), attrs...)
}

func levelFor(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
