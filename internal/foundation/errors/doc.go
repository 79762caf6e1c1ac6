// Package errors provides the classified error type used across autotag.
//
// A ClassifiedError carries a category (what failed), a severity (how much it
// matters) and a retry hint, plus free-form context. Errors are built with the
// fluent ErrorBuilder:
//
//	err := errors.NewError(errors.CategoryFrontmatter, "parse front matter").
//		WithCause(parseErr).
//		WithContext("path", path).
//		Build()
//
// The CLIErrorAdapter turns a classified error into a process exit code and a
// short message for stderr.
package errors
