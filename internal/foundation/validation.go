// Package foundation collects field-level validation failures into a single
// classified error.
package foundation

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/autotag/internal/foundation/errors"
)

// FieldError is a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (fe FieldError) Error() string {
	if fe.Field != "" {
		return fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return fe.Message
}

// ValidationResult accumulates FieldErrors. The zero value is valid.
type ValidationResult struct {
	Errors []FieldError
}

// Valid reports whether no failure was recorded.
func (vr *ValidationResult) Valid() bool { return len(vr.Errors) == 0 }

// Addf records a failure for field.
func (vr *ValidationResult) Addf(field, format string, args ...any) {
	vr.Errors = append(vr.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Check records message for field when ok is false.
func (vr *ValidationResult) Check(ok bool, field, message string) {
	if !ok {
		vr.Errors = append(vr.Errors, FieldError{Field: field, Message: message})
	}
}

// ToError returns nil for a valid result, otherwise a validation
// ClassifiedError listing every failure.
func (vr *ValidationResult) ToError() error {
	if vr.Valid() {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	fields := make([]string, 0, len(vr.Errors))
	for _, fe := range vr.Errors {
		messages = append(messages, fe.Error())
		fields = append(fields, fe.Field)
	}
	return errors.ValidationError(strings.Join(messages, "; ")).
		WithContext("fields", fields).
		Build()
}
