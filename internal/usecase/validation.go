package usecase

import (
	"errors"

	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
)

// ValidationError aggregates per-field message codes. Handlers translate
// the codes and place them under the envelope's errors key.
type ValidationError struct {
	Fields map[string][]i18n.Code
}

// Error implements error.
func (e *ValidationError) Error() string {
	return "validation failed"
}

// Add appends a code to the named field.
func (e *ValidationError) Add(field string, code i18n.Code) {
	if e.Fields == nil {
		e.Fields = make(map[string][]i18n.Code)
	}
	e.Fields[field] = append(e.Fields[field], code)
}

// HasErrors reports whether any field collected a violation.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// NewFieldError builds a single-field validation error.
func NewFieldError(field string, code i18n.Code) *ValidationError {
	err := &ValidationError{}
	err.Add(field, code)
	return err
}

// AsValidationError extracts a ValidationError from an error chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
