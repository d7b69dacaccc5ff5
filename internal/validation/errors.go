package validation

import (
	"errors"
	"strings"
)

var ErrValidation = errors.New("validation failed")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError lists every rule an entity violated, in field declaration order.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(flds ...FieldError) error {
	return &ValidationError{Fields: flds}
}

func (err *ValidationError) Error() string {
	lines := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		lines = append(lines, f.Error)
	}
	return strings.Join(lines, "\n")
}

func (err *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
