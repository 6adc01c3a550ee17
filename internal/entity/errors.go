package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors shared by the store, persistence and lookup layers.
var (
	ErrValidation        = errors.New("validation error")
	ErrIndexOutOfRange   = errors.New("entry index out of range")
	ErrPersistence       = errors.New("persistence error")
	ErrLookupUnavailable = errors.New("dictionary lookup unavailable")
)

// FieldError describes a validation failure for a single field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("validation: %s %s", e.Fields[0].Field, e.Fields[0].Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// IndexError reports a position that does not address an entry.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("entry index %d out of range [0,%d)", e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }
