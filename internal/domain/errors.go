package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrPersistence   = errors.New("persistence failure")
	ErrSourceRead    = errors.New("source read failure")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// PersistenceError reports a failed read or write against durable storage
// (cursor files, the record table). It is fatal for the current source run.
type PersistenceError struct {
	Op     string
	Source string
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persistence: %s %s: %v", e.Op, e.Source, e.Err)
}

// Is lets errors.Is match both ErrPersistence and the wrapped cause.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError wraps err as a PersistenceError. A nil err yields nil.
func NewPersistenceError(op, source string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Source: source, Err: err}
}

// SourceReadError reports that items could not be read from a source
// (network fetch, export file). It aborts only that source's run.
type SourceReadError struct {
	Source string
	Err    error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("read source %s: %v", e.Source, e.Err)
}

// Is lets errors.Is match both ErrSourceRead and the wrapped cause.
func (e *SourceReadError) Is(target error) bool { return target == ErrSourceRead }

func (e *SourceReadError) Unwrap() error { return e.Err }

// NewSourceReadError wraps err as a SourceReadError. A nil err yields nil.
func NewSourceReadError(source string, err error) error {
	if err == nil {
		return nil
	}
	return &SourceReadError{Source: source, Err: err}
}
