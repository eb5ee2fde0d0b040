// Package domain defines core types, interfaces, and errors for the ingestion toolkit.
package domain

import "fmt"

// NotFoundError indicates an input file or record was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input or configuration.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// MissingColumnError indicates a required column is absent from a source table.
// It is a configuration error and is never retried.
type MissingColumnError struct {
	Column string
	File   string
}

func (e *MissingColumnError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("missing required column %q", e.Column)
	}
	return fmt.Sprintf("missing required column %q in %s", e.Column, e.File)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrMissingColumn creates a MissingColumnError for column in file.
func ErrMissingColumn(column, file string) *MissingColumnError {
	return &MissingColumnError{Column: column, File: file}
}
