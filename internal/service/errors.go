package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested document is not found.
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedType is returned when an upload declares a MIME type with
	// no extraction strategy.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrExtractionFailed is returned when text extraction fails on an upload.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrMLUnavailable is returned when the ML service cannot be reached for
	// context search.
	ErrMLUnavailable = errors.New("ml service unavailable")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
