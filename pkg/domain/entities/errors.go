package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound is returned when a referenced product doesn't exist
	ErrProductNotFound = errors.New("product not found")

	// ErrEmptyInvoice is returned when an invoice has no lines to allocate against
	ErrEmptyInvoice = errors.New("invoice has no lines")

	// ErrInvalidInput is the base for all validation failures
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError describes a rejected field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// IsClientError returns true if the error is due to invalid caller input
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrEmptyInvoice)
}

// IsNotFound returns true if the error indicates a missing resource
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}
