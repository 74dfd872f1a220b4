// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Input table errors.
	ErrSchema             = errors.New("schema error")
	ErrMissingLabelColumn = errors.New("missing label column")
	ErrInvalidLabel       = errors.New("invalid label")
	ErrNotADataTable      = errors.New("not a data table")
	ErrEmptyFeatureSet    = errors.New("empty feature set")
	ErrLengthMismatch     = errors.New("length mismatch")
	ErrInsufficientData   = errors.New("insufficient data")

	// Training errors.
	ErrInvalidModelKind    = errors.New("invalid model kind")
	ErrInvalidTestFraction = errors.New("invalid test fraction")
	ErrNotFitted           = errors.New("classifier not fitted")

	// Model store errors.
	ErrModelNotFound = errors.New("model not found")
	ErrCorruptModel  = errors.New("corrupt model file")

	// Session errors.
	ErrNoModelLoaded      = errors.New("no model loaded")
	ErrNoMetricsAvailable = errors.New("no metrics available")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
