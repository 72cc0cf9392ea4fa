// Package common holds the error, logging and retry helpers shared by every
// package.
package common

import (
	"errors"
)

// Sentinels wrapped by configuration and upstream failures.
var (
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrUpstream      = errors.New("upstream service error")
)

// UserError pairs a message for the person at the terminal with its cause.
type UserError struct {
	Err     error
	Message string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps err with a message suitable for display.
func NewUserError(message string, err error) error {
	return &UserError{Message: message, Err: err}
}
