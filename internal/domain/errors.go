package domain

import (
	"errors"
	"strings"
)

// Domain error kinds returned by the service layer. Any other error is a
// storage failure and is fatal for the current request.
var (
	// ErrNotFound is returned when an update or remove targets an unknown id
	ErrNotFound = errors.New("carbon intensity does not exist")

	// ErrDuplicateInterval is returned when a write would store a second
	// record with an existing (from, to) pair
	ErrDuplicateInterval = errors.New("to and from should be unique")
)

// ValidationErrors collects field-level validation messages
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

// Add appends a message
func (v *ValidationErrors) Add(msg string) {
	*v = append(*v, msg)
}

// Err returns nil when no message was collected
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
