package grid

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a grid error
type ErrorType int

const (
	// ErrTypeValidation indicates pending input that cannot be committed
	ErrTypeValidation ErrorType = iota
	// ErrTypeStaleReference indicates an address whose row or column no longer exists
	ErrTypeStaleReference
	// ErrTypeCommit indicates the persistence layer rejected a commit
	ErrTypeCommit
	// ErrTypeConfig indicates an invalid column declaration
	ErrTypeConfig
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeStaleReference:
		return "Stale Reference"
	case ErrTypeCommit:
		return "Commit Error"
	case ErrTypeConfig:
		return "Config Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned or surfaced by grid operations. None of these errors is
// fatal to a table; they describe why a cell went back to display mode.
type Error struct {
	Type    ErrorType
	Message string
	Address CellAddress
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	prefix := e.Type.String()
	if !e.Address.IsZero() {
		prefix = fmt.Sprintf("%s at %s", prefix, e.Address)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error
func NewValidationError(message string, err error) *Error {
	return &Error{Type: ErrTypeValidation, Message: message, Err: err}
}

// NewStaleReferenceError creates a stale reference error for addr
func NewStaleReferenceError(addr CellAddress) *Error {
	return &Error{Type: ErrTypeStaleReference, Message: "cell is no longer in the dataset", Address: addr}
}

// NewCommitError creates a commit error for addr
func NewCommitError(addr CellAddress, reason string) *Error {
	return &Error{Type: ErrTypeCommit, Message: reason, Address: addr}
}

// NewConfigError creates a column configuration error
func NewConfigError(message string) *Error {
	return &Error{Type: ErrTypeConfig, Message: message}
}

func isType(err error, t ErrorType) bool {
	var gridErr *Error
	if errors.As(err, &gridErr) {
		return gridErr.Type == t
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrTypeValidation)
}

// IsStaleReference checks if an error is a stale reference error
func IsStaleReference(err error) bool {
	return isType(err, ErrTypeStaleReference)
}

// IsCommitError checks if an error is a commit error
func IsCommitError(err error) bool {
	return isType(err, ErrTypeCommit)
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	return isType(err, ErrTypeConfig)
}
