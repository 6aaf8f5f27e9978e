package sink

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrQueueFull is reported when the actor cannot accept another intent
	ErrQueueFull = errors.New("commit queue full")
	// ErrClosed is reported for intents submitted after Close
	ErrClosed = errors.New("commit sink closed")
	// ErrConnectionLost is reported when the remote sink disconnects
	ErrConnectionLost = errors.New("connection to commit sink lost")
)

// TemporaryError marks a failure worth retrying
type TemporaryError struct {
	Err error
}

func (e *TemporaryError) Error() string {
	return fmt.Sprintf("temporary failure: %v", e.Err)
}

func (e *TemporaryError) Unwrap() error {
	return e.Err
}

// Temporary wraps err as retryable. A nil err stays nil.
func Temporary(err error) error {
	if err == nil {
		return nil
	}
	return &TemporaryError{Err: err}
}

// RejectedError is a commit the remote sink refused
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("commit rejected: %s", e.Reason)
}

// IsRetryable reports whether err may succeed on a later attempt
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var t *TemporaryError
	if errors.As(err, &t) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}

// IsRejected reports whether err is a refusal from the remote sink
func IsRejected(err error) bool {
	var r *RejectedError
	return errors.As(err, &r)
}
