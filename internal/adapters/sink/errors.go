package sink

import (
	"errors"
)

// WriteError wraps a failed batch write. The batch is dropped; the next
// sweep re-samples the combination.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return "write failed: " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Sentinel error kinds for this package.
var (
	ErrNotConfigured = errors.New("sink not configured")
)
