package highscore

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrDecode marks a payload whose shape cannot be normalized.
	ErrDecode = errors.New("malformed highscore payload")
	// ErrUnknownCategory marks a category code outside the known set; the
	// combination yields zero points but must not abort the sweep.
	ErrUnknownCategory = errors.New("unknown highscore category")
)
