package query

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotConfigured = errors.New("query service not configured")
	ErrBadParams     = errors.New("invalid query parameters")
	ErrQuery         = errors.New("history query failed")
)
