package service

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotConfigured = errors.New("tracker service not configured")
	ErrNoServers     = errors.New("no servers configured")
)
