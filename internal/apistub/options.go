package apistub

import (
	"time"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithEntities sets how many entities each leaderboard payload carries.
func WithEntities(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.entities = n
		}
	}
}

// WithClock overrides the time source. Primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}
