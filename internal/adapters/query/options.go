package query

import (
	"time"

	"github.com/QueCS/ogame-highscores-tracker/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRunner sets the Flux runner backing the service.
func WithRunner(r Runner) Option {
	return func(s *Service) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithBucket sets the bucket queried for history.
func WithBucket(bucket string) Option {
	return func(s *Service) {
		s.bucket = bucket
	}
}

// WithTimezones sets the game-server and viewer timezones used for the
// derived timestamp columns.
func WithTimezones(serverTZ, localTZ *time.Location) Option {
	return func(s *Service) {
		if serverTZ != nil {
			s.serverTZ = serverTZ
		}
		if localTZ != nil {
			s.localTZ = localTZ
		}
	}
}

// WithDefaultDays sets the range used when a request does not specify one.
func WithDefaultDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.defaultDays = days
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
