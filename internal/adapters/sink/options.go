package sink

import (
	"github.com/QueCS/ogame-highscores-tracker/pkg/logger"
)

// Option applies a configuration option to the Influx sink.
type Option func(*Influx)

// WithURL sets the InfluxDB server URL.
func WithURL(url string) Option {
	return func(i *Influx) {
		i.url = url
	}
}

// WithToken sets the InfluxDB API token.
func WithToken(token string) Option {
	return func(i *Influx) {
		i.token = token
	}
}

// WithOrg sets the InfluxDB organization.
func WithOrg(org string) Option {
	return func(i *Influx) {
		i.org = org
	}
}

// WithBucket sets the destination bucket.
func WithBucket(bucket string) Option {
	return func(i *Influx) {
		i.bucket = bucket
	}
}

// WithPointWriter injects a write API implementation; used by tests.
func WithPointWriter(w pointWriter) Option {
	return func(i *Influx) {
		i.write = w
	}
}

// WithLogger sets a custom logger for the sink.
func WithLogger(l logger.Logger) Option {
	return func(i *Influx) {
		if l != nil {
			i.logger = l
		}
	}
}
