// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults, Load(ctx) to layer
//   file and environment overrides on top.
// - Validation is eager: Load reports every invalid field at once so a bad
//   deployment fails with one readable message.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Tracker configures the polling loop.
	Tracker TrackerConfig `koanf:"tracker"`

	// API configures the upstream highscore API client.
	API APIConfig `koanf:"api"`

	// InfluxDB configures the time-series store.
	InfluxDB InfluxConfig `koanf:"influxdb"`
}

// TrackerConfig configures which combinations are swept and how often.
type TrackerConfig struct {
	// Servers lists the tracked server identifiers, e.g. "123-en".
	Servers []string `koanf:"servers"`

	// Categories lists tracked category codes (1 = player, 2 = alliance).
	Categories []int `koanf:"categories"`

	// Types lists tracked highscore type codes (0-11).
	Types []int `koanf:"types"`

	// CycleSeconds is the sweep period. Combinations are paced evenly
	// across the cycle.
	CycleSeconds int `koanf:"cycle_seconds"`

	// RetryPolicy selects the fetch policy: single_attempt or
	// retry_until_success.
	RetryPolicy string `koanf:"retry_policy"`

	// RetryMaxElapsedSeconds bounds a retry_until_success loop; zero means
	// retry until the sweep context is canceled.
	RetryMaxElapsedSeconds int `koanf:"retry_max_elapsed_seconds"`

	// AttributeRefresh enables refreshing player/alliance name metadata
	// once per server per sweep.
	AttributeRefresh bool `koanf:"attribute_refresh"`

	// ServerTimezone and LocalTimezone are IANA names used to derive the
	// timestamp columns served to the dashboard.
	ServerTimezone string `koanf:"server_timezone"`
	LocalTimezone  string `koanf:"local_timezone"`
}

// APIConfig configures the upstream HTTP client.
type APIConfig struct {
	// Domain is the game API domain; the server id is prefixed as a
	// subdomain.
	Domain string `koanf:"domain"`

	// BaseURL overrides the derived URL entirely. Used with the stub
	// server in development.
	BaseURL string `koanf:"base_url"`

	// TimeoutSeconds bounds one HTTP round trip.
	TimeoutSeconds int `koanf:"timeout_seconds"`
}

// InfluxConfig configures the InfluxDB v2 connection.
type InfluxConfig struct {
	URL    string `koanf:"url"`
	Org    string `koanf:"org"`
	Bucket string `koanf:"bucket"`
	Token  string `koanf:"token"`

	// QueryDays is the default history range served by the read API.
	QueryDays int `koanf:"query_days"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and is
// currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel: "info",
		Addr:     ":9080",
		Tracker: TrackerConfig{
			Categories:       []int{1},
			Types:            []int{0, 1, 2, 3},
			CycleSeconds:     900,
			RetryPolicy:      "single_attempt",
			AttributeRefresh: true,
			ServerTimezone:   "UTC",
			LocalTimezone:    "UTC",
		},
		API: APIConfig{
			Domain:         "ogame.gameforge.com",
			TimeoutSeconds: 30,
		},
		InfluxDB: InfluxConfig{
			URL:       "http://localhost:8086",
			Org:       "ogame",
			Bucket:    "highscores",
			QueryDays: 90,
		},
	}
}
