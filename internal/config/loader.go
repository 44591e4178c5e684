package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/QueCS/ogame-highscores-tracker/internal/adapters/fetch"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if OGT_CONFIG is set
//  3. env (prefix OGT_, double underscore for nesting:
//     OGT_TRACKER__CYCLE_SECONDS -> tracker.cycle_seconds)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("OGT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Single underscores stay part of the key (cycle_seconds); double
	// underscores separate nesting levels.
	envProvider := env.Provider("OGT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "ogt_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field and reports all problems in one error.
func (c *Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "addr must not be empty")
	}
	if len(c.Tracker.Servers) == 0 {
		problems = append(problems, "tracker.servers must list at least one server")
	}
	if len(c.Tracker.Categories) == 0 {
		problems = append(problems, "tracker.categories must list at least one category")
	}
	if len(c.Tracker.Types) == 0 {
		problems = append(problems, "tracker.types must list at least one type")
	}
	if c.Tracker.CycleSeconds <= 0 {
		problems = append(problems, "tracker.cycle_seconds must be positive")
	}
	if _, err := fetch.ParsePolicy(c.Tracker.RetryPolicy); err != nil {
		problems = append(problems, fmt.Sprintf("tracker.retry_policy: %v", err))
	}
	if c.Tracker.RetryMaxElapsedSeconds < 0 {
		problems = append(problems, "tracker.retry_max_elapsed_seconds must not be negative")
	}
	if _, err := time.LoadLocation(c.Tracker.ServerTimezone); err != nil {
		problems = append(problems, fmt.Sprintf("tracker.server_timezone: %v", err))
	}
	if _, err := time.LoadLocation(c.Tracker.LocalTimezone); err != nil {
		problems = append(problems, fmt.Sprintf("tracker.local_timezone: %v", err))
	}
	if c.API.Domain == "" && c.API.BaseURL == "" {
		problems = append(problems, "api.domain or api.base_url must be set")
	}
	if c.API.TimeoutSeconds <= 0 {
		problems = append(problems, "api.timeout_seconds must be positive")
	}
	if c.InfluxDB.URL == "" {
		problems = append(problems, "influxdb.url must not be empty")
	}
	if c.InfluxDB.Org == "" {
		problems = append(problems, "influxdb.org must not be empty")
	}
	if c.InfluxDB.Bucket == "" {
		problems = append(problems, "influxdb.bucket must not be empty")
	}
	if c.InfluxDB.QueryDays <= 0 {
		problems = append(problems, "influxdb.query_days must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Cycle returns the sweep period as a duration.
func (c *TrackerConfig) Cycle() time.Duration {
	return time.Duration(c.CycleSeconds) * time.Second
}

// RetryMaxElapsed returns the retry bound as a duration; zero means
// unbounded.
func (c *TrackerConfig) RetryMaxElapsed() time.Duration {
	return time.Duration(c.RetryMaxElapsedSeconds) * time.Second
}

// Timeout returns the API client timeout as a duration.
func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
