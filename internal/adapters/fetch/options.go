// Package fetch retrieves raw highscore payloads from the public API.
package fetch

import (
	"net/http"
	"time"

	"github.com/QueCS/ogame-highscores-tracker/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithDomain sets the API provider domain ("ogame.gameforge.com" by default);
// requests go to https://s{server}.{domain}.
func WithDomain(domain string) Option {
	return func(c *Client) {
		if domain != "" {
			c.domain = domain
		}
	}
}

// WithBaseURL overrides the per-server host entirely, e.g.
// "http://localhost:9081" for the local API stub or an httptest server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithPolicy sets the failure-handling policy.
func WithPolicy(p Policy) Option {
	return func(c *Client) {
		if p != "" {
			c.policy = p
		}
	}
}

// WithRetryInterval overrides the base interval between retry attempts.
// Primarily for tests; the production default stays in [30s, 60s).
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryInterval = d
		}
	}
}

// WithRetryMaxElapsed bounds the total time spent in retry_until_success.
// Zero keeps retrying until the context is canceled.
func WithRetryMaxElapsed(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryMaxElapsed = d
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
