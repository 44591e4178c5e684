// Package fetch retrieves raw highscore payloads from the public API.
//
// A fetch is one HTTP GET per (server, category, type) combination. Retry
// policy is deliberately minimal: the default reports a single attempt's
// failure to the caller (the scheduler retries on the next sweep), while the
// opt-in retry_until_success policy blocks with a jittered backoff until the
// API answers or the context is canceled.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"

	"github.com/QueCS/ogame-highscores-tracker/pkg/logger"
	"github.com/QueCS/ogame-highscores-tracker/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultDomain  = "ogame.gameforge.com"
	defaultTimeout = 30 * time.Second

	// retry_until_success waits a uniformly jittered interval in [30s, 60s)
	// between attempts: 45s with a randomization factor of 1/3.
	retryInterval = 45 * time.Second
	retryJitter   = 1.0 / 3.0
)

// Policy selects how a single fetch handles upstream failures.
type Policy string

// Supported fetch policies.
const (
	PolicySingleAttempt     Policy = "single_attempt"
	PolicyRetryUntilSuccess Policy = "retry_until_success"
)

// ParsePolicy validates a configured policy string.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicySingleAttempt, PolicyRetryUntilSuccess:
		return Policy(s), nil
	case "":
		return PolicySingleAttempt, nil
	default:
		return "", fmt.Errorf("unknown fetch policy: %q", s)
	}
}

// Client fetches highscore and entity-attribute payloads for one API domain.
type Client struct {
	http            *http.Client
	domain          string
	baseURL         string
	policy          Policy
	retryInterval   time.Duration
	retryMaxElapsed time.Duration
	logger          logger.Logger
}

// NewClient creates a fetch client with configuration options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:          &http.Client{Timeout: defaultTimeout},
		domain:        defaultDomain,
		policy:        PolicySingleAttempt,
		retryInterval: retryInterval,
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.Get().Named("fetch")
	}

	return c
}

// Highscores fetches the raw highscore payload for one combination.
// The returned bytes are validated JSON; decoding into points is the
// normalizer's job.
func (c *Client) Highscores(ctx context.Context, server string, category, typ int) ([]byte, error) {
	url := c.url(server, fmt.Sprintf("/api/highscore.xml?toJson=1&category=%d&type=%d", category, typ))
	return c.get(ctx, url)
}

// Players fetches the per-server player metadata payload.
func (c *Client) Players(ctx context.Context, server string) ([]byte, error) {
	return c.get(ctx, c.url(server, "/api/players.xml?toJson=1"))
}

// Alliances fetches the per-server alliance metadata payload.
func (c *Client) Alliances(ctx context.Context, server string) ([]byte, error) {
	return c.get(ctx, c.url(server, "/api/alliances.xml?toJson=1"))
}

func (c *Client) url(server, path string) string {
	// baseURL overrides the per-server host; used by tests and the local stub.
	if c.baseURL != "" {
		return c.baseURL + path
	}
	return fmt.Sprintf("https://s%s.%s%s", server, c.domain, path)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.policy == PolicyRetryUntilSuccess {
		return c.getWithRetry(ctx, url)
	}
	return c.fetchOnce(ctx, url)
}

// getWithRetry blocks until the fetch succeeds, the configured elapsed-time
// bound runs out, or ctx is canceled.
func (c *Client) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	b.MaxInterval = c.retryInterval
	b.Multiplier = 1.0
	b.RandomizationFactor = retryJitter
	b.MaxElapsedTime = c.retryMaxElapsed // zero means no bound

	body, err := backoff.RetryNotifyWithData(
		func() ([]byte, error) {
			return c.fetchOnce(ctx, url)
		},
		backoff.WithContext(b, ctx),
		func(err error, next time.Duration) {
			metrics.RecordFetchRetry()
			c.logger.Warn(ctx, "fetch failed; retrying",
				logger.String("url", url),
				logger.String("reason", Reason(err)),
				logger.Duration("next_attempt_in", next),
			)
		},
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// fetchOnce performs a single GET and classifies any failure. It never
// retries and never panics across this boundary.
func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	c.logger.Debug(ctx, "fetching", logger.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, c.fail(ctx, url, &TransportError{Err: err}, "transport")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(ctx, url, &TransportError{Err: err}, "transport")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.fail(ctx, url, &StatusError{Code: resp.StatusCode}, "http_status")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(ctx, url, &TransportError{Err: err}, "transport")
	}
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return nil, c.fail(ctx, url, &DecodeError{Reason: "response is not valid JSON"}, "decode")
	}

	metrics.RecordFetchAttempt("success")
	c.logger.Debug(ctx, "fetched", logger.String("url", url), logger.Int("bytes", len(body)))
	return body, nil
}

// fail records one failed attempt and returns the typed error.
func (c *Client) fail(ctx context.Context, url string, err error, outcome string) error {
	metrics.RecordFetchAttempt(outcome)
	// Context cancellation during shutdown is expected noise, keep it quiet.
	var te *TransportError
	if errors.As(err, &te) && ctx.Err() != nil {
		c.logger.Debug(ctx, "fetch canceled", logger.String("url", url))
		return err
	}
	c.logger.Warn(ctx, "fetch failed",
		logger.String("url", url),
		logger.String("reason", Reason(err)),
		logger.Error(err),
	)
	return err
}
