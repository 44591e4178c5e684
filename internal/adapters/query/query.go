// Package query reads a stored score history back as a display-ready series.
//
// The tracker only guarantees the stored schema; this package owns the read
// side consumed by the dashboard: one Flux range query per request, merged
// into ordered samples with derived fields (delta, cumulative delta,
// timezone-local timestamps).
package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	highscore "github.com/QueCS/ogame-highscores-tracker/internal/domain/highscore"
	"github.com/QueCS/ogame-highscores-tracker/pkg/logger"
)

// Default query configuration constants.
const (
	defaultDays = 90
)

// Params selects one entity's stored history.
type Params struct {
	Server   string
	EntityID string
	Category highscore.Category
	Type     highscore.Type
	Days     int
}

// Record is one raw field sample returned by the store.
type Record struct {
	Time  time.Time
	Field string
	Value int64
}

// Runner executes a Flux query and flattens the result into records.
type Runner interface {
	Run(ctx context.Context, flux string) ([]Record, error)
}

// Service answers history queries against the time-series store.
type Service struct {
	runner      Runner
	bucket      string
	serverTZ    *time.Location
	localTZ     *time.Location
	defaultDays int
	logger      logger.Logger
}

// NewService creates a query service with configuration options.
func NewService(opts ...Option) *Service {
	s := &Service{
		serverTZ:    time.UTC,
		localTZ:     time.UTC,
		defaultDays: defaultDays,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("query")
	}

	return s
}

// History returns the ordered score/rank series for one entity. A failing
// upstream query surfaces as an error value, never a panic; callers render
// it as an empty or error result.
func (s *Service) History(ctx context.Context, p Params) (Series, error) {
	if s.runner == nil {
		return Series{}, ErrNotConfigured
	}
	if p.Category == highscore.CategoryUnknown {
		p.Category = highscore.CategoryPlayer
	}
	if p.Days <= 0 {
		p.Days = s.defaultDays
	}
	// Both values end up interpolated into the Flux source.
	if _, err := strconv.ParseInt(p.EntityID, 10, 64); err != nil {
		return Series{}, fmt.Errorf("%w: entity id must be numeric", ErrBadParams)
	}
	if strings.ContainsAny(p.Server, `"\`) {
		return Series{}, fmt.Errorf("%w: invalid server", ErrBadParams)
	}

	flux := s.buildFlux(p)
	s.logger.Debug(ctx, "running history query",
		logger.String("server", p.Server),
		logger.String("entity_id", p.EntityID),
		logger.String("type", p.Type.String()),
		logger.Int("days", p.Days),
	)

	records, err := s.runner.Run(ctx, flux)
	if err != nil {
		s.logger.Error(ctx, "history query failed", logger.Error(err))
		return Series{}, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	return buildSeries(p, records, s.serverTZ, s.localTZ), nil
}

// buildFlux renders the range query. Filters mirror the stored schema:
// measurement is the entity id, server/category/type are tags.
func (s *Service) buildFlux(p Params) string {
	return fmt.Sprintf(`from(bucket: "%s")
  |> range(start: -%dd)
  |> filter(fn: (r) => r["server"] == "%s")
  |> filter(fn: (r) => r["category"] == "%s")
  |> filter(fn: (r) => r["_measurement"] == "%s")
  |> filter(fn: (r) => r["type"] == "%s")
  |> filter(fn: (r) => r["_field"] == "score" or r["_field"] == "rank")`,
		s.bucket, p.Days, p.Server, p.Category, p.EntityID, p.Type)
}
