// Package service provides the sweep scheduler that drives the tracker: it
// paces fetches across the configured cycle, normalizes payloads, and hands
// fresh batches to the time-series sink.
package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/QueCS/ogame-highscores-tracker/internal/domain/dedupe"
	highscore "github.com/QueCS/ogame-highscores-tracker/internal/domain/highscore"
	"github.com/QueCS/ogame-highscores-tracker/pkg/logger"
	"github.com/QueCS/ogame-highscores-tracker/pkg/metrics"
)

// Fetcher retrieves raw payloads from the highscore API.
type Fetcher interface {
	Highscores(ctx context.Context, server string, category, typ int) ([]byte, error)
	Players(ctx context.Context, server string) ([]byte, error)
	Alliances(ctx context.Context, server string) ([]byte, error)
}

// Sink persists normalized batches.
type Sink interface {
	WritePoints(ctx context.Context, points []highscore.Point) error
	WriteAttributes(ctx context.Context, server string, attrs []highscore.EntityAttributes) error
}

// Service sweeps every configured (server, category, type) combination once
// per cycle. A sweep paces its fetches evenly across the cycle instead of
// bursting them, and one failing combination never aborts the rest.
type Service struct {
	mu sync.RWMutex

	// Core components
	fetcher Fetcher
	sink    Sink
	tracker dedupe.Tracker
	limiter *rate.Limiter

	// Configuration
	servers          []string
	categories       []int
	types            []int
	cycle            time.Duration
	attributeRefresh bool

	// State
	started       bool
	stopCh        chan struct{}
	wg            sync.WaitGroup
	sweepsDone    atomic.Int64
	lastSweepUnix atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFetcher sets the API client used for sweeps.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithSink sets the store the sweeps write to.
func WithSink(w Sink) Option {
	return func(s *Service) {
		if w != nil {
			s.sink = w
		}
	}
}

// WithTracker sets the freshness tracker. A default in-memory tracker is
// created when unset.
func WithTracker(t dedupe.Tracker) Option {
	return func(s *Service) {
		if t != nil {
			s.tracker = t
		}
	}
}

// WithServers sets the swept server list.
func WithServers(servers []string) Option {
	return func(s *Service) {
		if len(servers) > 0 {
			s.servers = servers
		}
	}
}

// WithCategories sets the swept category codes.
func WithCategories(categories []int) Option {
	return func(s *Service) {
		if len(categories) > 0 {
			s.categories = categories
		}
	}
}

// WithTypes sets the swept highscore type codes.
func WithTypes(types []int) Option {
	return func(s *Service) {
		if len(types) > 0 {
			s.types = types
		}
	}
}

// WithCycle sets the sweep period.
func WithCycle(cycle time.Duration) Option {
	return func(s *Service) {
		if cycle > 0 {
			s.cycle = cycle
		}
	}
}

// WithAttributeRefresh toggles per-server name metadata refreshes.
func WithAttributeRefresh(enabled bool) Option {
	return func(s *Service) {
		s.attributeRefresh = enabled
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

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		categories: []int{int(highscore.CategoryPlayer)},
		types:      []int{0, 1, 2, 3},
		cycle:      15 * time.Minute,
		stopCh:     make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start launches the sweep loop. It returns immediately; sweeps run until
// ctx is canceled or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.fetcher == nil || s.sink == nil {
		return ErrNotConfigured
	}
	if len(s.servers) == 0 {
		return ErrNoServers
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("tracker")
	}
	if s.tracker == nil {
		s.tracker = dedupe.NewInMemoryTracker(
			dedupe.WithInitialCapacity(s.combinations()),
		)
	}
	// Burst of one: the first fetch of a sweep goes out immediately, the
	// rest are spaced cycle/N apart.
	s.limiter = rate.NewLimiter(rate.Every(s.pace()), 1)

	s.wg.Add(1)
	go s.run(ctx)

	s.started = true
	s.logger.Info(ctx, "tracker started",
		logger.Int("servers", len(s.servers)),
		logger.Int("combinations", s.combinations()),
		logger.Duration("cycle", s.cycle),
	)
	return nil
}

// Stop gracefully shuts down the sweep loop and waits for the in-flight
// sweep to bail out.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.started = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info(context.Background(), "tracker stopped")
}

// combinations returns the number of fetches per sweep.
func (s *Service) combinations() int {
	return len(s.servers) * len(s.categories) * len(s.types)
}

// pace returns the interval between two upstream fetches inside one sweep.
// Without attribute refresh this is the plain cycle/combinations split; with
// it, the two metadata fetches per server share the same budget, giving
// cycle/(combinations + 2*servers) so the sweep still fits the cycle.
func (s *Service) pace() time.Duration {
	n := s.combinations()
	if s.attributeRefresh {
		n += 2 * len(s.servers)
	}
	if n < 1 {
		n = 1
	}
	return s.cycle / time.Duration(n)
}

func (s *Service) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		default:
		}
		s.sweep(ctx)
	}
}

// sweep walks every configured combination once. The limiter both paces the
// upstream calls and acts as the cooperative cancellation point.
func (s *Service) sweep(ctx context.Context) {
	sweepID := uuid.NewString()
	start := time.Now()

	// Re-arm the pace at sweep start so every combination gets an equal
	// slice of the cycle.
	s.limiter.SetLimit(rate.Every(s.pace()))

	s.logger.Debug(ctx, "sweep starting",
		logger.String("sweep_id", sweepID),
		logger.Int("combinations", s.combinations()),
	)

	for _, server := range s.servers {
		if s.attributeRefresh {
			if !s.refreshAttributes(ctx, sweepID, server) {
				return
			}
		}
		for _, cat := range s.categories {
			for _, typ := range s.types {
				if !s.wait(ctx) {
					return
				}
				s.processCombination(ctx, sweepID, server, cat, typ)
			}
		}
	}

	elapsed := time.Since(start)
	now := time.Now().Unix()
	s.sweepsDone.Add(1)
	s.lastSweepUnix.Store(now)
	metrics.RecordSweep(elapsed.Seconds())
	metrics.UpdateLastSweepUnix(now)

	s.logger.Info(ctx, "sweep completed",
		logger.String("sweep_id", sweepID),
		logger.Duration("elapsed", elapsed),
	)
}

// wait blocks until the limiter releases the next fetch slot. Returns false
// when the service is shutting down.
func (s *Service) wait(ctx context.Context) bool {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-waitCtx.Done():
		}
	}()
	return s.limiter.Wait(waitCtx) == nil
}

// processCombination runs fetch -> normalize -> freshness check -> write for
// one combination. Failures are logged and counted, never propagated: the
// next combination and the next sweep proceed regardless.
func (s *Service) processCombination(ctx context.Context, sweepID, server string, catCode, typCode int) {
	typ := highscore.TypeFromCode(typCode)
	if typ == highscore.TypeUnknown {
		s.logger.Warn(ctx, "unknown highscore type configured; points will be tagged unknown",
			logger.Int("type_code", typCode),
		)
	}

	raw, err := s.fetcher.Highscores(ctx, server, catCode, typCode)
	if err != nil {
		s.fail(ctx, sweepID, server, catCode, typCode, "fetch", err)
		return
	}

	points, err := highscore.Normalize(raw, server, catCode, typCode)
	if err != nil {
		// A category the normalizer cannot place is a configuration
		// mistake, not an upstream failure: warn and move on.
		if errors.Is(err, highscore.ErrUnknownCategory) {
			s.logger.Warn(ctx, "unknown category configured; combination skipped",
				logger.String("sweep_id", sweepID),
				logger.String("server", server),
				logger.Int("category", catCode),
			)
			return
		}
		s.fail(ctx, sweepID, server, catCode, typCode, "normalize", err)
		return
	}
	if len(points) == 0 {
		metrics.RecordCombinationProcessed()
		return
	}

	// All points of one response share its timestamp; the first is enough
	// to decide freshness.
	ts := points[0].Timestamp.Unix()
	cat := highscore.CategoryFromCode(catCode)
	if !s.tracker.FreshAndRecord(ctx, server, cat, typ, ts) {
		metrics.RecordStaleBatchSkipped()
		metrics.RecordCombinationProcessed()
		s.logger.Debug(ctx, "stale batch skipped",
			logger.String("sweep_id", sweepID),
			logger.String("server", server),
			logger.String("type", typ.String()),
			logger.Int64("timestamp", ts),
		)
		return
	}

	if err := s.sink.WritePoints(ctx, points); err != nil {
		s.fail(ctx, sweepID, server, catCode, typCode, "write", err)
		return
	}

	metrics.RecordCombinationProcessed()
	s.logger.Debug(ctx, "combination written",
		logger.String("sweep_id", sweepID),
		logger.String("server", server),
		logger.String("category", cat.String()),
		logger.String("type", typ.String()),
		logger.Int("points", len(points)),
	)
}

// refreshAttributes samples player and alliance name metadata for one
// server, players first. Each fetch takes its own limiter slot so metadata
// calls are spaced like any other upstream call. Returns false on shutdown.
func (s *Service) refreshAttributes(ctx context.Context, sweepID, server string) bool {
	fetches := []struct {
		cat highscore.Category
		fn  func(context.Context, string) ([]byte, error)
	}{
		{highscore.CategoryPlayer, s.fetcher.Players},
		{highscore.CategoryAlliance, s.fetcher.Alliances},
	}
	for _, f := range fetches {
		if !s.wait(ctx) {
			return false
		}
		catCode := int(f.cat)
		raw, err := f.fn(ctx, server)
		if err != nil {
			metrics.RecordAttributeRefreshError()
			s.logger.Warn(ctx, "attribute fetch failed",
				logger.String("sweep_id", sweepID),
				logger.String("server", server),
				logger.Error(err),
			)
			continue
		}
		attrs, err := highscore.NormalizeAttributes(raw, catCode)
		if err != nil {
			metrics.RecordAttributeRefreshError()
			s.logger.Warn(ctx, "attribute normalize failed",
				logger.String("sweep_id", sweepID),
				logger.String("server", server),
				logger.Error(err),
			)
			continue
		}
		if err := s.sink.WriteAttributes(ctx, server, attrs); err != nil {
			metrics.RecordAttributeRefreshError()
			s.logger.Warn(ctx, "attribute write failed",
				logger.String("sweep_id", sweepID),
				logger.String("server", server),
				logger.Error(err),
			)
			continue
		}
		metrics.RecordAttributeRefresh()
	}
	return true
}

// fail records one failed combination.
func (s *Service) fail(ctx context.Context, sweepID, server string, catCode, typCode int, stage string, err error) {
	metrics.RecordCombinationFailed()
	// Cancellation during shutdown is expected noise.
	if ctx.Err() != nil {
		return
	}
	s.logger.Error(ctx, "combination failed",
		logger.String("sweep_id", sweepID),
		logger.String("server", server),
		logger.Int("category", catCode),
		logger.Int("type", typCode),
		logger.String("stage", stage),
		logger.Error(err),
	)
}

// Servers returns the configured server list.
func (s *Service) Servers() []string {
	out := make([]string, len(s.servers))
	copy(out, s.servers)
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"servers":       len(s.servers),
		"combinations":  s.combinations(),
		"cycleSeconds":  int(s.cycle / time.Second),
		"sweepsDone":    s.sweepsDone.Load(),
		"lastSweepUnix": s.lastSweepUnix.Load(),
	}
	if s.tracker != nil {
		stats["trackedCombinations"] = s.tracker.Size()
	}
	return stats
}
