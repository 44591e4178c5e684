// Package dedupe tracks API response freshness per combination.
//
// The highscore API regenerates its payloads roughly once an hour while the
// sweep cadence is a quarter of that, so most sweeps would rewrite batches
// the store already holds. Rewrites are idempotent (same series key, same
// timestamp) but wasted work; this tracker lets the loop skip them.
package dedupe

import (
	"context"
	"sync"

	highscore "github.com/QueCS/ogame-highscores-tracker/internal/domain/highscore"
)

// Tracker remembers the last response timestamp seen per
// (server, category, type) combination.
type Tracker interface {
	// FreshAndRecord atomically checks whether ts is newer than the last
	// recorded response timestamp for the combination and records it if so.
	// Returns false when the response is stale (same or older timestamp).
	FreshAndRecord(ctx context.Context, server string, cat highscore.Category, typ highscore.Type, ts int64) bool

	Size() int
}

type comboKey struct {
	server string
	cat    highscore.Category
	typ    highscore.Type
}

// inMemoryTracker implements Tracker with a plain mutex-guarded map. The
// key space is bounded by the configured combination count, so there is no
// eviction to worry about.
type inMemoryTracker struct {
	mu   sync.Mutex
	last map[comboKey]int64
}

// NewInMemoryTracker creates a new in-memory freshness tracker.
func NewInMemoryTracker(opts ...Option) Tracker {
	t := &inMemoryTracker{
		last: make(map[comboKey]int64),
	}

	// Apply all options
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// FreshAndRecord atomically checks and records the response timestamp.
func (t *inMemoryTracker) FreshAndRecord(_ context.Context, server string, cat highscore.Category, typ highscore.Type, ts int64) bool {
	key := comboKey{server: server, cat: cat, typ: typ}

	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.last[key]; ok && ts <= prev {
		return false
	}
	t.last[key] = ts
	return true
}

// Size returns the number of tracked combinations.
func (t *inMemoryTracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.last)
}
