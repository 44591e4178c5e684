// Package dedupe tracks API response freshness per combination.
package dedupe

// Option applies a configuration option to the inMemoryTracker.
type Option func(*inMemoryTracker)

// WithInitialCapacity pre-sizes the tracking map for the configured
// combination count.
func WithInitialCapacity(n int) Option {
	return func(t *inMemoryTracker) {
		if n > 0 {
			t.last = make(map[comboKey]int64, n)
		}
	}
}
