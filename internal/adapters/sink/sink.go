// Package sink writes normalized batches to the time-series store.
package sink

import (
	"context"

	highscore "github.com/QueCS/ogame-highscores-tracker/internal/domain/highscore"
)

// Writer persists normalized batches. One call covers all points produced by
// one normalization; a partial failure is reported as one error for the whole
// batch. At-least-once is fine: the storage schema keys points by
// (measurement, tags, timestamp), so re-writing overwrites instead of
// duplicating.
type Writer interface {
	// WritePoints writes one batch. An empty batch is a no-op success.
	WritePoints(ctx context.Context, points []highscore.Point) error

	// WriteAttributes writes per-server entity metadata sampled during an
	// attribute refresh.
	WriteAttributes(ctx context.Context, server string, attrs []highscore.EntityAttributes) error
}
