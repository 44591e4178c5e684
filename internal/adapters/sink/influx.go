package sink

import (
	"context"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	highscore "github.com/QueCS/ogame-highscores-tracker/internal/domain/highscore"
	"github.com/QueCS/ogame-highscores-tracker/pkg/logger"
	"github.com/QueCS/ogame-highscores-tracker/pkg/metrics"
)

// Storage schema: the series is keyed by entity id (measurement) with
// server, category and type as tags — the shape the dashboard queries.
// Fields are rank, score and, for (player, military) points, ships.

// pointWriter is the subset of the InfluxDB blocking write API the sink
// needs; tests inject a fake here.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Influx implements Writer on top of the InfluxDB v2 blocking write API.
type Influx struct {
	client influxdb2.Client
	write  pointWriter
	url    string
	token  string
	org    string
	bucket string
	logger logger.Logger
}

// NewInflux creates an InfluxDB-backed sink with configuration options.
func NewInflux(opts ...Option) *Influx {
	i := &Influx{}

	// Apply all options
	for _, opt := range opts {
		opt(i)
	}

	if i.logger == nil {
		i.logger = logger.Get().Named("sink")
	}

	// A writer injected via options (tests) skips the real client.
	if i.write == nil && i.url != "" {
		i.client = influxdb2.NewClientWithOptions(i.url, i.token,
			influxdb2.DefaultOptions().SetPrecision(time.Second))
		i.write = i.client.WriteAPIBlocking(i.org, i.bucket)
	}

	return i
}

// WritePoints writes one normalized batch as a single storage write.
func (i *Influx) WritePoints(ctx context.Context, points []highscore.Point) error {
	if len(points) == 0 {
		return nil
	}
	if i.write == nil {
		return ErrNotConfigured
	}

	batch := make([]*write.Point, len(points))
	for n, p := range points {
		fields := map[string]interface{}{
			"rank":  p.Rank,
			"score": p.Score,
		}
		if p.Ships != nil {
			fields["ships"] = *p.Ships
		}
		batch[n] = influxdb2.NewPoint(
			strconv.FormatInt(p.EntityID, 10),
			map[string]string{
				"server":   p.Server,
				"category": p.Category.String(),
				"type":     p.Type.String(),
			},
			fields,
			p.Timestamp,
		)
	}

	if err := i.write.WritePoint(ctx, batch...); err != nil {
		metrics.RecordWriteError()
		return &WriteError{Err: err}
	}
	metrics.AddPointsWritten(len(points))
	i.logger.Debug(ctx, "batch written", logger.Int("points", len(points)))
	return nil
}

// WriteAttributes writes per-server entity metadata.
func (i *Influx) WriteAttributes(ctx context.Context, server string, attrs []highscore.EntityAttributes) error {
	if len(attrs) == 0 {
		return nil
	}
	if i.write == nil {
		return ErrNotConfigured
	}

	batch := make([]*write.Point, len(attrs))
	for n, a := range attrs {
		fields := map[string]interface{}{
			"name": a.Name,
		}
		switch a.Category {
		case highscore.CategoryPlayer:
			fields["status"] = a.Status
			fields["alliance_id"] = a.AllianceID
		case highscore.CategoryAlliance:
			fields["tag"] = a.Tag
		}
		batch[n] = influxdb2.NewPoint(
			a.Category.String()+"_attributes",
			map[string]string{
				"server": server,
				"id":     strconv.FormatInt(a.ID, 10),
			},
			fields,
			a.Timestamp,
		)
	}

	if err := i.write.WritePoint(ctx, batch...); err != nil {
		metrics.RecordWriteError()
		return &WriteError{Err: err}
	}
	i.logger.Debug(ctx, "attributes written",
		logger.String("server", server),
		logger.Int("entities", len(attrs)),
	)
	return nil
}

// Close releases the underlying InfluxDB client.
func (i *Influx) Close() {
	if i.client != nil {
		i.client.Close()
	}
}
