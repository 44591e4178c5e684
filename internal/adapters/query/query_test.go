package query_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/QueCS/ogame-highscores-tracker/internal/adapters/query"
	highscore "github.com/QueCS/ogame-highscores-tracker/internal/domain/highscore"
	"github.com/QueCS/ogame-highscores-tracker/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

type fakeRunner struct {
	flux    string
	records []query.Record
	err     error
}

func (f *fakeRunner) Run(_ context.Context, flux string) ([]query.Record, error) {
	f.flux = flux
	return f.records, f.err
}

func ts(unix int64) time.Time { return time.Unix(unix, 0).UTC() }

func TestHistory(t *testing.T) {
	Convey("Given stored score and rank samples for one player", t, func() {
		runner := &fakeRunner{records: []query.Record{
			// Out of order on purpose; second sample lost points.
			{Time: ts(2000), Field: "score", Value: 900},
			{Time: ts(1000), Field: "score", Value: 1000},
			{Time: ts(1000), Field: "rank", Value: 5},
			{Time: ts(2000), Field: "rank", Value: 7},
			{Time: ts(3000), Field: "score", Value: 1500},
			{Time: ts(3000), Field: "rank", Value: 4},
		}}
		paris, _ := time.LoadLocation("Europe/Paris")
		svc := query.NewService(
			query.WithRunner(runner),
			query.WithBucket("highscores"),
			query.WithTimezones(paris, time.UTC),
		)

		Convey("When querying the history", func() {
			series, err := svc.History(context.Background(), query.Params{
				Server:   "123",
				EntityID: "7",
				Type:     highscore.TypeEconomy,
				Days:     30,
			})

			Convey("Then samples should come back oldest first with merged fields", func() {
				So(err, ShouldBeNil)
				So(series.Samples, ShouldHaveLength, 3)
				So(series.Samples[0].Score, ShouldEqual, 1000)
				So(series.Samples[0].Rank, ShouldEqual, 5)
				So(series.Samples[1].Score, ShouldEqual, 900)
				So(series.Samples[2].Score, ShouldEqual, 1500)
			})

			Convey("And deltas should be derived from neighbors", func() {
				So(series.Samples[0].Delta, ShouldEqual, 0)
				So(series.Samples[1].Delta, ShouldEqual, -100)
				So(series.Samples[2].Delta, ShouldEqual, 600)
				So(series.Samples[0].TotalDelta, ShouldEqual, 0)
				So(series.Samples[1].TotalDelta, ShouldEqual, -100)
				So(series.Samples[2].TotalDelta, ShouldEqual, 500)
				So(series.Samples[1].Gained, ShouldBeFalse)
				So(series.Samples[2].Gained, ShouldBeTrue)
			})

			Convey("And timestamps should be converted to both timezones", func() {
				sample := series.Samples[0]
				So(sample.Time.Location(), ShouldEqual, time.UTC)
				So(sample.ServerTime.Location().String(), ShouldEqual, "Europe/Paris")
				So(sample.ServerTime.Equal(sample.Time), ShouldBeTrue)
				So(sample.Day, ShouldEqual, sample.ServerTime.Weekday().String())
			})

			Convey("And the Flux query should filter on the stored schema", func() {
				So(runner.flux, ShouldContainSubstring, `from(bucket: "highscores")`)
				So(runner.flux, ShouldContainSubstring, `range(start: -30d)`)
				So(runner.flux, ShouldContainSubstring, `r["server"] == "123"`)
				So(runner.flux, ShouldContainSubstring, `r["category"] == "player"`)
				So(runner.flux, ShouldContainSubstring, `r["_measurement"] == "7"`)
				So(runner.flux, ShouldContainSubstring, `r["type"] == "economy"`)
			})
		})

		Convey("When the range is omitted", func() {
			_, err := svc.History(context.Background(), query.Params{
				Server: "123", EntityID: "7", Type: highscore.TypeEconomy,
			})

			Convey("Then the default range should apply", func() {
				So(err, ShouldBeNil)
				So(runner.flux, ShouldContainSubstring, "range(start: -90d)")
			})
		})
	})
}

func TestHistoryFailures(t *testing.T) {
	Convey("Given a query service", t, func() {
		runner := &fakeRunner{}
		svc := query.NewService(query.WithRunner(runner), query.WithBucket("highscores"))

		Convey("When the store rejects the query", func() {
			runner.err = errors.New("connection refused")
			_, err := svc.History(context.Background(), query.Params{
				Server: "123", EntityID: "7", Type: highscore.TypeEconomy,
			})

			Convey("Then ErrQuery should surface instead of a panic", func() {
				So(errors.Is(err, query.ErrQuery), ShouldBeTrue)
			})
		})

		Convey("When the entity id is not numeric", func() {
			_, err := svc.History(context.Background(), query.Params{
				Server: "123", EntityID: `7" or true`, Type: highscore.TypeEconomy,
			})

			Convey("Then ErrBadParams should surface before any query runs", func() {
				So(errors.Is(err, query.ErrBadParams), ShouldBeTrue)
				So(runner.flux, ShouldBeEmpty)
			})
		})

		Convey("When the server contains Flux metacharacters", func() {
			_, err := svc.History(context.Background(), query.Params{
				Server: `123"`, EntityID: "7", Type: highscore.TypeEconomy,
			})
			So(errors.Is(err, query.ErrBadParams), ShouldBeTrue)
		})

		Convey("When there is no stored history", func() {
			series, err := svc.History(context.Background(), query.Params{
				Server: "123", EntityID: "7", Type: highscore.TypeEconomy,
			})

			Convey("Then an empty series should come back", func() {
				So(err, ShouldBeNil)
				So(series.Samples, ShouldBeEmpty)
				So(strings.TrimSpace(series.Type), ShouldEqual, "economy")
			})
		})
	})
}
