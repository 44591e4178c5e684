package sink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/QueCS/ogame-highscores-tracker/internal/adapters/sink"
	highscore "github.com/QueCS/ogame-highscores-tracker/internal/domain/highscore"
	"github.com/QueCS/ogame-highscores-tracker/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

type fakeWriter struct {
	batches [][]*write.Point
	err     error
}

func (f *fakeWriter) WritePoint(_ context.Context, points ...*write.Point) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, points)
	return nil
}

func tagMap(p *write.Point) map[string]string {
	tags := make(map[string]string)
	for _, t := range p.TagList() {
		tags[t.Key] = t.Value
	}
	return tags
}

func fieldMap(p *write.Point) map[string]interface{} {
	fields := make(map[string]interface{})
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	return fields
}

func TestWritePoints(t *testing.T) {
	Convey("Given an Influx sink with a fake write API", t, func() {
		fake := &fakeWriter{}
		s := sink.NewInflux(sink.WithPointWriter(fake))
		ts := time.Unix(1700000000, 0).UTC()

		Convey("When writing a batch with a military point", func() {
			ships := int64(1200)
			points := []highscore.Point{
				highscore.NewPoint("123", highscore.CategoryPlayer, highscore.TypeMilitary, 7, 3, 5000000, &ships, ts),
				highscore.NewPoint("123", highscore.CategoryPlayer, highscore.TypeMilitary, 8, 1, 9000000, nil, ts),
			}
			err := s.WritePoints(context.Background(), points)

			Convey("Then the whole batch should go out in one write", func() {
				So(err, ShouldBeNil)
				So(fake.batches, ShouldHaveLength, 1)
				So(fake.batches[0], ShouldHaveLength, 2)
			})

			Convey("And the schema should key the series by entity id", func() {
				p := fake.batches[0][0]
				So(p.Name(), ShouldEqual, "7")
				So(tagMap(p), ShouldResemble, map[string]string{
					"server":   "123",
					"category": "player",
					"type":     "military",
				})
				fields := fieldMap(p)
				So(fields["rank"], ShouldEqual, int64(3))
				So(fields["score"], ShouldEqual, int64(5000000))
				So(fields["ships"], ShouldEqual, int64(1200))
				So(p.Time().Equal(ts), ShouldBeTrue)
			})

			Convey("And points without ships should not carry the field", func() {
				fields := fieldMap(fake.batches[0][1])
				_, hasShips := fields["ships"]
				So(hasShips, ShouldBeFalse)
			})
		})

		Convey("When writing an empty batch", func() {
			err := s.WritePoints(context.Background(), nil)

			Convey("Then it should be a no-op success", func() {
				So(err, ShouldBeNil)
				So(fake.batches, ShouldBeEmpty)
			})
		})

		Convey("When the store rejects the batch", func() {
			fake.err = errors.New("bucket gone")
			points := []highscore.Point{
				highscore.NewPoint("123", highscore.CategoryPlayer, highscore.TypeEconomy, 7, 3, 5, nil, ts),
			}
			err := s.WritePoints(context.Background(), points)

			Convey("Then one WriteError should cover the whole batch", func() {
				var writeErr *sink.WriteError
				So(errors.As(err, &writeErr), ShouldBeTrue)
			})
		})
	})
}

func TestWriteAttributes(t *testing.T) {
	Convey("Given an Influx sink with a fake write API", t, func() {
		fake := &fakeWriter{}
		s := sink.NewInflux(sink.WithPointWriter(fake))
		ts := time.Unix(1700000000, 0).UTC()

		Convey("When writing player attributes", func() {
			attrs := []highscore.EntityAttributes{
				{Category: highscore.CategoryPlayer, ID: 7, Name: "Commander", Status: "v", AllianceID: 500, Timestamp: ts},
			}
			err := s.WriteAttributes(context.Background(), "123", attrs)

			Convey("Then metadata should land under the attributes measurement", func() {
				So(err, ShouldBeNil)
				So(fake.batches, ShouldHaveLength, 1)
				p := fake.batches[0][0]
				So(p.Name(), ShouldEqual, "player_attributes")
				So(tagMap(p), ShouldResemble, map[string]string{"server": "123", "id": "7"})
				fields := fieldMap(p)
				So(fields["name"], ShouldEqual, "Commander")
				So(fields["status"], ShouldEqual, "v")
				So(fields["alliance_id"], ShouldEqual, int64(500))
			})
		})

		Convey("When writing alliance attributes", func() {
			attrs := []highscore.EntityAttributes{
				{Category: highscore.CategoryAlliance, ID: 500, Name: "The Fleet", Tag: "TF", Timestamp: ts},
			}
			err := s.WriteAttributes(context.Background(), "123", attrs)

			So(err, ShouldBeNil)
			p := fake.batches[0][0]
			So(p.Name(), ShouldEqual, "alliance_attributes")
			So(fieldMap(p)["tag"], ShouldEqual, "TF")
		})

		Convey("When writing no attributes", func() {
			So(s.WriteAttributes(context.Background(), "123", nil), ShouldBeNil)
			So(fake.batches, ShouldBeEmpty)
		})
	})
}
