package highscore_test

import (
	"testing"

	highscore "github.com/QueCS/ogame-highscores-tracker/internal/domain/highscore"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTypeMapping(t *testing.T) {
	Convey("Given the API type codes", t, func() {
		Convey("When mapping the known range 0-11", func() {
			expected := []string{
				"general", "economy", "research", "military",
				"mili_lost", "mili_built", "mili_destroyed", "honor",
				"lifeforms", "lf_economy", "lf_research", "lf_discovery",
			}
			for code, name := range expected {
				So(highscore.TypeFromCode(code).String(), ShouldEqual, name)
			}
		})

		Convey("When mapping out-of-range codes", func() {
			So(highscore.TypeFromCode(-1), ShouldEqual, highscore.TypeUnknown)
			So(highscore.TypeFromCode(12), ShouldEqual, highscore.TypeUnknown)
			So(highscore.TypeFromCode(99), ShouldEqual, highscore.TypeUnknown)
		})

		Convey("When mapping names back to types", func() {
			So(highscore.TypeFromName("economy"), ShouldEqual, highscore.TypeEconomy)
			So(highscore.TypeFromName("lf_discovery"), ShouldEqual, highscore.TypeLifeformDiscovery)
			So(highscore.TypeFromName("bogus"), ShouldEqual, highscore.TypeUnknown)
		})

		Convey("When listing names for configured codes", func() {
			So(highscore.TypeNames([]int{0, 3, 99}), ShouldResemble, []string{"general", "military", "unknown"})
		})
	})
}

func TestCategoryMapping(t *testing.T) {
	Convey("Given the API category codes", t, func() {
		So(highscore.CategoryFromCode(1), ShouldEqual, highscore.CategoryPlayer)
		So(highscore.CategoryFromCode(2), ShouldEqual, highscore.CategoryAlliance)
		So(highscore.CategoryFromCode(0), ShouldEqual, highscore.CategoryUnknown)
		So(highscore.CategoryFromCode(7), ShouldEqual, highscore.CategoryUnknown)

		Convey("And their display names", func() {
			So(highscore.CategoryPlayer.String(), ShouldEqual, "player")
			So(highscore.CategoryAlliance.String(), ShouldEqual, "alliance")
			So(highscore.CategoryUnknown.String(), ShouldEqual, "unknown")
		})
	})
}
