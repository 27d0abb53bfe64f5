package model_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestOutcome(t *testing.T) {
	convey.Convey("Given the outcome variants", t, func() {
		convey.Convey("When tagging and parsing them back", func() {
			for _, o := range []model.Outcome{model.Played{Strokes: 41}, model.Absent{}, model.AbsentWithNotice{}} {
				var strokes *int
				if g, ok := model.Gross(o); ok {
					strokes = &g
				}
				back, err := model.ParseOutcome(model.OutcomeKind(o), strokes)
				convey.So(err, convey.ShouldBeNil)
				convey.So(back, convey.ShouldResemble, o)
			}
		})

		convey.Convey("When parsing an unknown tag", func() {
			_, err := model.ParseOutcome("late", nil)

			convey.Convey("Then it fails with ErrUnknownOutcome", func() {
				convey.So(errors.Is(err, model.ErrUnknownOutcome), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When asking for gross strokes", func() {
			g, ok := model.Gross(model.Played{Strokes: 44})
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(g, convey.ShouldEqual, 44)

			_, ok = model.Gross(model.Played{})
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = model.Gross(model.Absent{})
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("When checking absence", func() {
			convey.So(model.IsAbsent(model.Absent{}), convey.ShouldBeTrue)
			convey.So(model.IsAbsent(model.AbsentWithNotice{}), convey.ShouldBeTrue)
			convey.So(model.IsAbsent(model.Played{Strokes: 40}), convey.ShouldBeFalse)
		})
	})
}

func TestPlayerRecordTiers(t *testing.T) {
	convey.Convey("Given a player record", t, func() {
		p := model.PlayerRecord{
			InitialAverage:  model.Float(45),
			InitialHandicap: model.Float(9),
			CurrentAverage:  model.Float(44.5),
		}

		convey.So(*p.Initial(model.BaselineAverage), convey.ShouldEqual, 45.0)
		convey.So(*p.Initial(model.BaselineHandicap), convey.ShouldEqual, 9.0)
		convey.So(*p.Current(model.BaselineAverage), convey.ShouldEqual, 44.5)
		convey.So(p.Current(model.BaselineHandicap), convey.ShouldBeNil)
	})
}

func TestKeys(t *testing.T) {
	convey.Convey("Given ids", t, func() {
		season, player := uuid.New(), uuid.New()

		job := model.RecomputeJob{SeasonID: season, PlayerID: player}
		convey.So(job.Key(), convey.ShouldEqual, season.String()+"/"+player.String())

		b := model.SessionBaseline{Kind: model.BaselineAverage, PlayerID: player, SeasonID: season, SessionStartWeek: 5, Value: 44}
		convey.So(b.Key(), convey.ShouldResemble, model.BaselineKey{Kind: model.BaselineAverage, PlayerID: player, SeasonID: season, SessionStartWeek: 5})
		convey.So(model.SideA.String(), convey.ShouldEqual, "A")
		convey.So(model.Back.String(), convey.ShouldEqual, "back")
	})
}
