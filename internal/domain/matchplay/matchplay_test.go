package matchplay_test

import (
	"errors"
	"testing"

	"github.com/okian/fairway/internal/domain/course"
	"github.com/okian/fairway/internal/domain/matchplay"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/settings"
	. "github.com/smartystreets/goconvey/convey"
)

func nine() []model.CourseHole {
	holes := make([]model.CourseHole, 9)
	for i := range holes {
		holes[i] = model.CourseHole{HoleNumber: i + 1, Par: 4, DifficultyIndex: i + 1}
	}
	return holes
}

func scores(a, b []int) []model.HoleScore {
	out := make([]model.HoleScore, 0, len(a))
	for i := range a {
		out = append(out, model.HoleScore{HoleNumber: i + 1, Par: 4, A: model.Int(a[i]), B: model.Int(b[i])})
	}
	return out
}

func mustScorer(cfg settings.LeagueSettings) *matchplay.Scorer {
	s, err := matchplay.NewScorer(cfg)
	So(err, ShouldBeNil)
	return s
}

func TestNetScore(t *testing.T) {
	Convey("Given gross scores and strokes", t, func() {
		net, ok := matchplay.NetScore(model.Int(5), 1)
		So(ok, ShouldBeTrue)
		So(net, ShouldEqual, 4)

		_, ok = matchplay.NetScore(nil, 1)
		So(ok, ShouldBeFalse)
	})
}

func TestScenario(t *testing.T) {
	Convey("Given par 36, indices 1..9, A handicap 5 and B handicap 9", t, func() {
		scorer := mustScorer(settings.Default())
		grossA := []int{4, 5, 3, 4, 5, 4, 3, 4, 4}
		grossB := []int{5, 5, 4, 5, 5, 5, 3, 4, 5}

		res, err := scorer.Score(matchplay.Input{
			Holes:     nine(),
			Scores:    scores(grossA, grossB),
			OutcomeA:  model.Played{},
			OutcomeB:  model.Played{},
			HandicapA: 5,
			HandicapB: 9,
		})
		So(err, ShouldBeNil)

		Convey("Then B nets one stroke on holes 1-4 only", func() {
			wantNetB := []int{4, 4, 3, 4, 5, 5, 3, 4, 5}
			for i, hr := range res.Holes {
				So(hr.StrokesA, ShouldEqual, 0)
				So(*hr.NetB, ShouldEqual, wantNetB[i])
				So(*hr.NetA, ShouldEqual, grossA[i])
			}
		})

		Convey("Then hole points follow the hand-computed table", func() {
			wantA := []int{1, 0, 1, 1, 1, 2, 1, 1, 2}
			wantB := []int{1, 2, 1, 1, 1, 0, 1, 1, 0}
			for i, hr := range res.Holes {
				So(hr.PointsA, ShouldEqual, wantA[i])
				So(hr.PointsB, ShouldEqual, wantB[i])
			}
			So(res.HolePointsA, ShouldEqual, 10)
			So(res.HolePointsB, ShouldEqual, 8)
		})

		Convey("Then A takes the match bonus", func() {
			So(res.MatchWinA, ShouldBeTrue)
			So(res.MatchWinB, ShouldBeFalse)
			So(res.TotalPointsA, ShouldEqual, 12)
			So(res.TotalPointsB, ShouldEqual, 8)
			So(*res.GrossA, ShouldEqual, 36)
			So(*res.GrossB, ShouldEqual, 41)
		})
	})
}

func TestPointConservation(t *testing.T) {
	Convey("For fully scored nine-hole matches with default settings", t, func() {
		scorer := mustScorer(settings.Default())
		cases := [][2][]int{
			{{4, 4, 4, 4, 4, 4, 4, 4, 4}, {4, 4, 4, 4, 4, 4, 4, 4, 4}},
			{{3, 3, 3, 3, 3, 3, 3, 3, 3}, {7, 7, 7, 7, 7, 7, 7, 7, 7}},
			{{5, 4, 6, 3, 5, 4, 5, 6, 4}, {4, 5, 5, 4, 6, 3, 5, 5, 5}},
		}
		handicaps := [][2]float64{{0, 0}, {3, 12}, {18, 1.5}, {7.5, 7.4}}

		for _, c := range cases {
			for _, h := range handicaps {
				res, err := scorer.Score(matchplay.Input{
					Holes: nine(), Scores: scores(c[0], c[1]),
					OutcomeA: model.Played{}, OutcomeB: model.Played{},
					HandicapA: h[0], HandicapB: h[1],
				})
				So(err, ShouldBeNil)
				So(res.HolePointsA+res.HolePointsB, ShouldEqual, 18)
				So(res.HolePointsA, ShouldBeLessThanOrEqualTo, 9*settings.DefaultHoleWinPoints)
			}
		}
	})
}

func TestTieAndPartialRounds(t *testing.T) {
	Convey("Given default settings", t, func() {
		scorer := mustScorer(settings.Default())

		Convey("When both players card the same nets", func() {
			res, err := scorer.Score(matchplay.Input{
				Holes: nine(), Scores: scores(
					[]int{4, 4, 4, 4, 4, 4, 4, 4, 4},
					[]int{4, 4, 4, 4, 4, 4, 4, 4, 4}),
				OutcomeA: model.Played{}, OutcomeB: model.Played{},
			})

			Convey("Then both get tie points and no win flags", func() {
				So(err, ShouldBeNil)
				So(res.HolePointsA, ShouldEqual, 9)
				So(res.TotalPointsA, ShouldEqual, 10)
				So(res.TotalPointsB, ShouldEqual, 10)
				So(res.MatchWinA, ShouldBeFalse)
				So(res.MatchWinB, ShouldBeFalse)
			})
		})

		Convey("When a hole is missing a gross score for one player", func() {
			sc := scores([]int{3, 4, 4, 4, 4, 4, 4, 4, 4}, []int{4, 4, 4, 4, 4, 4, 4, 4, 4})
			sc[0].B = nil

			res, err := scorer.Score(matchplay.Input{
				Holes: nine(), Scores: sc,
				OutcomeA: model.Played{}, OutcomeB: model.Played{},
			})

			Convey("Then the hole is unplayed and excluded", func() {
				So(err, ShouldBeNil)
				So(res.Holes[0].Scored, ShouldBeFalse)
				So(res.HolePointsA+res.HolePointsB, ShouldEqual, 16)
			})
		})

		Convey("When no hole has both scores", func() {
			res, err := scorer.Score(matchplay.Input{
				Holes: nine(), OutcomeA: model.Played{Strokes: 40}, OutcomeB: model.Played{Strokes: 44},
				HandicapA: 3, HandicapB: 6,
			})

			Convey("Then no match points are awarded", func() {
				So(err, ShouldBeNil)
				So(res.TotalPointsA, ShouldEqual, 0)
				So(res.TotalPointsB, ShouldEqual, 0)
				So(res.MatchWinA || res.MatchWinB, ShouldBeFalse)
				So(*res.GrossA, ShouldEqual, 40)
			})
		})

		Convey("When a score names a hole outside the nine", func() {
			_, err := scorer.Score(matchplay.Input{
				Holes:    nine(),
				Scores:   []model.HoleScore{{HoleNumber: 12, A: model.Int(4), B: model.Int(4)}},
				OutcomeA: model.Played{}, OutcomeB: model.Played{},
			})
			So(errors.Is(err, course.ErrConfiguration), ShouldBeTrue)
		})

		Convey("When course data is empty", func() {
			_, err := scorer.Score(matchplay.Input{OutcomeA: model.Played{}, OutcomeB: model.Played{}})
			So(errors.Is(err, course.ErrConfiguration), ShouldBeTrue)
		})

		Convey("When an outcome is missing", func() {
			_, err := scorer.Score(matchplay.Input{Holes: nine(), OutcomeA: model.Played{}})
			So(errors.Is(err, model.ErrUnknownOutcome), ShouldBeTrue)
		})
	})
}

func TestAbsence(t *testing.T) {
	Convey("Given default absence points", t, func() {
		scorer := mustScorer(settings.Default())

		Convey("When A is absent with notice and B beats par plus handicap", func() {
			res, err := scorer.Score(matchplay.Input{
				Holes: nine(), OutcomeA: model.AbsentWithNotice{}, OutcomeB: model.Played{Strokes: 40},
				HandicapB: 9,
			})

			Convey("Then B takes the full award and A the notice points", func() {
				So(err, ShouldBeNil)
				So(res.TotalPointsB, ShouldEqual, 16)
				So(res.HolePointsB, ShouldEqual, 14)
				So(res.MatchWinB, ShouldBeTrue)
				So(res.TotalPointsA, ShouldEqual, 4)
				So(res.HolePointsA, ShouldEqual, 0)
			})
		})

		Convey("When B is absent without notice and A does not beat par plus handicap", func() {
			res, err := scorer.Score(matchplay.Input{
				Holes: nine(), OutcomeA: model.Played{Strokes: 46}, OutcomeB: model.Absent{},
				HandicapA: 9.5, // rounds half to even: 10, target 46
			})

			Convey("Then A gets the reduced award without a win", func() {
				So(err, ShouldBeNil)
				So(res.TotalPointsA, ShouldEqual, 8)
				So(res.HolePointsA, ShouldEqual, 7)
				So(res.MatchWinA, ShouldBeFalse)
				So(res.TotalPointsB, ShouldEqual, 0)
			})
		})

		Convey("When the present player has no score", func() {
			res, err := scorer.Score(matchplay.Input{
				Holes: nine(), OutcomeA: model.Played{}, OutcomeB: model.AbsentWithNotice{},
			})
			So(err, ShouldBeNil)
			So(res.TotalPointsA, ShouldEqual, 0)
			So(res.TotalPointsB, ShouldEqual, 4)
		})

		Convey("When both players are absent", func() {
			res, err := scorer.Score(matchplay.Input{
				Holes: nine(), OutcomeA: model.AbsentWithNotice{}, OutcomeB: model.Absent{},
			})
			So(err, ShouldBeNil)
			So(res, ShouldResemble, model.MatchResult{})
		})
	})
}

func TestPointsVariants(t *testing.T) {
	Convey("Given A wins more holes but B has the lower net total", t, func() {
		// A wins holes 1-5 by one, B wins holes 6-9 by three
		a := []int{4, 4, 4, 4, 4, 8, 8, 8, 8}
		b := []int{5, 5, 5, 5, 5, 5, 5, 5, 5}
		in := matchplay.Input{Holes: nine(), Scores: scores(a, b), OutcomeA: model.Played{}, OutcomeB: model.Played{}}

		Convey("When scoring as match play", func() {
			res, err := mustScorer(settings.Default()).Score(in)
			So(err, ShouldBeNil)
			So(res.MatchWinA, ShouldBeTrue)
			So(res.TotalPointsA, ShouldEqual, 12)
		})

		Convey("When scoring as stroke play", func() {
			cfg := settings.Default()
			cfg.ScoringMethod = settings.ScoringStrokePlay
			res, err := mustScorer(cfg).Score(in)

			Convey("Then the lower net total takes the bonus", func() {
				So(err, ShouldBeNil)
				So(res.MatchWinB, ShouldBeTrue)
				So(res.TotalPointsB, ShouldEqual, 8+2)
				So(res.TotalPointsA, ShouldEqual, 10)
			})
		})

		Convey("When only match points count", func() {
			cfg := settings.Default()
			cfg.PointsSystem = settings.PointsScoreBased
			res, err := mustScorer(cfg).Score(in)

			Convey("Then totals exclude hole points", func() {
				So(err, ShouldBeNil)
				So(res.HolePointsA, ShouldEqual, 10)
				So(res.TotalPointsA, ShouldEqual, 2)
				So(res.TotalPointsB, ShouldEqual, 0)
			})
		})
	})

	Convey("Given unsupported settings", t, func() {
		cfg := settings.Default()
		cfg.PointsSystem = settings.PointsCustom
		_, err := matchplay.NewScorer(cfg)
		So(errors.Is(err, settings.ErrInvalidConfiguration), ShouldBeTrue)
	})
}
