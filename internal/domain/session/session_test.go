package session_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/session"
	. "github.com/smartystreets/goconvey/convey"
)

// fixture: ten weeks, session restarts at week 6, week 3 excluded from
// scoring, week 4 excluded from handicap, week 8 is a special-points week.
func fixture() (*session.Season, uuid.UUID) {
	seasonID, player := uuid.New(), uuid.New()
	s := &session.Season{
		ID:        seasonID,
		Players:   map[uuid.UUID]model.PlayerRecord{},
		Baselines: map[model.BaselineKey]float64{},
		Entries:   map[uuid.UUID][]model.ScoreEntry{},
	}
	for n := 1; n <= 10; n++ {
		w := model.Week{Number: n, SeasonID: seasonID, CountsForScoring: true, CountsForHandicap: true, Nine: model.Front}
		switch n {
		case 3:
			w.CountsForScoring = false
		case 4:
			w.CountsForHandicap = false
		case 6:
			w.SessionStart = true
		case 8:
			w.SpecialPoints = model.Int(6)
		}
		s.Weeks = append(s.Weeks, w)
	}
	for n, g := range map[int]int{1: 44, 2: 42, 3: 50, 4: 40, 5: 46, 6: 41, 7: 43, 8: 39} {
		s.Entries[player] = append(s.Entries[player], model.ScoreEntry{PlayerID: player, WeekNumber: n, Outcome: model.Played{Strokes: g}})
	}
	s.Entries[player] = append(s.Entries[player], model.ScoreEntry{PlayerID: player, WeekNumber: 9, Outcome: model.AbsentWithNotice{}})
	s.Players[player] = model.PlayerRecord{PlayerID: player, SeasonID: seasonID, InitialAverage: model.Float(45), InitialHandicap: model.Float(9)}
	return s, player
}

func TestSessionStart(t *testing.T) {
	Convey("Given weeks with a session start at week 6", t, func() {
		s, _ := fixture()

		So(session.SessionStart(s.Weeks, 1), ShouldEqual, 1)
		So(session.SessionStart(s.Weeks, 5), ShouldEqual, 1)
		So(session.SessionStart(s.Weeks, 6), ShouldEqual, 6)
		So(session.SessionStart(s.Weeks, 10), ShouldEqual, 6)
		So(session.SessionStart(nil, 4), ShouldEqual, 1)

		So(session.IsSessionStart(s.Weeks, 1), ShouldBeTrue)
		So(session.IsSessionStart(s.Weeks, 6), ShouldBeTrue)
		So(session.IsSessionStart(s.Weeks, 7), ShouldBeFalse)
		So(session.IsSessionStart(s.Weeks, 42), ShouldBeFalse)
	})
}

func TestResolve(t *testing.T) {
	Convey("Given a season snapshot", t, func() {
		s, player := fixture()

		Convey("When resolving the average at week 5", func() {
			w, err := session.Resolve(s, session.Request{PlayerID: player, Week: 5, Kind: model.BaselineAverage})

			Convey("Then week 5 counts because the player played it", func() {
				So(err, ShouldBeNil)
				So(w.SessionStartWeek, ShouldEqual, 1)
				So(w.UpperWeek, ShouldEqual, 5)
				So(w.EligibleWeeks, ShouldResemble, []int{1, 2, 4, 5})
				So(w.Scores(), ShouldResemble, []int{44, 42, 40, 46})
				So(w.Tier, ShouldEqual, session.TierGlobal)
				So(w.Baseline, ShouldEqual, 45.0)
			})
		})

		Convey("When resolving the handicap at week 5", func() {
			w, err := session.Resolve(s, session.Request{PlayerID: player, Week: 5, Kind: model.BaselineHandicap})

			Convey("Then the handicap flag drives eligibility", func() {
				So(err, ShouldBeNil)
				So(w.EligibleWeeks, ShouldResemble, []int{1, 2, 3, 5})
				So(w.Baseline, ShouldEqual, 9.0)
			})
		})

		Convey("When the target week has not been played", func() {
			w, err := session.Resolve(s, session.Request{PlayerID: player, Week: 9, Kind: model.BaselineAverage})

			Convey("Then it resolves as of the previous week", func() {
				So(err, ShouldBeNil)
				So(w.UpperWeek, ShouldEqual, 8)
				So(w.SessionStartWeek, ShouldEqual, 6)
				So(w.Scores(), ShouldResemble, []int{41, 43, 39})
			})
		})

		Convey("When resolving entering a played week", func() {
			w, err := session.Resolve(s, session.Request{PlayerID: player, Week: 7, Kind: model.BaselineAverage, ExcludeTarget: true})

			Convey("Then the week's own round is ignored", func() {
				So(err, ShouldBeNil)
				So(w.UpperWeek, ShouldEqual, 6)
				So(w.Scores(), ShouldResemble, []int{41})
			})
		})

		Convey("When a special-points week falls in the handicap window", func() {
			w, err := session.Resolve(s, session.Request{PlayerID: player, Week: 8, Kind: model.BaselineHandicap})

			Convey("Then it is skipped", func() {
				So(err, ShouldBeNil)
				So(w.EligibleWeeks, ShouldResemble, []int{6, 7})
			})
		})

		Convey("When resolving on the session start week before playing", func() {
			s.Entries[player] = s.Entries[player][:0]
			s.Baselines[model.BaselineKey{Kind: model.BaselineAverage, PlayerID: player, SeasonID: s.ID, SessionStartWeek: 6}] = 43.5
			w, err := session.Resolve(s, session.Request{PlayerID: player, Week: 6, Kind: model.BaselineAverage})

			Convey("Then the window is empty and the session baseline is used", func() {
				So(err, ShouldBeNil)
				So(w.Rounds, ShouldBeEmpty)
				So(w.Tier, ShouldEqual, session.TierSession)
				So(w.Baseline, ShouldEqual, 43.5)
			})
		})

		Convey("When the season value exists but no session row", func() {
			p := s.Players[player]
			p.CurrentAverage = model.Float(44.25)
			s.Players[player] = p
			w, err := session.Resolve(s, session.Request{PlayerID: player, Week: 6, Kind: model.BaselineAverage})

			So(err, ShouldBeNil)
			So(w.Tier, ShouldEqual, session.TierSeason)
			So(w.Baseline, ShouldEqual, 44.25)
		})

		Convey("When every tier is missing", func() {
			_, err := session.Resolve(s, session.Request{PlayerID: uuid.New(), Week: 3, Kind: model.BaselineAverage})
			So(errors.Is(err, session.ErrMissingBaseline), ShouldBeTrue)
		})

		Convey("When the week is not positive", func() {
			_, err := session.Resolve(s, session.Request{PlayerID: player, Week: 0, Kind: model.BaselineAverage})
			So(errors.Is(err, session.ErrInvalidWeek), ShouldBeTrue)
		})

		Convey("When resolving twice", func() {
			a, errA := session.Resolve(s, session.Request{PlayerID: player, Week: 10, Kind: model.BaselineHandicap})
			b, errB := session.Resolve(s, session.Request{PlayerID: player, Week: 10, Kind: model.BaselineHandicap})
			So(errA, ShouldBeNil)
			So(errB, ShouldBeNil)
			So(a, ShouldResemble, b)
		})
	})
}

func TestBaseline(t *testing.T) {
	Convey("Given a player with only a global handicap", t, func() {
		s, player := fixture()

		v, tier, err := session.Baseline(s, player, model.BaselineHandicap, 6)
		So(err, ShouldBeNil)
		So(tier, ShouldEqual, session.TierGlobal)
		So(v, ShouldEqual, 9.0)

		Convey("When a session row is added it wins", func() {
			s.Baselines[model.BaselineKey{Kind: model.BaselineHandicap, PlayerID: player, SeasonID: s.ID, SessionStartWeek: 6}] = 7.5
			v, tier, err := session.Baseline(s, player, model.BaselineHandicap, 6)
			So(err, ShouldBeNil)
			So(tier, ShouldEqual, session.TierSession)
			So(v, ShouldEqual, 7.5)
		})
	})
}
