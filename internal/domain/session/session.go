// Package session resolves which weeks count for a player's rolling
// statistics and what baseline the current session starts from.
package session

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/domain/model"
)

// FirstWeek is the implicit session start when no week is flagged.
const FirstWeek = 1

// Tier names the fallback level a baseline was resolved from.
type Tier string

const (
	TierSession Tier = "session"
	TierSeason  Tier = "season"
	TierGlobal  Tier = "global"
)

// Season is a read-only snapshot of the rows the resolver needs.
type Season struct {
	ID        uuid.UUID
	Weeks     []model.Week
	Players   map[uuid.UUID]model.PlayerRecord
	Baselines map[model.BaselineKey]float64
	// Entries holds each player's score entries for the season.
	Entries map[uuid.UUID][]model.ScoreEntry
}

// Request selects the player, week and statistic to resolve.
type Request struct {
	PlayerID uuid.UUID
	Week     int
	Kind     model.BaselineKind
	// ExcludeTarget resolves the window entering Week, ignoring its rounds
	// even if they have been played.
	ExcludeTarget bool
}

// Window is the resolved evaluation window.
type Window struct {
	SessionStartWeek int
	UpperWeek        int
	Baseline         float64
	Tier             Tier
	EligibleWeeks    []int
	Rounds           []model.Round
}

// Scores returns the gross scores of the window's rounds in week order.
func (w Window) Scores() []int {
	out := make([]int, len(w.Rounds))
	for i, r := range w.Rounds {
		out[i] = r.Score
	}
	return out
}

// SessionStart returns the latest session-start week at or before week.
func SessionStart(weeks []model.Week, week int) int {
	start := FirstWeek
	for _, w := range weeks {
		if w.SessionStart && w.Number <= week && w.Number > start {
			start = w.Number
		}
	}
	return start
}

// IsSessionStart reports whether week opens a session. Week 1 always does.
func IsSessionStart(weeks []model.Week, week int) bool {
	if week == FirstWeek {
		return true
	}
	for _, w := range weeks {
		if w.Number == week {
			return w.SessionStart
		}
	}
	return false
}

// Resolve computes the window for req. It is a deterministic function of
// the snapshot.
func Resolve(s *Season, req Request) (Window, error) {
	if req.Week < FirstWeek {
		return Window{}, fmt.Errorf("%w: week %d", ErrInvalidWeek, req.Week)
	}

	win := Window{SessionStartWeek: SessionStart(s.Weeks, req.Week)}

	baseline, tier, err := Baseline(s, req.PlayerID, req.Kind, win.SessionStartWeek)
	if err != nil {
		return Window{}, err
	}
	win.Baseline, win.Tier = baseline, tier

	entries := s.Entries[req.PlayerID]
	win.UpperWeek = req.Week - 1
	if !req.ExcludeTarget && playedIn(entries, req.Week) {
		win.UpperWeek = req.Week
	}

	eligible := make(map[int]bool)
	for _, w := range s.Weeks {
		if w.Number < win.SessionStartWeek || w.Number > win.UpperWeek {
			continue
		}
		if counts(w, req.Kind) {
			eligible[w.Number] = true
		}
	}
	for n := range eligible {
		win.EligibleWeeks = append(win.EligibleWeeks, n)
	}
	sort.Ints(win.EligibleWeeks)

	for _, e := range entries {
		if !eligible[e.WeekNumber] {
			continue
		}
		if g, ok := model.Gross(e.Outcome); ok {
			win.Rounds = append(win.Rounds, model.Round{WeekNumber: e.WeekNumber, Score: g})
		}
	}
	sort.SliceStable(win.Rounds, func(i, j int) bool { return win.Rounds[i].WeekNumber < win.Rounds[j].WeekNumber })

	return win, nil
}

// counts applies the purpose flag. Special-points weeks never feed the
// handicap.
func counts(w model.Week, kind model.BaselineKind) bool {
	if kind == model.BaselineHandicap {
		return w.CountsForHandicap && w.SpecialPoints == nil
	}
	return w.CountsForScoring
}

func playedIn(entries []model.ScoreEntry, week int) bool {
	for _, e := range entries {
		if e.WeekNumber != week {
			continue
		}
		if _, ok := model.Gross(e.Outcome); ok {
			return true
		}
	}
	return false
}

// Baseline walks the session, season and global tiers for the session
// starting at start.
func Baseline(s *Season, playerID uuid.UUID, kind model.BaselineKind, start int) (float64, Tier, error) {
	key := model.BaselineKey{Kind: kind, PlayerID: playerID, SeasonID: s.ID, SessionStartWeek: start}
	if v, ok := s.Baselines[key]; ok {
		return v, TierSession, nil
	}
	if p, ok := s.Players[playerID]; ok {
		if v := p.Current(kind); v != nil {
			return *v, TierSeason, nil
		}
		if v := p.Initial(kind); v != nil {
			return *v, TierGlobal, nil
		}
	}
	return 0, "", fmt.Errorf("%w: %s baseline for player %s season %s session week %d",
		ErrMissingBaseline, kind, playerID, s.ID, start)
}
