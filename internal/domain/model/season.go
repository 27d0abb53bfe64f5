package model

import "github.com/google/uuid"

// Season groups weeks, players and one active settings bundle.
type Season struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	CourseID uuid.UUID `json:"course_id"`
}

// Week is one league night. A SessionStart week opens a new session whose
// baselines must exist before rolling computations can proceed.
type Week struct {
	ID                uuid.UUID `json:"id"`
	SeasonID          uuid.UUID `json:"season_id"`
	Number            int       `json:"number"`
	SessionStart      bool      `json:"session_start"`
	CountsForScoring  bool      `json:"counts_for_scoring"`
	CountsForHandicap bool      `json:"counts_for_handicap"`
	Nine              NineHoles `json:"nine"`
	// SpecialPoints, when set, replaces matchup points for the week.
	SpecialPoints *int `json:"special_points,omitempty"`
}

// BaselineKind distinguishes the two session baselines a player carries.
type BaselineKind string

const (
	BaselineAverage  BaselineKind = "average"
	BaselineHandicap BaselineKind = "handicap"
)

// SessionBaseline is the starting average or handicap for one session.
type SessionBaseline struct {
	Kind             BaselineKind `json:"kind"`
	PlayerID         uuid.UUID    `json:"player_id"`
	SeasonID         uuid.UUID    `json:"season_id"`
	SessionStartWeek int          `json:"session_start_week"`
	Value            float64      `json:"value"`
}

// BaselineKey identifies a SessionBaseline row.
type BaselineKey struct {
	Kind             BaselineKind
	PlayerID         uuid.UUID
	SeasonID         uuid.UUID
	SessionStartWeek int
}

// Key returns the uniqueness key of b.
func (b SessionBaseline) Key() BaselineKey {
	return BaselineKey{Kind: b.Kind, PlayerID: b.PlayerID, SeasonID: b.SeasonID, SessionStartWeek: b.SessionStartWeek}
}

// PlayerRecord carries a player's season-level current values and global
// initial values, the second and third baseline tiers.
type PlayerRecord struct {
	PlayerID        uuid.UUID `json:"player_id"`
	SeasonID        uuid.UUID `json:"season_id"`
	Name            string    `json:"name"`
	InitialAverage  *float64  `json:"initial_average,omitempty"`
	InitialHandicap *float64  `json:"initial_handicap,omitempty"`
	CurrentAverage  *float64  `json:"current_average,omitempty"`
	CurrentHandicap *float64  `json:"current_handicap,omitempty"`
}

// Initial returns the global initial value for kind.
func (p PlayerRecord) Initial(kind BaselineKind) *float64 {
	if kind == BaselineHandicap {
		return p.InitialHandicap
	}
	return p.InitialAverage
}

// Current returns the season-level current value for kind.
func (p PlayerRecord) Current(kind BaselineKind) *float64 {
	if kind == BaselineHandicap {
		return p.CurrentHandicap
	}
	return p.CurrentAverage
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
