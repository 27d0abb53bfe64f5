package model

import "github.com/google/uuid"

// Side names one player of a matchup.
type Side int

const (
	SideNone Side = iota
	SideA
	SideB
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return "none"
	}
}

// Matchup pairs two players for a week.
type Matchup struct {
	ID         uuid.UUID    `json:"id"`
	SeasonID   uuid.UUID    `json:"season_id"`
	WeekID     uuid.UUID    `json:"week_id"`
	WeekNumber int          `json:"week_number"`
	PlayerAID  uuid.UUID    `json:"player_a_id"`
	PlayerBID  uuid.UUID    `json:"player_b_id"`
	OutcomeA   Outcome      `json:"-"`
	OutcomeB   Outcome      `json:"-"`
	Result     *MatchResult `json:"result,omitempty"`
}

// HoleScore holds the gross strokes of both players on one hole. A nil
// score means the hole was not completed by that player.
type HoleScore struct {
	MatchupID  uuid.UUID `json:"matchup_id"`
	HoleNumber int       `json:"hole_number"`
	Par        int       `json:"par"`
	A          *int      `json:"a,omitempty"`
	B          *int      `json:"b,omitempty"`
}

// HoleResult is the scored view of one hole.
type HoleResult struct {
	HoleNumber int  `json:"hole_number"`
	StrokesA   int  `json:"strokes_a"`
	StrokesB   int  `json:"strokes_b"`
	NetA       *int `json:"net_a,omitempty"`
	NetB       *int `json:"net_b,omitempty"`
	PointsA    int  `json:"points_a"`
	PointsB    int  `json:"points_b"`
	Scored     bool `json:"scored"`
}

// MatchResult is the point breakdown of a scored matchup.
type MatchResult struct {
	HolePointsA  int          `json:"hole_points_a"`
	HolePointsB  int          `json:"hole_points_b"`
	TotalPointsA int          `json:"total_points_a"`
	TotalPointsB int          `json:"total_points_b"`
	MatchWinA    bool         `json:"match_win_a"`
	MatchWinB    bool         `json:"match_win_b"`
	GrossA       *int         `json:"gross_a,omitempty"`
	GrossB       *int         `json:"gross_b,omitempty"`
	HandicapA    float64      `json:"handicap_a"`
	HandicapB    float64      `json:"handicap_b"`
	Holes        []HoleResult `json:"holes,omitempty"`
}

// ScoreEntry is a player's result for one week. PointsEarned is always set,
// absences included.
type ScoreEntry struct {
	PlayerID     uuid.UUID `json:"player_id"`
	SeasonID     uuid.UUID `json:"season_id"`
	WeekID       uuid.UUID `json:"week_id"`
	WeekNumber   int       `json:"week_number"`
	MatchupID    uuid.UUID `json:"matchup_id"`
	Outcome      Outcome   `json:"-"`
	PointsEarned int       `json:"points_earned"`
}

// Round is a played gross score used by the rolling engines.
type Round struct {
	WeekNumber int
	Score      int
}

// RecomputeJob asks for one player's season statistics to be recomputed.
type RecomputeJob struct {
	SeasonID uuid.UUID
	PlayerID uuid.UUID
}

// Key returns the coalescing key of the job.
func (j RecomputeJob) Key() string {
	return j.SeasonID.String() + "/" + j.PlayerID.String()
}
