// Package settings holds the per-season scoring configuration bundle.
//
// Method selections are closed string tags. Validate rejects anything it
// does not recognise instead of silently defaulting.
package settings

import (
	"fmt"
	"math"
)

// HandicapMethod selects the handicap strategy.
type HandicapMethod string

const (
	HandicapWorldHandicapSystem HandicapMethod = "world_handicap_system"
	HandicapSimpleAverage       HandicapMethod = "simple_average"
	HandicapLegacyLookupTable   HandicapMethod = "legacy_lookup_table"
)

// AverageMethod selects the average strategy.
type AverageMethod string

const (
	AverageSimple         AverageMethod = "simple_average"
	AverageLegacyWeighted AverageMethod = "legacy_weighted_average"
)

// ScoringMethod selects how the overall match winner is decided.
type ScoringMethod string

const (
	ScoringMatchPlay  ScoringMethod = "match_play"
	ScoringStrokePlay ScoringMethod = "stroke_play"
)

// PointsSystem selects how hole and match points combine into a total.
type PointsSystem string

const (
	PointsHoleWithMatchBonus PointsSystem = "hole_points_with_match_bonus"
	PointsScoreBased         PointsSystem = "score_based_points"
	PointsCustom             PointsSystem = "custom"
)

// Defaults.
const (
	DefaultHoleWinPoints        = 2
	DefaultHoleHalvePoints      = 1
	DefaultMatchWinBonus        = 2
	DefaultMatchTiePoints       = 1
	DefaultLegacyInitialWeight  = 4
	DefaultCoursePar            = 36
	DefaultCourseRating         = 35.0
	DefaultSlopeRating          = 113
	DefaultMaxRoundsForHandicap = 20
	// DefaultWHSAdjustment scales the mean of the best differentials.
	DefaultWHSAdjustment    = 0.96
	DefaultMaxHandicapIndex = 36.0

	DefaultAbsentWithNoticePoints     = 4
	DefaultAbsentPoints               = 0
	DefaultPresentBeatsHandicapPoints = 16
	DefaultPresentPoints              = 8
)

// LeagueSettings is the immutable configuration of one season.
type LeagueSettings struct {
	HandicapMethod HandicapMethod `json:"handicap_method" koanf:"handicap_method"`
	AverageMethod  AverageMethod  `json:"average_method" koanf:"average_method"`
	ScoringMethod  ScoringMethod  `json:"scoring_method" koanf:"scoring_method"`
	PointsSystem   PointsSystem   `json:"points_system" koanf:"points_system"`

	HoleWinPoints   int `json:"hole_win_points" koanf:"hole_win_points"`
	HoleHalvePoints int `json:"hole_halve_points" koanf:"hole_halve_points"`
	MatchWinBonus   int `json:"match_win_bonus" koanf:"match_win_bonus"`
	MatchTiePoints  int `json:"match_tie_points" koanf:"match_tie_points"`

	LegacyInitialWeight  int     `json:"legacy_initial_weight" koanf:"legacy_initial_weight"`
	CoursePar            int     `json:"course_par" koanf:"course_par"`
	CourseRating         float64 `json:"course_rating" koanf:"course_rating"`
	SlopeRating          float64 `json:"slope_rating" koanf:"slope_rating"`
	MaxRoundsForHandicap int     `json:"max_rounds_for_handicap" koanf:"max_rounds_for_handicap"`
	WHSAdjustment        float64 `json:"whs_adjustment" koanf:"whs_adjustment"`
	MaxHandicapIndex     float64 `json:"max_handicap_index" koanf:"max_handicap_index"`

	AbsentWithNoticePoints     int `json:"absent_with_notice_points" koanf:"absent_with_notice_points"`
	AbsentPoints               int `json:"absent_points" koanf:"absent_points"`
	PresentBeatsHandicapPoints int `json:"present_beats_handicap_points" koanf:"present_beats_handicap_points"`
	PresentPoints              int `json:"present_points" koanf:"present_points"`

	UseSessionHandicaps bool `json:"use_session_handicaps" koanf:"use_session_handicaps"`
}

// Default returns the league defaults.
func Default() LeagueSettings {
	return LeagueSettings{
		HandicapMethod:             HandicapWorldHandicapSystem,
		AverageMethod:              AverageSimple,
		ScoringMethod:              ScoringMatchPlay,
		PointsSystem:               PointsHoleWithMatchBonus,
		HoleWinPoints:              DefaultHoleWinPoints,
		HoleHalvePoints:            DefaultHoleHalvePoints,
		MatchWinBonus:              DefaultMatchWinBonus,
		MatchTiePoints:             DefaultMatchTiePoints,
		LegacyInitialWeight:        DefaultLegacyInitialWeight,
		CoursePar:                  DefaultCoursePar,
		CourseRating:               DefaultCourseRating,
		SlopeRating:                DefaultSlopeRating,
		MaxRoundsForHandicap:       DefaultMaxRoundsForHandicap,
		WHSAdjustment:              DefaultWHSAdjustment,
		MaxHandicapIndex:           DefaultMaxHandicapIndex,
		AbsentWithNoticePoints:     DefaultAbsentWithNoticePoints,
		AbsentPoints:               DefaultAbsentPoints,
		PresentBeatsHandicapPoints: DefaultPresentBeatsHandicapPoints,
		PresentPoints:              DefaultPresentPoints,
		UseSessionHandicaps:        true,
	}
}

// Validate checks every selection and parameter.
func (s LeagueSettings) Validate() error {
	switch s.HandicapMethod {
	case HandicapWorldHandicapSystem, HandicapSimpleAverage, HandicapLegacyLookupTable:
	default:
		return invalid("handicap_method", s.HandicapMethod)
	}
	switch s.AverageMethod {
	case AverageSimple, AverageLegacyWeighted:
	default:
		return invalid("average_method", s.AverageMethod)
	}
	switch s.ScoringMethod {
	case ScoringMatchPlay, ScoringStrokePlay:
	default:
		return invalid("scoring_method", s.ScoringMethod)
	}
	switch s.PointsSystem {
	case PointsHoleWithMatchBonus, PointsScoreBased:
	case PointsCustom:
		return fmt.Errorf("%w: points_system %q is not supported", ErrInvalidConfiguration, s.PointsSystem)
	default:
		return invalid("points_system", s.PointsSystem)
	}

	for name, v := range map[string]int{
		"hole_win_points":               s.HoleWinPoints,
		"hole_halve_points":             s.HoleHalvePoints,
		"match_win_bonus":               s.MatchWinBonus,
		"match_tie_points":              s.MatchTiePoints,
		"legacy_initial_weight":         s.LegacyInitialWeight,
		"absent_with_notice_points":     s.AbsentWithNoticePoints,
		"absent_points":                 s.AbsentPoints,
		"present_beats_handicap_points": s.PresentBeatsHandicapPoints,
		"present_points":                s.PresentPoints,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfiguration, name)
		}
	}
	if s.CoursePar <= 0 {
		return fmt.Errorf("%w: course_par must be positive", ErrInvalidConfiguration)
	}
	if !(s.SlopeRating > 0) || math.IsInf(s.SlopeRating, 0) {
		return fmt.Errorf("%w: slope_rating must be positive", ErrInvalidConfiguration)
	}
	if s.MaxRoundsForHandicap < 1 {
		return fmt.Errorf("%w: max_rounds_for_handicap must be at least 1", ErrInvalidConfiguration)
	}
	if !(s.WHSAdjustment > 0) || s.WHSAdjustment > 1 {
		return fmt.Errorf("%w: whs_adjustment must be in (0, 1]", ErrInvalidConfiguration)
	}
	if !(s.MaxHandicapIndex > 0) {
		return fmt.Errorf("%w: max_handicap_index must be positive", ErrInvalidConfiguration)
	}
	return nil
}

func invalid[T ~string](field string, v T) error {
	return fmt.Errorf("%w: unknown %s %q", ErrInvalidConfiguration, field, string(v))
}

// ParseHandicapMethod validates a handicap method tag.
func ParseHandicapMethod(v string) (HandicapMethod, error) {
	m := HandicapMethod(v)
	switch m {
	case HandicapWorldHandicapSystem, HandicapSimpleAverage, HandicapLegacyLookupTable:
		return m, nil
	}
	return "", invalid("handicap_method", m)
}

// ParseAverageMethod validates an average method tag.
func ParseAverageMethod(v string) (AverageMethod, error) {
	m := AverageMethod(v)
	switch m {
	case AverageSimple, AverageLegacyWeighted:
		return m, nil
	}
	return "", invalid("average_method", m)
}
