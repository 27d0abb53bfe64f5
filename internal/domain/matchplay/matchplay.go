// Package matchplay turns gross hole scores into match-play points.
//
// Scoring is a pure fold over the holes in play: strokes are allocated from
// the two handicaps, net scores compared hole by hole, then the match bonus
// or tie points are added. Absences short-circuit the fold.
package matchplay

import (
	"fmt"
	"math"

	"github.com/okian/fairway/internal/domain/course"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/settings"
	"github.com/okian/fairway/internal/domain/strokes"
)

// NetScore applies received strokes to a gross score. It is undefined
// (false) when the gross score is missing.
func NetScore(gross *int, received int) (int, bool) {
	if gross == nil {
		return 0, false
	}
	return *gross - received, true
}

// Input is everything needed to score one matchup.
type Input struct {
	// Holes are the holes in play with difficulty already scoped to the nine.
	Holes     []model.CourseHole
	Scores    []model.HoleScore
	OutcomeA  model.Outcome
	OutcomeB  model.Outcome
	HandicapA float64
	HandicapB float64
}

// Scorer scores matchups under one season's settings.
type Scorer struct {
	cfg settings.LeagueSettings
}

// NewScorer validates cfg and returns a Scorer bound to it.
func NewScorer(cfg settings.LeagueSettings) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Score computes the point breakdown for in.
func (s *Scorer) Score(in Input) (model.MatchResult, error) {
	if in.OutcomeA == nil || in.OutcomeB == nil {
		return model.MatchResult{}, fmt.Errorf("%w: matchup outcome missing", model.ErrUnknownOutcome)
	}

	byHole, err := indexScores(in.Holes, in.Scores)
	if err != nil {
		return model.MatchResult{}, err
	}

	res := model.MatchResult{
		HandicapA: in.HandicapA,
		HandicapB: in.HandicapB,
		GrossA:    grossFor(model.SideA, in.OutcomeA, in.Holes, byHole),
		GrossB:    grossFor(model.SideB, in.OutcomeB, in.Holes, byHole),
	}

	switch a := in.OutcomeA.(type) {
	case model.Played:
		switch b := in.OutcomeB.(type) {
		case model.Played:
			return s.scorePlayed(in, byHole, res)
		case model.Absent, model.AbsentWithNotice:
			s.scoreAbsence(&res, model.SideA, res.GrossA, in.HandicapA, b)
			return res, nil
		default:
			return res, unknownOutcome(b)
		}
	case model.Absent, model.AbsentWithNotice:
		switch b := in.OutcomeB.(type) {
		case model.Played:
			s.scoreAbsence(&res, model.SideB, res.GrossB, in.HandicapB, a)
			return res, nil
		case model.Absent, model.AbsentWithNotice:
			// both missing the week earns nothing
			return res, nil
		default:
			return res, unknownOutcome(b)
		}
	default:
		return res, unknownOutcome(a)
	}
}

func unknownOutcome(o model.Outcome) error {
	return fmt.Errorf("%w: %T", model.ErrUnknownOutcome, o)
}

// scorePlayed folds over the holes when both players showed up.
func (s *Scorer) scorePlayed(in Input, byHole map[int]model.HoleScore, res model.MatchResult) (model.MatchResult, error) {
	alloc, err := strokes.Allocate(in.HandicapA, in.HandicapB, in.Holes)
	if err != nil {
		return res, err
	}

	var netTotalA, netTotalB, scored int
	res.Holes = make([]model.HoleResult, 0, len(in.Holes))
	for _, h := range in.Holes {
		hr := model.HoleResult{
			HoleNumber: h.HoleNumber,
			StrokesA:   alloc.StrokesFor(model.SideA, h.HoleNumber),
			StrokesB:   alloc.StrokesFor(model.SideB, h.HoleNumber),
		}
		sc := byHole[h.HoleNumber]
		netA, okA := NetScore(sc.A, hr.StrokesA)
		netB, okB := NetScore(sc.B, hr.StrokesB)
		if okA {
			hr.NetA = &netA
		}
		if okB {
			hr.NetB = &netB
		}
		if okA && okB {
			hr.Scored = true
			scored++
			netTotalA += netA
			netTotalB += netB
			switch {
			case netA < netB:
				hr.PointsA = s.cfg.HoleWinPoints
			case netB < netA:
				hr.PointsB = s.cfg.HoleWinPoints
			default:
				hr.PointsA = s.cfg.HoleHalvePoints
				hr.PointsB = s.cfg.HoleHalvePoints
			}
			res.HolePointsA += hr.PointsA
			res.HolePointsB += hr.PointsB
		}
		res.Holes = append(res.Holes, hr)
	}

	if scored == 0 {
		return res, nil
	}

	// Positive favours A.
	var margin int
	switch s.cfg.ScoringMethod {
	case settings.ScoringStrokePlay:
		margin = netTotalB - netTotalA
	default:
		margin = res.HolePointsA - res.HolePointsB
	}

	var matchA, matchB int
	switch {
	case margin > 0:
		matchA = s.cfg.MatchWinBonus
		res.MatchWinA = true
	case margin < 0:
		matchB = s.cfg.MatchWinBonus
		res.MatchWinB = true
	default:
		matchA = s.cfg.MatchTiePoints
		matchB = s.cfg.MatchTiePoints
	}

	switch s.cfg.PointsSystem {
	case settings.PointsScoreBased:
		res.TotalPointsA = matchA
		res.TotalPointsB = matchB
	default:
		res.TotalPointsA = res.HolePointsA + matchA
		res.TotalPointsB = res.HolePointsB + matchB
	}
	return res, nil
}

// scoreAbsence awards the present side against an absent opponent and
// the absent side its notice-dependent points.
func (s *Scorer) scoreAbsence(res *model.MatchResult, present model.Side, gross *int, handicap float64, absent model.Outcome) {
	absentPoints := s.cfg.AbsentPoints
	if _, ok := absent.(model.AbsentWithNotice); ok {
		absentPoints = s.cfg.AbsentWithNoticePoints
	}

	var holePoints, total int
	var win bool
	if gross != nil {
		target := s.cfg.CoursePar + int(math.RoundToEven(handicap))
		if *gross < target {
			total = s.cfg.PresentBeatsHandicapPoints
			holePoints = nonNegative(total - s.cfg.MatchWinBonus)
			win = true
		} else {
			total = s.cfg.PresentPoints
			holePoints = nonNegative(total - s.cfg.MatchTiePoints)
		}
	}

	if present == model.SideA {
		res.HolePointsA, res.TotalPointsA, res.MatchWinA = holePoints, total, win
		res.TotalPointsB = absentPoints
		return
	}
	res.HolePointsB, res.TotalPointsB, res.MatchWinB = holePoints, total, win
	res.TotalPointsA = absentPoints
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// indexScores maps hole scores by hole number, rejecting holes that are not
// in play and duplicates.
func indexScores(holes []model.CourseHole, scores []model.HoleScore) (map[int]model.HoleScore, error) {
	inPlay := make(map[int]bool, len(holes))
	for _, h := range holes {
		inPlay[h.HoleNumber] = true
	}
	byHole := make(map[int]model.HoleScore, len(scores))
	for _, sc := range scores {
		if !inPlay[sc.HoleNumber] {
			return nil, fmt.Errorf("%w: score for hole %d which is not in play", course.ErrConfiguration, sc.HoleNumber)
		}
		if _, dup := byHole[sc.HoleNumber]; dup {
			return nil, fmt.Errorf("%w: duplicate score for hole %d", course.ErrConfiguration, sc.HoleNumber)
		}
		byHole[sc.HoleNumber] = sc
	}
	return byHole, nil
}

// grossFor sums a side's entered hole scores, falling back to the round
// total carried on the outcome when no hole was entered.
func grossFor(side model.Side, o model.Outcome, holes []model.CourseHole, byHole map[int]model.HoleScore) *int {
	if model.IsAbsent(o) {
		return nil
	}
	total, entered := 0, false
	for _, h := range holes {
		sc, ok := byHole[h.HoleNumber]
		if !ok {
			continue
		}
		v := sc.A
		if side == model.SideB {
			v = sc.B
		}
		if v != nil {
			total += *v
			entered = true
		}
	}
	if entered {
		return &total
	}
	if g, ok := model.Gross(o); ok {
		return &g
	}
	return nil
}
