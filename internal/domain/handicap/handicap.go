// Package handicap computes handicap indexes under the selectable methods.
//
// Strategies are pure functions of their Input; the Calculator picks one by
// the season's HandicapMethod tag and supplies injected collaborators such
// as the legacy lookup table.
package handicap

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/fairway/internal/domain/settings"
)

// standardSlope is the slope rating of a course of standard difficulty.
const standardSlope = 113.0

// minWHSRounds is the fewest rounds WHS produces an index from.
const minWHSRounds = 3

// Input is what every strategy may draw from.
type Input struct {
	// Baseline is the session handicap baseline.
	Baseline float64
	// Average is the running average over the handicap window.
	Average float64
	// Scores are the window's gross scores in week order.
	Scores []int
}

// Strategy computes a handicap from Input.
type Strategy interface {
	Method() settings.HandicapMethod
	Compute(in Input) (float64, error)
}

// SimpleAverage is average minus course par. Players averaging under par
// play off scratch.
type SimpleAverage struct {
	CoursePar int
}

func (SimpleAverage) Method() settings.HandicapMethod { return settings.HandicapSimpleAverage }

func (s SimpleAverage) Compute(in Input) (float64, error) {
	return math.Max(round(in.Average-float64(s.CoursePar), 2), 0), nil
}

// WorldHandicapSystem averages the best differentials of the most recent
// rounds and applies the adjustment factor.
type WorldHandicapSystem struct {
	CourseRating float64
	SlopeRating  float64
	MaxRounds    int
	Adjustment   float64
	MaxIndex     float64
}

func (WorldHandicapSystem) Method() settings.HandicapMethod {
	return settings.HandicapWorldHandicapSystem
}

func (w WorldHandicapSystem) Compute(in Input) (float64, error) {
	recent := in.Scores
	if w.MaxRounds > 0 && len(recent) > w.MaxRounds {
		recent = recent[len(recent)-w.MaxRounds:]
	}
	if len(recent) < minWHSRounds {
		return in.Baseline, nil
	}

	diffs := make([]float64, len(recent))
	for i, s := range recent {
		diffs[i] = Differential(s, w.CourseRating, w.SlopeRating)
	}
	best := BestDifferentials(diffs)

	var sum float64
	for _, d := range best {
		sum += d
	}
	index := round(sum/float64(len(best))*w.Adjustment, 1)
	return math.Min(math.Max(index, 0), w.MaxIndex), nil
}

// Differential is the WHS score differential of one round.
func Differential(score int, courseRating, slopeRating float64) float64 {
	return (float64(score) - courseRating) * standardSlope / slopeRating
}

// BestDifferentials returns the lowest differentials counted for the
// number of rounds available, in ascending order.
func BestDifferentials(diffs []float64) []float64 {
	sorted := make([]float64, len(diffs))
	copy(sorted, diffs)
	sort.Float64s(sorted)
	return sorted[:countedRounds(len(sorted))]
}

// countedRounds is the WHS table of differentials used per rounds available.
func countedRounds(available int) int {
	switch {
	case available >= 20:
		return 8
	case available == 19:
		return 7
	case available >= 17:
		return 6
	case available >= 15:
		return 5
	case available >= 12:
		return 4
	case available >= 9:
		return 3
	case available >= 6:
		return 2
	case available >= 3:
		return 1
	default:
		return 0
	}
}

// LegacyLookup maps the running average through an injected table.
type LegacyLookup struct {
	Table LookupTable
}

func (LegacyLookup) Method() settings.HandicapMethod { return settings.HandicapLegacyLookupTable }

func (l LegacyLookup) Compute(in Input) (float64, error) {
	if l.Table == nil {
		return 0, fmt.Errorf("%w: legacy lookup table not configured", settings.ErrInvalidConfiguration)
	}
	return l.Table.Lookup(in.Average)
}

// round is half-to-even, matching average.Round2.
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	x := v * p
	if fl := math.Floor(x); math.Abs(x-fl-0.5) < 1e-9 {
		x = fl + 0.5
	}
	return math.RoundToEven(x) / p
}
