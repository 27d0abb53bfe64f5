// Package average computes a player's running average score.
//
// Each method is its own Strategy; Select dispatches on the season's
// AverageMethod tag through a closed registry.
package average

import (
	"fmt"
	"math"

	"github.com/okian/fairway/internal/domain/settings"
)

// Strategy folds a baseline and the window's gross scores into an average.
type Strategy interface {
	Method() settings.AverageMethod
	Compute(baseline float64, scores []int) float64
}

// Simple weighs the baseline as one extra round.
type Simple struct{}

func (Simple) Method() settings.AverageMethod { return settings.AverageSimple }

func (Simple) Compute(baseline float64, scores []int) float64 {
	return weighted(baseline, 1, scores)
}

// LegacyWeighted weighs the baseline as Weight rounds.
type LegacyWeighted struct {
	Weight int
}

func (LegacyWeighted) Method() settings.AverageMethod { return settings.AverageLegacyWeighted }

func (l LegacyWeighted) Compute(baseline float64, scores []int) float64 {
	return weighted(baseline, l.Weight, scores)
}

func weighted(baseline float64, weight int, scores []int) float64 {
	if len(scores) == 0 {
		return baseline
	}
	denom := weight + len(scores)
	if denom == 0 {
		return baseline
	}
	sum := baseline * float64(weight)
	for _, s := range scores {
		sum += float64(s)
	}
	return Round2(sum / float64(denom))
}

var registry = map[settings.AverageMethod]func(settings.LeagueSettings) Strategy{
	settings.AverageSimple: func(settings.LeagueSettings) Strategy { return Simple{} },
	settings.AverageLegacyWeighted: func(cfg settings.LeagueSettings) Strategy {
		return LegacyWeighted{Weight: cfg.LegacyInitialWeight}
	},
}

// Select returns the strategy for cfg.AverageMethod.
func Select(cfg settings.LeagueSettings) (Strategy, error) {
	build, ok := registry[cfg.AverageMethod]
	if !ok {
		return nil, fmt.Errorf("%w: unknown average_method %q", settings.ErrInvalidConfiguration, cfg.AverageMethod)
	}
	return build(cfg), nil
}

// Compute selects the strategy for cfg and applies it.
func Compute(cfg settings.LeagueSettings, baseline float64, scores []int) (float64, error) {
	s, err := Select(cfg)
	if err != nil {
		return 0, err
	}
	return s.Compute(baseline, scores), nil
}

// Round2 rounds half-to-even to two decimals. Products within 1e-9 of a
// midpoint are treated as exact midpoints so binary representation error
// does not pick the side.
func Round2(v float64) float64 {
	x := v * 100
	if fl := math.Floor(x); math.Abs(x-fl-0.5) < 1e-9 {
		x = fl + 0.5
	}
	return math.RoundToEven(x) / 100
}
