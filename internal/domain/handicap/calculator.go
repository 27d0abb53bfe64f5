package handicap

import (
	"fmt"

	"github.com/okian/fairway/internal/domain/settings"
)

// Calculator selects and runs the season's handicap strategy.
type Calculator struct {
	table      LookupTable
	adjustment float64
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLookupTable injects the table used by LegacyLookupTable seasons.
func WithLookupTable(t LookupTable) Option {
	return func(c *Calculator) {
		c.table = t
	}
}

// WithWHSAdjustment overrides the settings' WHS adjustment factor for every
// season served by this calculator.
func WithWHSAdjustment(factor float64) Option {
	return func(c *Calculator) {
		if factor > 0 && factor <= 1 {
			c.adjustment = factor
		}
	}
}

// NewCalculator builds a Calculator.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Select returns the strategy for cfg.HandicapMethod.
func (c *Calculator) Select(cfg settings.LeagueSettings) (Strategy, error) {
	switch cfg.HandicapMethod {
	case settings.HandicapSimpleAverage:
		return SimpleAverage{CoursePar: cfg.CoursePar}, nil
	case settings.HandicapWorldHandicapSystem:
		adj := cfg.WHSAdjustment
		if c.adjustment > 0 {
			adj = c.adjustment
		}
		return WorldHandicapSystem{
			CourseRating: cfg.CourseRating,
			SlopeRating:  cfg.SlopeRating,
			MaxRounds:    cfg.MaxRoundsForHandicap,
			Adjustment:   adj,
			MaxIndex:     cfg.MaxHandicapIndex,
		}, nil
	case settings.HandicapLegacyLookupTable:
		return LegacyLookup{Table: c.table}, nil
	default:
		return nil, fmt.Errorf("%w: unknown handicap_method %q", settings.ErrInvalidConfiguration, cfg.HandicapMethod)
	}
}

// Compute returns the handicap for in. With no rounds in the window the
// baseline is returned unchanged, whatever the method.
func (c *Calculator) Compute(cfg settings.LeagueSettings, in Input) (float64, error) {
	s, err := c.Select(cfg)
	if err != nil {
		return 0, err
	}
	if len(in.Scores) == 0 {
		return in.Baseline, nil
	}
	return s.Compute(in)
}
