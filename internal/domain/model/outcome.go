// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
)

// ErrUnknownOutcome is returned when a persisted outcome kind cannot be decoded.
var ErrUnknownOutcome = errors.New("unknown outcome")

// Outcome is what a player did in a given week: played with a gross score,
// or was absent with or without notice. The set is closed; switch on it
// exhaustively.
type Outcome interface {
	isOutcome()
}

// Played carries the gross strokes for the round. Strokes may be zero when
// only per-hole scores were entered.
type Played struct {
	Strokes int
}

// Absent marks a player who missed the week without notice.
type Absent struct{}

// AbsentWithNotice marks a player who missed the week and told the league.
type AbsentWithNotice struct{}

func (Played) isOutcome()           {}
func (Absent) isOutcome()           {}
func (AbsentWithNotice) isOutcome() {}

// Outcome kinds used for persistence and transport.
const (
	OutcomePlayed           = "played"
	OutcomeAbsent           = "absent"
	OutcomeAbsentWithNotice = "absent_with_notice"
)

// OutcomeKind returns the stable string tag for o.
func OutcomeKind(o Outcome) string {
	switch o.(type) {
	case Played:
		return OutcomePlayed
	case AbsentWithNotice:
		return OutcomeAbsentWithNotice
	case Absent:
		return OutcomeAbsent
	default:
		return ""
	}
}

// ParseOutcome rebuilds an Outcome from its tag and optional strokes.
func ParseOutcome(kind string, strokes *int) (Outcome, error) {
	switch kind {
	case OutcomePlayed:
		p := Played{}
		if strokes != nil {
			p.Strokes = *strokes
		}
		return p, nil
	case OutcomeAbsent:
		return Absent{}, nil
	case OutcomeAbsentWithNotice:
		return AbsentWithNotice{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutcome, kind)
	}
}

// Gross reports the gross strokes of a played outcome with a recorded score.
func Gross(o Outcome) (int, bool) {
	if p, ok := o.(Played); ok && p.Strokes > 0 {
		return p.Strokes, true
	}
	return 0, false
}

// IsAbsent reports whether o is either absence variant.
func IsAbsent(o Outcome) bool {
	switch o.(type) {
	case Absent, AbsentWithNotice:
		return true
	}
	return false
}
