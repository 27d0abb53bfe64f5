// Package strokes allocates handicap strokes over the holes in play.
package strokes

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/fairway/internal/domain/course"
	"github.com/okian/fairway/internal/domain/model"
)

// maxStrokesPerHole caps the wrap-around allocation.
const maxStrokesPerHole = 2

// Allocation records how many strokes the receiving side gets on each hole.
type Allocation struct {
	Receiver     model.Side
	Differential int
	perHole      map[int]int
}

// StrokesFor returns the strokes side receives on holeNumber.
func (a Allocation) StrokesFor(side model.Side, holeNumber int) int {
	if side == model.SideNone || side != a.Receiver {
		return 0
	}
	return a.perHole[holeNumber]
}

// Total returns the number of strokes handed out.
func (a Allocation) Total() int {
	n := 0
	for _, s := range a.perHole {
		n += s
	}
	return n
}

// Differential rounds the handicap gap half-to-even.
func Differential(handicapA, handicapB float64) int {
	return int(math.RoundToEven(math.Abs(handicapA - handicapB)))
}

// Allocate gives the strictly higher handicap one stroke on each of the
// hardest holes up to the differential, then a second stroke on the hardest
// holes for any remainder. holes must already be scoped to the nine in play.
func Allocate(handicapA, handicapB float64, holes []model.CourseHole) (Allocation, error) {
	if len(holes) == 0 {
		return Allocation{}, fmt.Errorf("%w: no holes in play", course.ErrConfiguration)
	}
	if handicapA < 0 || handicapB < 0 || math.IsNaN(handicapA) || math.IsNaN(handicapB) {
		return Allocation{}, fmt.Errorf("%w: handicaps must be non-negative (%v, %v)", course.ErrConfiguration, handicapA, handicapB)
	}

	ordered := make([]model.CourseHole, len(holes))
	copy(ordered, holes)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].DifficultyIndex < ordered[j].DifficultyIndex })
	for i, h := range ordered {
		if i > 0 && h.DifficultyIndex == ordered[i-1].DifficultyIndex {
			return Allocation{}, fmt.Errorf("%w: duplicate difficulty index %d on holes %d and %d",
				course.ErrConfiguration, h.DifficultyIndex, ordered[i-1].HoleNumber, h.HoleNumber)
		}
		// indices must be ranked within the nine (course.Rerank)
		if h.DifficultyIndex != i+1 {
			return Allocation{}, fmt.Errorf("%w: difficulty indices are not 1..%d (hole %d has %d)",
				course.ErrConfiguration, len(ordered), h.HoleNumber, h.DifficultyIndex)
		}
	}

	alloc := Allocation{perHole: make(map[int]int, len(ordered))}
	switch {
	case handicapA > handicapB:
		alloc.Receiver = model.SideA
	case handicapB > handicapA:
		alloc.Receiver = model.SideB
	default:
		return alloc, nil
	}

	alloc.Differential = Differential(handicapA, handicapB)
	remaining := alloc.Differential
	for round := 0; round < maxStrokesPerHole && remaining > 0; round++ {
		for _, h := range ordered {
			if remaining == 0 {
				break
			}
			alloc.perHole[h.HoleNumber]++
			remaining--
		}
	}
	return alloc, nil
}
