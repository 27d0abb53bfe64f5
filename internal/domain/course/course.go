// Package course selects and validates the holes played in a given week.
package course

import (
	"fmt"
	"sort"

	"github.com/okian/fairway/internal/domain/model"
)

const (
	nineHoleCourse     = 9
	eighteenHoleCourse = 18
)

// HolesInPlay returns the holes of the requested nine ordered by hole
// number, with difficulty indices re-ranked to 1..9 within that nine.
//
// Raw indices may be course-wide (1..18) or already per nine; only their
// relative order matters. A 9-hole course always plays its only nine.
func HolesInPlay(c model.Course, nine model.NineHoles) ([]model.CourseHole, error) {
	var lo, hi int
	switch len(c.Holes) {
	case nineHoleCourse:
		lo, hi = 1, nineHoleCourse
	case eighteenHoleCourse:
		switch nine {
		case model.Front:
			lo, hi = 1, nineHoleCourse
		case model.Back:
			lo, hi = nineHoleCourse+1, eighteenHoleCourse
		default:
			return nil, fmt.Errorf("%w: unknown nine %d", ErrConfiguration, nine)
		}
	case 0:
		return nil, fmt.Errorf("%w: course %s has no holes", ErrConfiguration, c.ID)
	default:
		return nil, fmt.Errorf("%w: course %s has %d holes", ErrConfiguration, c.ID, len(c.Holes))
	}

	selected := make([]model.CourseHole, 0, nineHoleCourse)
	seenHole := make(map[int]bool, len(c.Holes))
	for _, h := range c.Holes {
		if seenHole[h.HoleNumber] {
			return nil, fmt.Errorf("%w: duplicate hole number %d", ErrConfiguration, h.HoleNumber)
		}
		seenHole[h.HoleNumber] = true
		if h.HoleNumber >= lo && h.HoleNumber <= hi {
			selected = append(selected, h)
		}
	}
	if len(selected) != nineHoleCourse {
		return nil, fmt.Errorf("%w: %s nine has %d of 9 holes", ErrConfiguration, nine, len(selected))
	}

	return Rerank(selected)
}

// Rerank validates holes and replaces their difficulty indices with dense
// ranks 1..N preserving relative order. The result is ordered by hole number.
func Rerank(holes []model.CourseHole) ([]model.CourseHole, error) {
	if len(holes) == 0 {
		return nil, fmt.Errorf("%w: no holes in play", ErrConfiguration)
	}

	byIndex := make([]model.CourseHole, len(holes))
	copy(byIndex, holes)

	seenIndex := make(map[int]int, len(holes))
	for _, h := range byIndex {
		if h.Par <= 0 {
			return nil, fmt.Errorf("%w: hole %d has par %d", ErrConfiguration, h.HoleNumber, h.Par)
		}
		if h.DifficultyIndex <= 0 {
			return nil, fmt.Errorf("%w: hole %d has no difficulty index", ErrConfiguration, h.HoleNumber)
		}
		if other, dup := seenIndex[h.DifficultyIndex]; dup {
			return nil, fmt.Errorf("%w: holes %d and %d share difficulty index %d",
				ErrConfiguration, other, h.HoleNumber, h.DifficultyIndex)
		}
		seenIndex[h.DifficultyIndex] = h.HoleNumber
	}

	sort.Slice(byIndex, func(i, j int) bool { return byIndex[i].DifficultyIndex < byIndex[j].DifficultyIndex })
	for i := range byIndex {
		byIndex[i].DifficultyIndex = i + 1
	}
	sort.Slice(byIndex, func(i, j int) bool { return byIndex[i].HoleNumber < byIndex[j].HoleNumber })
	return byIndex, nil
}

// Par sums the par of holes.
func Par(holes []model.CourseHole) int {
	total := 0
	for _, h := range holes {
		total += h.Par
	}
	return total
}
