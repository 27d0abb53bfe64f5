package handicap

import (
	"fmt"
	"sort"
)

// LookupTable maps a running average score to a handicap.
type LookupTable interface {
	Lookup(average float64) (float64, error)
}

// Bracket assigns Handicap to every average at or below MaxAverage and
// above the previous bracket.
type Bracket struct {
	MaxAverage float64 `koanf:"max_average" json:"max_average"`
	Handicap   float64 `koanf:"handicap" json:"handicap"`
}

// BracketTable is a LookupTable of ascending brackets.
type BracketTable struct {
	brackets []Bracket
}

// NewBracketTable validates and sorts brackets.
func NewBracketTable(brackets []Bracket) (*BracketTable, error) {
	if len(brackets) == 0 {
		return nil, fmt.Errorf("%w: empty lookup table", ErrInvalidTable)
	}
	sorted := make([]Bracket, len(brackets))
	copy(sorted, brackets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MaxAverage < sorted[j].MaxAverage })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].MaxAverage == sorted[i-1].MaxAverage {
			return nil, fmt.Errorf("%w: duplicate bracket bound %v", ErrInvalidTable, sorted[i].MaxAverage)
		}
	}
	return &BracketTable{brackets: sorted}, nil
}

// Lookup returns the handicap of the first bracket that contains average.
func (t *BracketTable) Lookup(average float64) (float64, error) {
	i := sort.Search(len(t.brackets), func(i int) bool { return average <= t.brackets[i].MaxAverage })
	if i == len(t.brackets) {
		return 0, fmt.Errorf("%w: average %.2f above table maximum %.2f",
			ErrOutOfRange, average, t.brackets[len(t.brackets)-1].MaxAverage)
	}
	return t.brackets[i].Handicap, nil
}

// Len returns the number of brackets.
func (t *BracketTable) Len() int { return len(t.brackets) }
