package model

import "github.com/google/uuid"

// NineHoles selects which half of the course is played in a week.
type NineHoles int

const (
	Front NineHoles = 1
	Back  NineHoles = 2
)

func (n NineHoles) String() string {
	switch n {
	case Front:
		return "front"
	case Back:
		return "back"
	default:
		return "unknown"
	}
}

// CourseHole is one hole of a course. DifficultyIndex ranks holes from
// 1 (hardest) to N.
type CourseHole struct {
	HoleNumber      int `json:"hole_number"`
	Par             int `json:"par"`
	DifficultyIndex int `json:"difficulty_index"`
}

// Course is the static layout the league plays on: 9 or 18 holes.
type Course struct {
	ID    uuid.UUID    `json:"id"`
	Name  string       `json:"name"`
	Holes []CourseHole `json:"holes"`
}
