// Package simulate seeds a random league into a store, plays every week
// through the engine and cross-checks the results.
package simulate

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/settings"
)

// Config holds configuration for a simulated season
type Config struct {
	Players      int     // Number of players, rounded up to even
	Weeks        int     // Number of weeks in the season
	SessionEvery int     // Weeks per session; 0 means one session
	Seed         uint64  // Seed for the random source
	AbsenceRate  float64 // Chance a player misses a week
	Workers      int     // Matchups scored concurrently per week
	Verbose      bool    // Log every scored matchup
	Settings     settings.LeagueSettings
}

// Player is a generated player with a hidden skill level.
type Player struct {
	ID   uuid.UUID
	Name string
	// Skill is the expected gross over par for nine holes.
	Skill float64
}

// League is the seeded season.
type League struct {
	SeasonID uuid.UUID
	Course   model.Course
	Weeks    []model.Week
	Players  []Player
	// Matchups holds each week's pairings, indexed by week number - 1.
	Matchups [][]model.Matchup
}

// Stats holds simulation statistics
type Stats struct {
	MatchupsScored  int
	RoundsPlayed    int
	Absences        int
	VerifiedPlayers int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
