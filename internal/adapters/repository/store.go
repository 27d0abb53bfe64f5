// Package repository defines the league store ports and an in-memory store.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/settings"
)

// Reader loads league data. Lists come back in a stable order.
type Reader interface {
	Season(ctx context.Context, seasonID uuid.UUID) (model.Season, error)
	Course(ctx context.Context, courseID uuid.UUID) (model.Course, error)
	// Weeks are ordered by week number.
	Weeks(ctx context.Context, seasonID uuid.UUID) ([]model.Week, error)
	Settings(ctx context.Context, seasonID uuid.UUID) (settings.LeagueSettings, error)
	// Players are ordered by player id.
	Players(ctx context.Context, seasonID uuid.UUID) ([]model.PlayerRecord, error)
	Baselines(ctx context.Context, seasonID uuid.UUID) ([]model.SessionBaseline, error)
	// Entries are ordered by week number, then player id.
	Entries(ctx context.Context, seasonID uuid.UUID) ([]model.ScoreEntry, error)
	Matchup(ctx context.Context, matchupID uuid.UUID) (model.Matchup, error)
	HoleScores(ctx context.Context, matchupID uuid.UUID) ([]model.HoleScore, error)
}

// Writer mutates league data.
type Writer interface {
	PutCourse(ctx context.Context, c model.Course) error
	PutSeason(ctx context.Context, s model.Season) error
	PutWeeks(ctx context.Context, weeks []model.Week) error
	PutSettings(ctx context.Context, seasonID uuid.UUID, cfg settings.LeagueSettings) error
	PutPlayer(ctx context.Context, p model.PlayerRecord) error
	PutMatchup(ctx context.Context, m model.Matchup) error

	UpsertBaseline(ctx context.Context, b model.SessionBaseline) error
	// CreateBaselineIfMissing reports whether a row was inserted.
	CreateBaselineIfMissing(ctx context.Context, b model.SessionBaseline) (bool, error)

	// SaveHoleScores replaces every hole score of the matchup.
	SaveHoleScores(ctx context.Context, matchupID uuid.UUID, scores []model.HoleScore) error
	SaveMatchupResult(ctx context.Context, m model.Matchup) error
	// SaveScoreEntries upserts entries keyed by (player, matchup).
	SaveScoreEntries(ctx context.Context, entries []model.ScoreEntry) error
	UpdatePlayerCurrent(ctx context.Context, seasonID, playerID uuid.UUID, average, handicap float64) error
}

// Tx is the view of the store inside a transaction.
type Tx interface {
	Reader
	Writer
}

// Store runs reads and atomic read-modify-write units.
type Store interface {
	// View runs fn against a consistent read-only view.
	View(ctx context.Context, fn func(ctx context.Context, r Reader) error) error
	// RunInTx runs fn atomically; any error rolls every write back.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close() error
}
