package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/session"
	"github.com/okian/fairway/internal/domain/settings"
)

// snapshot is one season's data as read in a single view or transaction.
type snapshot struct {
	season  model.Season
	cfg     settings.LeagueSettings
	course  model.Course
	weeks   []model.Week
	players []model.PlayerRecord
	entries []model.ScoreEntry

	// byAverage and byHandicap share players, baselines and entries. The
	// handicap view drops session starts when the league carries one
	// handicap across the whole season.
	byAverage  *session.Season
	byHandicap *session.Season
}

func (s *Service) load(ctx context.Context, r repository.Reader, seasonID uuid.UUID) (*snapshot, error) {
	season, err := r.Season(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	cfg, err := r.Settings(ctx, seasonID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		cfg = s.defaults
	case err != nil:
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	crs, err := r.Course(ctx, season.CourseID)
	if err != nil {
		return nil, err
	}
	weeks, err := r.Weeks(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	players, err := r.Players(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	baselines, err := r.Baselines(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	entries, err := r.Entries(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	snap := &snapshot{season: season, cfg: cfg, course: crs, weeks: weeks, players: players, entries: entries}

	byPlayer := make(map[uuid.UUID]model.PlayerRecord, len(players))
	for _, p := range players {
		byPlayer[p.PlayerID] = p
	}
	byKey := make(map[model.BaselineKey]float64, len(baselines))
	for _, b := range baselines {
		byKey[b.Key()] = b.Value
	}
	byEntry := make(map[uuid.UUID][]model.ScoreEntry)
	for _, e := range entries {
		byEntry[e.PlayerID] = append(byEntry[e.PlayerID], e)
	}

	snap.byAverage = &session.Season{ID: seasonID, Weeks: weeks, Players: byPlayer, Baselines: byKey, Entries: byEntry}
	hcp := *snap.byAverage
	if !cfg.UseSessionHandicaps {
		hcp.Weeks = make([]model.Week, len(weeks))
		for i, w := range weeks {
			w.SessionStart = false
			hcp.Weeks[i] = w
		}
	}
	snap.byHandicap = &hcp
	return snap, nil
}

func (snap *snapshot) view(kind model.BaselineKind) *session.Season {
	if kind == model.BaselineHandicap {
		return snap.byHandicap
	}
	return snap.byAverage
}

func (snap *snapshot) week(number int) (model.Week, error) {
	for _, w := range snap.weeks {
		if w.Number == number {
			return w, nil
		}
	}
	return model.Week{}, fmt.Errorf("%w: week %d of season %s", ErrUnknownWeek, number, snap.season.ID)
}

func (snap *snapshot) player(id uuid.UUID) (model.PlayerRecord, error) {
	p, ok := snap.byAverage.Players[id]
	if !ok {
		return model.PlayerRecord{}, fmt.Errorf("player %s in season %s: %w", id, snap.season.ID, repository.ErrNotFound)
	}
	return p, nil
}

// latestWeek is the highest week with any recorded entry, or the first week.
func (snap *snapshot) latestWeek() int {
	latest := session.FirstWeek
	for _, e := range snap.entries {
		if e.WeekNumber > latest {
			latest = e.WeekNumber
		}
	}
	return latest
}

// sessionStarts lists the session-start weeks of kind up to and including week.
func (snap *snapshot) sessionStarts(kind model.BaselineKind, week int) []int {
	starts := []int{session.FirstWeek}
	for _, w := range snap.view(kind).Weeks {
		if w.SessionStart && w.Number > session.FirstWeek && w.Number <= week {
			starts = append(starts, w.Number)
		}
	}
	return starts
}
