package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/session"
)

// SetSessionBaseline stores (or replaces) the baseline for the session that
// opens at b.SessionStartWeek.
func (s *Service) SetSessionBaseline(ctx context.Context, b model.SessionBaseline) error {
	return s.SetSessionBaselines(ctx, []model.SessionBaseline{b}, true)
}

// SetSessionBaselines stores baselines in one transaction. Without
// overwrite, rows that already exist are left untouched.
func (s *Service) SetSessionBaselines(ctx context.Context, bs []model.SessionBaseline, overwrite bool) error {
	if len(bs) == 0 {
		return nil
	}
	for _, b := range bs {
		if err := validateBaseline(b); err != nil {
			return err
		}
	}

	touched := make(map[uuid.UUID][]uuid.UUID)
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		weeks := make(map[uuid.UUID][]model.Week)
		rosters := make(map[uuid.UUID]map[uuid.UUID]bool)

		for _, b := range bs {
			ws, ok := weeks[b.SeasonID]
			if !ok {
				var err error
				if ws, err = tx.Weeks(ctx, b.SeasonID); err != nil {
					return err
				}
				weeks[b.SeasonID] = ws
				ps, err := tx.Players(ctx, b.SeasonID)
				if err != nil {
					return err
				}
				rosters[b.SeasonID] = make(map[uuid.UUID]bool, len(ps))
				for _, p := range ps {
					rosters[b.SeasonID][p.PlayerID] = true
				}
			}
			if !session.IsSessionStart(ws, b.SessionStartWeek) {
				return fmt.Errorf("%w: week %d of season %s", ErrNotSessionStart, b.SessionStartWeek, b.SeasonID)
			}
			if !rosters[b.SeasonID][b.PlayerID] {
				return fmt.Errorf("player %s in season %s: %w", b.PlayerID, b.SeasonID, repository.ErrNotFound)
			}

			if overwrite {
				if err := tx.UpsertBaseline(ctx, b); err != nil {
					return err
				}
			} else {
				created, err := tx.CreateBaselineIfMissing(ctx, b)
				if err != nil {
					return err
				}
				if !created {
					continue
				}
			}
			touched[b.SeasonID] = append(touched[b.SeasonID], b.PlayerID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for seasonID, players := range touched {
		if err := s.ScoresChanged(ctx, seasonID, unique(players)...); err != nil {
			return err
		}
	}
	return nil
}

func validateBaseline(b model.SessionBaseline) error {
	switch b.Kind {
	case model.BaselineAverage, model.BaselineHandicap:
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidBaseline, b.Kind)
	}
	if math.IsNaN(b.Value) || math.IsInf(b.Value, 0) || b.Value < 0 {
		return fmt.Errorf("%w: value %v", ErrInvalidBaseline, b.Value)
	}
	if b.SessionStartWeek < session.FirstWeek {
		return fmt.Errorf("%w: week %d", session.ErrInvalidWeek, b.SessionStartWeek)
	}
	return nil
}

func unique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
