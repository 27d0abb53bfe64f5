package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/session"
	"github.com/okian/fairway/internal/domain/standings"
)

// SessionStandings totals points for the session containing week.
func (s *Service) SessionStandings(ctx context.Context, seasonID uuid.UUID, week int) (standings.Table, error) {
	if week < session.FirstWeek {
		return standings.Table{}, fmt.Errorf("%w: week %d", session.ErrInvalidWeek, week)
	}

	var table standings.Table
	err := s.store.View(ctx, func(ctx context.Context, r repository.Reader) error {
		weeks, err := r.Weeks(ctx, seasonID)
		if err != nil {
			return err
		}
		entries, err := r.Entries(ctx, seasonID)
		if err != nil {
			return err
		}
		table = standings.Compute(weeks, entries, week)
		return nil
	})
	return table, err
}
