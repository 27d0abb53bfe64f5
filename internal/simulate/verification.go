package simulate

import (
	"context"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/domain/standings"
	"github.com/okian/fairway/pkg/logger"
)

const displayTopN = 10

// Verify checks that bulk and single-player queries agree for every player
// at week, that a season recalculation is repeatable and that the session
// table is ordered.
func Verify(ctx context.Context, engine Engine, l *League, week int, stats *Stats) error {
	logger.Get().Info(ctx, "verifying results", logger.Int("week", week))

	avgs, err := engine.GetAllAveragesUpToWeek(ctx, l.SeasonID, week)
	if err != nil {
		return err
	}
	hcps, err := engine.GetAllHandicapsUpToWeek(ctx, l.SeasonID, week)
	if err != nil {
		return err
	}

	for _, p := range l.Players {
		avg, err := engine.GetAverageScore(ctx, p.ID, l.SeasonID, week)
		if err != nil {
			return err
		}
		if avg != avgs[p.ID] {
			return fmt.Errorf("%w: average of %s is %.2f alone and %.2f in bulk", ErrMismatch, p.Name, avg, avgs[p.ID])
		}
		hcp, err := engine.GetHandicap(ctx, p.ID, l.SeasonID, week)
		if err != nil {
			return err
		}
		if hcp != hcps[p.ID] {
			return fmt.Errorf("%w: handicap of %s is %.1f alone and %.1f in bulk", ErrMismatch, p.Name, hcp, hcps[p.ID])
		}
		stats.VerifiedPlayers++
	}

	first, err := engine.RecalculateSeason(ctx, l.SeasonID)
	if err != nil {
		return err
	}
	second, err := engine.RecalculateSeason(ctx, l.SeasonID)
	if err != nil {
		return err
	}
	if !maps.Equal(first, second) {
		return fmt.Errorf("%w: season recalculation is not repeatable", ErrMismatch)
	}

	table, err := engine.SessionStandings(ctx, l.SeasonID, week)
	if err != nil {
		return err
	}
	return verifyStandingsOrder(table)
}

// verifyStandingsOrder checks rows are sorted by points, highest first.
func verifyStandingsOrder(t standings.Table) error {
	for i := 1; i < len(t.Rows); i++ {
		if t.Rows[i].Points > t.Rows[i-1].Points {
			return fmt.Errorf("%w: standings row %d outranks row %d", ErrMismatch, i, i-1)
		}
	}
	return nil
}

// displayStandings logs the top of the session table.
func displayStandings(ctx context.Context, l *League, t standings.Table, verbose bool) {
	names := make(map[uuid.UUID]Player, len(l.Players))
	for _, p := range l.Players {
		names[p.ID] = p
	}

	n := min(displayTopN, len(t.Rows))
	if verbose {
		n = len(t.Rows)
	}
	logger.Get().Info(ctx, "session standings",
		logger.Int("sessionStartWeek", t.SessionStartWeek),
		logger.Int("throughWeek", t.ThroughWeek))
	for i, r := range t.Rows[:n] {
		p := names[r.PlayerID]
		logger.Get().Info(ctx, "standing",
			logger.Int("rank", i+1),
			logger.String("player", p.Name),
			logger.Float64("skill", p.Skill),
			logger.Int("points", r.Points),
			logger.Int("weeksPlayed", r.WeeksPlayed),
			logger.Int("weeksAbsent", r.WeeksAbsent))
	}
}
