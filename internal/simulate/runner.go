package simulate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/adapters/repository"
	service "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/standings"
	"github.com/okian/fairway/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Engine is the part of the scoring service a simulation drives.
type Engine interface {
	ScoreMatchup(ctx context.Context, matchupID uuid.UUID, in service.ScoreInput) (model.MatchResult, error)
	GetAverageScore(ctx context.Context, playerID, seasonID uuid.UUID, uptoWeek int) (float64, error)
	GetHandicap(ctx context.Context, playerID, seasonID uuid.UUID, week int) (float64, error)
	GetAllAveragesUpToWeek(ctx context.Context, seasonID uuid.UUID, week int) (map[uuid.UUID]float64, error)
	GetAllHandicapsUpToWeek(ctx context.Context, seasonID uuid.UUID, week int) (map[uuid.UUID]float64, error)
	SetSessionBaselines(ctx context.Context, bs []model.SessionBaseline, overwrite bool) error
	RecalculateSeason(ctx context.Context, seasonID uuid.UUID) (map[uuid.UUID]float64, error)
	SessionStandings(ctx context.Context, seasonID uuid.UUID, week int) (standings.Table, error)
}

// Run seeds a league into store, plays every week through engine and
// verifies the engine agrees with itself.
func Run(ctx context.Context, store repository.Store, engine Engine, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("simulate")

	log.Info(ctx, "starting league simulation",
		logger.Int("players", cfg.Players),
		logger.Int("weeks", cfg.Weeks),
		logger.Any("seed", cfg.Seed),
		logger.Int("workers", cfg.Workers),
		logger.String("handicapMethod", string(cfg.Settings.HandicapMethod)))

	rng := newRand(cfg.Seed)

	// Step 1: Seed the league
	league, err := Generate(ctx, store, cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("league generation failed: %w", err)
	}

	// Step 2: Play the season week by week
	for _, week := range league.Weeks {
		if week.SessionStart && week.Number > 1 {
			if err := openSession(ctx, engine, league, week.Number); err != nil {
				return nil, fmt.Errorf("opening session at week %d failed: %w", week.Number, err)
			}
		}
		cards := generateCards(rng, league, week, cfg.AbsenceRate)
		if err := playWeek(ctx, engine, cards, cfg); err != nil {
			return nil, fmt.Errorf("week %d failed: %w", week.Number, err)
		}
		for _, c := range cards {
			for _, o := range []model.Outcome{c.OutcomeA, c.OutcomeB} {
				if model.IsAbsent(o) {
					stats.Absences++
				} else {
					stats.RoundsPlayed++
				}
			}
		}
		stats.MatchupsScored += len(cards)
		log.Debug(ctx, "week played", logger.Int("week", week.Number), logger.Int("matchups", len(cards)))
	}

	// Step 3: Verify results
	last := league.Weeks[len(league.Weeks)-1].Number
	if err := Verify(ctx, engine, league, last, stats); err != nil {
		return nil, fmt.Errorf("result verification failed: %w", err)
	}

	// Step 4: Report the final session table
	table, err := engine.SessionStandings(ctx, league.SeasonID, last)
	if err != nil {
		return nil, fmt.Errorf("standings retrieval failed: %w", err)
	}
	displayStandings(ctx, league, table, cfg.Verbose)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	log.Info(ctx, "simulation completed successfully")
	return stats, nil
}

// openSession stores each player's values carried out of the previous week
// as the new session's baselines. Existing rows are kept.
func openSession(ctx context.Context, engine Engine, l *League, week int) error {
	avgs, err := engine.GetAllAveragesUpToWeek(ctx, l.SeasonID, week-1)
	if err != nil {
		return err
	}
	hcps, err := engine.GetAllHandicapsUpToWeek(ctx, l.SeasonID, week-1)
	if err != nil {
		return err
	}

	bs := make([]model.SessionBaseline, 0, 2*len(l.Players))
	for _, p := range l.Players {
		bs = append(bs,
			model.SessionBaseline{Kind: model.BaselineAverage, PlayerID: p.ID, SeasonID: l.SeasonID, SessionStartWeek: week, Value: avgs[p.ID]},
			model.SessionBaseline{Kind: model.BaselineHandicap, PlayerID: p.ID, SeasonID: l.SeasonID, SessionStartWeek: week, Value: hcps[p.ID]},
		)
	}
	return engine.SetSessionBaselines(ctx, bs, false)
}

// playWeek scores the week's cards concurrently. Each player appears in
// one matchup per week, so the cards are independent.
func playWeek(ctx context.Context, engine Engine, cards []Card, cfg *Config) error {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, c := range cards {
		g.Go(func() error {
			res, err := engine.ScoreMatchup(gctx, c.Matchup.ID, service.ScoreInput{
				Holes:    c.Holes,
				OutcomeA: c.OutcomeA,
				OutcomeB: c.OutcomeB,
			})
			if err != nil {
				return fmt.Errorf("matchup %s: %w", c.Matchup.ID, err)
			}
			if cfg.Verbose {
				logger.Get().Info(gctx, "matchup scored",
					logger.Int("week", c.Matchup.WeekNumber),
					logger.String("matchup", c.Matchup.ID.String()),
					logger.Int("pointsA", res.TotalPointsA),
					logger.Int("pointsB", res.TotalPointsB),
					logger.Float64("handicapA", res.HandicapA),
					logger.Float64("handicapB", res.HandicapB))
			}
			return nil
		})
	}
	return g.Wait()
}

// displayFinalStats logs the run's statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var matchupsPerSecond float64
	if stats.Duration > 0 {
		matchupsPerSecond = float64(stats.MatchupsScored) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("matchupsScored", stats.MatchupsScored),
		logger.Int("roundsPlayed", stats.RoundsPlayed),
		logger.Int("absences", stats.Absences),
		logger.Int("verifiedPlayers", stats.VerifiedPlayers),
		logger.Duration("duration", stats.Duration),
		logger.Float64("matchupsPerSecond", matchupsPerSecond))
}
