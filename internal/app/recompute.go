package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/session"
	"github.com/okian/fairway/internal/domain/settings"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

var baselineKinds = []model.BaselineKind{model.BaselineAverage, model.BaselineHandicap}

// RecomputePlayer refreshes the player's stored current average and
// handicap as of the season's latest scored week. Running it twice without
// intervening changes stores identical values.
func (s *Service) RecomputePlayer(ctx context.Context, seasonID, playerID uuid.UUID) error {
	job := model.RecomputeJob{SeasonID: seasonID, PlayerID: playerID}
	unlock := s.locks.Lock(job.Key())
	defer unlock()

	start := time.Now()
	var avg, hcp float64
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		snap, err := s.load(ctx, tx, seasonID)
		if err != nil {
			return err
		}
		if _, err := snap.player(playerID); err != nil {
			return err
		}
		week := snap.latestWeek()
		if err := s.carryForward(ctx, tx, snap, playerID, week); err != nil {
			return err
		}
		if avg, err = s.averageAt(snap, playerID, week, false); err != nil {
			return err
		}
		if hcp, err = s.handicapAt(snap, playerID, week, false); err != nil {
			return err
		}
		return tx.UpdatePlayerCurrent(ctx, seasonID, playerID, avg, hcp)
	})
	if err != nil {
		s.computationFailed(ctx, "recompute", err)
		return err
	}

	s.invalidatePlayers(ctx, seasonID, playerID)
	metrics.RecordComputationLatency("recompute", float64(time.Since(start).Milliseconds()))
	s.logger.Debug(ctx, "player recomputed",
		logger.String("job", job.Key()),
		logger.Float64("average", avg),
		logger.Float64("handicap", hcp),
	)
	return nil
}

// RecalculateSeason recomputes and stores every player's current values in
// one transaction and returns the handicaps. It is idempotent.
func (s *Service) RecalculateSeason(ctx context.Context, seasonID uuid.UUID) (map[uuid.UUID]float64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordBulkLatency("recalculate_season", float64(time.Since(start).Milliseconds()))
	}()

	type current struct{ avg, hcp float64 }
	out := make(map[uuid.UUID]float64)

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		snap, err := s.load(ctx, tx, seasonID)
		if err != nil {
			return err
		}
		week := snap.latestWeek()
		for _, p := range snap.players {
			if err := s.carryForward(ctx, tx, snap, p.PlayerID, week); err != nil {
				return err
			}
		}

		results := make([]current, len(snap.players))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.bulkConcurrency)
		for i, p := range snap.players {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				avg, err := s.averageAt(snap, p.PlayerID, week, false)
				if err != nil {
					return err
				}
				hcp, err := s.handicapAt(snap, p.PlayerID, week, false)
				if err != nil {
					return err
				}
				results[i] = current{avg: avg, hcp: hcp}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		// pgx transactions are not safe for concurrent use; write in order.
		for i, p := range snap.players {
			if err := tx.UpdatePlayerCurrent(ctx, seasonID, p.PlayerID, results[i].avg, results[i].hcp); err != nil {
				return err
			}
			out[p.PlayerID] = results[i].hcp
		}
		return nil
	})
	if err != nil {
		s.computationFailed(ctx, "recalculate", err)
		return nil, err
	}

	s.invalidateSeason(ctx, seasonID)
	s.logger.Info(ctx, "season recalculated",
		logger.String("season", seasonID.String()),
		logger.Int("players", len(out)),
	)
	return out, nil
}

// carryForward persists a session baseline for every session of the player
// that opened at or before through and has none. The first session takes
// the fallback tier value; later sessions take the value the player carried
// out of the previous week.
func (s *Service) carryForward(ctx context.Context, tx repository.Writer, snap *snapshot, playerID uuid.UUID, through int) error {
	for _, kind := range baselineKinds {
		for _, start := range snap.sessionStarts(kind, through) {
			key := model.BaselineKey{Kind: kind, PlayerID: playerID, SeasonID: snap.season.ID, SessionStartWeek: start}
			if _, ok := snap.byAverage.Baselines[key]; ok {
				continue
			}

			var (
				v    float64
				tier = "carried"
				err  error
			)
			if start == session.FirstWeek {
				var t session.Tier
				v, t, err = session.Baseline(snap.view(kind), playerID, kind, start)
				tier = string(t)
			} else {
				v, err = s.valueAt(snap, kind, playerID, start-1, false)
			}
			if errors.Is(err, session.ErrMissingBaseline) {
				continue
			}
			if err != nil {
				return err
			}

			b := model.SessionBaseline{Kind: kind, PlayerID: playerID, SeasonID: snap.season.ID, SessionStartWeek: start, Value: v}
			if _, err := tx.CreateBaselineIfMissing(ctx, b); err != nil {
				return err
			}
			snap.byAverage.Baselines[key] = v
			metrics.RecordBaselineFallback(string(kind), tier)
		}
	}
	return nil
}

// ScoresChanged drops cached values for the players and schedules their
// recompute.
func (s *Service) ScoresChanged(ctx context.Context, seasonID uuid.UUID, playerIDs ...uuid.UUID) error {
	s.invalidatePlayers(ctx, seasonID, playerIDs...)
	return s.requestRecompute(ctx, seasonID, playerIDs...)
}

// SettingsChanged drops the season's cached values and schedules a
// recompute of every player.
func (s *Service) SettingsChanged(ctx context.Context, seasonID uuid.UUID) error {
	s.invalidateSeason(ctx, seasonID)

	var players []model.PlayerRecord
	err := s.store.View(ctx, func(ctx context.Context, r repository.Reader) error {
		var err error
		players, err = r.Players(ctx, seasonID)
		return err
	})
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, len(players))
	for i, p := range players {
		ids[i] = p.PlayerID
	}
	return s.requestRecompute(ctx, seasonID, ids...)
}

// UpdateSettings validates and stores the season's settings, then
// recomputes every player under them.
func (s *Service) UpdateSettings(ctx context.Context, seasonID uuid.UUID, cfg settings.LeagueSettings) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.PutSettings(ctx, seasonID, cfg)
	})
	if err != nil {
		return err
	}
	return s.SettingsChanged(ctx, seasonID)
}
