package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/course"
	"github.com/okian/fairway/internal/domain/matchplay"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

// ScoreInput is what a score keeper records for one matchup. A nil outcome
// keeps the matchup's stored outcome, or means the player showed up.
type ScoreInput struct {
	Holes    []model.HoleScore
	OutcomeA model.Outcome
	OutcomeB model.Outcome
}

// ScoreMatchup scores the matchup with the handicaps both players carried
// into its week, stores hole scores, the result and each player's points,
// then schedules their recompute.
func (s *Service) ScoreMatchup(ctx context.Context, matchupID uuid.UUID, in ScoreInput) (model.MatchResult, error) {
	start := time.Now()

	var (
		res     model.MatchResult
		matchup model.Matchup
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		m, err := tx.Matchup(ctx, matchupID)
		if err != nil {
			return err
		}
		snap, err := s.load(ctx, tx, m.SeasonID)
		if err != nil {
			return err
		}
		week, err := snap.week(m.WeekNumber)
		if err != nil {
			return err
		}
		nine := week.Nine
		if nine == 0 {
			nine = model.Front
		}
		holes, err := course.HolesInPlay(snap.course, nine)
		if err != nil {
			return err
		}

		through := max(snap.latestWeek(), week.Number)
		for _, pid := range []uuid.UUID{m.PlayerAID, m.PlayerBID} {
			if _, err := snap.player(pid); err != nil {
				return err
			}
			if err := s.carryForward(ctx, tx, snap, pid, through); err != nil {
				return err
			}
		}
		m.OutcomeA = pickOutcome(in.OutcomeA, m.OutcomeA)
		m.OutcomeB = pickOutcome(in.OutcomeB, m.OutcomeB)
		hA, err := s.enteringHandicap(snap, m.PlayerAID, week.Number, m.OutcomeA)
		if err != nil {
			return err
		}
		hB, err := s.enteringHandicap(snap, m.PlayerBID, week.Number, m.OutcomeB)
		if err != nil {
			return err
		}

		scorer, err := matchplay.NewScorer(snap.cfg)
		if err != nil {
			return err
		}
		res, err = scorer.Score(matchplay.Input{
			Holes:     holes,
			Scores:    in.Holes,
			OutcomeA:  m.OutcomeA,
			OutcomeB:  m.OutcomeB,
			HandicapA: hA,
			HandicapB: hB,
		})
		if err != nil {
			return err
		}

		if err := tx.SaveHoleScores(ctx, m.ID, withPar(m.ID, in.Holes, holes)); err != nil {
			return err
		}
		m.Result = &res
		if err := tx.SaveMatchupResult(ctx, m); err != nil {
			return err
		}
		matchup = m
		return tx.SaveScoreEntries(ctx, []model.ScoreEntry{
			entryFor(m, week, m.PlayerAID, m.OutcomeA, res.GrossA, res.TotalPointsA),
			entryFor(m, week, m.PlayerBID, m.OutcomeB, res.GrossB, res.TotalPointsB),
		})
	})
	if err != nil {
		s.computationFailed(ctx, "matchup", err)
		return model.MatchResult{}, err
	}

	metrics.RecordMatchupScored(outcomeLabel(matchup.OutcomeA, matchup.OutcomeB))
	metrics.RecordComputationLatency("matchup", float64(time.Since(start).Milliseconds()))
	s.logger.Debug(ctx, "matchup scored",
		logger.String("matchup", matchupID.String()),
		logger.Int("pointsA", res.TotalPointsA),
		logger.Int("pointsB", res.TotalPointsB),
	)

	if err := s.ScoresChanged(ctx, matchup.SeasonID, matchup.PlayerAID, matchup.PlayerBID); err != nil {
		return res, err
	}
	return res, nil
}

// enteringHandicap is the handicap the player carried into week. An absent
// player's handicap plays no part in scoring and is reported as zero.
func (s *Service) enteringHandicap(snap *snapshot, playerID uuid.UUID, week int, o model.Outcome) (float64, error) {
	if model.IsAbsent(o) {
		return 0, nil
	}
	return s.handicapAt(snap, playerID, week, true)
}

func pickOutcome(given, stored model.Outcome) model.Outcome {
	switch {
	case given != nil:
		return given
	case stored != nil:
		return stored
	default:
		return model.Played{}
	}
}

// entryFor records the points and, when the player has a gross, the
// strokes that later feed averages and handicaps.
func entryFor(m model.Matchup, w model.Week, playerID uuid.UUID, o model.Outcome, gross *int, points int) model.ScoreEntry {
	if _, ok := o.(model.Played); ok && gross != nil {
		o = model.Played{Strokes: *gross}
	}
	return model.ScoreEntry{
		PlayerID:     playerID,
		SeasonID:     m.SeasonID,
		WeekID:       w.ID,
		WeekNumber:   w.Number,
		MatchupID:    m.ID,
		Outcome:      o,
		PointsEarned: points,
	}
}

// withPar stamps each stored hole score with the course par and the
// matchup, whatever the caller supplied.
func withPar(matchupID uuid.UUID, scores []model.HoleScore, holes []model.CourseHole) []model.HoleScore {
	par := make(map[int]int, len(holes))
	for _, h := range holes {
		par[h.HoleNumber] = h.Par
	}
	out := make([]model.HoleScore, len(scores))
	for i, sc := range scores {
		sc.Par = par[sc.HoleNumber]
		sc.MatchupID = matchupID
		out[i] = sc
	}
	return out
}

func outcomeLabel(a, b model.Outcome) string {
	absA, absB := model.IsAbsent(a), model.IsAbsent(b)
	switch {
	case absA && absB:
		return "both_absent"
	case absA || absB:
		return "absence"
	default:
		return "played"
	}
}
