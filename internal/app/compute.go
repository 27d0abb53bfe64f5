package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/adapters/cache"
	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/average"
	"github.com/okian/fairway/internal/domain/course"
	"github.com/okian/fairway/internal/domain/handicap"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/session"
	"github.com/okian/fairway/internal/domain/settings"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// GetAverageScore returns the player's running average through uptoWeek.
func (s *Service) GetAverageScore(ctx context.Context, playerID, seasonID uuid.UUID, uptoWeek int) (float64, error) {
	return s.value(ctx, model.BaselineAverage, playerID, seasonID, uptoWeek)
}

// GetHandicap returns the player's handicap as of week.
func (s *Service) GetHandicap(ctx context.Context, playerID, seasonID uuid.UUID, week int) (float64, error) {
	return s.value(ctx, model.BaselineHandicap, playerID, seasonID, week)
}

// GetAllHandicapsUpToWeek returns every rostered player's handicap as of week.
func (s *Service) GetAllHandicapsUpToWeek(ctx context.Context, seasonID uuid.UUID, week int) (map[uuid.UUID]float64, error) {
	return s.bulk(ctx, model.BaselineHandicap, seasonID, week)
}

// GetAllAveragesUpToWeek returns every rostered player's average through week.
func (s *Service) GetAllAveragesUpToWeek(ctx context.Context, seasonID uuid.UUID, week int) (map[uuid.UUID]float64, error) {
	return s.bulk(ctx, model.BaselineAverage, seasonID, week)
}

func (s *Service) value(ctx context.Context, kind model.BaselineKind, playerID, seasonID uuid.UUID, week int) (float64, error) {
	if week < session.FirstWeek {
		return 0, fmt.Errorf("%w: week %d", session.ErrInvalidWeek, week)
	}

	key := cache.Key{Kind: kind, SeasonID: seasonID, PlayerID: playerID, Week: week}
	if v, ok := s.cacheGet(ctx, key); ok {
		return v, nil
	}

	start := time.Now()
	gen := s.gens.current(seasonID)
	var v float64
	err := s.store.View(ctx, func(ctx context.Context, r repository.Reader) error {
		snap, err := s.load(ctx, r, seasonID)
		if err != nil {
			return err
		}
		if _, err := snap.player(playerID); err != nil {
			return err
		}
		v, err = s.valueAt(snap, kind, playerID, week, false)
		return err
	})
	if err != nil {
		s.computationFailed(ctx, kind, err)
		return 0, err
	}

	metrics.RecordComputationLatency(string(kind), float64(time.Since(start).Milliseconds()))
	s.gens.whenCurrent(seasonID, gen, func() { s.cache.Set(ctx, key, v) })
	return v, nil
}

func (s *Service) bulk(ctx context.Context, kind model.BaselineKind, seasonID uuid.UUID, week int) (map[uuid.UUID]float64, error) {
	if week < session.FirstWeek {
		return nil, fmt.Errorf("%w: week %d", session.ErrInvalidWeek, week)
	}
	start := time.Now()
	defer func() {
		metrics.RecordBulkLatency("all_"+string(kind), float64(time.Since(start).Milliseconds()))
	}()

	gen := s.gens.current(seasonID)
	var snap *snapshot
	err := s.store.View(ctx, func(ctx context.Context, r repository.Reader) error {
		var err error
		snap, err = s.load(ctx, r, seasonID)
		return err
	})
	if err != nil {
		s.computationFailed(ctx, kind, err)
		return nil, err
	}

	out := make(map[uuid.UUID]float64, len(snap.players))
	if len(snap.players) <= s.bulkThreshold {
		for _, p := range snap.players {
			v, err := s.value(ctx, kind, p.PlayerID, seasonID, week)
			if err != nil {
				return nil, err
			}
			out[p.PlayerID] = v
		}
		return out, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.bulkConcurrency)
	for _, p := range snap.players {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := s.valueAt(snap, kind, p.PlayerID, week, false)
			if err != nil {
				return fmt.Errorf("player %s: %w", p.PlayerID, err)
			}
			mu.Lock()
			out[p.PlayerID] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.computationFailed(ctx, kind, err)
		return nil, err
	}

	s.gens.whenCurrent(seasonID, gen, func() {
		for pid, v := range out {
			s.cache.Set(ctx, cache.Key{Kind: kind, SeasonID: seasonID, PlayerID: pid, Week: week}, v)
		}
	})
	return out, nil
}

func (s *Service) valueAt(snap *snapshot, kind model.BaselineKind, playerID uuid.UUID, week int, excludeTarget bool) (float64, error) {
	if kind == model.BaselineHandicap {
		return s.handicapAt(snap, playerID, week, excludeTarget)
	}
	return s.averageAt(snap, playerID, week, excludeTarget)
}

func (s *Service) averageAt(snap *snapshot, playerID uuid.UUID, week int, excludeTarget bool) (float64, error) {
	win, err := session.Resolve(snap.byAverage, session.Request{
		PlayerID: playerID, Week: week, Kind: model.BaselineAverage, ExcludeTarget: excludeTarget,
	})
	if err != nil {
		return 0, err
	}
	v, err := average.Compute(snap.cfg, win.Baseline, win.Scores())
	if err != nil {
		return 0, err
	}
	metrics.RecordComputation(string(model.BaselineAverage), string(snap.cfg.AverageMethod))
	return v, nil
}

func (s *Service) handicapAt(snap *snapshot, playerID uuid.UUID, week int, excludeTarget bool) (float64, error) {
	win, err := session.Resolve(snap.byHandicap, session.Request{
		PlayerID: playerID, Week: week, Kind: model.BaselineHandicap, ExcludeTarget: excludeTarget,
	})
	if err != nil {
		return 0, err
	}

	in := handicap.Input{Baseline: win.Baseline, Scores: win.Scores()}
	if needsAverage(snap.cfg.HandicapMethod) && len(in.Scores) > 0 {
		// Average-driven methods average the handicap window's rounds.
		base, _, err := session.Baseline(snap.byHandicap, playerID, model.BaselineAverage, win.SessionStartWeek)
		switch {
		case errors.Is(err, session.ErrMissingBaseline):
			base = win.Baseline + float64(snap.cfg.CoursePar)
		case err != nil:
			return 0, err
		}
		if in.Average, err = average.Compute(snap.cfg, base, in.Scores); err != nil {
			return 0, err
		}
	}

	v, err := s.calculator.Compute(snap.cfg, in)
	if err != nil {
		return 0, err
	}
	metrics.RecordComputation(string(model.BaselineHandicap), string(snap.cfg.HandicapMethod))
	return v, nil
}

func needsAverage(m settings.HandicapMethod) bool {
	return m == settings.HandicapSimpleAverage || m == settings.HandicapLegacyLookupTable
}

func (s *Service) computationFailed(ctx context.Context, kind model.BaselineKind, err error) {
	reason := errorReason(err)
	metrics.RecordComputationError(string(kind), reason)
	s.logger.Warn(ctx, "computation failed",
		logger.String("kind", string(kind)),
		logger.String("reason", reason),
		logger.Error(err),
	)
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, course.ErrConfiguration), errors.Is(err, settings.ErrInvalidConfiguration):
		return "configuration"
	case errors.Is(err, session.ErrMissingBaseline):
		return "missing_baseline"
	case errors.Is(err, handicap.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, session.ErrInvalidWeek):
		return "invalid_week"
	default:
		return "internal"
	}
}

// generations counts invalidations per season so a value computed from a
// snapshot is not cached after a concurrent write replaced it. A season
// whose invalidation failed is dirty: its cache is bypassed until a later
// season-wide invalidation succeeds.
type generations struct {
	mu     sync.Mutex
	season map[uuid.UUID]uint64
	dirty  map[uuid.UUID]uint64
}

func (g *generations) current(seasonID uuid.UUID) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.season[seasonID]
}

func (g *generations) bump(seasonID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.season == nil {
		g.season = make(map[uuid.UUID]uint64)
	}
	g.season[seasonID]++
}

// markDirty records that entries written before the current generation
// may have survived an invalidation.
func (g *generations) markDirty(seasonID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.dirty == nil {
		g.dirty = make(map[uuid.UUID]uint64)
	}
	g.dirty[seasonID] = g.season[seasonID]
}

func (g *generations) isDirty(seasonID uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.dirty[seasonID]
	return ok
}

// clean clears the dirty mark if no invalidation failed after generation
// gen, and reports whether the season is clean.
func (g *generations) clean(seasonID uuid.UUID, gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.dirty[seasonID]
	if !ok {
		return true
	}
	if d > gen {
		return false
	}
	delete(g.dirty, seasonID)
	return true
}

// whenCurrent runs fn only if seasonID is still at generation gen and
// clean. The check and fn share the lock, so a bump cannot slip between
// them.
func (g *generations) whenCurrent(seasonID uuid.UUID, gen uint64, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.season[seasonID] != gen {
		return false
	}
	if _, ok := g.dirty[seasonID]; ok {
		return false
	}
	fn()
	return true
}

// cacheGet reads through the cache unless the season is dirty and cannot
// be cleaned yet.
func (s *Service) cacheGet(ctx context.Context, key cache.Key) (float64, bool) {
	if s.gens.isDirty(key.SeasonID) {
		gen := s.gens.current(key.SeasonID)
		if err := s.cache.InvalidateSeason(ctx, key.SeasonID); err != nil {
			return 0, false
		}
		if !s.gens.clean(key.SeasonID, gen) {
			return 0, false
		}
		s.logger.Info(ctx, "cache trusted again", logger.String("season_id", key.SeasonID.String()))
	}
	return s.cache.Get(ctx, key)
}

func (s *Service) invalidatePlayers(ctx context.Context, seasonID uuid.UUID, playerIDs ...uuid.UUID) {
	s.gens.bump(seasonID)
	for _, pid := range playerIDs {
		if err := s.cache.InvalidatePlayer(ctx, seasonID, pid); err != nil {
			s.cacheUntrusted(ctx, seasonID, err)
			return
		}
	}
}

func (s *Service) invalidateSeason(ctx context.Context, seasonID uuid.UUID) {
	s.gens.bump(seasonID)
	if err := s.cache.InvalidateSeason(ctx, seasonID); err != nil {
		s.cacheUntrusted(ctx, seasonID, err)
	}
}

func (s *Service) cacheUntrusted(ctx context.Context, seasonID uuid.UUID, err error) {
	s.gens.markDirty(seasonID)
	s.logger.Warn(ctx, "cache invalidation failed, bypassing season cache",
		logger.String("season_id", seasonID.String()),
		logger.Error(err),
	)
}
