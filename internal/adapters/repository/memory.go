package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/settings"
)

type entryKey struct {
	player  uuid.UUID
	matchup uuid.UUID
}

// state is an immutable snapshot once published.
type state struct {
	courses    map[uuid.UUID]model.Course
	seasons    map[uuid.UUID]model.Season
	weeks      map[uuid.UUID][]model.Week
	settings   map[uuid.UUID]settings.LeagueSettings
	players    map[uuid.UUID]map[uuid.UUID]model.PlayerRecord
	baselines  map[model.BaselineKey]model.SessionBaseline
	matchups   map[uuid.UUID]model.Matchup
	holeScores map[uuid.UUID][]model.HoleScore
	entries    map[entryKey]model.ScoreEntry
}

func newState() *state {
	return &state{
		courses:    map[uuid.UUID]model.Course{},
		seasons:    map[uuid.UUID]model.Season{},
		weeks:      map[uuid.UUID][]model.Week{},
		settings:   map[uuid.UUID]settings.LeagueSettings{},
		players:    map[uuid.UUID]map[uuid.UUID]model.PlayerRecord{},
		baselines:  map[model.BaselineKey]model.SessionBaseline{},
		matchups:   map[uuid.UUID]model.Matchup{},
		holeScores: map[uuid.UUID][]model.HoleScore{},
		entries:    map[entryKey]model.ScoreEntry{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies every container. Values are replaced on write, never mutated.
func (s *state) clone() *state {
	c := &state{
		courses:    cloneMap(s.courses),
		seasons:    cloneMap(s.seasons),
		weeks:      cloneMap(s.weeks),
		settings:   cloneMap(s.settings),
		players:    make(map[uuid.UUID]map[uuid.UUID]model.PlayerRecord, len(s.players)),
		baselines:  cloneMap(s.baselines),
		matchups:   cloneMap(s.matchups),
		holeScores: cloneMap(s.holeScores),
		entries:    cloneMap(s.entries),
	}
	for id, ps := range s.players {
		c.players[id] = cloneMap(ps)
	}
	return c
}

// MemoryStore keeps league data in memory. Readers use the last published
// snapshot without locking; writers are serialized and publish on commit.
type MemoryStore struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[state]
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.snapshot.Store(newState())
	return s
}

func (s *MemoryStore) View(ctx context.Context, fn func(ctx context.Context, r Reader) error) error {
	return fn(ctx, &memTx{st: s.snapshot.Load()})
}

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memTx{st: s.snapshot.Load().clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.snapshot.Store(tx.st)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// memTx reads and writes a private copy of the state.
type memTx struct {
	st *state
}

func (t *memTx) Season(ctx context.Context, seasonID uuid.UUID) (model.Season, error) {
	v, ok := t.st.seasons[seasonID]
	if !ok {
		return model.Season{}, fmt.Errorf("season %s: %w", seasonID, ErrNotFound)
	}
	return v, nil
}

func (t *memTx) Course(ctx context.Context, courseID uuid.UUID) (model.Course, error) {
	v, ok := t.st.courses[courseID]
	if !ok {
		return model.Course{}, fmt.Errorf("course %s: %w", courseID, ErrNotFound)
	}
	v.Holes = append([]model.CourseHole(nil), v.Holes...)
	return v, nil
}

func (t *memTx) Weeks(ctx context.Context, seasonID uuid.UUID) ([]model.Week, error) {
	if _, ok := t.st.seasons[seasonID]; !ok {
		return nil, fmt.Errorf("season %s: %w", seasonID, ErrNotFound)
	}
	return append([]model.Week(nil), t.st.weeks[seasonID]...), nil
}

func (t *memTx) Settings(ctx context.Context, seasonID uuid.UUID) (settings.LeagueSettings, error) {
	v, ok := t.st.settings[seasonID]
	if !ok {
		return settings.LeagueSettings{}, fmt.Errorf("settings for season %s: %w", seasonID, ErrNotFound)
	}
	return v, nil
}

func (t *memTx) Players(ctx context.Context, seasonID uuid.UUID) ([]model.PlayerRecord, error) {
	if _, ok := t.st.seasons[seasonID]; !ok {
		return nil, fmt.Errorf("season %s: %w", seasonID, ErrNotFound)
	}
	ps := t.st.players[seasonID]
	out := make([]model.PlayerRecord, 0, len(ps))
	for _, p := range ps {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID.String() < out[j].PlayerID.String() })
	return out, nil
}

func (t *memTx) Baselines(ctx context.Context, seasonID uuid.UUID) ([]model.SessionBaseline, error) {
	var out []model.SessionBaseline
	for _, b := range t.st.baselines {
		if b.SeasonID == seasonID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SessionStartWeek != out[j].SessionStartWeek {
			return out[i].SessionStartWeek < out[j].SessionStartWeek
		}
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID.String() < out[j].PlayerID.String()
		}
		return out[i].Kind < out[j].Kind
	})
	return out, nil
}

func (t *memTx) Entries(ctx context.Context, seasonID uuid.UUID) ([]model.ScoreEntry, error) {
	var out []model.ScoreEntry
	for _, e := range t.st.entries {
		if e.SeasonID == seasonID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WeekNumber != out[j].WeekNumber {
			return out[i].WeekNumber < out[j].WeekNumber
		}
		return out[i].PlayerID.String() < out[j].PlayerID.String()
	})
	return out, nil
}

func (t *memTx) Matchup(ctx context.Context, matchupID uuid.UUID) (model.Matchup, error) {
	v, ok := t.st.matchups[matchupID]
	if !ok {
		return model.Matchup{}, fmt.Errorf("matchup %s: %w", matchupID, ErrNotFound)
	}
	return v, nil
}

func (t *memTx) HoleScores(ctx context.Context, matchupID uuid.UUID) ([]model.HoleScore, error) {
	if _, ok := t.st.matchups[matchupID]; !ok {
		return nil, fmt.Errorf("matchup %s: %w", matchupID, ErrNotFound)
	}
	return append([]model.HoleScore(nil), t.st.holeScores[matchupID]...), nil
}

func (t *memTx) PutCourse(ctx context.Context, c model.Course) error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("course without id: %w", ErrInvalidInput)
	}
	c.Holes = append([]model.CourseHole(nil), c.Holes...)
	t.st.courses[c.ID] = c
	return nil
}

func (t *memTx) PutSeason(ctx context.Context, s model.Season) error {
	if s.ID == uuid.Nil {
		return fmt.Errorf("season without id: %w", ErrInvalidInput)
	}
	if _, ok := t.st.courses[s.CourseID]; !ok {
		return fmt.Errorf("course %s: %w", s.CourseID, ErrNotFound)
	}
	t.st.seasons[s.ID] = s
	return nil
}

// PutWeeks upserts weeks by (season, number).
func (t *memTx) PutWeeks(ctx context.Context, weeks []model.Week) error {
	for _, w := range weeks {
		if _, ok := t.st.seasons[w.SeasonID]; !ok {
			return fmt.Errorf("season %s: %w", w.SeasonID, ErrNotFound)
		}
		if w.Number < 1 {
			return fmt.Errorf("week number %d: %w", w.Number, ErrInvalidInput)
		}
		if w.ID == uuid.Nil {
			w.ID = uuid.New()
		}
		list := append([]model.Week(nil), t.st.weeks[w.SeasonID]...)
		replaced := false
		for i := range list {
			if list[i].Number == w.Number {
				w.ID = list[i].ID
				list[i] = w
				replaced = true
				break
			}
		}
		if !replaced {
			list = append(list, w)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Number < list[j].Number })
		t.st.weeks[w.SeasonID] = list
	}
	return nil
}

func (t *memTx) PutSettings(ctx context.Context, seasonID uuid.UUID, cfg settings.LeagueSettings) error {
	if _, ok := t.st.seasons[seasonID]; !ok {
		return fmt.Errorf("season %s: %w", seasonID, ErrNotFound)
	}
	t.st.settings[seasonID] = cfg
	return nil
}

func (t *memTx) PutPlayer(ctx context.Context, p model.PlayerRecord) error {
	if _, ok := t.st.seasons[p.SeasonID]; !ok {
		return fmt.Errorf("season %s: %w", p.SeasonID, ErrNotFound)
	}
	if p.PlayerID == uuid.Nil {
		return fmt.Errorf("player without id: %w", ErrInvalidInput)
	}
	ps := t.st.players[p.SeasonID]
	if ps == nil {
		ps = map[uuid.UUID]model.PlayerRecord{}
		t.st.players[p.SeasonID] = ps
	}
	ps[p.PlayerID] = p
	return nil
}

func (t *memTx) PutMatchup(ctx context.Context, m model.Matchup) error {
	if _, ok := t.st.seasons[m.SeasonID]; !ok {
		return fmt.Errorf("season %s: %w", m.SeasonID, ErrNotFound)
	}
	if m.ID == uuid.Nil || m.PlayerAID == m.PlayerBID {
		return fmt.Errorf("matchup %s: %w", m.ID, ErrInvalidInput)
	}
	t.st.matchups[m.ID] = m
	return nil
}

func (t *memTx) UpsertBaseline(ctx context.Context, b model.SessionBaseline) error {
	if _, ok := t.st.seasons[b.SeasonID]; !ok {
		return fmt.Errorf("season %s: %w", b.SeasonID, ErrNotFound)
	}
	t.st.baselines[b.Key()] = b
	return nil
}

func (t *memTx) CreateBaselineIfMissing(ctx context.Context, b model.SessionBaseline) (bool, error) {
	if _, ok := t.st.baselines[b.Key()]; ok {
		return false, nil
	}
	if err := t.UpsertBaseline(ctx, b); err != nil {
		return false, err
	}
	return true, nil
}

func (t *memTx) SaveHoleScores(ctx context.Context, matchupID uuid.UUID, scores []model.HoleScore) error {
	if _, ok := t.st.matchups[matchupID]; !ok {
		return fmt.Errorf("matchup %s: %w", matchupID, ErrNotFound)
	}
	out := make([]model.HoleScore, len(scores))
	copy(out, scores)
	for i := range out {
		out[i].MatchupID = matchupID
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HoleNumber < out[j].HoleNumber })
	t.st.holeScores[matchupID] = out
	return nil
}

func (t *memTx) SaveMatchupResult(ctx context.Context, m model.Matchup) error {
	if _, ok := t.st.matchups[m.ID]; !ok {
		return fmt.Errorf("matchup %s: %w", m.ID, ErrNotFound)
	}
	t.st.matchups[m.ID] = m
	return nil
}

func (t *memTx) SaveScoreEntries(ctx context.Context, entries []model.ScoreEntry) error {
	for _, e := range entries {
		if _, ok := t.st.seasons[e.SeasonID]; !ok {
			return fmt.Errorf("season %s: %w", e.SeasonID, ErrNotFound)
		}
		t.st.entries[entryKey{player: e.PlayerID, matchup: e.MatchupID}] = e
	}
	return nil
}

func (t *memTx) UpdatePlayerCurrent(ctx context.Context, seasonID, playerID uuid.UUID, average, handicap float64) error {
	p, ok := t.st.players[seasonID][playerID]
	if !ok {
		return fmt.Errorf("player %s in season %s: %w", playerID, seasonID, ErrNotFound)
	}
	p.CurrentAverage = model.Float(average)
	p.CurrentHandicap = model.Float(handicap)
	t.st.players[seasonID][playerID] = p
	return nil
}
