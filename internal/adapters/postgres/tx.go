package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/settings"
)

// pgTx implements repository.Tx on one pgx transaction.
type pgTx struct {
	tx pgx.Tx
}

var _ repository.Tx = (*pgTx)(nil)

func (t *pgTx) requireSeason(ctx context.Context, seasonID uuid.UUID) error {
	var ok bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM seasons WHERE id = $1)`, seasonID).Scan(&ok)
	if err != nil {
		return translate(err, "check season")
	}
	if !ok {
		return fmt.Errorf("season %s: %w", seasonID, repository.ErrNotFound)
	}
	return nil
}

func (t *pgTx) requireMatchup(ctx context.Context, matchupID uuid.UUID) error {
	var ok bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM matchups WHERE id = $1)`, matchupID).Scan(&ok)
	if err != nil {
		return translate(err, "check matchup")
	}
	if !ok {
		return fmt.Errorf("matchup %s: %w", matchupID, repository.ErrNotFound)
	}
	return nil
}

func (t *pgTx) Season(ctx context.Context, seasonID uuid.UUID) (model.Season, error) {
	s := model.Season{ID: seasonID}
	err := t.tx.QueryRow(ctx, `SELECT name, course_id FROM seasons WHERE id = $1`, seasonID).
		Scan(&s.Name, &s.CourseID)
	if err != nil {
		return model.Season{}, translate(err, "season "+seasonID.String())
	}
	return s, nil
}

func (t *pgTx) Course(ctx context.Context, courseID uuid.UUID) (model.Course, error) {
	c := model.Course{ID: courseID}
	if err := t.tx.QueryRow(ctx, `SELECT name FROM courses WHERE id = $1`, courseID).Scan(&c.Name); err != nil {
		return model.Course{}, translate(err, "course "+courseID.String())
	}
	rows, err := t.tx.Query(ctx,
		`SELECT hole_number, par, difficulty_index FROM course_holes WHERE course_id = $1 ORDER BY hole_number`,
		courseID)
	if err != nil {
		return model.Course{}, translate(err, "course holes")
	}
	c.Holes, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CourseHole, error) {
		var h model.CourseHole
		err := row.Scan(&h.HoleNumber, &h.Par, &h.DifficultyIndex)
		return h, err
	})
	if err != nil {
		return model.Course{}, translate(err, "course holes")
	}
	return c, nil
}

func (t *pgTx) Weeks(ctx context.Context, seasonID uuid.UUID) ([]model.Week, error) {
	if err := t.requireSeason(ctx, seasonID); err != nil {
		return nil, err
	}
	rows, err := t.tx.Query(ctx, `
		SELECT id, number, session_start, counts_for_scoring, counts_for_handicap, nine, special_points
		FROM weeks WHERE season_id = $1 ORDER BY number`, seasonID)
	if err != nil {
		return nil, translate(err, "weeks")
	}
	weeks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Week, error) {
		w := model.Week{SeasonID: seasonID}
		var nine int
		err := row.Scan(&w.ID, &w.Number, &w.SessionStart, &w.CountsForScoring, &w.CountsForHandicap, &nine, &w.SpecialPoints)
		w.Nine = model.NineHoles(nine)
		return w, err
	})
	if err != nil {
		return nil, translate(err, "weeks")
	}
	return weeks, nil
}

func (t *pgTx) Settings(ctx context.Context, seasonID uuid.UUID) (settings.LeagueSettings, error) {
	var raw []byte
	err := t.tx.QueryRow(ctx, `SELECT config FROM league_settings WHERE season_id = $1`, seasonID).Scan(&raw)
	if err != nil {
		return settings.LeagueSettings{}, translate(err, "settings for season "+seasonID.String())
	}
	var cfg settings.LeagueSettings
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return settings.LeagueSettings{}, fmt.Errorf("decode settings for season %s: %w", seasonID, err)
	}
	return cfg, nil
}

func (t *pgTx) Players(ctx context.Context, seasonID uuid.UUID) ([]model.PlayerRecord, error) {
	if err := t.requireSeason(ctx, seasonID); err != nil {
		return nil, err
	}
	rows, err := t.tx.Query(ctx, `
		SELECT player_id, name, initial_average, initial_handicap, current_average, current_handicap
		FROM season_players WHERE season_id = $1 ORDER BY player_id::text`, seasonID)
	if err != nil {
		return nil, translate(err, "players")
	}
	players, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.PlayerRecord, error) {
		p := model.PlayerRecord{SeasonID: seasonID}
		err := row.Scan(&p.PlayerID, &p.Name, &p.InitialAverage, &p.InitialHandicap, &p.CurrentAverage, &p.CurrentHandicap)
		return p, err
	})
	if err != nil {
		return nil, translate(err, "players")
	}
	return players, nil
}

func (t *pgTx) Baselines(ctx context.Context, seasonID uuid.UUID) ([]model.SessionBaseline, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT kind, player_id, session_start_week, value
		FROM session_baselines WHERE season_id = $1
		ORDER BY session_start_week, player_id::text, kind`, seasonID)
	if err != nil {
		return nil, translate(err, "baselines")
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.SessionBaseline, error) {
		b := model.SessionBaseline{SeasonID: seasonID}
		var kind string
		err := row.Scan(&kind, &b.PlayerID, &b.SessionStartWeek, &b.Value)
		b.Kind = model.BaselineKind(kind)
		return b, err
	})
	if err != nil {
		return nil, translate(err, "baselines")
	}
	return out, nil
}

func (t *pgTx) Entries(ctx context.Context, seasonID uuid.UUID) ([]model.ScoreEntry, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT player_id, matchup_id, week_id, week_number, outcome, strokes, points_earned
		FROM score_entries WHERE season_id = $1
		ORDER BY week_number, player_id::text`, seasonID)
	if err != nil {
		return nil, translate(err, "entries")
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ScoreEntry, error) {
		e := model.ScoreEntry{SeasonID: seasonID}
		var (
			weekID  *uuid.UUID
			kind    string
			strokes *int
		)
		if err := row.Scan(&e.PlayerID, &e.MatchupID, &weekID, &e.WeekNumber, &kind, &strokes, &e.PointsEarned); err != nil {
			return e, err
		}
		if weekID != nil {
			e.WeekID = *weekID
		}
		o, err := model.ParseOutcome(kind, strokes)
		e.Outcome = o
		return e, err
	})
	if err != nil {
		return nil, translate(err, "entries")
	}
	return out, nil
}

func (t *pgTx) Matchup(ctx context.Context, matchupID uuid.UUID) (model.Matchup, error) {
	m := model.Matchup{ID: matchupID}
	var (
		weekID             *uuid.UUID
		outcomeA, outcomeB *string
		result             []byte
	)
	err := t.tx.QueryRow(ctx, `
		SELECT season_id, week_id, week_number, player_a_id, player_b_id, outcome_a, outcome_b, result
		FROM matchups WHERE id = $1`, matchupID).
		Scan(&m.SeasonID, &weekID, &m.WeekNumber, &m.PlayerAID, &m.PlayerBID, &outcomeA, &outcomeB, &result)
	if err != nil {
		return model.Matchup{}, translate(err, "matchup "+matchupID.String())
	}
	if weekID != nil {
		m.WeekID = *weekID
	}
	if m.OutcomeA, err = parseOptionalOutcome(outcomeA); err != nil {
		return model.Matchup{}, err
	}
	if m.OutcomeB, err = parseOptionalOutcome(outcomeB); err != nil {
		return model.Matchup{}, err
	}
	if result != nil {
		m.Result = &model.MatchResult{}
		if err := json.Unmarshal(result, m.Result); err != nil {
			return model.Matchup{}, fmt.Errorf("decode result of matchup %s: %w", matchupID, err)
		}
	}
	return m, nil
}

func parseOptionalOutcome(kind *string) (model.Outcome, error) {
	if kind == nil {
		return nil, nil
	}
	return model.ParseOutcome(*kind, nil)
}

func optionalOutcome(o model.Outcome) *string {
	if o == nil {
		return nil
	}
	kind := model.OutcomeKind(o)
	return &kind
}

func (t *pgTx) HoleScores(ctx context.Context, matchupID uuid.UUID) ([]model.HoleScore, error) {
	if err := t.requireMatchup(ctx, matchupID); err != nil {
		return nil, err
	}
	rows, err := t.tx.Query(ctx, `
		SELECT hole_number, par, strokes_a, strokes_b
		FROM hole_scores WHERE matchup_id = $1 ORDER BY hole_number`, matchupID)
	if err != nil {
		return nil, translate(err, "hole scores")
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.HoleScore, error) {
		h := model.HoleScore{MatchupID: matchupID}
		err := row.Scan(&h.HoleNumber, &h.Par, &h.A, &h.B)
		return h, err
	})
	if err != nil {
		return nil, translate(err, "hole scores")
	}
	return out, nil
}

func (t *pgTx) PutCourse(ctx context.Context, c model.Course) error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("course without id: %w", repository.ErrInvalidInput)
	}
	b := &pgx.Batch{}
	b.Queue(`INSERT INTO courses (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, c.ID, c.Name)
	b.Queue(`DELETE FROM course_holes WHERE course_id = $1`, c.ID)
	for _, h := range c.Holes {
		b.Queue(`INSERT INTO course_holes (course_id, hole_number, par, difficulty_index) VALUES ($1, $2, $3, $4)`,
			c.ID, h.HoleNumber, h.Par, h.DifficultyIndex)
	}
	return t.execBatch(ctx, b, "put course")
}

func (t *pgTx) PutSeason(ctx context.Context, s model.Season) error {
	if s.ID == uuid.Nil {
		return fmt.Errorf("season without id: %w", repository.ErrInvalidInput)
	}
	_, err := t.tx.Exec(ctx, `INSERT INTO seasons (id, name, course_id) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, course_id = EXCLUDED.course_id`,
		s.ID, s.Name, s.CourseID)
	return translate(err, "put season")
}

// PutWeeks upserts weeks by (season, number), keeping the stored id.
func (t *pgTx) PutWeeks(ctx context.Context, weeks []model.Week) error {
	b := &pgx.Batch{}
	for _, w := range weeks {
		if w.Number < 1 {
			return fmt.Errorf("week number %d: %w", w.Number, repository.ErrInvalidInput)
		}
		if w.ID == uuid.Nil {
			w.ID = uuid.New()
		}
		b.Queue(`
			INSERT INTO weeks (id, season_id, number, session_start, counts_for_scoring, counts_for_handicap, nine, special_points)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (season_id, number) DO UPDATE SET
				session_start = EXCLUDED.session_start,
				counts_for_scoring = EXCLUDED.counts_for_scoring,
				counts_for_handicap = EXCLUDED.counts_for_handicap,
				nine = EXCLUDED.nine,
				special_points = EXCLUDED.special_points`,
			w.ID, w.SeasonID, w.Number, w.SessionStart, w.CountsForScoring, w.CountsForHandicap, int(w.Nine), w.SpecialPoints)
	}
	return t.execBatch(ctx, b, "put weeks")
}

func (t *pgTx) PutSettings(ctx context.Context, seasonID uuid.UUID, cfg settings.LeagueSettings) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = t.tx.Exec(ctx, `INSERT INTO league_settings (season_id, config) VALUES ($1, $2)
		ON CONFLICT (season_id) DO UPDATE SET config = EXCLUDED.config`, seasonID, raw)
	return translate(err, "put settings")
}

func (t *pgTx) PutPlayer(ctx context.Context, p model.PlayerRecord) error {
	if p.PlayerID == uuid.Nil {
		return fmt.Errorf("player without id: %w", repository.ErrInvalidInput)
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO season_players (season_id, player_id, name, initial_average, initial_handicap, current_average, current_handicap)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (season_id, player_id) DO UPDATE SET
			name = EXCLUDED.name,
			initial_average = EXCLUDED.initial_average,
			initial_handicap = EXCLUDED.initial_handicap,
			current_average = EXCLUDED.current_average,
			current_handicap = EXCLUDED.current_handicap`,
		p.SeasonID, p.PlayerID, p.Name, p.InitialAverage, p.InitialHandicap, p.CurrentAverage, p.CurrentHandicap)
	return translate(err, "put player")
}

func (t *pgTx) PutMatchup(ctx context.Context, m model.Matchup) error {
	if m.ID == uuid.Nil || m.PlayerAID == m.PlayerBID {
		return fmt.Errorf("matchup %s: %w", m.ID, repository.ErrInvalidInput)
	}
	var weekID *uuid.UUID
	if m.WeekID != uuid.Nil {
		weekID = &m.WeekID
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO matchups (id, season_id, week_id, week_number, player_a_id, player_b_id, outcome_a, outcome_b)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			week_id = EXCLUDED.week_id,
			week_number = EXCLUDED.week_number,
			player_a_id = EXCLUDED.player_a_id,
			player_b_id = EXCLUDED.player_b_id,
			outcome_a = EXCLUDED.outcome_a,
			outcome_b = EXCLUDED.outcome_b`,
		m.ID, m.SeasonID, weekID, m.WeekNumber, m.PlayerAID, m.PlayerBID, optionalOutcome(m.OutcomeA), optionalOutcome(m.OutcomeB))
	return translate(err, "put matchup")
}

func (t *pgTx) UpsertBaseline(ctx context.Context, b model.SessionBaseline) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO session_baselines (season_id, player_id, kind, session_start_week, value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (season_id, player_id, kind, session_start_week)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		b.SeasonID, b.PlayerID, string(b.Kind), b.SessionStartWeek, b.Value)
	return translate(err, "upsert baseline")
}

func (t *pgTx) CreateBaselineIfMissing(ctx context.Context, b model.SessionBaseline) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
		INSERT INTO session_baselines (season_id, player_id, kind, session_start_week, value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (season_id, player_id, kind, session_start_week) DO NOTHING`,
		b.SeasonID, b.PlayerID, string(b.Kind), b.SessionStartWeek, b.Value)
	if err != nil {
		return false, translate(err, "create baseline")
	}
	return tag.RowsAffected() == 1, nil
}

func (t *pgTx) SaveHoleScores(ctx context.Context, matchupID uuid.UUID, scores []model.HoleScore) error {
	if err := t.requireMatchup(ctx, matchupID); err != nil {
		return err
	}
	b := &pgx.Batch{}
	b.Queue(`DELETE FROM hole_scores WHERE matchup_id = $1`, matchupID)
	for _, h := range scores {
		b.Queue(`INSERT INTO hole_scores (matchup_id, hole_number, par, strokes_a, strokes_b) VALUES ($1, $2, $3, $4, $5)`,
			matchupID, h.HoleNumber, h.Par, h.A, h.B)
	}
	return t.execBatch(ctx, b, "save hole scores")
}

func (t *pgTx) SaveMatchupResult(ctx context.Context, m model.Matchup) error {
	var result []byte
	if m.Result != nil {
		var err error
		if result, err = json.Marshal(m.Result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	}
	tag, err := t.tx.Exec(ctx, `UPDATE matchups SET outcome_a = $2, outcome_b = $3, result = $4 WHERE id = $1`,
		m.ID, optionalOutcome(m.OutcomeA), optionalOutcome(m.OutcomeB), result)
	if err != nil {
		return translate(err, "save matchup result")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("matchup %s: %w", m.ID, repository.ErrNotFound)
	}
	return nil
}

func (t *pgTx) SaveScoreEntries(ctx context.Context, entries []model.ScoreEntry) error {
	b := &pgx.Batch{}
	for _, e := range entries {
		var (
			weekID  *uuid.UUID
			strokes *int
		)
		if e.WeekID != uuid.Nil {
			weekID = &e.WeekID
		}
		if g, ok := model.Gross(e.Outcome); ok {
			strokes = &g
		}
		kind := model.OutcomeKind(e.Outcome)
		if kind == "" {
			return fmt.Errorf("entry for player %s: %w", e.PlayerID, model.ErrUnknownOutcome)
		}
		b.Queue(`
			INSERT INTO score_entries (player_id, matchup_id, season_id, week_id, week_number, outcome, strokes, points_earned)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (player_id, matchup_id) DO UPDATE SET
				week_id = EXCLUDED.week_id,
				week_number = EXCLUDED.week_number,
				outcome = EXCLUDED.outcome,
				strokes = EXCLUDED.strokes,
				points_earned = EXCLUDED.points_earned`,
			e.PlayerID, e.MatchupID, e.SeasonID, weekID, e.WeekNumber, kind, strokes, e.PointsEarned)
	}
	return t.execBatch(ctx, b, "save score entries")
}

func (t *pgTx) UpdatePlayerCurrent(ctx context.Context, seasonID, playerID uuid.UUID, average, handicap float64) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE season_players SET current_average = $3, current_handicap = $4
		WHERE season_id = $1 AND player_id = $2`, seasonID, playerID, average, handicap)
	if err != nil {
		return translate(err, "update player")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("player %s in season %s: %w", playerID, seasonID, repository.ErrNotFound)
	}
	return nil
}

func (t *pgTx) execBatch(ctx context.Context, b *pgx.Batch, what string) error {
	if b.Len() == 0 {
		return nil
	}
	br := t.tx.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return translate(err, what)
		}
	}
	return translate(br.Close(), what)
}
