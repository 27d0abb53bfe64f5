package simulate

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/logger"
)

// newRand returns the deterministic source for a seed.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate seeds a course, a season, its weeks, players and a round-robin
// schedule into store in one transaction.
func Generate(ctx context.Context, store repository.Store, cfg *Config, rng *rand.Rand) (*League, error) {
	players := cfg.Players
	if players < 2 {
		return nil, fmt.Errorf("%w: need at least two players, got %d", ErrInvalidConfig, players)
	}
	if players%2 == 1 {
		players++
	}
	if cfg.Weeks < 1 {
		return nil, fmt.Errorf("%w: need at least one week, got %d", ErrInvalidConfig, cfg.Weeks)
	}

	logger.Get().Info(ctx, "generating league",
		logger.Int("players", players),
		logger.Int("weeks", cfg.Weeks),
		logger.Int("sessionEvery", cfg.SessionEvery))

	l := &League{SeasonID: uuid.New(), Course: generateCourse()}
	l.Weeks = generateWeeks(l.SeasonID, cfg.Weeks, cfg.SessionEvery)
	for i := 0; i < players; i++ {
		l.Players = append(l.Players, Player{
			ID:    uuid.New(),
			Name:  fmt.Sprintf("player-%02d", i+1),
			Skill: round1(minSkill + rng.Float64()*skillRange),
		})
	}
	l.Matchups = schedule(l.SeasonID, l.Weeks, l.Players)

	err := store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.PutCourse(ctx, l.Course); err != nil {
			return err
		}
		if err := tx.PutSeason(ctx, model.Season{ID: l.SeasonID, Name: "Simulated", CourseID: l.Course.ID}); err != nil {
			return err
		}
		if err := tx.PutWeeks(ctx, l.Weeks); err != nil {
			return err
		}
		if err := tx.PutSettings(ctx, l.SeasonID, cfg.Settings); err != nil {
			return err
		}
		for _, p := range l.Players {
			rec := model.PlayerRecord{
				PlayerID:        p.ID,
				SeasonID:        l.SeasonID,
				Name:            p.Name,
				InitialAverage:  model.Float(float64(cfg.Settings.CoursePar) + p.Skill),
				InitialHandicap: model.Float(p.Skill),
			}
			if err := tx.PutPlayer(ctx, rec); err != nil {
				return err
			}
		}
		for _, week := range l.Matchups {
			for _, m := range week {
				if err := tx.PutMatchup(ctx, m); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed league: %w", err)
	}
	return l, nil
}

func generateCourse() model.Course {
	c := model.Course{ID: uuid.New(), Name: "Simulated Links"}
	for i := 0; i < eighteenHoles; i++ {
		c.Holes = append(c.Holes, model.CourseHole{HoleNumber: i + 1, Par: coursePars[i], DifficultyIndex: courseDifficulty[i]})
	}
	return c
}

// generateWeeks alternates front and back nines. A new session opens every
// sessionEvery weeks.
func generateWeeks(seasonID uuid.UUID, n, sessionEvery int) []model.Week {
	weeks := make([]model.Week, 0, n)
	for i := 1; i <= n; i++ {
		nine := model.Front
		if i%2 == 0 {
			nine = model.Back
		}
		weeks = append(weeks, model.Week{
			ID:                uuid.New(),
			SeasonID:          seasonID,
			Number:            i,
			Nine:              nine,
			CountsForScoring:  true,
			CountsForHandicap: true,
			SessionStart:      i == 1 || (sessionEvery > 0 && (i-1)%sessionEvery == 0),
		})
	}
	return weeks
}

// schedule pairs players with the circle method so nobody meets the same
// opponent twice until everyone has met.
func schedule(seasonID uuid.UUID, weeks []model.Week, players []Player) [][]model.Matchup {
	n := len(players)
	ring := make([]int, n)
	for i := range ring {
		ring[i] = i
	}

	out := make([][]model.Matchup, len(weeks))
	for wi, w := range weeks {
		for i := 0; i < n/2; i++ {
			a, b := players[ring[i]], players[ring[n-1-i]]
			out[wi] = append(out[wi], model.Matchup{
				ID:         uuid.New(),
				SeasonID:   seasonID,
				WeekID:     w.ID,
				WeekNumber: w.Number,
				PlayerAID:  a.ID,
				PlayerBID:  b.ID,
			})
		}
		// rotate everyone but the first seat
		last := ring[n-1]
		copy(ring[2:], ring[1:n-1])
		ring[1] = last
	}
	return out
}

// Card is one generated score card ready for the engine.
type Card struct {
	Matchup  model.Matchup
	Holes    []model.HoleScore
	OutcomeA model.Outcome
	OutcomeB model.Outcome
}

// generateCards draws the week's cards. Absent players get no hole scores.
func generateCards(rng *rand.Rand, l *League, week model.Week, absenceRate float64) []Card {
	skill := make(map[uuid.UUID]float64, len(l.Players))
	for _, p := range l.Players {
		skill[p.ID] = p.Skill
	}
	holes := holesFor(l.Course, week.Nine)

	cards := make([]Card, 0, len(l.Matchups[week.Number-1]))
	for _, m := range l.Matchups[week.Number-1] {
		c := Card{Matchup: m, OutcomeA: drawOutcome(rng, absenceRate), OutcomeB: drawOutcome(rng, absenceRate)}
		if !model.IsAbsent(c.OutcomeA) || !model.IsAbsent(c.OutcomeB) {
			for _, ch := range holes {
				h := model.HoleScore{HoleNumber: ch.HoleNumber, Par: ch.Par}
				if !model.IsAbsent(c.OutcomeA) {
					h.A = model.Int(drawStrokes(rng, ch.Par, skill[m.PlayerAID]))
				}
				if !model.IsAbsent(c.OutcomeB) {
					h.B = model.Int(drawStrokes(rng, ch.Par, skill[m.PlayerBID]))
				}
				c.Holes = append(c.Holes, h)
			}
		}
		cards = append(cards, c)
	}
	return cards
}

func holesFor(c model.Course, nine model.NineHoles) []model.CourseHole {
	lo := 0
	if nine == model.Back {
		lo = eighteenHoles / 2
	}
	return c.Holes[lo : lo+eighteenHoles/2]
}

// drawOutcome returns nil for a player who shows up.
func drawOutcome(rng *rand.Rand, absenceRate float64) model.Outcome {
	if rng.Float64() >= absenceRate {
		return nil
	}
	if rng.Float64() < noticeShare {
		return model.AbsentWithNotice{}
	}
	return model.Absent{}
}

// drawStrokes spreads the player's skill evenly over nine holes with some
// noise. Nothing better than an eagle is drawn.
func drawStrokes(rng *rand.Rand, par int, skill float64) int {
	over := math.Round(skill/9 + rng.NormFloat64()*0.8)
	s := par + int(over)
	if s < par-2 {
		s = par - 2
	}
	if s < 1 {
		s = 1
	}
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
