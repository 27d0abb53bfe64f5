package simulate

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/adapters/repository"
	service "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/settings"
	"github.com/okian/fairway/internal/domain/standings"
	"github.com/okian/fairway/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testConfig() *Config {
	return &Config{
		Players:      6,
		Weeks:        8,
		SessionEvery: 4,
		Seed:         7,
		AbsenceRate:  0.1,
		Workers:      3,
		Settings:     settings.Default(),
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fresh store", t, func() {
		store := repository.NewMemoryStore()
		cfg := testConfig()

		Convey("When a league is generated", func() {
			l, err := Generate(ctx, store, cfg, newRand(cfg.Seed))
			So(err, ShouldBeNil)

			Convey("Then sessions open on schedule and nines alternate", func() {
				So(l.Weeks, ShouldHaveLength, 8)
				var starts []int
				for _, w := range l.Weeks {
					if w.SessionStart {
						starts = append(starts, w.Number)
					}
				}
				So(starts, ShouldResemble, []int{1, 5})
				So(l.Weeks[0].Nine, ShouldEqual, model.Front)
				So(l.Weeks[1].Nine, ShouldEqual, model.Back)
			})

			Convey("Then every player plays once a week and pairs do not repeat within a cycle", func() {
				seen := map[[2]uuid.UUID]bool{}
				for wi, week := range l.Matchups {
					So(week, ShouldHaveLength, 3)
					playing := map[uuid.UUID]int{}
					for _, m := range week {
						playing[m.PlayerAID]++
						playing[m.PlayerBID]++
						So(m.WeekNumber, ShouldEqual, wi+1)
						if wi < len(l.Players)-1 {
							a, b := m.PlayerAID, m.PlayerBID
							if b.String() < a.String() {
								a, b = b, a
							}
							So(seen[[2]uuid.UUID{a, b}], ShouldBeFalse)
							seen[[2]uuid.UUID{a, b}] = true
						}
					}
					So(playing, ShouldHaveLength, 6)
				}
			})

			Convey("Then the store holds the season", func() {
				err := store.View(ctx, func(ctx context.Context, r repository.Reader) error {
					ps, err := r.Players(ctx, l.SeasonID)
					So(err, ShouldBeNil)
					So(ps, ShouldHaveLength, 6)
					for _, p := range ps {
						So(*p.InitialAverage-*p.InitialHandicap, ShouldAlmostEqual, 36.0, 1e-9)
					}
					m, err := r.Matchup(ctx, l.Matchups[7][2].ID)
					So(err, ShouldBeNil)
					So(m.WeekNumber, ShouldEqual, 8)
					return nil
				})
				So(err, ShouldBeNil)
			})
		})

		Convey("When the player count is odd", func() {
			cfg.Players = 5
			l, err := Generate(ctx, store, cfg, newRand(cfg.Seed))
			So(err, ShouldBeNil)
			So(l.Players, ShouldHaveLength, 6)
		})

		Convey("When the config is unusable", func() {
			cfg.Players = 1
			_, err := Generate(ctx, store, cfg, newRand(cfg.Seed))
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)

			cfg.Players, cfg.Weeks = 4, 0
			_, err = Generate(ctx, store, cfg, newRand(cfg.Seed))
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestGenerateCards(t *testing.T) {
	ctx := context.Background()

	Convey("Given a generated league", t, func() {
		cfg := testConfig()
		l, err := Generate(ctx, repository.NewMemoryStore(), cfg, newRand(cfg.Seed))
		So(err, ShouldBeNil)

		Convey("When nobody is absent on a back-nine week", func() {
			cards := generateCards(newRand(1), l, l.Weeks[1], 0)

			Convey("Then both players have a score on holes 10 to 18", func() {
				So(cards, ShouldHaveLength, 3)
				for _, c := range cards {
					So(c.OutcomeA, ShouldBeNil)
					So(c.OutcomeB, ShouldBeNil)
					So(c.Holes, ShouldHaveLength, 9)
					So(c.Holes[0].HoleNumber, ShouldEqual, 10)
					So(c.Holes[8].HoleNumber, ShouldEqual, 18)
					for _, h := range c.Holes {
						So(h.A, ShouldNotBeNil)
						So(h.B, ShouldNotBeNil)
						So(*h.A, ShouldBeGreaterThanOrEqualTo, h.Par-2)
					}
				}
			})
		})

		Convey("When everyone is absent", func() {
			cards := generateCards(newRand(1), l, l.Weeks[0], 1)

			Convey("Then no holes are recorded", func() {
				for _, c := range cards {
					So(model.IsAbsent(c.OutcomeA), ShouldBeTrue)
					So(model.IsAbsent(c.OutcomeB), ShouldBeTrue)
					So(c.Holes, ShouldBeEmpty)
				}
			})
		})

		Convey("When drawing twice from the same seed", func() {
			a := generateCards(newRand(3), l, l.Weeks[0], 0.3)
			b := generateCards(newRand(3), l, l.Weeks[0], 0.3)
			So(a, ShouldResemble, b)
		})
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	Convey("Given an engine over an in-memory store", t, func() {
		store := repository.NewMemoryStore()
		svc := service.New(service.WithStore(store), service.WithLogger(logger.Nop()))
		cfg := testConfig()

		Convey("When a season is simulated", func() {
			stats, err := Run(ctx, store, svc, cfg)

			Convey("Then every matchup is scored and every player verified", func() {
				So(err, ShouldBeNil)
				So(stats.MatchupsScored, ShouldEqual, 3*8)
				So(stats.RoundsPlayed+stats.Absences, ShouldEqual, 6*8)
				So(stats.VerifiedPlayers, ShouldEqual, 6)
				So(stats.Duration > 0, ShouldBeTrue)
			})
		})

		Convey("When the same seed runs twice", func() {
			first, err := Run(ctx, store, svc, cfg)
			So(err, ShouldBeNil)
			other := repository.NewMemoryStore()
			second, err := Run(ctx, other, service.New(service.WithStore(other), service.WithLogger(logger.Nop())), cfg)
			So(err, ShouldBeNil)
			So(second.Absences, ShouldEqual, first.Absences)
		})

		Convey("When the simple-average method is used", func() {
			cfg.Settings.HandicapMethod = settings.HandicapSimpleAverage
			_, err := Run(ctx, store, svc, cfg)
			So(err, ShouldBeNil)
		})
	})
}

func TestVerifyStandingsOrder(t *testing.T) {
	Convey("Given session tables", t, func() {
		ordered := standings.Table{Rows: []standings.Row{{Points: 30}, {Points: 30}, {Points: 12}}}
		So(verifyStandingsOrder(ordered), ShouldBeNil)

		broken := standings.Table{Rows: []standings.Row{{Points: 10}, {Points: 12}}}
		So(errors.Is(verifyStandingsOrder(broken), ErrMismatch), ShouldBeTrue)
	})
}
