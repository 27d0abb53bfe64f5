package postgres

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/settings"
	"github.com/okian/fairway/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestMigrateURL(t *testing.T) {
	Convey("Postgres DSNs are rewritten to the pgx5 scheme", t, func() {
		So(migrateURL("postgres://u:p@db:5432/league?sslmode=disable"), ShouldEqual, "pgx5://u:p@db:5432/league?sslmode=disable")
		So(migrateURL("postgresql://db/league"), ShouldEqual, "pgx5://db/league")
		So(migrateURL("pgx5://db/league"), ShouldEqual, "pgx5://db/league")
	})
}

func TestMigrationsEmbedded(t *testing.T) {
	Convey("Both directions of the initial migration are embedded", t, func() {
		entries, err := migrationsFS.ReadDir("migrations")
		So(err, ShouldBeNil)
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		So(names, ShouldContain, "000001_init.up.sql")
		So(names, ShouldContain, "000001_init.down.sql")
	})
}

// TestStore runs against a live database when FAIRWAY_TEST_DATABASE_URL is set.
func TestStore(t *testing.T) {
	dsn := os.Getenv("FAIRWAY_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("FAIRWAY_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	Convey("Given a migrated database", t, func() {
		So(Migrate(dsn), ShouldBeNil)
		store, err := Open(ctx, dsn, WithMaxConns(4))
		So(err, ShouldBeNil)
		Reset(func() { _ = store.Close() })

		courseID, seasonID, matchupID := uuid.New(), uuid.New(), uuid.New()
		ann, bob := uuid.New(), uuid.New()
		err = store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			c := model.Course{ID: courseID, Name: "Pines"}
			for h := 1; h <= 9; h++ {
				c.Holes = append(c.Holes, model.CourseHole{HoleNumber: h, Par: 4, DifficultyIndex: h})
			}
			if err := tx.PutCourse(ctx, c); err != nil {
				return err
			}
			if err := tx.PutSeason(ctx, model.Season{ID: seasonID, Name: "Spring", CourseID: courseID}); err != nil {
				return err
			}
			if err := tx.PutWeeks(ctx, []model.Week{
				{SeasonID: seasonID, Number: 2, Nine: model.Back, CountsForScoring: true},
				{SeasonID: seasonID, Number: 1, Nine: model.Front, CountsForScoring: true, CountsForHandicap: true, SpecialPoints: model.Int(6)},
			}); err != nil {
				return err
			}
			if err := tx.PutSettings(ctx, seasonID, settings.Default()); err != nil {
				return err
			}
			for _, id := range []uuid.UUID{ann, bob} {
				if err := tx.PutPlayer(ctx, model.PlayerRecord{PlayerID: id, SeasonID: seasonID, InitialAverage: model.Float(44)}); err != nil {
					return err
				}
			}
			return tx.PutMatchup(ctx, model.Matchup{ID: matchupID, SeasonID: seasonID, WeekNumber: 1, PlayerAID: ann, PlayerBID: bob})
		})
		So(err, ShouldBeNil)

		Convey("When reading the seed back", func() {
			err := store.View(ctx, func(ctx context.Context, r repository.Reader) error {
				weeks, err := r.Weeks(ctx, seasonID)
				So(err, ShouldBeNil)
				So(weeks, ShouldHaveLength, 2)
				So(weeks[0].Number, ShouldEqual, 1)
				So(*weeks[0].SpecialPoints, ShouldEqual, 6)
				So(weeks[1].Nine, ShouldEqual, model.Back)

				cfg, err := r.Settings(ctx, seasonID)
				So(err, ShouldBeNil)
				So(cfg, ShouldResemble, settings.Default())

				c, err := r.Course(ctx, courseID)
				So(err, ShouldBeNil)
				So(c.Holes, ShouldHaveLength, 9)
				return nil
			})
			So(err, ShouldBeNil)
		})

		Convey("When a scored matchup is saved", func() {
			err := store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
				m, err := tx.Matchup(ctx, matchupID)
				if err != nil {
					return err
				}
				m.OutcomeB = model.AbsentWithNotice{}
				m.Result = &model.MatchResult{TotalPointsA: 16, TotalPointsB: 4, MatchWinA: true}
				if err := tx.SaveMatchupResult(ctx, m); err != nil {
					return err
				}
				if err := tx.SaveHoleScores(ctx, matchupID, []model.HoleScore{{HoleNumber: 1, Par: 4, A: model.Int(4)}}); err != nil {
					return err
				}
				return tx.SaveScoreEntries(ctx, []model.ScoreEntry{
					{PlayerID: ann, SeasonID: seasonID, MatchupID: matchupID, WeekNumber: 1, Outcome: model.Played{Strokes: 38}, PointsEarned: 16},
					{PlayerID: bob, SeasonID: seasonID, MatchupID: matchupID, WeekNumber: 1, Outcome: model.AbsentWithNotice{}, PointsEarned: 4},
				})
			})
			So(err, ShouldBeNil)

			Convey("Then it reads back intact", func() {
				err := store.View(ctx, func(ctx context.Context, r repository.Reader) error {
					m, err := r.Matchup(ctx, matchupID)
					So(err, ShouldBeNil)
					So(m.OutcomeA, ShouldBeNil)
					So(m.OutcomeB, ShouldResemble, model.AbsentWithNotice{})
					So(m.Result.TotalPointsA, ShouldEqual, 16)

					entries, err := r.Entries(ctx, seasonID)
					So(err, ShouldBeNil)
					So(entries, ShouldHaveLength, 2)
					for _, e := range entries {
						if e.PlayerID == ann {
							So(e.Outcome, ShouldResemble, model.Played{Strokes: 38})
						}
					}

					holes, err := r.HoleScores(ctx, matchupID)
					So(err, ShouldBeNil)
					So(holes[0].B, ShouldBeNil)
					return nil
				})
				So(err, ShouldBeNil)
			})
		})

		Convey("When baselines are created twice", func() {
			b := model.SessionBaseline{Kind: model.BaselineAverage, PlayerID: ann, SeasonID: seasonID, SessionStartWeek: 1, Value: 43}
			var first, second bool
			err := store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
				var err error
				if first, err = tx.CreateBaselineIfMissing(ctx, b); err != nil {
					return err
				}
				b.Value = 50
				second, err = tx.CreateBaselineIfMissing(ctx, b)
				return err
			})
			So(err, ShouldBeNil)
			So(first, ShouldBeTrue)
			So(second, ShouldBeFalse)
		})

		Convey("When a transaction fails", func() {
			boom := errors.New("boom")
			err := store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
				if err := tx.UpdatePlayerCurrent(ctx, seasonID, ann, 40, 3); err != nil {
					return err
				}
				return boom
			})
			So(errors.Is(err, boom), ShouldBeTrue)

			err = store.View(ctx, func(ctx context.Context, r repository.Reader) error {
				ps, err := r.Players(ctx, seasonID)
				So(err, ShouldBeNil)
				for _, p := range ps {
					So(p.CurrentAverage, ShouldBeNil)
				}
				return nil
			})
			So(err, ShouldBeNil)
		})

		Convey("When rows are missing", func() {
			err := store.View(ctx, func(ctx context.Context, r repository.Reader) error {
				_, err := r.Matchup(ctx, uuid.New())
				return err
			})
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			err = store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
				return tx.PutPlayer(ctx, model.PlayerRecord{PlayerID: uuid.New(), SeasonID: uuid.New()})
			})
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}
