package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/fairway/internal/adapters/postgres"
	"github.com/okian/fairway/internal/adapters/repository"
	app "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/config"
	"github.com/okian/fairway/internal/domain/handicap"
	"github.com/okian/fairway/internal/domain/settings"
	"github.com/okian/fairway/internal/simulate"
	"github.com/okian/fairway/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	var (
		players = flag.Int("players", simulate.DefaultPlayers, "Number of players")
		weeks   = flag.Int("weeks", simulate.DefaultWeeks, "Number of weeks")
		session = flag.Int("session", simulate.DefaultSessionEvery, "Weeks per session, 0 for one session")
		seed    = flag.Uint64("seed", simulate.DefaultSeed, "Seed for the random source")
		absence = flag.Float64("absence", simulate.DefaultAbsenceRate, "Chance a player misses a week")
		workers = flag.Int("workers", runtime.NumCPU(), "Matchups scored concurrently")
		method  = flag.String("method", string(settings.HandicapWorldHandicapSystem), "Handicap method")
		lookup  = flag.String("lookup", "", "YAML bracket table for legacy_lookup_table")
		dsn     = flag.String("dsn", "", "Postgres URL; in-memory store when empty")
		logFile = flag.String("log", "", "Also write logs to this file")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	closer, err := simulate.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)

	cfg := &simulate.Config{
		Players:      *players,
		Weeks:        *weeks,
		SessionEvery: *session,
		Seed:         *seed,
		AbsenceRate:  *absence,
		Workers:      *workers,
		Verbose:      *verbose,
		Settings:     settings.Default(),
	}
	cfg.Settings.HandicapMethod = settings.HandicapMethod(*method)

	err = run(ctx, cfg, *dsn, *lookup)
	if err != nil {
		logger.Get().Error(ctx, "simulation failed", logger.Error(err))
	}
	cancel()
	_ = closer.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *simulate.Config, dsn, lookup string) error {
	if err := cfg.Settings.Validate(); err != nil {
		return err
	}

	var calcOpts []handicap.Option
	if lookup != "" {
		table, err := config.LoadLookupTable(lookup)
		if err != nil {
			return err
		}
		calcOpts = append(calcOpts, handicap.WithLookupTable(table))
	}

	store, err := openStore(ctx, dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := app.New(
		app.WithStore(store),
		app.WithCalculator(handicap.NewCalculator(calcOpts...)),
		app.WithDefaultSettings(cfg.Settings),
		app.WithBulkConcurrency(cfg.Workers),
	)
	_, err = simulate.Run(ctx, store, svc, cfg)
	return err
}

func openStore(ctx context.Context, dsn string) (repository.Store, error) {
	if dsn == "" {
		return repository.NewMemoryStore(), nil
	}
	if err := postgres.Migrate(dsn); err != nil {
		return nil, err
	}
	return postgres.Open(ctx, dsn, postgres.WithLogger(logger.Get().Named("postgres")))
}
