package simulate

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/fairway/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends logs to stdout and, when logFile is set, to the file
// as well. The returned closer releases the file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	out := io.Writer(os.Stdout)
	var closer io.Closer = io.NopCloser(nil)
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return nil, err
		}
	}
	return closer, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Fairway League Simulator
========================

Seeds a random league, plays every week through the scoring engine and
checks that bulk and single-player results agree.

Usage:
  go run ./cmd/simulate [options]

Options:
  -players int
        Number of players, rounded up to even (default 16)
  -weeks int
        Number of weeks in the season (default 12)
  -session int
        Weeks per session, 0 for a single session (default 6)
  -seed uint
        Seed for the random source (default 42)
  -absence float
        Chance a player misses a week (default 0.08)
  -workers int
        Matchups scored concurrently (default CPU cores)
  -method string
        Handicap method: world_handicap_system, simple_average or
        legacy_lookup_table (default world_handicap_system)
  -lookup string
        YAML bracket table for legacy_lookup_table
  -dsn string
        Postgres URL; the in-memory store is used when empty
  -log string
        Also write logs to this file
  -verbose
        Log every matchup and the full standings
  -help
        Show this help message

Examples:
  # A default season in memory
  go run ./cmd/simulate

  # A long season against Postgres
  go run ./cmd/simulate -weeks 30 -players 40 -dsn postgres://localhost/fairway

  # Compare handicap methods on the same draw
  go run ./cmd/simulate -seed 7 -method simple_average
`)
}
