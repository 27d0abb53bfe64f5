// Package config defines process configuration and its loaders.
package config

import (
	"runtime"
	"time"

	"github.com/okian/fairway/internal/domain/settings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is json or text.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// ShutdownTimeout bounds graceful shutdown of the server and workers.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// DatabaseURL selects the Postgres store. Empty runs in memory.
	DatabaseURL string `koanf:"database_url"`
	DBMaxConns  int    `koanf:"db_max_conns"`
	// Migrate applies embedded migrations at startup.
	Migrate bool `koanf:"migrate"`

	// RedisAddr selects the Redis cache. Empty caches in memory.
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`
	// BreakerTimeout is how long the Redis breaker stays open.
	BreakerTimeout   time.Duration `koanf:"breaker_timeout"`
	BreakerTripAfter int           `koanf:"breaker_trip_after"`

	// QueueSize bounds the recompute queue.
	QueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of recompute workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize bounds the pending-recompute tracker.
	DedupeSize int `koanf:"dedupe_size"`
	// BulkConcurrency caps the fan-out of season-wide reads.
	BulkConcurrency int `koanf:"bulk_concurrency"`
	// BulkThreshold is the roster size at or below which bulk reads stay
	// sequential.
	BulkThreshold int `koanf:"bulk_threshold"`

	// LookupTable is a YAML file of legacy handicap brackets.
	LookupTable string `koanf:"lookup_table"`
	// WHSAdjustment overrides the league's WHS factor when positive.
	WHSAdjustment float64 `koanf:"whs_adjustment"`

	// League holds the settings used for seasons with none stored.
	League settings.LeagueSettings `koanf:"league"`
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "json",
		Addr:             ":9080",
		ShutdownTimeout:  30 * time.Second,
		DBMaxConns:       10,
		Migrate:          true,
		CacheTTL:         time.Hour,
		BreakerTimeout:   30 * time.Second,
		BreakerTripAfter: 5,
		QueueSize:        10_000,
		WorkerCount:      runtime.NumCPU(),
		DedupeSize:       50_000,
		BulkConcurrency:  runtime.NumCPU(),
		BulkThreshold:    2,
		League:           settings.Default(),
	}
}
