// Package postgres is the PostgreSQL implementation of the league store.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/pkg/logger"
)

const pingTimeout = 5 * time.Second

// Store runs repository units of work on a pgx pool.
type Store struct {
	pool        *pgxpool.Pool
	maxConns    int32
	minConns    int32
	maxLifetime time.Duration
	logger      logger.Logger
}

var _ repository.Store = (*Store)(nil)

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	s := &Store{maxConns: 10, maxLifetime: time.Hour}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("postgres")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = s.maxConns
	cfg.MinConns = s.minConns
	cfg.MaxConnLifetime = s.maxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	s.pool = pool

	if err := s.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s.logger.Info(ctx, "database connected",
		logger.String("host", cfg.ConnConfig.Host),
		logger.String("database", cfg.ConnConfig.Database))
	return s, nil
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.pool.Ping(ctx)
}

// View runs fn in a read-only repeatable-read transaction so every read
// sees the same snapshot.
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, r repository.Reader) error) error {
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	return pgx.BeginTxFunc(ctx, s.pool, opts, func(tx pgx.Tx) error {
		return fn(ctx, &pgTx{tx: tx})
	})
}

// RunInTx runs fn in a read-write transaction, rolling back on error.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	opts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}
	return pgx.BeginTxFunc(ctx, s.pool, opts, func(tx pgx.Tx) error {
		return fn(ctx, &pgTx{tx: tx})
	})
}

// Close releases the pool.
func (s *Store) Close() error {
	s.logger.Info(context.Background(), "closing database pool")
	s.pool.Close()
	return nil
}
