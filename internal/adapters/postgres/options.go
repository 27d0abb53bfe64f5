package postgres

import (
	"time"

	"github.com/okian/fairway/pkg/logger"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithMaxConns caps the pool size.
func WithMaxConns(n int32) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxConns = n
		}
	}
}

// WithMinConns keeps n connections warm.
func WithMinConns(n int32) Option {
	return func(s *Store) {
		if n >= 0 {
			s.minConns = n
		}
	}
}

// WithMaxConnLifetime recycles connections older than d.
func WithMaxConnLifetime(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.maxLifetime = d
		}
	}
}
