package api

import "github.com/okian/fairway/pkg/logger"

// Option configures a Server.
type Option func(*Server)

// WithStats exposes GET /stats from p.
func WithStats(p StatsProvider) Option {
	return func(s *Server) {
		s.stats = p
	}
}

// WithHealth replaces the default health handler.
func WithHealth(h *HealthHandler) Option {
	return func(s *Server) {
		s.health = h
	}
}

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}
