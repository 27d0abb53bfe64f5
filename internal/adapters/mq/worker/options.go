package worker

import (
	"github.com/okian/fairway/internal/domain/dedupe"
	"github.com/okian/fairway/pkg/logger"
)

// Option applies a configuration option to a Worker.
type Option func(*Worker)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithTracker clears coalesced keys as their jobs start.
func WithTracker(t dedupe.Tracker) Option {
	return func(w *Worker) {
		w.tracker = t
	}
}
