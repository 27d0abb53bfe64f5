// Package service is the scoring and handicap engine's façade. It loads
// league data through the repository ports, runs the pure domain engines
// and persists the results.
package service

import (
	"context"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/adapters/cache"
	"github.com/okian/fairway/internal/adapters/mq/queue"
	"github.com/okian/fairway/internal/adapters/mq/worker"
	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/dedupe"
	"github.com/okian/fairway/internal/domain/handicap"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/settings"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

const (
	defaultQueueSize     = 10000
	defaultDedupeSize    = 50000
	defaultBulkThreshold = 2
)

// Service implements the engine operations exposed over HTTP and used by
// the recompute workers.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	cache      cache.Cache
	calculator *handicap.Calculator
	defaults   settings.LeagueSettings

	tracker dedupe.Tracker
	queue   *queue.InMemoryQueue
	pool    *worker.Pool

	workerCount     int
	queueSize       int
	dedupeSize      int
	bulkConcurrency int
	bulkThreshold   int

	locks keyedMutex
	gens  generations

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the league store. Defaults to an empty memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCache sets the value cache. Defaults to an in-process cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithCalculator sets the handicap calculator, which carries the lookup
// table and WHS adjustment.
func WithCalculator(c *handicap.Calculator) Option {
	return func(s *Service) {
		if c != nil {
			s.calculator = c
		}
	}
}

// WithDefaultSettings sets the settings used by seasons without their own.
func WithDefaultSettings(cfg settings.LeagueSettings) Option {
	return func(s *Service) {
		s.defaults = cfg
	}
}

// WithWorkerCount sets the number of recompute workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the recompute queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize caps the number of coalesced pending recomputes.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithBulkConcurrency limits parallel per-player computations in bulk calls.
func WithBulkConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bulkConcurrency = n
		}
	}
}

// WithBulkThreshold sets the roster size at or below which bulk calls use
// the per-player path.
func WithBulkThreshold(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.bulkThreshold = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Start launches the recompute workers; without
// them recomputes run inline.
func New(opts ...Option) *Service {
	s := &Service{
		defaults:        settings.Default(),
		workerCount:     runtime.NumCPU(),
		queueSize:       defaultQueueSize,
		dedupeSize:      defaultDedupeSize,
		bulkConcurrency: runtime.NumCPU(),
		bulkThreshold:   defaultBulkThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.cache == nil {
		s.cache = cache.NewMemory()
	}
	if s.calculator == nil {
		s.calculator = handicap.NewCalculator()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("engine")
	}
	s.tracker = dedupe.NewTracker(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Store exposes the underlying store for seeding and admin tooling.
func (s *Service) Store() repository.Store { return s.store }

// Start launches the recompute worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s,
		worker.WithTracker(s.tracker),
		worker.WithLogger(s.logger.Named("worker")),
	)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "engine started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("bulkConcurrency", s.bulkConcurrency),
	)
	return nil
}

// Stop drains queued recomputes and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping engine")

	err := s.pool.Shutdown(ctx)
	s.cancel()
	s.started = false
	s.pool, s.queue = nil, nil
	return err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           s.started,
		"workerCount":       s.workerCount,
		"queueSize":         s.queueSize,
		"bulkConcurrency":   s.bulkConcurrency,
		"pendingRecomputes": s.tracker.Size(),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(context.Background())
		stats["processedRecomputes"] = s.pool.Processed()
	}
	return stats
}

// requestRecompute queues a refresh for each player. Requests for players
// already pending are coalesced. Without running workers, or when the
// queue is full, the recompute runs inline. Recompute failures are logged
// the same way on both paths; only cancellation is returned.
func (s *Service) requestRecompute(ctx context.Context, seasonID uuid.UUID, playerIDs ...uuid.UUID) error {
	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()

	for _, pid := range playerIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		job := model.RecomputeJob{SeasonID: seasonID, PlayerID: pid}
		if q != nil {
			if s.tracker.MarkPending(ctx, job.Key()) {
				metrics.RecordJobCoalesced()
				continue
			}
			if q.Enqueue(ctx, job) {
				continue
			}
			s.tracker.Done(ctx, job.Key())
			s.logger.Warn(ctx, "recompute queue full, running inline", logger.String("job", job.Key()))
		}
		if err := s.RecomputePlayer(ctx, seasonID, pid); err != nil {
			metrics.RecordJobError()
			s.logger.Warn(ctx, "inline recompute failed", logger.String("job", job.Key()), logger.Error(err))
		}
	}
	return nil
}

// keyedMutex serializes work per key without holding a global lock.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
