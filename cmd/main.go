package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/fairway/internal/adapters/cache"
	"github.com/okian/fairway/internal/adapters/http/api"
	"github.com/okian/fairway/internal/adapters/postgres"
	"github.com/okian/fairway/internal/adapters/repository"
	app "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/config"
	"github.com/okian/fairway/internal/domain/handicap"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "fairway exited", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// components are the wired dependencies of one process.
type components struct {
	store  repository.Store
	cache  cache.Cache
	svc    *app.Service
	health *api.HealthHandler
	close  []func()
}

func (c *components) shutdown() {
	for i := len(c.close) - 1; i >= 0; i-- {
		c.close[i]()
	}
}

// build wires the store, cache and engine selected by cfg.
func build(ctx context.Context, cfg *config.Config) (*components, error) {
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	c := &components{}
	var checks []api.NamedCheck

	if cfg.DatabaseURL != "" {
		if cfg.Migrate {
			if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
				return nil, err
			}
			log.Info(ctx, "migrations applied")
		}
		pg, err := postgres.Open(ctx, cfg.DatabaseURL,
			postgres.WithMaxConns(int32(cfg.DBMaxConns)),
			postgres.WithLogger(log.Named("postgres")))
		if err != nil {
			return nil, err
		}
		c.store = pg
		c.close = append(c.close, func() { _ = pg.Close() })
		checks = append(checks, api.NamedCheck{Name: "postgres", Pinger: pg})
	} else {
		log.Warn(ctx, "no database_url; running on the in-memory store")
		c.store = repository.NewMemoryStore()
	}

	if cfg.RedisAddr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		c.cache = cache.NewRedis(client,
			cache.WithRedisTTL(cfg.CacheTTL),
			cache.WithBreaker(cfg.BreakerTimeout, 1),
			cache.WithTripAfter(uint32(cfg.BreakerTripAfter)),
			cache.WithRedisLogger(log.Named("cache")))
		c.close = append(c.close, func() { _ = client.Close() })
		checks = append(checks, api.NamedCheck{Name: "redis", Pinger: redisPinger{client}})
	} else {
		c.cache = cache.NewMemory(cache.WithTTL(cfg.CacheTTL))
	}

	var calcOpts []handicap.Option
	if cfg.LookupTable != "" {
		table, err := config.LoadLookupTable(cfg.LookupTable)
		if err != nil {
			c.shutdown()
			return nil, err
		}
		calcOpts = append(calcOpts, handicap.WithLookupTable(table))
	}
	if cfg.WHSAdjustment > 0 {
		calcOpts = append(calcOpts, handicap.WithWHSAdjustment(cfg.WHSAdjustment))
	}

	c.svc = app.New(
		app.WithStore(c.store),
		app.WithCache(c.cache),
		app.WithCalculator(handicap.NewCalculator(calcOpts...)),
		app.WithDefaultSettings(cfg.League),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithBulkConcurrency(cfg.BulkConcurrency),
		app.WithBulkThreshold(cfg.BulkThreshold),
		app.WithLogger(log.Named("engine")),
	)
	c.health = api.NewHealthHandler(checks...)
	return c, nil
}

// run serves the API until ctx is cancelled, then drains the server and
// the recompute workers.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()
	c, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.shutdown()

	if err := c.svc.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	go startServiceMetricsUpdater(ctx, c.svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewServer(c.svc, api.WithStats(c.svc), api.WithHealth(c.health), api.WithLogger(log.Named("api"))).Routes(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := c.svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "engine shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

type redisPinger struct {
	client redis.UniversalClient
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// startServiceMetricsUpdater samples engine stats into gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if pending, ok := stats["pendingRecomputes"].(int64); ok {
		metrics.UpdatePendingRecomputes(int(pending))
	}
}
