package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const (
	redisBackend       = "redis"
	defaultKeyPrefix   = "fairway"
	defaultTripFailure = 5
)

// Redis caches values in redis behind a circuit breaker. Each player keeps
// an index set of its value keys and each season an index of player sets,
// so invalidation deletes exactly what was written.
type Redis struct {
	client  redis.UniversalClient
	breaker *gobreaker.CircuitBreaker
	prefix  string
	ttl     time.Duration
	logger  logger.Logger
}

// RedisOption configures a Redis cache.
type RedisOption func(*redisConfig)

type redisConfig struct {
	prefix      string
	ttl         time.Duration
	timeout     time.Duration
	maxRequests uint32
	tripAfter   uint32
	logger      logger.Logger
}

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(prefix string) RedisOption {
	return func(c *redisConfig) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithRedisTTL expires values and index sets after d.
func WithRedisTTL(d time.Duration) RedisOption {
	return func(c *redisConfig) { c.ttl = d }
}

// WithBreaker sets how long the breaker stays open and how many probes it
// lets through while half-open.
func WithBreaker(timeout time.Duration, maxRequests uint32) RedisOption {
	return func(c *redisConfig) {
		if timeout > 0 {
			c.timeout = timeout
		}
		if maxRequests > 0 {
			c.maxRequests = maxRequests
		}
	}
}

// WithTripAfter opens the breaker after n consecutive failures.
func WithTripAfter(n uint32) RedisOption {
	return func(c *redisConfig) {
		if n > 0 {
			c.tripAfter = n
		}
	}
}

// WithRedisLogger sets the logger.
func WithRedisLogger(l logger.Logger) RedisOption {
	return func(c *redisConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewRedis wraps client. The caller owns the client's lifecycle.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	cfg := redisConfig{
		prefix:      defaultKeyPrefix,
		ttl:         time.Hour,
		timeout:     30 * time.Second,
		maxRequests: 1,
		tripAfter:   defaultTripFailure,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Get().Named("cache.redis")
	}

	r := &Redis{client: client, prefix: cfg.prefix, ttl: cfg.ttl, logger: cfg.logger}
	name := cfg.prefix + "-redis"
	r.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.maxRequests,
		Timeout:     cfg.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.tripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(name, int(to))
			r.logger.Warn(context.Background(), "cache breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	metrics.UpdateBreakerState(name, int(gobreaker.StateClosed))
	return r
}

// BreakerState reports the breaker's current state.
func (r *Redis) BreakerState() gobreaker.State { return r.breaker.State() }

func (r *Redis) valueKey(k Key) string  { return r.prefix + ":v:" + k.String() }
func (r *Redis) playerIndex(seasonID, playerID uuid.UUID) string {
	return r.prefix + ":idx:" + seasonID.String() + ":" + playerID.String()
}
func (r *Redis) seasonIndex(seasonID uuid.UUID) string {
	return r.prefix + ":idx:" + seasonID.String()
}

func (r *Redis) Get(ctx context.Context, k Key) (float64, bool) {
	res, err := r.breaker.Execute(func() (interface{}, error) {
		raw, err := r.client.Get(ctx, r.valueKey(k)).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		r.fail(ctx, "get", err)
		metrics.RecordCacheMiss(redisBackend)
		return 0, false
	}
	raw, ok := res.(string)
	if !ok {
		metrics.RecordCacheMiss(redisBackend)
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.fail(ctx, "decode", err)
		metrics.RecordCacheMiss(redisBackend)
		return 0, false
	}
	metrics.RecordCacheHit(redisBackend)
	return v, true
}

func (r *Redis) Set(ctx context.Context, k Key, v float64) {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		playerIdx := r.playerIndex(k.SeasonID, k.PlayerID)
		seasonIdx := r.seasonIndex(k.SeasonID)
		key := r.valueKey(k)

		pipe := r.client.TxPipeline()
		pipe.Set(ctx, key, strconv.FormatFloat(v, 'g', -1, 64), r.ttl)
		pipe.SAdd(ctx, playerIdx, key)
		pipe.SAdd(ctx, seasonIdx, playerIdx)
		if r.ttl > 0 {
			pipe.Expire(ctx, playerIdx, r.ttl)
			pipe.Expire(ctx, seasonIdx, r.ttl)
		}
		_, err := pipe.Exec(ctx)
		return nil, err
	})
	if err != nil {
		r.fail(ctx, "set", err)
	}
}

func (r *Redis) InvalidatePlayer(ctx context.Context, seasonID, playerID uuid.UUID) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.dropIndex(ctx, r.playerIndex(seasonID, playerID))
	})
	if err != nil {
		r.fail(ctx, "invalidate_player", err)
		return fmt.Errorf("%w: player %s: %w", ErrInvalidate, playerID, err)
	}
	return nil
}

func (r *Redis) InvalidateSeason(ctx context.Context, seasonID uuid.UUID) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		seasonIdx := r.seasonIndex(seasonID)
		players, err := r.client.SMembers(ctx, seasonIdx).Result()
		if err != nil {
			return nil, err
		}
		for _, idx := range players {
			if err := r.dropIndex(ctx, idx); err != nil {
				return nil, err
			}
		}
		return nil, r.client.Del(ctx, seasonIdx).Err()
	})
	if err != nil {
		r.fail(ctx, "invalidate_season", err)
		return fmt.Errorf("%w: season %s: %w", ErrInvalidate, seasonID, err)
	}
	return nil
}

// dropIndex deletes every key listed in the index set and the set itself.
func (r *Redis) dropIndex(ctx context.Context, idx string) error {
	keys, err := r.client.SMembers(ctx, idx).Result()
	if err != nil {
		return err
	}
	return r.client.Del(ctx, append(keys, idx)...).Err()
}

func (r *Redis) fail(ctx context.Context, op string, err error) {
	metrics.RecordCacheError(redisBackend, op)
	r.logger.Debug(ctx, "cache operation failed", logger.String("op", op), logger.Error(err))
}
