// Package redisqueue adapts github.com/redis/go-redis/v9 into a
// relabuf.PullSource[[]byte] backed by a blocking list pop.
package redisqueue

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/let4be/relabuf/internal/platform/logging"
	"github.com/let4be/relabuf/pkg/errors"
)

// Config holds the Redis connection parameters for the pull source.
type Config struct {
	Addr         string
	Password     string
	DB           int
	Queue        string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Validate rejects a Config the Source cannot use.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New(errors.CodeConfigInvalid, "redisqueue: addr required")
	}
	if c.Queue == "" {
		return errors.New(errors.CodeConfigInvalid, "redisqueue: queue required")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 3 * time.Second
	}
}

// Source is a relabuf.PullSource[[]byte] backed by a Redis list: Pull issues
// a blocking BLPOP against the configured queue key. Redis LPOP/BLPOP is
// destructive on dequeue, so this collaborator has no acknowledgement
// concept — Confirm and Return are both no-ops (§C.3), demonstrating that
// the core's retry protocol is purely in-memory.
type Source struct {
	rdb    redis.UniversalClient
	queue  string
	logger logging.Logger
}

// NewSource dials Redis and returns a ready-to-pull Source. It pings the
// server once at construction so configuration errors surface immediately
// rather than on the first Pull.
func NewSource(cfg Config, logger logging.Logger) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, errors.Wrap(err, errors.CodeSourceUnavailable, "redisqueue: ping failed")
	}

	logger.Info("redis queue source connected", logging.String("addr", cfg.Addr), logging.String("queue", cfg.Queue))

	return &Source{rdb: rdb, queue: cfg.Queue, logger: logger}, nil
}

// Pull implements relabuf.PullSource[[]byte]. It blocks on BLPOP until an
// item is available, ctx is cancelled, or the server reports an error.
func (s *Source) Pull(ctx context.Context) ([]byte, error) {
	res, err := s.rdb.BLPop(ctx, 0, s.queue).Result()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(err, errors.CodeSourceUnavailable, "redisqueue: blpop failed")
	}
	// BLPop returns [key, value]; the value is always the second element.
	if len(res) < 2 {
		return nil, errors.New(errors.CodeSourceUnavailable, "redisqueue: unexpected blpop reply shape")
	}
	return []byte(res[1]), nil
}

// Confirm is a no-op: BLPOP already removed the item from Redis, so there
// is nothing left to acknowledge.
func (s *Source) Confirm([][]byte) {}

// Return is a no-op for the same reason: there is no Redis-side state to
// roll back, the Release State's own pending buffer already holds the item.
func (s *Source) Return([][]byte) {}

// Close releases the underlying connection pool.
func (s *Source) Close() error {
	return s.rdb.Close()
}
