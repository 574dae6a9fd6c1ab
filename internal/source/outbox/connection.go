// Package outbox adapts github.com/jackc/pgx/v5 and golang-migrate/migrate/v4
// into a relabuf.PullSource[Record] backed by the transactional outbox
// pattern: a table of unprocessed rows the Source claims one at a time.
package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/let4be/relabuf/internal/platform/logging"
	"github.com/let4be/relabuf/pkg/errors"
)

const (
	maxConnectRetries  = 5
	initialRetryDelay  = 1 * time.Second
	defaultMaxConns    = 10
	defaultMinConns    = 2
	defaultConnMaxLife = 1 * time.Hour
)

// NewPool creates a pgxpool.Pool for dsn, retrying with exponential backoff
// and verifying connectivity with a Ping before returning.
func NewPool(ctx context.Context, dsn string, maxConns, minConns int32, connMaxLifetime time.Duration, logger logging.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigInvalid, "outbox: failed to parse dsn")
	}

	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	} else {
		poolConfig.MaxConns = defaultMaxConns
	}
	if minConns > 0 {
		poolConfig.MinConns = minConns
	} else {
		poolConfig.MinConns = defaultMinConns
	}
	if connMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = connMaxLifetime
	} else {
		poolConfig.MaxConnLifetime = defaultConnMaxLife
	}

	var pool *pgxpool.Pool
	retryDelay := initialRetryDelay

	for attempt := 1; attempt <= maxConnectRetries; attempt++ {
		logger.Info("attempting outbox database connection",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", maxConnectRetries))

		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err = pgxpool.NewWithConfig(connectCtx, poolConfig)
		cancel()

		if err == nil {
			pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
			err = pool.Ping(pingCtx)
			pingCancel()
			if err == nil {
				logger.Info("outbox database connection established")
				return pool, nil
			}
			pool.Close()
			logger.Warn("outbox database ping failed", logging.Int("attempt", attempt), logging.Err(err))
		} else {
			logger.Warn("failed to create outbox connection pool", logging.Int("attempt", attempt), logging.Err(err))
		}

		if attempt == maxConnectRetries {
			return nil, errors.Wrap(err, errors.CodeSourceUnavailable, fmt.Sprintf("outbox: failed to connect after %d attempts", maxConnectRetries))
		}

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		retryDelay *= 2
	}

	return nil, errors.New(errors.CodeSourceUnavailable, "outbox: connection retry logic exhausted")
}
