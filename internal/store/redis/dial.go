package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/summon/internal/logger"
)

// ErrUnavailable is returned when the server does not answer within the
// dial timeout. Callers fall back to local files.
var ErrUnavailable = errors.New("redis unavailable")

// DefaultDialTimeout bounds the whole connect attempt. A launcher cannot
// sit waiting for an unreachable cache.
const DefaultDialTimeout = time.Second

// DialOptions describes the Redis server holding the snapshot and usage keys.
type DialOptions struct {
	Addr     string        // ex: "localhost:6379"
	Username string        // optional
	Password string        // optional
	DB       int           // Redis DB number
	Timeout  time.Duration // dial + first ping, DefaultDialTimeout when zero
}

// Dial connects and checks the server with a single ping bounded by
// opts.Timeout. There is no retry loop: the process is short-lived and
// the file backend is always available instead.
func Dial(ctx context.Context, opts DialOptions, log logger.Logger) (*Store, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultDialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Username:    opts.Username,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.Timeout,
		PoolSize:    2,
	})

	start := time.Now()
	pingCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w at %s: %w", ErrUnavailable, opts.Addr, err)
	}

	log.Debug("connected to redis",
		logger.String("addr", opts.Addr),
		logger.Int("db", opts.DB),
		logger.Duration("elapsed", time.Since(start).Round(time.Millisecond)))

	return NewStore(client), nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
