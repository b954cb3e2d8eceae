package database

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrLockNotAcquired is returned when a lock stayed busy for the whole wait.
var ErrLockNotAcquired = errors.New("failed to acquire lock")

type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	MinIdleConns int
	ReadTimeout  time.Duration
	MaxRetries   int
}

// DefaultRedisConfig fills the pool settings used in production.
func DefaultRedisConfig(url string) RedisConfig {
	return RedisConfig{
		URL:          url,
		PoolSize:     10,
		DialTimeout:  30 * time.Second,
		MinIdleConns: 5,
		ReadTimeout:  10 * time.Second,
		MaxRetries:   3,
	}
}

// NewRedisClient creates a Redis client with the provided configuration and
// pings it.
func NewRedisClient(ctx context.Context, config RedisConfig, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = config.PoolSize
	opt.MinIdleConns = config.MinIdleConns
	opt.DialTimeout = config.DialTimeout
	opt.ReadTimeout = config.ReadTimeout
	opt.MaxRetries = config.MaxRetries

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis server: %w", err)
	}

	log.Info().
		Int("pool_size", config.PoolSize).
		Int("min_idle_conns", config.MinIdleConns).
		Dur("dial_timeout", config.DialTimeout).
		Dur("read_timeout", config.ReadTimeout).
		Int("max_retries", config.MaxRetries).
		Msg("redis client initialized")
	return client, nil
}

const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

var releaseScript = redis.NewScript(releaseLockScript)

// Locker hands out SETNX based distributed locks. A busy lock is polled
// with a jittered delay between MinDelay and MaxDelay until Wait runs out.
type Locker struct {
	client   *redis.Client
	log      zerolog.Logger
	TTL      time.Duration
	Wait     time.Duration
	MinDelay time.Duration
	MaxDelay time.Duration
}

func NewLocker(client *redis.Client, log zerolog.Logger) *Locker {
	return &Locker{
		client:   client,
		log:      log,
		TTL:      10 * time.Second,
		Wait:     10 * time.Second,
		MinDelay: 10 * time.Millisecond,
		MaxDelay: 50 * time.Millisecond,
	}
}

func (l *Locker) backoff() time.Duration {
	if l.MaxDelay <= l.MinDelay {
		return l.MinDelay
	}
	return l.MinDelay + time.Duration(rand.Int63n(int64(l.MaxDelay-l.MinDelay)))
}

// Acquire takes key, polling until Wait elapses or ctx is done. The returned
// func releases the lock; release failures are logged only.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	value := uuid.New().String()
	deadline := time.NewTimer(l.Wait)
	defer deadline.Stop()

	var lastErr error
	for {
		locked, err := l.client.SetNX(ctx, key, value, l.TTL).Result()
		if err == nil && locked {
			break
		}
		if err != nil {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrLockNotAcquired, key, ctx.Err())
		case <-deadline.C:
			if lastErr != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrLockNotAcquired, key, lastErr)
			}
			return nil, fmt.Errorf("%w: %s", ErrLockNotAcquired, key)
		case <-time.After(l.backoff()):
		}
	}

	return func() {
		if err := l.release(context.Background(), key, value); err != nil {
			l.log.Warn().Err(err).Str("key", key).Msg("failed to release lock")
		}
	}, nil
}

// release deletes key only while it still holds value.
func (l *Locker) release(ctx context.Context, key, value string) error {
	result, err := releaseScript.Run(ctx, l.client, []string{key}, value).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if result == 0 {
		return errors.New("lock release failed: not the lock owner")
	}
	return nil
}

// LogPoolStats logs the connection pool statistics.
func LogPoolStats(client *redis.Client, log zerolog.Logger) {
	stats := client.PoolStats()
	log.Debug().
		Uint32("total", stats.TotalConns).
		Uint32("idle", stats.IdleConns).
		Uint32("stale", stats.StaleConns).
		Msg("redis pool stats")
}
