package store

import (
	"context"
	"time"

	"ClinicDesk/cache"
	"ClinicDesk/database"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	cacheKeyPrefix = "collection_cache:"
	lockKeyPrefix  = "collection_lock:"

	// CollectionCacheExpiry bounds how long a cached collection may outlive a
	// write made by a process that bypassed this driver.
	CollectionCacheExpiry = 7 * 24 * time.Hour
)

// RedisDriver decorates another driver with a read cache and a distributed
// lock around writes, so several API processes can share one backend.
// Writers inside one process queue on a local mutex before contending for
// the Redis lock.
type RedisDriver struct {
	next   Driver
	cache  *cache.Cache
	locker *database.Locker
	local  collectionLocks
	log    zerolog.Logger
}

func NewRedisDriver(next Driver, c *cache.Cache, locker *database.Locker, log zerolog.Logger) *RedisDriver {
	return &RedisDriver{next: next, cache: c, locker: locker, log: log}
}

func cacheKey(name string) string { return cacheKeyPrefix + name }
func lockKey(name string) string  { return lockKeyPrefix + name }

func (d *RedisDriver) Load(ctx context.Context, name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	cached, err := d.cache.Get(ctx, cacheKey(name))
	if err != nil {
		d.log.Warn().Err(err).Str("collection", name).Msg("failed to get collection from cache")
	} else if cached != "" {
		if data, err := normalize([]byte(cached)); err == nil {
			return data, nil
		}
		d.log.Warn().Str("collection", name).Msg("discarding malformed cached collection")
	}

	data, err := d.next.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	d.remember(ctx, name, data)
	return data, nil
}

func (d *RedisDriver) Save(ctx context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	release, err := d.lock(ctx, name)
	if err != nil {
		return err
	}
	defer release()

	if err := d.next.Save(ctx, name, data); err != nil {
		d.forget(ctx, name)
		return err
	}
	d.remember(ctx, name, data)
	return nil
}

func (d *RedisDriver) Update(ctx context.Context, name string, fn UpdateFunc) error {
	if err := checkName(name); err != nil {
		return err
	}
	release, err := d.lock(ctx, name)
	if err != nil {
		return err
	}
	defer release()

	var written []byte
	err = d.next.Update(ctx, name, func(current []byte) ([]byte, error) {
		next, err := fn(current)
		written = next
		return next, err
	})
	if err != nil {
		// the backend may or may not hold the new value
		d.forget(ctx, name)
		return err
	}
	d.remember(ctx, name, written)
	return nil
}

// lock takes the local mutex and then the Redis lock for name.
func (d *RedisDriver) lock(ctx context.Context, name string) (func(), error) {
	local := d.local.get(name)
	local.Lock()
	release, err := d.locker.Acquire(ctx, lockKey(name))
	if err != nil {
		local.Unlock()
		return nil, errors.Wrapf(err, "failed to lock %s", name)
	}
	return func() {
		release()
		local.Unlock()
	}, nil
}

// Flush drops every cached collection.
func (d *RedisDriver) Flush(ctx context.Context) error {
	return d.cache.DeleteAll(ctx, cacheKeyPrefix+"*")
}

func (d *RedisDriver) Close() error {
	return d.next.Close()
}

func (d *RedisDriver) remember(ctx context.Context, name string, data []byte) {
	if err := d.cache.Set(ctx, cacheKey(name), data, CollectionCacheExpiry); err != nil {
		d.log.Warn().Err(err).Str("collection", name).Msg("failed to set collection in cache")
		d.forget(ctx, name)
	}
}

func (d *RedisDriver) forget(ctx context.Context, name string) {
	if err := d.cache.Delete(ctx, cacheKey(name)); err != nil {
		d.log.Warn().Err(err).Str("collection", name).Msg("failed to delete collection cache")
	}
}
