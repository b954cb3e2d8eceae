package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

var errNoClient = errors.New("Redis client is not initialized")

type Cache struct {
	client *redis.Client
}

// NewCache wraps an initialized Redis client.
func NewCache(client *redis.Client) (*Cache, error) {
	if client == nil {
		return nil, errNoClient
	}
	return &Cache{client: client}, nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if c.client == nil {
		return errNoClient
	}
	return c.client.Del(ctx, key).Err()
}

func (c *Cache) DeleteAll(ctx context.Context, pattern string) error {
	if c.client == nil {
		return errNoClient
	}
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if c.client == nil {
		return errNoClient
	}
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Get returns "" and no error for a missing key.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if c.client == nil {
		return "", errNoClient
	}
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// Take returns the value of key and deletes it, "" when missing.
func (c *Cache) Take(ctx context.Context, key string) (string, error) {
	if c.client == nil {
		return "", errNoClient
	}
	val, err := c.client.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}
