// Package cache wraps Redis with namespaced keys.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrMiss is returned by Get when the key does not exist.
	ErrMiss = errors.New("cache miss")
	// ErrStale is returned by SetIfVersion when the version key moved.
	ErrStale = errors.New("cache version changed")
)

type Cache struct {
	client redis.UniversalClient
}

func NewCache(addr, password string) *Cache {
	return NewFromClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	}))
}

func NewFromClient(client redis.UniversalClient) *Cache {
	return &Cache{client: client}
}

func key(namespace, k string) string {
	return namespace + ":" + k
}

func (c *Cache) Set(ctx context.Context, namespace, k string, value interface{}, ttl time.Duration) error {
	return c.client.Set(ctx, key(namespace, k), value, ttl).Err()
}

func (c *Cache) Get(ctx context.Context, namespace, k string) (string, error) {
	v, err := c.client.Get(ctx, key(namespace, k)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

// GetInt reads an integer key. A missing key reads as zero.
func (c *Cache) GetInt(ctx context.Context, namespace, k string) (int64, error) {
	n, err := c.client.Get(ctx, key(namespace, k)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (c *Cache) Incr(ctx context.Context, namespace, k string) (int64, error) {
	return c.client.Incr(ctx, key(namespace, k)).Result()
}

// SetIfVersion writes namespace:k only while versionNamespace:k still holds
// version. The check and the write run in one WATCH/MULTI transaction.
func (c *Cache) SetIfVersion(ctx context.Context, namespace, k string, value interface{}, ttl time.Duration, versionNamespace string, version int64) error {
	versionKey := key(versionNamespace, k)
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != version {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(namespace, k), value, ttl)
			return nil
		})
		return err
	}, versionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	return err
}

func (c *Cache) Delete(ctx context.Context, namespace, k string) error {
	return c.client.Del(ctx, key(namespace, k)).Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
