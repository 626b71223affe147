package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	unreadNamespace        = "notifications:unread"
	unreadVersionNamespace = "notifications:unread-version"
	unreadTTL              = 10 * time.Minute
)

// UnreadCounter keeps each user's unread notification count in Redis.
// Entries expire on their own so a missed invalidation heals. Every
// invalidation bumps a per-user version; a fill computed before the bump is
// dropped instead of overwriting the invalidation.
type UnreadCounter struct {
	cache *Cache
	ttl   time.Duration
}

func NewUnreadCounter(c *Cache) *UnreadCounter {
	return &UnreadCounter{cache: c, ttl: unreadTTL}
}

func (u *UnreadCounter) Get(ctx context.Context, userID string) (int64, bool, error) {
	raw, err := u.cache.Get(ctx, unreadNamespace, userID)
	if errors.Is(err, ErrMiss) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt unread count for %s: %w", userID, err)
	}
	return n, true, nil
}

// Version must be read before counting in the database.
func (u *UnreadCounter) Version(ctx context.Context, userID string) (int64, error) {
	return u.cache.GetInt(ctx, unreadVersionNamespace, userID)
}

// SetIfVersion stores count unless the user was invalidated since version was
// read. It reports whether the value was stored.
func (u *UnreadCounter) SetIfVersion(ctx context.Context, userID string, count, version int64) (bool, error) {
	err := u.cache.SetIfVersion(ctx, unreadNamespace, userID, count, u.ttl, unreadVersionNamespace, version)
	if errors.Is(err, ErrStale) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (u *UnreadCounter) Invalidate(ctx context.Context, userID string) error {
	if _, err := u.cache.Incr(ctx, unreadVersionNamespace, userID); err != nil {
		return err
	}
	return u.cache.Delete(ctx, unreadNamespace, userID)
}
