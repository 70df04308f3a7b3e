package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CalendarCache is a read-through cache for computed availability calendars.
// It is advisory only: booking admission never consults it, and invalidation
// after writes is best-effort. A nil client disables caching entirely.
type CalendarCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCalendarCache(client *redis.Client, ttl time.Duration) *CalendarCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CalendarCache{client: client, ttl: ttl}
}

func (c *CalendarCache) key(packageID int64, from, to time.Time) string {
	return fmt.Sprintf("calendar:%d:%s:%s", packageID, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

// Get unmarshals a cached calendar into dest. Returns false on miss or any
// Redis/decoding problem; callers fall through to a fresh computation.
func (c *CalendarCache) Get(ctx context.Context, packageID int64, from, to time.Time, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}

	raw, err := c.client.Get(ctx, c.key(packageID, from, to)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *CalendarCache) Set(ctx context.Context, packageID int64, from, to time.Time, value interface{}) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.key(packageID, from, to), raw, c.ttl).Err()
}

// InvalidatePackage drops every cached calendar range for the package.
func (c *CalendarCache) InvalidatePackage(ctx context.Context, packageID int64) {
	if c == nil || c.client == nil {
		return
	}

	pattern := fmt.Sprintf("calendar:%d:*", packageID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		_ = c.client.Del(ctx, iter.Val()).Err()
	}
}
