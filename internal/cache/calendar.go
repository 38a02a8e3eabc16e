package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// CalendarCache stores rendered calendar payloads per room and week.
// Invalidation bumps a per-room version counter instead of scanning keys;
// stale entries simply age out via TTL.
type CalendarCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCalendarCache returns nil when no Redis client is available; all methods
// are nil-safe.
func NewCalendarCache(rdb *redis.Client, ttl time.Duration) *CalendarCache {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	return &CalendarCache{rdb: rdb, ttl: ttl}
}

func (c *CalendarCache) Get(ctx context.Context, view string, roomID uint, week time.Time) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	payload, err := c.rdb.Get(ctx, c.key(ctx, view, roomID, week)).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

func (c *CalendarCache) Set(ctx context.Context, view string, roomID uint, week time.Time, payload []byte) {
	if c == nil {
		return
	}
	c.rdb.Set(ctx, c.key(ctx, view, roomID, week), payload, c.ttl)
}

// Invalidate drops every cached week of the room by bumping its version.
func (c *CalendarCache) Invalidate(ctx context.Context, roomID uint) {
	if c == nil {
		return
	}
	c.rdb.Incr(ctx, versionKey(roomID))
}

func (c *CalendarCache) key(ctx context.Context, view string, roomID uint, week time.Time) string {
	ver, _ := c.rdb.Get(ctx, versionKey(roomID)).Int64()
	return fmt.Sprintf("calendar:%s:%d:%d:%s", view, roomID, ver, week.Format("2006-01-02"))
}

func versionKey(roomID uint) string {
	return fmt.Sprintf("calendar:ver:%d", roomID)
}
