package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// NewClient connects to Redis. A nil return means caching is disabled and the
// service degrades to hitting the database on every calendar read.
func NewClient(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
