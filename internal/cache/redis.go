// Package cache holds the Redis-backed pieces of the service: the post-list
// cache and the session revocation denylist. Redis is an accelerator here,
// not a dependency; everything degrades gracefully when it is absent.
package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is nil whenever Redis is unreachable. Every helper in this package
// treats a nil client as a permanent cache miss.
var Client *redis.Client

// InitRedis dials addr and verifies the connection with a short ping. A
// failed ping discards the client and the service runs uncached.
func InitRedis(addr string) {
	Client = redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable, continuing without cache: %v", err)
		Client = nil
	}
}

// GetClient exposes the shared client for callers that need raw commands,
// like the rate limiter.
func GetClient() *redis.Client {
	return Client
}
