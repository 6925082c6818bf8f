package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisNonceRegistry shares spent-nonce state across instances through
// Redis. SETNX gives the required atomicity: exactly one concurrent
// checkout with the same nonce observes a fresh nonce.
type RedisNonceRegistry struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisNonceRegistry wraps an existing Redis client. An empty
// keyPrefix falls back to the default.
func NewRedisNonceRegistry(client *redis.Client, keyPrefix string) *RedisNonceRegistry {
	if keyPrefix == "" {
		keyPrefix = "payment:nonce:"
	}
	return &RedisNonceRegistry{client: client, keyPrefix: keyPrefix}
}

// Spend records the nonce, returning false when it was already spent.
func (r *RedisNonceRegistry) Spend(ctx context.Context, nonce string, ttl time.Duration) (bool, error) {
	fresh, err := r.client.SetNX(ctx, r.keyPrefix+nonce, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record payment nonce: %w", err)
	}
	return fresh, nil
}

var _ NonceRegistry = (*RedisNonceRegistry)(nil)
