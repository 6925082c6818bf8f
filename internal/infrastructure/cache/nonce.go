package cache

import (
	"context"
	"time"
)

// NonceRegistry records payment nonces that have already been spent, so
// a replayed checkout request cannot charge the buyer twice. Entries
// expire after their TTL; a nonce older than the TTL is treated as new.
type NonceRegistry interface {
	// Spend atomically records the nonce. It returns true when the
	// nonce was fresh and false when it was already spent.
	Spend(ctx context.Context, nonce string, ttl time.Duration) (bool, error)
}
