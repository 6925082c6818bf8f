package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	expiresAt time.Time
}

// InMemoryNonceRegistry keeps spent nonces in a map. Suitable for
// single-instance deployments and tests; a multi-instance deployment
// needs the Redis-backed registry so all instances share state.
type InMemoryNonceRegistry struct {
	mu        sync.Mutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryNonceRegistry creates the registry and starts a background
// goroutine that evicts expired entries.
func NewInMemoryNonceRegistry() *InMemoryNonceRegistry {
	r := &InMemoryNonceRegistry{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}
	r.wg.Add(1)
	go r.cleanupLoop()
	return r
}

// Spend records the nonce, returning false when it was already spent
// and not yet expired.
func (r *InMemoryNonceRegistry) Spend(_ context.Context, nonce string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[nonce]; ok && time.Now().Before(e.expiresAt) {
		return false, nil
	}
	r.entries[nonce] = entry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (r *InMemoryNonceRegistry) Close() error {
	r.closeOnce.Do(func() {
		close(r.stopChan)
		r.wg.Wait()
	})
	return nil
}

func (r *InMemoryNonceRegistry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.cleanup()
		}
	}
}

func (r *InMemoryNonceRegistry) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for nonce, e := range r.entries {
		if now.After(e.expiresAt) {
			delete(r.entries, nonce)
		}
	}
}

var _ NonceRegistry = (*InMemoryNonceRegistry)(nil)
