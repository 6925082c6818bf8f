package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartItem is a product snapshot placed in the cart. The snapshot is
// taken at add time; duplicates are allowed and order is preserved.
type CartItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Quantity  int             `json:"quantity"`
}

// CartStore owns the in-memory cart and its persisted copy under the
// cart storage key. Every mutation persists synchronously; after
// Replace or Update return, the stored bytes match the new list.
type CartStore struct {
	storage Storage
	logger  *zap.Logger

	mu    sync.RWMutex
	items []CartItem

	hydrateOnce sync.Once
}

// NewCartStore creates a CartStore bound to the given storage
func NewCartStore(storage Storage, logger *zap.Logger) *CartStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartStore{storage: storage, logger: logger}
}

// Hydrate loads the persisted cart in the background, at most once.
// Missing or unreadable state silently yields the empty cart.
func (s *CartStore) Hydrate(ctx context.Context) {
	s.hydrateOnce.Do(func() {
		go s.hydrate(ctx)
	})
}

// HydrateNow loads the persisted cart before returning, at most once.
func (s *CartStore) HydrateNow(ctx context.Context) {
	s.hydrateOnce.Do(func() {
		s.hydrate(ctx)
	})
}

func (s *CartStore) hydrate(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	data, err := s.storage.Read(StorageKeyCart)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.logger.Warn("Persisted cart unreadable, starting empty", zap.Error(err))
		}
		return
	}

	var restored []CartItem
	if err := json.Unmarshal(data, &restored); err != nil {
		s.logger.Warn("Persisted cart corrupt, starting empty", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.items = restored
	s.mu.Unlock()
}

// Replace swaps the cart for the given list and persists it before returning
func (s *CartStore) Replace(items []CartItem) error {
	next := make([]CartItem, len(items))
	copy(next, items)

	s.mu.Lock()
	s.items = next
	s.mu.Unlock()

	return s.persist(next)
}

// Update derives the next cart from the previous one under the store's
// lock and persists the result before returning.
func (s *CartStore) Update(fn func(prev []CartItem) []CartItem) error {
	s.mu.Lock()
	prev := make([]CartItem, len(s.items))
	copy(prev, s.items)
	next := fn(prev)
	s.items = next
	s.mu.Unlock()

	return s.persist(next)
}

// Add appends an item to the cart
func (s *CartStore) Add(item CartItem) error {
	return s.Update(func(prev []CartItem) []CartItem {
		return append(prev, item)
	})
}

// Remove drops the first cart line with the given product ID
func (s *CartStore) Remove(productID string) error {
	return s.Update(func(prev []CartItem) []CartItem {
		for i, item := range prev {
			if item.ProductID == productID {
				return append(prev[:i], prev[i+1:]...)
			}
		}
		return prev
	})
}

// Clear empties the cart
func (s *CartStore) Clear() error {
	return s.Replace(nil)
}

// Items returns a snapshot of the cart lines in order
func (s *CartStore) Items() []CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Total sums price times quantity over the cart
func (s *CartStore) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (s *CartStore) persist(items []CartItem) error {
	if items == nil {
		items = []CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := s.storage.Write(StorageKeyCart, data); err != nil {
		s.logger.Warn("Failed to persist cart", zap.Error(err))
		return err
	}
	return nil
}
