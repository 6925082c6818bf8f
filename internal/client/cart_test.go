package client

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartFixture(t *testing.T) (*CartStore, *FileStorage) {
	t.Helper()
	storage, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return NewCartStore(storage, nil), storage
}

func cartItem(id, name, price string, qty int) CartItem {
	return CartItem{
		ProductID: id,
		Name:      name,
		Slug:      name,
		Price:     decimal.RequireFromString(price),
		Currency:  "USD",
		Quantity:  qty,
	}
}

func persistedCart(t *testing.T, storage *FileStorage) []CartItem {
	t.Helper()
	data, err := storage.Read(StorageKeyCart)
	require.NoError(t, err)
	var items []CartItem
	require.NoError(t, json.Unmarshal(data, &items))
	return items
}

func TestCartStore_ReplacePersistsExactly(t *testing.T) {
	store, storage := newCartFixture(t)

	items := []CartItem{
		cartItem("p1", "book", "10.00", 1),
		cartItem("p2", "pen", "2.50", 3),
		cartItem("p1", "book", "10.00", 1), // duplicate lines are kept
	}
	require.NoError(t, store.Replace(items))

	assert.Equal(t, items, store.Items())
	assert.Equal(t, items, persistedCart(t, storage))
}

func TestCartStore_ReplaceIsIdempotent(t *testing.T) {
	store, storage := newCartFixture(t)
	items := []CartItem{cartItem("p1", "book", "10.00", 1)}

	require.NoError(t, store.Replace(items))
	first := persistedCart(t, storage)
	require.NoError(t, store.Replace(items))
	second := persistedCart(t, storage)

	assert.Equal(t, first, second)
}

func TestCartStore_UpdateDerivesFromPrevious(t *testing.T) {
	store, storage := newCartFixture(t)
	require.NoError(t, store.Replace([]CartItem{cartItem("p1", "book", "10.00", 1)}))

	require.NoError(t, store.Update(func(prev []CartItem) []CartItem {
		return append(prev, cartItem("p2", "pen", "2.50", 2))
	}))

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, "p2", items[1].ProductID)
	assert.Equal(t, items, persistedCart(t, storage))
}

func TestCartStore_AddRemoveClear(t *testing.T) {
	store, storage := newCartFixture(t)

	require.NoError(t, store.Add(cartItem("p1", "book", "10.00", 1)))
	require.NoError(t, store.Add(cartItem("p2", "pen", "2.50", 4)))
	require.NoError(t, store.Add(cartItem("p1", "book", "10.00", 1)))

	// Remove drops only the first matching line
	require.NoError(t, store.Remove("p1"))
	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "p2", items[0].ProductID)
	assert.Equal(t, "p1", items[1].ProductID)

	assert.True(t, store.Total().Equal(decimal.RequireFromString("20.00")))

	require.NoError(t, store.Clear())
	assert.Empty(t, store.Items())
	assert.Empty(t, persistedCart(t, storage))
}

func TestCartStore_Hydrate(t *testing.T) {
	t.Run("restores persisted cart", func(t *testing.T) {
		store, storage := newCartFixture(t)
		seed := []CartItem{cartItem("p1", "book", "10.00", 2)}
		data, err := json.Marshal(seed)
		require.NoError(t, err)
		require.NoError(t, storage.Write(StorageKeyCart, data))

		store.Hydrate(context.Background())
		waitFor(t, func() bool { return len(store.Items()) == 1 })
		assert.Equal(t, seed, store.Items())
	})

	t.Run("corrupt cart yields empty list", func(t *testing.T) {
		store, storage := newCartFixture(t)
		require.NoError(t, storage.Write(StorageKeyCart, []byte("[[")))

		store.Hydrate(context.Background())
		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, store.Items())
	})
}
