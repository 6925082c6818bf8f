package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_Revoke(t *testing.T) {
	ctx := context.Background()
	bl := NewInMemoryTokenBlacklist()

	t.Run("unknown jti is not revoked", func(t *testing.T) {
		revoked, err := bl.IsRevoked(ctx, "unknown-jti")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("revoked jti is reported", func(t *testing.T) {
		require.NoError(t, bl.Revoke(ctx, "jti-1", time.Minute))
		revoked, err := bl.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("entry lapses with ttl", func(t *testing.T) {
		require.NoError(t, bl.Revoke(ctx, "jti-2", -time.Second))
		revoked, err := bl.IsRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}

func TestInMemoryTokenBlacklist_RevokeUser(t *testing.T) {
	ctx := context.Background()
	bl := NewInMemoryTokenBlacklist()

	issuedBefore := time.Now()
	require.NoError(t, bl.RevokeUser(ctx, "user-1", time.Hour))

	t.Run("token issued before revocation is invalid", func(t *testing.T) {
		revoked, err := bl.IsUserRevoked(ctx, "user-1", issuedBefore)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("token issued after revocation is valid", func(t *testing.T) {
		revoked, err := bl.IsUserRevoked(ctx, "user-1", time.Now().Add(time.Second))
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("other users are unaffected", func(t *testing.T) {
		revoked, err := bl.IsUserRevoked(ctx, "user-2", issuedBefore)
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
