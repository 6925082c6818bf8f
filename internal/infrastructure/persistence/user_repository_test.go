package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
)

func newTestUser(t *testing.T, tenantID uuid.UUID, name, email string) *identity.User {
	t.Helper()
	user, err := identity.NewUser(tenantID, name, email, "secret123", "first pet")
	require.NoError(t, err)
	return user
}

func TestGormUserRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	user := newTestUser(t, tenantID, "Ada", "ada@example.com")
	require.NoError(t, repo.Create(ctx, user))

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", found.Name)
		assert.Equal(t, "ada@example.com", found.Email)
		assert.Equal(t, identity.RoleBuyer, found.Role)
		assert.Equal(t, tenantID, found.TenantID)
	})

	t.Run("find by email is case insensitive", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, tenantID, "ADA@Example.COM")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("email scoped to tenant", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, uuid.New(), "ada@example.com")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("exists by email", func(t *testing.T) {
		exists, err := repo.ExistsByEmail(ctx, tenantID, "ada@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByEmail(ctx, tenantID, "nobody@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormUserRepository_Update(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	user := newTestUser(t, tenantID, "Ada", "ada@example.com")
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, user.SetPhone("12345"))
	user.Promote()
	require.NoError(t, repo.Update(ctx, user))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "12345", found.Phone)
	assert.Equal(t, identity.RoleAdmin, found.Role)
	assert.Equal(t, user.Version, found.Version)
}

func TestGormUserRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	user := newTestUser(t, uuid.New(), "Ada", "ada@example.com")
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.Delete(ctx, user.ID))
	_, err := repo.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, user.ID), shared.ErrNotFound)
}

func TestGormUserRepository_FindAll(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	admin := newTestUser(t, tenantID, "Grace", "grace@example.com")
	admin.Promote()
	require.NoError(t, repo.Create(ctx, admin))
	require.NoError(t, repo.Create(ctx, newTestUser(t, tenantID, "Ada", "ada@example.com")))
	require.NoError(t, repo.Create(ctx, newTestUser(t, uuid.New(), "Eve", "eve@example.com")))

	t.Run("scopes to tenant", func(t *testing.T) {
		users, total, err := repo.FindAll(ctx, tenantID, identity.NewUserFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, users, 2)
	})

	t.Run("filters by role", func(t *testing.T) {
		role := identity.RoleAdmin
		filter := identity.NewUserFilter()
		filter.Role = &role

		users, total, err := repo.FindAll(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, users, 1)
		assert.Equal(t, "Grace", users[0].Name)
	})

	t.Run("filters by keyword", func(t *testing.T) {
		filter := identity.NewUserFilter()
		filter.Keyword = "ada"

		users, total, err := repo.FindAll(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, users, 1)
		assert.Equal(t, "ada@example.com", users[0].Email)
	})

	t.Run("count", func(t *testing.T) {
		count, err := repo.Count(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
