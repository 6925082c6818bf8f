package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates buyer with valid fields", func(t *testing.T) {
		user, err := NewUser(tenantID, "Jamie Doe", "jamie@example.com", "secret1", "blue")

		require.NoError(t, err)
		assert.Equal(t, tenantID, user.TenantID)
		assert.Equal(t, "Jamie Doe", user.Name)
		assert.Equal(t, "jamie@example.com", user.Email)
		assert.Equal(t, RoleBuyer, user.Role)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEmpty(t, user.AnswerHash)
		assert.NotEqual(t, "secret1", user.PasswordHash)
	})

	t.Run("normalizes email to lowercase", func(t *testing.T) {
		user, err := NewUser(tenantID, "Jamie", "Jamie@Example.COM", "secret1", "blue")

		require.NoError(t, err)
		assert.Equal(t, "jamie@example.com", user.Email)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewUser(tenantID, "  ", "jamie@example.com", "secret1", "blue")
		assert.Error(t, err)
	})

	t.Run("fails with malformed email", func(t *testing.T) {
		_, err := NewUser(tenantID, "Jamie", "not-an-email", "secret1", "blue")
		assert.Error(t, err)
	})

	t.Run("fails with short password", func(t *testing.T) {
		_, err := NewUser(tenantID, "Jamie", "jamie@example.com", "abc", "blue")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least 6 characters")
	})

	t.Run("fails with empty security answer", func(t *testing.T) {
		_, err := NewUser(tenantID, "Jamie", "jamie@example.com", "secret1", "  ")
		assert.Error(t, err)
	})
}

func TestUserPassword(t *testing.T) {
	user, err := NewUser(uuid.New(), "Jamie", "jamie@example.com", "secret1", "blue")
	require.NoError(t, err)

	t.Run("verifies correct password", func(t *testing.T) {
		assert.True(t, user.VerifyPassword("secret1"))
		assert.False(t, user.VerifyPassword("wrong"))
	})

	t.Run("change requires current password", func(t *testing.T) {
		err := user.ChangePassword("wrong", "newsecret")
		assert.Error(t, err)
		assert.True(t, user.VerifyPassword("secret1"))

		err = user.ChangePassword("secret1", "newsecret")
		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("newsecret"))
	})

	t.Run("reset bypasses current password", func(t *testing.T) {
		require.NoError(t, user.SetPassword("resetsecret"))
		assert.True(t, user.VerifyPassword("resetsecret"))
	})
}

func TestUserAnswer(t *testing.T) {
	user, err := NewUser(uuid.New(), "Jamie", "jamie@example.com", "secret1", "Blue ")
	require.NoError(t, err)

	// answer comparison is case- and whitespace-insensitive
	assert.True(t, user.VerifyAnswer("blue"))
	assert.True(t, user.VerifyAnswer("  BLUE"))
	assert.False(t, user.VerifyAnswer("red"))
}

func TestUserRole(t *testing.T) {
	user, err := NewUser(uuid.New(), "Jamie", "jamie@example.com", "secret1", "blue")
	require.NoError(t, err)

	assert.False(t, user.IsAdmin())

	version := user.GetVersion()
	user.Promote()
	assert.True(t, user.IsAdmin())
	assert.Equal(t, RoleAdmin, user.Role)
	assert.Equal(t, version+1, user.GetVersion())

	user.Demote()
	assert.False(t, user.IsAdmin())
}

func TestRoleIsValid(t *testing.T) {
	assert.True(t, RoleBuyer.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role(2).IsValid())
	assert.False(t, Role(-1).IsValid())
}

func TestUserProfileSetters(t *testing.T) {
	user, err := NewUser(uuid.New(), "Jamie", "jamie@example.com", "secret1", "blue")
	require.NoError(t, err)

	require.NoError(t, user.SetPhone("  555-0100 "))
	assert.Equal(t, "555-0100", user.Phone)

	require.NoError(t, user.SetAddress("1 Main St"))
	assert.Equal(t, "1 Main St", user.Address)

	longPhone := make([]byte, 51)
	for i := range longPhone {
		longPhone[i] = '9'
	}
	assert.Error(t, user.SetPhone(string(longPhone)))
}
