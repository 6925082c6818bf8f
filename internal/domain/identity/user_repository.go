package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// Delete deletes a user by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by email within the tenant
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*User, error)

	// ExistsByEmail checks if an email is already registered within the tenant
	ExistsByEmail(ctx context.Context, tenantID uuid.UUID, email string) (bool, error)

	// FindAll returns users for the tenant with pagination
	FindAll(ctx context.Context, tenantID uuid.UUID, filter UserFilter) ([]*User, int64, error)

	// Count returns the total number of users for the tenant
	Count(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	// Search keyword for name or email
	Keyword string

	// Filter by role
	Role *Role

	// Pagination
	Page     int
	PageSize int
}

// NewUserFilter creates a new UserFilter with default values
func NewUserFilter() UserFilter {
	return UserFilter{
		Page:     1,
		PageSize: 20,
	}
}

// Offset returns the offset for pagination
func (f UserFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the limit for pagination
func (f UserFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
