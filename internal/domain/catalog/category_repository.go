package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// Create creates a new category
	Create(ctx context.Context, category *Category) error

	// Update updates an existing category
	Update(ctx context.Context, category *Category) error

	// Delete deletes a category by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a category by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindBySlug finds a category by slug within the tenant
	FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*Category, error)

	// ExistsBySlug checks if a slug is already taken within the tenant
	ExistsBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (bool, error)

	// FindAll returns all categories for the tenant
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]*Category, error)
}
