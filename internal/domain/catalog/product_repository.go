package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// Create creates a new product
	Create(ctx context.Context, product *Product) error

	// Update updates an existing product
	Update(ctx context.Context, product *Product) error

	// Delete deletes a product by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySlug finds a product by slug within the tenant
	FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*Product, error)

	// FindByIDs loads a batch of products by ID, preserving input order
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)

	// FindAll returns products for the tenant matching the filter, with total count
	FindAll(ctx context.Context, tenantID uuid.UUID, filter ProductFilter) ([]*Product, int64, error)

	// FindRelated returns products sharing a category, excluding the given product
	FindRelated(ctx context.Context, tenantID, productID, categoryID uuid.UUID, limit int) ([]*Product, error)

	// CountByCategory returns the number of products in a category
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

// ProductFilter contains filter options for querying products
type ProductFilter struct {
	// Keyword matches name or description
	Keyword string

	// Restrict to any of these categories
	CategoryIDs []uuid.UUID

	// Price range (inclusive); nil means unbounded
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal

	// Pagination
	Page     int
	PageSize int
}

// NewProductFilter creates a ProductFilter with default values
func NewProductFilter() ProductFilter {
	return ProductFilter{
		Page:     1,
		PageSize: 12,
	}
}

// Offset returns the offset for pagination
func (f ProductFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the limit for pagination
func (f ProductFilter) Limit() int {
	if f.PageSize <= 0 {
		return 12
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
