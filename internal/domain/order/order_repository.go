package order

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create creates a new order
	Create(ctx context.Context, order *Order) error

	// Update updates an existing order
	Update(ctx context.Context, order *Order) error

	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByBuyer returns the buyer's orders, newest first
	FindByBuyer(ctx context.Context, tenantID, buyerID uuid.UUID) ([]*Order, error)

	// FindAll returns all orders for the tenant matching the filter, newest first
	FindAll(ctx context.Context, tenantID uuid.UUID, filter OrderFilter) ([]*Order, int64, error)
}

// OrderFilter contains filter options for querying orders
type OrderFilter struct {
	Status   *Status
	BuyerID  *uuid.UUID
	Page     int
	PageSize int
}

// Offset returns the offset for pagination
func (f OrderFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the limit for pagination
func (f OrderFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
