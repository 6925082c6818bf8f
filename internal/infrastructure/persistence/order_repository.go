package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create creates a new order with its line items
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update updates an existing order's mutable fields.
// Line items are immutable snapshots and never rewritten.
func (r *GormOrderRepository) Update(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", o.ID).
		Updates(map[string]any{
			"status":                 string(o.Status),
			"payment_transaction_id": o.Payment.TransactionID,
			"payment_success":        o.Payment.Success,
			"version":                o.Version,
			"updated_at":             o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds an order by ID, including its line items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBuyer returns the buyer's orders, newest first
func (r *GormOrderRepository) FindByBuyer(ctx context.Context, tenantID, buyerID uuid.UUID) ([]*order.Order, error) {
	var modelList []models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND buyer_id = ?", tenantID, buyerID).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(modelList))
	for i := range modelList {
		orders = append(orders, modelList[i].ToDomain())
	}
	return orders, nil
}

// FindAll returns all orders for the tenant matching the filter, newest first
func (r *GormOrderRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter order.OrderFilter) ([]*order.Order, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("tenant_id = ?", tenantID)

	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.BuyerID != nil {
		query = query.Where("buyer_id = ?", *filter.BuyerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var modelList []models.OrderModel
	if err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&modelList).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]*order.Order, 0, len(modelList))
	for i := range modelList {
		orders = append(orders, modelList[i].ToDomain())
	}
	return orders, total, nil
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)
