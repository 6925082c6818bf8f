package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/order"
)

// OrderModel is the persistence model for the Order aggregate.
type OrderModel struct {
	TenantAggregateModel
	BuyerID              uuid.UUID        `gorm:"type:uuid;not null;index"`
	Total                decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	Currency             string           `gorm:"type:varchar(3);not null;default:'USD'"`
	Status               string           `gorm:"type:varchar(20);not null;default:'processing';index"`
	PaymentTransactionID string           `gorm:"type:varchar(100)"`
	PaymentSuccess       bool             `gorm:"not null;default:false"`
	Items                []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is a persisted product snapshot belonging to an order.
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Slug      string          `gorm:"type:varchar(220);not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency  string          `gorm:"type:varchar(3);not null;default:'USD'"`
	PhotoURL  string          `gorm:"type:varchar(500)"`
	Quantity  int             `gorm:"not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order aggregate
func (m *OrderModel) ToDomain() *order.Order {
	items := make([]order.LineItem, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, order.LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Slug:      item.Slug,
			Price:     item.Price,
			Currency:  item.Currency,
			PhotoURL:  item.PhotoURL,
			Quantity:  item.Quantity,
		})
	}

	return &order.Order{
		TenantAggregateRoot: m.toTenantAggregateRoot(),
		BuyerID:             m.BuyerID,
		Items:               items,
		Total:               m.Total,
		Currency:            m.Currency,
		Payment: order.PaymentRef{
			TransactionID: m.PaymentTransactionID,
			Success:       m.PaymentSuccess,
		},
		Status: order.Status(m.Status),
	}
}

// FromDomain populates the persistence model from a domain Order aggregate
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.BuyerID = o.BuyerID
	m.Total = o.Total
	m.Currency = o.Currency
	m.Status = string(o.Status)
	m.PaymentTransactionID = o.Payment.TransactionID
	m.PaymentSuccess = o.Payment.Success

	m.Items = make([]OrderItemModel, 0, len(o.Items))
	for _, item := range o.Items {
		m.Items = append(m.Items, OrderItemModel{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Slug:      item.Slug,
			Price:     item.Price,
			Currency:  item.Currency,
			PhotoURL:  item.PhotoURL,
			Quantity:  item.Quantity,
			CreatedAt: o.CreatedAt,
		})
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}
