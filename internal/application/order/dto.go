package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/order"
)

// CheckoutItem is one cart line submitted at checkout
type CheckoutItem struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// CheckoutRequest carries the cart snapshot and the payment nonce
type CheckoutRequest struct {
	Items []CheckoutItem `json:"items" binding:"required,min=1,dive"`
	Nonce string         `json:"nonce" binding:"required"`
}

// UpdateStatusRequest moves an order to a new status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderItemResponse is a purchased line with its product snapshot
type OrderItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	PhotoURL  string          `json:"photo_url"`
	Quantity  int             `json:"quantity"`
}

// PaymentResponse is the recorded gateway outcome
type PaymentResponse struct {
	TransactionID string `json:"transaction_id"`
	Success       bool   `json:"success"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID        uuid.UUID           `json:"id"`
	BuyerID   uuid.UUID           `json:"buyer_id"`
	Items     []OrderItemResponse `json:"items"`
	Total     decimal.Decimal     `json:"total"`
	Currency  string              `json:"currency"`
	Status    string              `json:"status"`
	Payment   PaymentResponse     `json:"payment"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// OrderListFilter represents filter options for the admin order list
type OrderListFilter struct {
	Status   string `form:"status"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OrderListResult is a page of orders with the total match count
type OrderListResult struct {
	Orders   []OrderResponse `json:"orders"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, li := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: li.ProductID,
			Name:      li.Name,
			Slug:      li.Slug,
			Price:     li.Price,
			Currency:  li.Currency,
			PhotoURL:  li.PhotoURL,
			Quantity:  li.Quantity,
		})
	}
	return OrderResponse{
		ID:        o.ID,
		BuyerID:   o.BuyerID,
		Items:     items,
		Total:     o.Total,
		Currency:  o.Currency,
		Status:    string(o.Status),
		Payment: PaymentResponse{
			TransactionID: o.Payment.TransactionID,
			Success:       o.Payment.Success,
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
