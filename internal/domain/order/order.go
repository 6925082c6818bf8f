package order

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Status represents the fulfillment state of an order
type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus parses a status string, case-insensitively
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+s)
	}
	return status, nil
}

// allowed status transitions; cancellation is only possible before shipment
var statusTransitions = map[Status][]Status{
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransitionTo checks if the status can move to the target status
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// LineItem is a snapshot of a purchased product at checkout time.
// Catalog edits after checkout do not affect recorded orders.
type LineItem struct {
	ProductID uuid.UUID
	Name      string
	Slug      string
	Price     decimal.Decimal
	Currency  string
	PhotoURL  string
	Quantity  int
}

// Subtotal returns price times quantity for this line
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// PaymentRef records the gateway outcome attached to an order
type PaymentRef struct {
	TransactionID string
	Success       bool
}

// Order is the aggregate root for a buyer's checkout
type Order struct {
	shared.TenantAggregateRoot
	BuyerID  uuid.UUID
	Items    []LineItem
	Total    decimal.Decimal
	Currency string
	Payment  PaymentRef
	Status   Status
}

// NewOrder creates an order in the processing state from checkout snapshots
func NewOrder(tenantID, buyerID uuid.UUID, items []LineItem) (*Order, error) {
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUYER", "Buyer is required")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}

	currency := items[0].Currency
	if currency == "" {
		currency = string(valueobject.DefaultCurrency)
	}
	total := decimal.Zero
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_ITEM", "Line item is missing a product reference")
		}
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_ITEM", "Line item quantity must be positive")
		}
		if item.Price.IsNegative() {
			return nil, shared.NewDomainError("INVALID_ITEM", "Line item price cannot be negative")
		}
		if item.Currency != currency {
			return nil, shared.NewDomainError("CURRENCY_MISMATCH", "All line items must share one currency")
		}
		total = total.Add(item.Subtotal())
	}

	return &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BuyerID:             buyerID,
		Items:               items,
		Total:               total,
		Currency:            currency,
		Status:              StatusProcessing,
	}, nil
}

// AttachPayment records the gateway result for this order
func (o *Order) AttachPayment(transactionID string, success bool) {
	o.Payment = PaymentRef{TransactionID: transactionID, Success: success}
	o.Touch()
}

// UpdateStatus moves the order to a new fulfillment state
func (o *Order) UpdateStatus(target Status) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if target == o.Status {
		return nil
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.ErrInvalidState
	}
	o.Status = target
	o.Touch()
	return nil
}

// Cancel moves the order to the cancelled state
func (o *Order) Cancel() error {
	return o.UpdateStatus(StatusCancelled)
}

// TotalMoney returns the order total as a Money value object
func (o *Order) TotalMoney() valueobject.Money {
	m, err := valueobject.NewMoney(o.Total, valueobject.Currency(o.Currency))
	if err != nil {
		return valueobject.ZeroUSD()
	}
	return m
}
