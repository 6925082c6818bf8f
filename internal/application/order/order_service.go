package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/payment"
)

// nonceTTL bounds how long a payment nonce is remembered. Gateway
// nonces themselves expire well within this window.
const nonceTTL = 24 * time.Hour

// OrderService handles checkout and order management
type OrderService struct {
	orderRepo   order.OrderRepository
	productRepo catalog.ProductRepository
	gateway     payment.PaymentGateway
	nonces      cache.NonceRegistry
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo order.OrderRepository,
	productRepo catalog.ProductRepository,
	gateway payment.PaymentGateway,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		gateway:     gateway,
		logger:      logger,
	}
}

// SetNonceRegistry enables duplicate-checkout protection. Without a
// registry every nonce is accepted.
func (s *OrderService) SetNonceRegistry(nonces cache.NonceRegistry) {
	s.nonces = nonces
}

// ClientToken returns a gateway token for the buyer-side payment form
func (s *OrderService) ClientToken(ctx context.Context) (string, error) {
	token, err := s.gateway.ClientToken(ctx)
	if err != nil {
		s.logger.Error("Failed to obtain payment client token", zap.Error(err))
		return "", shared.NewDomainError("PAYMENT_UNAVAILABLE", "Payment service is unavailable")
	}
	return token, nil
}

// Checkout charges the buyer for the submitted cart and persists the
// order with immutable product snapshots. Stock is reserved only after
// the gateway accepts the charge.
func (s *OrderService) Checkout(ctx context.Context, tenantID, buyerID uuid.UUID, req CheckoutRequest) (*OrderResponse, error) {
	if s.nonces != nil && req.Nonce != "" {
		fresh, err := s.nonces.Spend(ctx, req.Nonce, nonceTTL)
		if err != nil {
			s.logger.Error("Nonce registry unavailable", zap.Error(err))
			return nil, shared.NewDomainError("PAYMENT_UNAVAILABLE", "Payment service is unavailable")
		}
		if !fresh {
			s.logger.Warn("Replayed payment nonce rejected",
				zap.String("buyer_id", buyerID.String()))
			return nil, shared.NewDomainError("ALREADY_EXISTS", "This payment was already submitted")
		}
	}

	items, products, err := s.buildLineItems(ctx, tenantID, req.Items)
	if err != nil {
		return nil, err
	}

	ord, err := order.NewOrder(tenantID, buyerID, items)
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.Charge(ctx, &payment.ChargeRequest{
		OrderNumber: ord.ID.String(),
		Amount:      ord.Total,
		Currency:    ord.Currency,
		Nonce:       req.Nonce,
		Description: fmt.Sprintf("Order %s (%d items)", ord.ID, len(items)),
	})
	if err != nil {
		s.logger.Error("Payment charge failed",
			zap.Error(err),
			zap.String("order_id", ord.ID.String()))
		if errors.Is(err, payment.ErrInvalidCharge) {
			return nil, shared.ErrInvalidInput
		}
		return nil, shared.NewDomainError("PAYMENT_UNAVAILABLE", "Payment service is unavailable")
	}
	if !result.Success {
		s.logger.Warn("Payment declined",
			zap.String("order_id", ord.ID.String()),
			zap.String("reason", result.Message))
		return nil, shared.ErrPaymentDeclined
	}

	ord.AttachPayment(result.TransactionID, true)

	for i, p := range products {
		if err := p.Reserve(items[i].Quantity); err != nil {
			// Raced with another checkout between the stock check and
			// the charge; the order is still recorded since the buyer
			// was charged, and stock goes to zero on the racing line.
			s.logger.Error("Stock reservation failed after charge",
				zap.Error(err),
				zap.String("order_id", ord.ID.String()),
				zap.String("product_id", p.ID.String()))
			continue
		}
		if err := s.productRepo.Update(ctx, p); err != nil {
			s.logger.Error("Failed to persist stock reservation",
				zap.Error(err),
				zap.String("product_id", p.ID.String()))
		}
	}

	if err := s.orderRepo.Create(ctx, ord); err != nil {
		s.logger.Error("Failed to persist order after charge",
			zap.Error(err),
			zap.String("order_id", ord.ID.String()),
			zap.String("transaction_id", result.TransactionID))
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", ord.ID.String()),
		zap.String("buyer_id", buyerID.String()),
		zap.String("total", ord.Total.String()))

	resp := ToOrderResponse(ord)
	return &resp, nil
}

// ListMine returns the buyer's orders, newest first
func (s *OrderService) ListMine(ctx context.Context, tenantID, buyerID uuid.UUID) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByBuyer(ctx, tenantID, buyerID)
	if err != nil {
		return nil, err
	}
	responses := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		responses = append(responses, ToOrderResponse(o))
	}
	return responses, nil
}

// ListAll returns a page of the tenant's orders for administration
func (s *OrderService) ListAll(ctx context.Context, tenantID uuid.UUID, filter OrderListFilter) (*OrderListResult, error) {
	domainFilter := order.OrderFilter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	if filter.Status != "" {
		status, err := order.ParseStatus(filter.Status)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Unknown order status")
		}
		domainFilter.Status = &status
	}

	orders, total, err := s.orderRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		responses = append(responses, ToOrderResponse(o))
	}
	page := domainFilter.Page
	if page <= 0 {
		page = 1
	}
	return &OrderListResult{
		Orders:   responses,
		Total:    total,
		Page:     page,
		PageSize: domainFilter.Limit(),
	}, nil
}

// UpdateStatus moves an order through the fulfilment lifecycle
func (s *OrderService) UpdateStatus(ctx context.Context, tenantID, orderID uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown order status")
	}

	ord, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}

	if err := ord.UpdateStatus(status); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, ord); err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", ord.ID.String()),
		zap.String("status", string(ord.Status)))

	resp := ToOrderResponse(ord)
	return &resp, nil
}

// buildLineItems loads the cart's products and snapshots them into order
// lines after validating tenant ownership and stock
func (s *OrderService) buildLineItems(ctx context.Context, tenantID uuid.UUID, cart []CheckoutItem) ([]order.LineItem, []*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(cart))
	for _, item := range cart {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]order.LineItem, 0, len(cart))
	ordered := make([]*catalog.Product, 0, len(cart))
	for _, cartItem := range cart {
		p, ok := byID[cartItem.ProductID]
		if !ok || p.TenantID != tenantID {
			return nil, nil, shared.NewDomainError("INVALID_INPUT", "Product not found")
		}
		if !p.InStock(cartItem.Quantity) {
			return nil, nil, shared.ErrInsufficientStock
		}
		items = append(items, order.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Slug:      p.Slug,
			Price:     p.Price,
			Currency:  p.Currency,
			PhotoURL:  p.PhotoURL,
			Quantity:  cartItem.Quantity,
		})
		ordered = append(ordered, p)
	}
	return items, ordered, nil
}
