package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Common gateway errors
var (
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrChargeDeclined     = errors.New("charge was declined")
	ErrInvalidCharge      = errors.New("invalid charge request")
)

// ChargeRequest describes a payment to collect at checkout.
// Nonce is the opaque payment method reference produced by the
// buyer-side payment form; the server never sees card data.
type ChargeRequest struct {
	OrderNumber string
	Amount      decimal.Decimal
	Currency    string
	Nonce       string
	Description string
}

// Validate checks the request before it is sent to the gateway
func (r *ChargeRequest) Validate() error {
	if r.OrderNumber == "" || r.Nonce == "" {
		return ErrInvalidCharge
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidCharge
	}
	return nil
}

// ChargeResult is the gateway's answer to a charge attempt
type ChargeResult struct {
	TransactionID string
	Success       bool
	Message       string
}

// PaymentGateway abstracts the external payment processor
type PaymentGateway interface {
	// ClientToken returns a short-lived token the payment form needs
	// to tokenize the buyer's payment method
	ClientToken(ctx context.Context) (string, error)

	// Charge submits a payment; a declined charge returns a result
	// with Success=false and no error
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)
}
