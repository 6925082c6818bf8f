package payment

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// StubGateway is an in-process gateway for development and tests.
// Charges succeed unless Decline is set.
type StubGateway struct {
	mu      sync.Mutex
	Decline bool
	charges []ChargeRequest
}

// NewStubGateway creates a stub payment gateway
func NewStubGateway() *StubGateway {
	return &StubGateway{}
}

// ClientToken returns a fixed token
func (g *StubGateway) ClientToken(_ context.Context) (string, error) {
	return "stub-client-token", nil
}

// Charge records the request and reports the configured outcome
func (g *StubGateway) Charge(_ context.Context, req *ChargeRequest) (*ChargeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.charges = append(g.charges, *req)
	decline := g.Decline
	g.mu.Unlock()

	if decline {
		return &ChargeResult{Success: false, Message: "declined"}, nil
	}
	return &ChargeResult{
		TransactionID: "stub-" + uuid.New().String(),
		Success:       true,
	}, nil
}

// Charges returns a copy of every charge the stub has seen
func (g *StubGateway) Charges() []ChargeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]ChargeRequest, len(g.charges))
	copy(out, g.charges)
	return out
}

var _ PaymentGateway = (*StubGateway)(nil)
