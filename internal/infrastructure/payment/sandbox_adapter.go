package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
)

// SandboxAdapter implements PaymentGateway against an HTTP processor API.
// It covers both the sandbox and live modes; the endpoint and credentials
// come from configuration.
type SandboxAdapter struct {
	endpoint   string
	merchantID string
	apiKey     string
	httpClient *http.Client
}

// NewSandboxAdapter creates a gateway adapter from payment configuration
func NewSandboxAdapter(cfg config.PaymentConfig) (*SandboxAdapter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("payment endpoint is required")
	}
	if cfg.MerchantID == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("payment credentials are required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &SandboxAdapter{
		endpoint:   cfg.Endpoint,
		merchantID: cfg.MerchantID,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type clientTokenResponse struct {
	Token string `json:"token"`
}

type chargeRequestBody struct {
	MerchantID  string `json:"merchant_id"`
	OrderNumber string `json:"order_number"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Nonce       string `json:"nonce"`
	Description string `json:"description,omitempty"`
}

type chargeResponseBody struct {
	TransactionID string `json:"transaction_id"`
	Success       bool   `json:"success"`
	Message       string `json:"message"`
}

// ClientToken fetches a tokenization token for the payment form
func (a *SandboxAdapter) ClientToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint+"/client_token", nil)
	if err != nil {
		return "", err
	}
	a.setAuth(req)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var body clientTokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return "", fmt.Errorf("payment: failed to decode client token: %w", err)
	}
	if body.Token == "" {
		return "", fmt.Errorf("payment: empty client token")
	}
	return body.Token, nil
}

// Charge submits a payment to the processor
func (a *SandboxAdapter) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(chargeRequestBody{
		MerchantID:  a.merchantID,
		OrderNumber: req.OrderNumber,
		Amount:      req.Amount.StringFixed(2),
		Currency:    req.Currency,
		Nonce:       req.Nonce,
		Description: req.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("payment: failed to marshal charge: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+"/transactions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	a.setAuth(httpReq)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var body chargeResponseBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return nil, fmt.Errorf("payment: failed to decode charge response: %w", err)
	}

	return &ChargeResult{
		TransactionID: body.TransactionID,
		Success:       body.Success,
		Message:       body.Message,
	}, nil
}

func (a *SandboxAdapter) setAuth(req *http.Request) {
	req.SetBasicAuth(a.merchantID, a.apiKey)
}

var _ PaymentGateway = (*SandboxAdapter)(nil)
