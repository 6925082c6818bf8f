package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/infrastructure/config"
)

func newTestAdapter(t *testing.T, handler http.Handler) *SandboxAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewSandboxAdapter(config.PaymentConfig{
		Mode:       "sandbox",
		Endpoint:   server.URL,
		MerchantID: "merchant-1",
		APIKey:     "key-1",
		Timeout:    2 * time.Second,
	})
	require.NoError(t, err)
	return adapter
}

func validCharge() *ChargeRequest {
	return &ChargeRequest{
		OrderNumber: "ord-1001",
		Amount:      decimal.RequireFromString("139.97"),
		Currency:    "USD",
		Nonce:       "nonce-abc",
	}
}

func TestNewSandboxAdapter_Validation(t *testing.T) {
	_, err := NewSandboxAdapter(config.PaymentConfig{MerchantID: "m", APIKey: "k"})
	assert.Error(t, err)

	_, err = NewSandboxAdapter(config.PaymentConfig{Endpoint: "http://gateway"})
	assert.Error(t, err)
}

func TestSandboxAdapter_ClientToken(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/client_token", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "merchant-1", user)
		assert.Equal(t, "key-1", pass)
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	}))

	token, err := adapter.ClientToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestSandboxAdapter_Charge(t *testing.T) {
	t.Run("successful charge", func(t *testing.T) {
		adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transactions", r.URL.Path)

			var body chargeRequestBody
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "ord-1001", body.OrderNumber)
			assert.Equal(t, "139.97", body.Amount)
			assert.Equal(t, "nonce-abc", body.Nonce)

			json.NewEncoder(w).Encode(chargeResponseBody{
				TransactionID: "txn-1",
				Success:       true,
			})
		}))

		result, err := adapter.Charge(context.Background(), validCharge())
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "txn-1", result.TransactionID)
	})

	t.Run("declined charge is not an error", func(t *testing.T) {
		adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			json.NewEncoder(w).Encode(chargeResponseBody{Success: false, Message: "insufficient funds"})
		}))

		result, err := adapter.Charge(context.Background(), validCharge())
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "insufficient funds", result.Message)
	})

	t.Run("gateway errors surface", func(t *testing.T) {
		adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

		_, err := adapter.Charge(context.Background(), validCharge())
		assert.ErrorIs(t, err, ErrGatewayUnavailable)
	})

	t.Run("invalid request rejected locally", func(t *testing.T) {
		adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("gateway should not be called")
		}))

		req := validCharge()
		req.Nonce = ""
		_, err := adapter.Charge(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidCharge)
	})
}

func TestStubGateway(t *testing.T) {
	stub := NewStubGateway()
	ctx := context.Background()

	token, err := stub.ClientToken(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	result, err := stub.Charge(ctx, validCharge())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.TransactionID)

	stub.Decline = true
	result, err = stub.Charge(ctx, validCharge())
	require.NoError(t, err)
	assert.False(t, result.Success)

	assert.Len(t, stub.Charges(), 2)
}
