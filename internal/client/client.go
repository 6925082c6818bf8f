package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// APIError is a failed API call with the server's error code attached
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// envelope is the standard response wrapper of the storefront API
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	// The authorization boundary answers with a flat body instead
	Message string `json:"message"`
}

// APIClient talks to the storefront REST API. The Authorization header
// is a process-wide default shared by every request; the session store
// owns its value.
type APIClient struct {
	baseURL    string
	httpClient *http.Client

	mu sync.RWMutex
	// header value and whether a default has been established at all.
	// Logout sets the value to the empty string but keeps it present.
	authValue string
	authSet   bool
}

// Option customizes an APIClient
type Option func(*APIClient)

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *APIClient) {
		c.httpClient = hc
	}
}

// NewAPIClient creates a client for the API at baseURL (scheme://host[:port])
func NewAPIClient(baseURL string, opts ...Option) *APIClient {
	c := &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAuthorization establishes the default Authorization header value.
// An empty token keeps the header present with an empty value.
func (c *APIClient) SetAuthorization(token string) {
	c.mu.Lock()
	c.authValue = token
	c.authSet = true
	c.mu.Unlock()
}

// Authorization returns the current default header value and whether one is set
func (c *APIClient) Authorization() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authValue, c.authSet
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if value, set := c.Authorization(); set {
		req.Header.Set("Authorization", value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "unreadable response"}
	}

	if resp.StatusCode >= 400 || !envOK(resp.StatusCode, env) {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: env.Message}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func envOK(status int, env envelope) bool {
	if status == http.StatusNoContent {
		return true
	}
	return env.Success
}

// User is an account as the API reports it
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Role    int    `json:"role"`
}

// IsAdmin reports whether the account holds the administrator role
func (u *User) IsAdmin() bool { return u.Role == 1 }

// Category is a catalog category as the API reports it
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Product is a catalog product as the API reports it
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	CategoryID  string          `json:"category_id"`
	Quantity    int             `json:"quantity"`
	PhotoURL    string          `json:"photo_url"`
	Shipping    bool            `json:"shipping"`
}

// Order is an order as the API reports it
type Order struct {
	ID     string `json:"id"`
	Items  []struct {
		ProductID string          `json:"product_id"`
		Name      string          `json:"name"`
		Price     decimal.Decimal `json:"price"`
		Quantity  int             `json:"quantity"`
	} `json:"items"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
	Status   string          `json:"status"`
}

// RegisterInput carries the fields of the registration form
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Answer   string `json:"answer"`
}

// Register creates a new buyer account
func (c *APIClient) Register(ctx context.Context, input RegisterInput) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/auth/register", input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// LoginResult is the server's answer to a successful login
type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Login authenticates and returns the account plus its bearer token
func (c *APIClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout revokes the current token server-side
func (c *APIClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// UpdateProfile updates the authenticated account; nil fields stay unchanged
func (c *APIClient) UpdateProfile(ctx context.Context, fields map[string]string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPut, "/auth/profile", fields, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// probeResponse is the body of the guard confirmation endpoints
type probeResponse struct {
	OK bool `json:"ok"`
}

// ConfirmAuth asks the backend whether the current token still grants
// access; admin selects the administrator probe. Any non-OK answer or
// transport failure reads as a denial to the caller.
func (c *APIClient) ConfirmAuth(ctx context.Context, admin bool) (bool, error) {
	path := "/auth/user-auth"
	if admin {
		path = "/auth/admin-auth"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1"+path, nil)
	if err != nil {
		return false, err
	}
	if value, set := c.Authorization(); set {
		req.Header.Set("Authorization", value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	var probe probeResponse
	if err := json.NewDecoder(resp.Body).Decode(&probe); err != nil {
		return false, nil
	}
	return probe.OK, nil
}

// Categories lists the tenant's categories
func (c *APIClient) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ProductQuery filters the product list
type ProductQuery struct {
	Keyword  string
	Page     int
	PageSize int
}

// Products lists products matching the query
func (c *APIClient) Products(ctx context.Context, q ProductQuery) ([]Product, error) {
	params := url.Values{}
	if q.Keyword != "" {
		params.Set("keyword", q.Keyword)
	}
	if q.Page > 0 {
		params.Set("page", fmt.Sprint(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("page_size", fmt.Sprint(q.PageSize))
	}
	path := "/products"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var products []Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ProductBySlug fetches one product
func (c *APIClient) ProductBySlug(ctx context.Context, slug string) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(slug), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// PaymentToken fetches the client token the payment form needs
func (c *APIClient) PaymentToken(ctx context.Context) (string, error) {
	var result struct {
		ClientToken string `json:"client_token"`
	}
	if err := c.do(ctx, http.MethodGet, "/payment/token", nil, &result); err != nil {
		return "", err
	}
	return result.ClientToken, nil
}

// CheckoutLine is one cart line submitted at checkout
type CheckoutLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Checkout charges the cart and returns the recorded order
func (c *APIClient) Checkout(ctx context.Context, lines []CheckoutLine, nonce string) (*Order, error) {
	var ord Order
	err := c.do(ctx, http.MethodPost, "/payment/checkout", map[string]any{
		"items": lines,
		"nonce": nonce,
	}, &ord)
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

// MyOrders lists the authenticated buyer's orders
func (c *APIClient) MyOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
