package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	identityapp "github.com/storefront/backend/internal/application/identity"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"github.com/storefront/backend/internal/interfaces/http/handler"
)

const testTenantID = "00000000-0000-0000-0000-000000000001"

type testApp struct {
	engine   *gin.Engine
	db       *gorm.DB
	userRepo *persistence.GormUserRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.UserModel{},
		&catalog.Category{},
		&catalog.Product{},
		&models.OrderModel{},
		&models.OrderItemModel{},
	))

	cfg := &config.Config{
		App: config.AppConfig{
			Name:            "storefront-backend",
			Env:             "test",
			DefaultTenantID: testTenantID,
		},
		JWT: config.JWTConfig{
			Secret:     "router-test-secret-32-characters!!!",
			Expiration: time.Hour,
			Issuer:     "storefront-test",
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	log := zap.NewNop()
	jwtService := auth.NewJWTService(cfg.JWT)
	blacklist := auth.NewInMemoryTokenBlacklist()

	userRepo := persistence.NewGormUserRepository(db)
	categoryRepo := persistence.NewGormCategoryRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo)
	productService := catalogapp.NewProductService(productRepo, categoryRepo)
	orderService := orderapp.NewOrderService(orderRepo, productRepo, payment.NewStubGateway(), log)

	engine := New(Dependencies{
		Config:          cfg,
		Logger:          log,
		JWTService:      jwtService,
		Blacklist:       blacklist,
		UserRepo:        userRepo,
		AuthHandler:     handler.NewAuthHandler(authService),
		CategoryHandler: handler.NewCategoryHandler(categoryService),
		ProductHandler:  handler.NewProductHandler(productService),
		OrderHandler:    handler.NewOrderHandler(orderService),
		SystemHandler: handler.NewSystemHandler("test", map[string]handler.HealthChecker{
			"database": handler.HealthCheckFunc(func() error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Ping()
			}),
		}),
		MetricsRegistry: prometheus.NewRegistry(),
	})

	return &testApp{engine: engine, db: db, userRepo: userRepo}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) register(t *testing.T, email string) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "secret123",
		"answer":   "blue",
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func (a *testApp) promote(t *testing.T, email string) {
	t.Helper()
	res := a.db.Model(&models.UserModel{}).Where("email = ?", email).Update("role", 1)
	require.NoError(t, res.Error)
	require.EqualValues(t, 1, res.RowsAffected)
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_GuardProbes(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "buyer@example.com")
	token := app.login(t, "buyer@example.com")

	t.Run("user-auth with raw token", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/auth/user-auth", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	})

	t.Run("user-auth with bearer prefix", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/auth/user-auth", "Bearer "+token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("user-auth without token", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/auth/user-auth", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Invalid or expired token"}`, w.Body.String())
	})

	t.Run("admin-auth denied for buyer", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/auth/admin-auth", token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"UnAuthorized Access"}`, w.Body.String())
	})

	t.Run("admin-auth allowed after promotion", func(t *testing.T) {
		app.promote(t, "buyer@example.com")
		w := app.do(t, http.MethodGet, "/api/v1/auth/admin-auth", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	})
}

func TestRouter_AdminRoutes(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "admin@example.com")
	app.promote(t, "admin@example.com")
	adminToken := app.login(t, "admin@example.com")

	app.register(t, "buyer@example.com")
	buyerToken := app.login(t, "buyer@example.com")

	t.Run("admin creates category", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/v1/categories", adminToken, map[string]string{"name": "Books"})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("buyer cannot create category", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/v1/categories", buyerToken, map[string]string{"name": "Music"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"UnAuthorized Access"}`, w.Body.String())
	})

	t.Run("anonymous cannot create category", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/v1/categories", "", map[string]string{"name": "Music"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Invalid or expired token"}`, w.Body.String())
	})
}

func TestRouter_PaymentTokenRequiresAuth(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "buyer@example.com")
	token := app.login(t, "buyer@example.com")

	t.Run("anonymous cannot mint a client token", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/payment/token", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Invalid or expired token"}`, w.Body.String())
	})

	t.Run("buyer receives a client token", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/payment/token", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data struct {
				ClientToken string `json:"client_token"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Data.ClientToken)
	})
}

func TestRouter_PublicBrowse(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "admin@example.com")
	app.promote(t, "admin@example.com")
	adminToken := app.login(t, "admin@example.com")

	w := app.do(t, http.MethodPost, "/api/v1/categories", adminToken, map[string]string{"name": "Books"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = app.do(t, http.MethodPost, "/api/v1/products", adminToken, map[string]any{
		"name":        "Go in Action",
		"description": "A book about Go",
		"price":       "39.99",
		"category_id": created.Data.ID,
		"quantity":    5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("anonymous browse via tenant header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		req.Header.Set("X-Tenant-ID", testTenantID)
		rec := httptest.NewRecorder()
		app.engine.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data []struct {
				Slug string `json:"slug"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "go-in-action", resp.Data[0].Slug)
	})

	t.Run("anonymous browse falls back to default tenant", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/products/go-in-action", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("foreign tenant sees nothing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		req.Header.Set("X-Tenant-ID", uuid.NewString())
		rec := httptest.NewRecorder()
		app.engine.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data []json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.Data)
	})
}

func TestRouter_CheckoutFlow(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "admin@example.com")
	app.promote(t, "admin@example.com")
	adminToken := app.login(t, "admin@example.com")

	w := app.do(t, http.MethodPost, "/api/v1/categories", adminToken, map[string]string{"name": "Books"})
	require.Equal(t, http.StatusCreated, w.Code)
	var category struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &category))

	w = app.do(t, http.MethodPost, "/api/v1/products", adminToken, map[string]any{
		"name":        "Go in Action",
		"price":       "25.00",
		"category_id": category.Data.ID,
		"quantity":    10,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var product struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))

	app.register(t, "buyer@example.com")
	buyerToken := app.login(t, "buyer@example.com")

	w = app.do(t, http.MethodPost, "/api/v1/payment/checkout", buyerToken, map[string]any{
		"items": []map[string]any{
			{"product_id": product.Data.ID, "quantity": 2},
		},
		"nonce": "fake-valid-nonce",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = app.do(t, http.MethodGet, "/api/v1/orders", buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders struct {
		Data []struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders.Data, 1)
	assert.Equal(t, "processing", orders.Data[0].Status)

	t.Run("buyer cannot list all orders", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/orders/all", buyerToken, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("admin lists and advances the order", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/orders/all", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var all struct {
			Data []struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
		require.Len(t, all.Data, 1)

		w = app.do(t, http.MethodPut, "/api/v1/orders/"+all.Data[0].ID+"/status", adminToken,
			map[string]string{"status": "shipped"})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
