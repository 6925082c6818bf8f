package router

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// Dependencies holds everything the HTTP surface needs
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	JWTService *auth.JWTService
	Blacklist  auth.TokenBlacklist
	UserRepo   identity.UserRepository

	AuthHandler     *handler.AuthHandler
	CategoryHandler *handler.CategoryHandler
	ProductHandler  *handler.ProductHandler
	OrderHandler    *handler.OrderHandler
	SystemHandler   *handler.SystemHandler

	// MetricsRegistry is optional; when nil the metrics endpoint and
	// request instrumentation are disabled regardless of config
	MetricsRegistry *prometheus.Registry
}

// New assembles the gin engine: global middleware, the metrics and
// health endpoints, and the versioned API routes.
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(deps.Logger))
	engine.Use(logger.Recovery(deps.Logger))
	engine.Use(middleware.Secure())

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))

	if deps.MetricsRegistry != nil && cfg.Metrics.Enabled {
		httpMetrics := middleware.NewHTTPMetrics(deps.MetricsRegistry)
		engine.Use(httpMetrics.Middleware())
		engine.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(
			deps.MetricsRegistry,
			promhttp.HandlerOpts{},
		)))
	}

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	engine.GET("/health", deps.SystemHandler.Health)

	registerAPIRoutes(engine, deps)

	return engine
}

func registerAPIRoutes(engine *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	authCfg := middleware.AuthConfig{
		JWTService: deps.JWTService,
		Blacklist:  deps.Blacklist,
		UserRepo:   deps.UserRepo,
		Logger:     deps.Logger,
	}
	requireAuth := middleware.RequireAuth(authCfg)
	requireAdmin := middleware.RequireAdmin(authCfg)

	defaultTenant, err := uuid.Parse(cfg.App.DefaultTenantID)
	if err != nil {
		defaultTenant = uuid.Nil
	}
	resolveTenant := middleware.ResolveTenant(defaultTenant)

	api := engine.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		if cfg.HTTP.AuthRateLimitEnabled {
			limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
			authGroup.POST("/register", middleware.RateLimit(limiter), resolveTenant, deps.AuthHandler.Register)
			authGroup.POST("/login", middleware.RateLimit(limiter), resolveTenant, deps.AuthHandler.Login)
			authGroup.POST("/forgot-password", middleware.RateLimit(limiter), resolveTenant, deps.AuthHandler.ForgotPassword)
		} else {
			authGroup.POST("/register", resolveTenant, deps.AuthHandler.Register)
			authGroup.POST("/login", resolveTenant, deps.AuthHandler.Login)
			authGroup.POST("/forgot-password", resolveTenant, deps.AuthHandler.ForgotPassword)
		}

		authGroup.POST("/logout", requireAuth, deps.AuthHandler.Logout)
		authGroup.GET("/me", requireAuth, deps.AuthHandler.CurrentUser)
		authGroup.PUT("/profile", requireAuth, resolveTenant, deps.AuthHandler.UpdateProfile)

		// Route guard confirmation probes. RequireAdmin always runs
		// behind RequireAuth, never on its own.
		authGroup.GET("/user-auth", requireAuth, deps.AuthHandler.UserAuth)
		authGroup.GET("/admin-auth", requireAuth, requireAdmin, deps.AuthHandler.AdminAuth)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", resolveTenant, deps.CategoryHandler.List)
		categories.GET("/:slug", resolveTenant, deps.CategoryHandler.GetBySlug)

		categories.POST("", requireAuth, requireAdmin, resolveTenant, deps.CategoryHandler.Create)
		categories.PUT("/:id", requireAuth, requireAdmin, resolveTenant, deps.CategoryHandler.Update)
		categories.DELETE("/:id", requireAuth, requireAdmin, resolveTenant, deps.CategoryHandler.Delete)
	}

	products := api.Group("/products")
	{
		products.GET("", resolveTenant, deps.ProductHandler.List)
		products.GET("/related/:pid/:cid", resolveTenant, deps.ProductHandler.Related)
		products.GET("/category/:slug", resolveTenant, deps.ProductHandler.ListByCategory)
		products.GET("/:slug", resolveTenant, deps.ProductHandler.GetBySlug)

		products.POST("", requireAuth, requireAdmin, resolveTenant, deps.ProductHandler.Create)
		products.PUT("/:id", requireAuth, requireAdmin, resolveTenant, deps.ProductHandler.Update)
		products.DELETE("/:id", requireAuth, requireAdmin, resolveTenant, deps.ProductHandler.Delete)
	}

	paymentGroup := api.Group("/payment")
	{
		paymentGroup.GET("/token", requireAuth, resolveTenant, deps.OrderHandler.ClientToken)
		paymentGroup.POST("/checkout", requireAuth, resolveTenant, deps.OrderHandler.Checkout)
	}

	orders := api.Group("/orders")
	{
		orders.GET("", requireAuth, resolveTenant, deps.OrderHandler.ListMine)
		orders.GET("/all", requireAuth, requireAdmin, resolveTenant, deps.OrderHandler.ListAll)
		orders.PUT("/:id/status", requireAuth, requireAdmin, resolveTenant, deps.OrderHandler.UpdateStatus)
	}
}
