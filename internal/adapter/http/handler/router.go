package handler

import (
	"time"

	"digital-wallet/internal/adapter/http/middleware"
	"digital-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	WalletSvc      ports.WalletService
	SettlementSvc  ports.SettlementService
	QuerySvc       ports.QueryService
	CatalogSvc     ports.CatalogService
	TokenSvc       ports.TokenService
	AuditSvc       ports.AuditService        // nil = audit logging disabled
	RateLimitStore middleware.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	OpenAPISpec    []byte
	PageSize       int
	RequestTimeout time.Duration
	Mode           string // gin mode; empty means release
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Mode == "" {
		deps.Mode = gin.ReleaseMode
	}
	gin.SetMode(deps.Mode)
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.MaxBodySize(middleware.DefaultMaxBodyBytes))
	r.Use(middleware.Timeout(deps.RequestTimeout))
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	swagger := NewSwaggerHandler(deps.OpenAPISpec)
	r.GET("/swagger", swagger.UI)
	r.GET("/swagger/spec", swagger.Spec)

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		return middleware.RateLimiter(deps.RateLimitStore, group, rules[group], deps.Logger)
	}

	userHandler := NewUserHandler(deps.AuthSvc)
	walletHandler := NewWalletHandler(deps.WalletSvc)
	txHandler := NewTransactionHandler(deps.SettlementSvc, deps.QuerySvc, deps.PageSize)
	catalogHandler := NewCatalogHandler(deps.CatalogSvc, deps.PageSize)
	dashboardHandler := NewDashboardHandler(deps.QuerySvc)
	jwtAuth := middleware.JWTAuth(deps.TokenSvc)

	v1 := r.Group("/api/v1")

	// Public
	v1.POST("/users", rl("users_create"), userHandler.Register)
	v1.POST("/auth/login", rl("auth_login"), userHandler.Login)
	v1.GET("/merchants", catalogHandler.ListMerchants)
	v1.GET("/merchants/:id", catalogHandler.GetMerchant)
	v1.GET("/merchants/:id/items", catalogHandler.ListItems)
	v1.GET("/items/:id", catalogHandler.GetItem)

	// Authenticated
	authed := v1.Group("", jwtAuth)
	{
		authed.GET("/users/me", userHandler.Me)

		authed.POST("/wallets", walletHandler.Create)
		authed.GET("/wallets/me", walletHandler.Get)
		authed.POST("/wallets/me/topup", rl("wallets_topup"), walletHandler.Topup)
		authed.GET("/wallets/me/reconcile", walletHandler.Reconcile)

		authed.POST("/transactions", rl("settle"), txHandler.Settle)
		authed.GET("/transactions", rl("dashboard"), txHandler.List)
		authed.GET("/transactions/:id", txHandler.Get)

		authed.POST("/merchants", rl("catalog_write"), catalogHandler.CreateMerchant)
		authed.POST("/merchants/:id/items", rl("catalog_write"), catalogHandler.CreateItem)

		authed.GET("/dashboard/stats", rl("dashboard"), dashboardHandler.GetStats)
	}

	return r
}
