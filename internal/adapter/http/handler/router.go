package handler

import (
	"padlink-ledger/internal/adapter/http/middleware"
	redisStore "padlink-ledger/internal/adapter/storage/redis"
	"padlink-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	WalletSvc      ports.WalletService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Deep health check, pings PostgreSQL and Redis
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)
	ledger := v1.Group("/ledger")
	{
		ledger.POST("/transactions", rl("ledger_append"), ledgerHandler.AppendTransaction)
		ledger.GET("/blocks", rl("ledger_read"), ledgerHandler.ListBlocks)
		ledger.GET("/blocks/latest", rl("ledger_read"), ledgerHandler.GetLatestBlock)
		ledger.GET("/verify", rl("ledger_verify"), ledgerHandler.VerifyChain)
		ledger.GET("/donations/:donationId", rl("ledger_read"), ledgerHandler.GetBlocksByDonation)
		ledger.GET("/users/:userId", rl("ledger_read"), ledgerHandler.GetBlocksByUser)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallets := v1.Group("/wallets")
	{
		wallets.POST("", rl("wallet_mutate"), walletHandler.CreateWallet)
		wallets.POST("/credit", rl("wallet_mutate"), walletHandler.Credit)
		wallets.POST("/debit", rl("wallet_mutate"), walletHandler.Debit)
		wallets.POST("/transfer", rl("wallet_mutate"), walletHandler.Transfer)
		wallets.GET("/:userId/balance", rl("wallet_read"), walletHandler.GetBalance)
		wallets.GET("/:userId/transactions", rl("wallet_read"), walletHandler.GetHistory)
		wallets.GET("/:userId/state", rl("wallet_read"), walletHandler.GetState)
		wallets.GET("/:userId/reconcile", rl("wallet_read"), walletHandler.Reconcile)
	}

	return r
}
