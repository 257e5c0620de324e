package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ninja813/aml-manager-backend/internal/chain"
	"github.com/ninja813/aml-manager-backend/internal/config"
	"github.com/ninja813/aml-manager-backend/internal/handlers"
	"github.com/ninja813/aml-manager-backend/internal/middleware"
	"github.com/ninja813/aml-manager-backend/internal/services"
)

// Handler Definitions
var (
	permitHandler   *handlers.PermitHandler
	treasuryHandler *handlers.TreasuryHandler
)

// InitializeHandlers wires the core services and handlers. The delegation
// strategy and the permit spender are fixed here, at configuration time.
func InitializeHandlers(cfg *config.Config, gateway chain.Gateway) {
	store := services.NewMemoryAuthorizationStore()
	strategy := services.StrategyForMode(cfg.DelegationMode)

	permits := services.NewPermitService(
		gateway,
		cfg.TokenAddress,
		strategy.Spender(gateway),
		cfg.PermitDomainName,
		cfg.PermitDomainVersion,
		cfg.PermitValidity,
	)
	verifier := services.NewSignatureService()
	authorizations := services.NewAuthorizationService(verifier, store)
	transfers := services.NewTransferService(gateway, store, strategy, cfg.TokenAddress, cfg.RouterAddress, cfg.HasRouter)

	commonServices := handlers.NewCommonServices(permits, authorizations, transfers)

	permitHandler = handlers.NewPermitHandler(commonServices)
	treasuryHandler = handlers.NewTreasuryHandler(commonServices)
}

// InitializeRoutes registers middleware and the API routes
func InitializeRoutes(router *gin.Engine, cfg *config.Config) {
	// Configure and apply CORS middleware
	router.Use(configureCORS(cfg))

	// Add correlation ID middleware for request tracing
	router.Use(middleware.CorrelationIDMiddleware())

	// Apply rate limiting middleware globally
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router.Use(rateLimiter.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes: challenge, authorization, status
		permit := v1.Group("/permit")
		{
			permit.GET("/message", permitHandler.GetPermitMessage)
			permit.POST("/authorize", permitHandler.AuthorizePermit)
			permit.GET("/status/:address", permitHandler.GetPermitStatus)
		}

		// Operator routes: everything that moves funds requires a token
		treasury := v1.Group("/treasury")
		treasury.Use(middleware.RequireOperatorToken(cfg.JWTSecret))
		{
			treasury.POST("/transfer", treasuryHandler.ExecuteTransfer)
		}
	}
}

// configureCORS returns a configured CORS middleware
func configureCORS(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.CorrelationIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.CorrelationIDHeader}
	return cors.New(corsConfig)
}
