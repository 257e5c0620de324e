package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ninja813/aml-manager-backend/internal/chain"
	"github.com/ninja813/aml-manager-backend/internal/config"
	"github.com/ninja813/aml-manager-backend/internal/logger"
	"github.com/ninja813/aml-manager-backend/internal/server"
)

// @title           Treasury Delegated-Transfer API
// @version         1.0
// @description     Signature-based delegated ERC-20 transfers for the treasury

// @host      localhost:8000
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the operator token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger(cfg.Stage)
	defer func() { _ = logger.Sync() }()

	if cfg.Stage == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	gateway, err := chain.NewClient(ctx, cfg.RPCURL, cfg.TreasuryPrivateKey, cfg.TreasuryAddress, cfg.ExpectedChainID)
	cancel()
	if err != nil {
		logger.Fatal("Unable to create chain client", zap.Error(err))
	}
	defer gateway.Close()

	// Metadata sanity probe; failures warn but do not abort startup
	probeCtx, probeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	gateway.ProbeToken(probeCtx, cfg.TokenAddress)
	probeCancel()

	router := gin.New()
	router.Use(gin.Recovery())

	server.InitializeHandlers(cfg, gateway)
	server.InitializeRoutes(router, cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting",
			zap.String("port", cfg.Port),
			zap.String("stage", cfg.Stage),
			zap.String("delegation_mode", cfg.DelegationMode),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
