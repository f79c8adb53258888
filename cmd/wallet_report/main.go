package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet_report/internal/app/normalizer"
	"wallet_report/internal/app/port"
	"wallet_report/internal/app/service"
	"wallet_report/internal/client"
	"wallet_report/internal/infrastructure/configloader"
	clientprovider "wallet_report/internal/infrastructure/network/client"
	networkdefinition "wallet_report/internal/infrastructure/network/definition"
	"wallet_report/internal/infrastructure/restapi"
	"wallet_report/internal/pkg/logger"
	"wallet_report/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

const defaultConfigPath = "config/config.yml"

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration from %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	zapLogger, err := logger.NewZap(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	logger.Init(zapLogger, cfg.Logging.Level)
	appLogger := logger.NewSlogAdapter()
	logger.Info("Configuration loaded", "path", cfgPath, "default_blockchain", cfg.BitsCrunch.DefaultBlockchain)

	metrics.MustRegisterMetrics()

	networkProvider := networkdefinition.NewNetworkDefinitionProvider(appLogger, cfg.Networks)

	var chainClients port.BlockchainClientProvider
	if cfg.Onchain.Enabled {
		chainClients = clientprovider.NewEVMClientProvider(cfg.Onchain, appLogger, nil)
		logger.Info("On-chain balance fallback enabled")
	}

	analyticsClient := client.NewBitsCrunchClient(client.BitsCrunchOptions{
		BaseURL:           cfg.BitsCrunch.BaseURL,
		APIKey:            cfg.BitsCrunch.APIKey,
		Timeout:           time.Duration(cfg.BitsCrunch.RequestTimeoutMillis) * time.Millisecond,
		MinInterval:       time.Duration(cfg.BitsCrunch.MinRequestIntervalMillis) * time.Millisecond,
		DefaultBlockchain: cfg.BitsCrunch.DefaultBlockchain,
	}, zapLogger)

	narrativeClient, err := client.NewNarrativeClient(client.NarrativeOptions{
		Provider:    cfg.LLM.Provider,
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.RequestTimeoutMillis) * time.Millisecond,
	}, zapLogger)
	if err != nil {
		logger.Fatal("Failed to initialize narrative client", "error", err)
	}
	logger.Info("Narrative client initialized", "provider", narrativeClient.Provider(), "model", cfg.LLM.Model)

	reportService := service.NewReportService(analyticsClient, narrativeClient, networkProvider, chainClients, appLogger, service.ReportOptions{
		DefaultBlockchain:     cfg.BitsCrunch.DefaultBlockchain,
		TransactionLimit:      cfg.Report.TransactionLimit,
		TransactionTimeRange:  cfg.Report.TransactionTimeRange,
		MaxConcurrentRequests: cfg.Report.MaxConcurrentRequests,
		OnchainBalance:        cfg.Onchain.Enabled,
		Risk: normalizer.Options{
			LargeHolderThresholdUSD: cfg.Risk.LargeHolderBalanceUSD,
			MixerVolumeThreshold:    cfg.Risk.MixerVolumeThreshold,
			SanctionVolumeThreshold: cfg.Risk.SanctionVolumeThresh,
		},
	})
	insightService := service.NewNFTInsightService(analyticsClient, networkProvider, appLogger,
		cfg.BitsCrunch.DefaultBlockchain, cfg.Report.MaxConcurrentRequests)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := restapi.NewReportHandler(reportService, insightService, appLogger)
	router := restapi.SetupRouter(handler, restapi.RouterOptions{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		SwaggerEnabled:  cfg.Swagger.Enabled,
		SwaggerPath:     cfg.Swagger.Path,
		SwaggerSpecFile: cfg.Swagger.SpecFile,
	}, zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start HTTP server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received, stopping HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	} else {
		logger.Info("HTTP server stopped")
	}
}
