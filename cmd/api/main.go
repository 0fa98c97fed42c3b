package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DR-Danke/Kompass-sub005/docs"
	"github.com/DR-Danke/Kompass-sub005/internal/auth"
	"github.com/DR-Danke/Kompass-sub005/internal/config"
	"github.com/DR-Danke/Kompass-sub005/internal/database"
	"github.com/DR-Danke/Kompass-sub005/internal/freightrates"
	"github.com/DR-Danke/Kompass-sub005/internal/fx"
	"github.com/DR-Danke/Kompass-sub005/internal/http/handler"
	"github.com/DR-Danke/Kompass-sub005/internal/http/middleware"
	"github.com/DR-Danke/Kompass-sub005/internal/http/router"
	"github.com/DR-Danke/Kompass-sub005/internal/jobs"
	"github.com/DR-Danke/Kompass-sub005/internal/logger"
	"github.com/DR-Danke/Kompass-sub005/internal/repository"
	"github.com/DR-Danke/Kompass-sub005/internal/service"
	"github.com/DR-Danke/Kompass-sub005/internal/storage"
	"go.uber.org/zap"
)

// @title Kompass Quotation API
// @version 1.0
// @description Quotation pricing and lifecycle API for imported goods landed into Colombia
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@kompass.com.co

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token
// @Security BearerAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "kompass-api-staging.azurewebsites.net"
	case "production":
		docs.SwaggerInfo.Host = "api.kompass.com.co"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize storage for quotation exports
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize freight rates warehouse connection (optional)
	// The connection is read-only and the app continues without it;
	// national costs stay manual entry when it is absent
	freightClient, err := freightrates.NewClient(&cfg.FreightRates, log)
	if err != nil {
		log.Warn("Freight rates connection failed, continuing without it",
			zap.Error(err),
		)
		freightClient = nil
	}

	// Initialize repositories
	clientRepo := repository.NewClientRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	productRepo := repository.NewProductRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	quotationItemRepo := repository.NewQuotationItemRepository(db)
	statusHistoryRepo := repository.NewStatusHistoryRepository(db)
	shareTokenRepo := repository.NewShareTokenRepository(db)
	pricingSettingRepo := repository.NewPricingSettingRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	numberSequenceService := service.NewNumberSequenceService(numberSequenceRepo, log)

	quotationService := service.NewQuotationService(
		quotationRepo,
		quotationItemRepo,
		statusHistoryRepo,
		clientRepo,
		productRepo,
		activityRepo,
		pricingSettingRepo,
		numberSequenceService,
		log,
		db,
	)
	// Inject the exchange rate provider when one is configured;
	// without it every calculation must carry an explicit rate or
	// rely on the stored default
	if fxProvider := fx.NewHTTPProvider(&cfg.FX, log); fxProvider != nil {
		quotationService.SetRateProvider(fxProvider)
	}
	if freightClient != nil {
		quotationService.SetFreightRatesClient(freightClient)
	}

	clientService := service.NewClientService(clientRepo, quotationRepo, activityRepo, log)
	supplierService := service.NewSupplierService(supplierRepo, activityRepo, log)
	productService := service.NewProductService(productRepo, supplierRepo, activityRepo, log)
	settingsService := service.NewSettingsService(pricingSettingRepo, log)
	activityService := service.NewActivityService(activityRepo, log)
	shareService := service.NewShareService(shareTokenRepo, quotationService, &cfg.Share, cfg.Auth.Issuer, log)
	exportService := service.NewExportService(quotationService, fileStorage, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	tokenIssuer := auth.NewTokenIssuer(&cfg.Auth)

	// Initialize handlers
	quotationHandler := handler.NewQuotationHandler(quotationService, exportService, log)
	shareHandler := handler.NewShareHandler(shareService, log)
	clientHandler := handler.NewClientHandler(clientService, log)
	productHandler := handler.NewProductHandler(productService, log)
	supplierHandler := handler.NewSupplierHandler(supplierService, log)
	settingsHandler := handler.NewSettingsHandler(settingsService, log)
	activityHandler := handler.NewActivityHandler(activityService, log)
	authHandler := handler.NewAuthHandler(userRepo, tokenIssuer, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		quotationHandler,
		shareHandler,
		clientHandler,
		productHandler,
		supplierHandler,
		settingsHandler,
		activityHandler,
		authHandler,
	)

	// Initialize and start scheduler for the expiry sweep.
	// Quotations also expire lazily on read; the sweep keeps listings
	// and reports current between reads.
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		expiryJob := jobs.NewExpirySweepJob(quotationService, log)
		if err := scheduler.AddJob(jobs.ExpirySweepJobName, cfg.Jobs.ExpirySweepSchedule, expiryJob.Run); err != nil {
			log.Error("Failed to register expiry sweep job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with expiry sweep job",
				zap.String("cron_expr", cfg.Jobs.ExpirySweepSchedule),
			)
		}
	} else {
		log.Info("Background jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close freight rates connection if initialized
		if freightClient != nil {
			if err := freightClient.Close(); err != nil {
				log.Warn("Error closing freight rates connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
