package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingapp "github.com/nau/billing/internal/application/billing"
	"github.com/nau/billing/internal/infrastructure/config"
	"github.com/nau/billing/internal/infrastructure/financialmanager"
	"github.com/nau/billing/internal/infrastructure/logger"
	"github.com/nau/billing/internal/infrastructure/persistence"
	"github.com/nau/billing/internal/interfaces/http/handler"
	"github.com/nau/billing/internal/interfaces/http/middleware"
	"github.com/nau/billing/internal/interfaces/http/router"
)

const maxRequestBody = 1 << 20 // 1 MiB

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting billing service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	recordRepo := persistence.NewTransactionRecordRepository(db.DB)
	orderRepo := persistence.NewOrderRepository(db.DB)
	profileRepo := persistence.NewBillingProfileRepository(db.DB)

	// Financial manager client
	partners := make(financialmanager.Config, len(cfg.FinancialManager.Partners))
	for code, partner := range cfg.FinancialManager.Partners {
		partners[code] = financialmanager.PartnerConfig{
			URL:            partner.URL,
			ReceiptLinkURL: partner.ReceiptLinkURL,
			Token:          partner.Token,
		}
	}
	manager := financialmanager.NewClient(partners)

	// Application services
	syncService := billingapp.NewSyncService(recordRepo, orderRepo, profileRepo, manager, log)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.RequestID(),
		middleware.BodyLimit(maxRequestBody),
	)

	r := router.NewRouter(engine)
	r.Register(handler.NewBillingHandler(syncService, profileRepo, recordRepo, cfg.Billing.DefaultCountry))
	r.Register(handler.NewSystemHandler(db))
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
