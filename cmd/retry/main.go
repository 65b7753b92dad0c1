package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	billingapp "github.com/nau/billing/internal/application/billing"
	"github.com/nau/billing/internal/infrastructure/config"
	"github.com/nau/billing/internal/infrastructure/financialmanager"
	"github.com/nau/billing/internal/infrastructure/logger"
	"github.com/nau/billing/internal/infrastructure/persistence"
)

func main() {
	var (
		basketID     int64
		deltaSeconds int
		logLevel     string
	)

	flag.Int64Var(&basketID, "basket-id", 0, "Retry only the record for this basket, regardless of age or state")
	flag.IntVar(&deltaSeconds, "delta-seconds", int(billingapp.DefaultRetryMinAge/time.Second),
		"Only retry records older than this many seconds")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	partners := make(financialmanager.Config, len(cfg.FinancialManager.Partners))
	for code, partner := range cfg.FinancialManager.Partners {
		partners[code] = financialmanager.PartnerConfig{
			URL:            partner.URL,
			ReceiptLinkURL: partner.ReceiptLinkURL,
			Token:          partner.Token,
		}
	}
	service := billingapp.NewSyncService(
		persistence.NewTransactionRecordRepository(db.DB),
		persistence.NewOrderRepository(db.DB),
		persistence.NewBillingProfileRepository(db.DB),
		financialmanager.NewClient(partners),
		log,
	)

	opts := billingapp.RetryOptions{
		MinAge: time.Duration(deltaSeconds) * time.Second,
	}
	if basketID > 0 {
		opts.BasketID = &basketID
	}

	report, err := service.Retry(context.Background(), opts)
	if err != nil {
		log.Fatal("Retry sweep failed", zap.Error(err))
	}

	log.Info("Retry sweep finished",
		zap.Int("total", report.Total),
		zap.Int("attempted", report.Attempted),
		zap.Int("succeeded", report.Succeeded),
	)

	if !report.AllSucceeded() {
		log.Warn("Some transactions still need to be fixed manually",
			zap.Int("pending", report.Total-report.Succeeded),
			zap.String("admin_url", cfg.Billing.AdminBaseURL),
		)
		os.Exit(1)
	}
}
