package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bilancio/internal/amqp"
	"bilancio/internal/config"
	"bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := log.FromEnv(log.ComponentRecurring)
	log.SetDefault(logger)

	logger.Info("Starting recurring-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	db, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer db.Close()

	// Postings created here flow through the same lifecycle as API writes,
	// so they are exported when AMQP is configured.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without export", "error", err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP publisher initialized")
		}
	} else {
		logger.Info("AMQP disabled, postings will not be exported")
	}

	balance := services.NewBalanceService(db.Accounts)
	validator := services.NewValidationService(db.Accounts)
	lifecycle := services.NewTransactionService(db.Transactions, validator, balance, publisher)
	recurring := services.NewRecurringService(db.Monthly, db.Transactions, lifecycle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Recurring posting worker configured",
		"interval", cfg.RecurringInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	if count, err := recurring.PostDueAll(ctx, time.Now()); err != nil {
		logger.Error("Initial posting run failed", "error", err)
	} else {
		logger.Info("Initial posting run complete", "postings_created", count)
	}

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				count, err := recurring.PostDueAll(ctx, now)
				if err != nil {
					logger.Error("Posting run failed", "error", err)
				} else if count > 0 {
					logger.Info("Posting run complete", "postings_created", count)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Recurring-worker shutdown complete")
}
