package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"carledger/internal/amqp"
	"carledger/internal/cache"
	"carledger/internal/config"
	"carledger/internal/core"
	apphttp "carledger/internal/http"
	applog "carledger/internal/log"
	"carledger/internal/report"
	"carledger/internal/services"
	"carledger/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	logger.Info("Starting carledger server")

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	// Initialize SQLite repository
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Initialize AMQP publisher for audit export sync (optional)
	var publisher services.RecordSyncPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Writes still land locally and the pending sweep catches up,
			// so a missing broker must not block the API.
			logger.Warn("AMQP unavailable, records will sync via pending sweep", applog.FieldError, err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	// Vehicle list cache with periodic expiry cleanup
	listCache := cache.NewLRUCache[[]core.Vehicle](16, cfg.VehicleListCacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(listCache)
	cacheManager.StartCleanup(cfg.VehicleListCacheTTL)
	defer cacheManager.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Vehicles: services.NewVehicleService(repo, publisher, listCache, logger),
		Expenses: services.NewExpenseService(repo, publisher, listCache, logger),
		Profile:  services.NewProfileService(repo, logger),
		Reports:  report.NewService(repo, logger),
		Logger:   logger,
	}, apphttp.Options{RateLimitPerMinute: cfg.RateLimitPerMinute})

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting carledger HTTP server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
