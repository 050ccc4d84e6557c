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

	"jizhang/internal/amqp"
	"jizhang/internal/config"
	"jizhang/internal/engine"
	apphttp "jizhang/internal/http"
	"jizhang/internal/ledger"
	applog "jizhang/internal/log"
	"jizhang/internal/member"
	"jizhang/internal/storage"
)

func main() {
	// .env is for local development; missing file is fine in production
	_ = godotenv.Load()

	logger := applog.New("jizhang", slog.LevelInfo)
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	led := ledger.New(repo, cfg.CacheSize)
	if err := led.Reload(context.Background()); err != nil {
		logger.Error("Failed to warm ledger cache", "error", err)
		os.Exit(1)
	}

	// Record sync publishing is optional; without a broker the engine
	// still serves and the spreadsheet mirror simply lags behind.
	var publisher engine.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	resolver := member.NewResolver(cfg.MemberNames())
	eng := engine.New(led, resolver, publisher, cfg.Location(), cfg.Anchor(), cfg.BudgetCents())

	srv := apphttp.NewServer(":"+cfg.Port, eng, led, cfg.Location())
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

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
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting jizhang server",
		"port", cfg.Port,
		"timezone", cfg.Timezone,
		"week_anchor", cfg.WeekAnchor,
		"cache_size", cfg.CacheSize)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
