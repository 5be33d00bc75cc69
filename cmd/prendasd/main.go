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

	"go.uber.org/zap"

	"lostfound-desk/config"
	"lostfound-desk/internal/api"
	"lostfound-desk/internal/db"
	"lostfound-desk/internal/logging"
	"lostfound-desk/internal/notification"
	"lostfound-desk/internal/store"
)

const shutdownGrace = 5 * time.Second

func main() {
	configPath := os.Getenv("PRENDAS_CONFIG")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging, "prendasd")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("configuration loaded", zap.String("path", configPath))

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	// Cancelled on SIGINT/SIGTERM; mail workers stop with it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mailer := notification.NewWorkerPool(cfg.Mailer, nil, logger)
	mailer.Start(ctx)
	logger.Info("mail workers started",
		zap.Bool("enabled", cfg.Mailer.Enabled),
		zap.Int("pool_size", cfg.Mailer.PoolSize),
		zap.Int("queue_size", cfg.Mailer.QueueSize),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(store.NewGormStore(gormDB, logger), mailer, cfg.Server, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping services")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
