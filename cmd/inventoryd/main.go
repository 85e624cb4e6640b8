// Command inventoryd serves a development inventory API from a JSON seed file.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gofalre.io/storefront/config"
	"gofalre.io/storefront/inventory"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	seed, err := inventory.LoadSeed(cfg.InventorySeed)
	if err != nil {
		logger.Fatal("failed to load seed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.InventoryAddr,
		Handler:           inventory.NewServer(seed, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("inventory server listening",
			zap.String("addr", cfg.InventoryAddr),
			zap.Int("products", len(seed.Products)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("inventory server failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
