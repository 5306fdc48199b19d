package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TrendScout/internal/app"
	"TrendScout/internal/config"
	"TrendScout/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("cannot start", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.CollectOnce(ctx); err != nil {
		logger.Error("collect failed", "error", err)
		return
	}
	logger.Info("collect done")
}
