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
	logger, closeLog := logging.NewWithFile(cfg.Logging.Level, cfg.Logging.File)
	defer closeLog()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("cannot start", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		logger.Error("scout stopped", "error", err)
		os.Exit(1)
	}
}
