// Command resetitems returns every judged item to status=new with its
// analysis cleared, so the next enrich pass re-judges the whole backlog.
// Meant for prompt or model changes; run it sparingly.
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

	reset, err := application.ResetAnalyzed(ctx)
	if err != nil {
		logger.Error("reset failed", "error", err)
		return
	}
	logger.Info("reset done", "items", reset)
}
