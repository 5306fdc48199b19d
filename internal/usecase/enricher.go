package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"TrendScout/internal/domain"
	"TrendScout/internal/ports"
)

// Enricher pulls a bounded batch of unanalyzed items, asks the judgment
// service for a verdict on each, and writes the verdict plus the derived
// lifecycle status back.
type Enricher struct {
	store    ports.Store
	judge    ports.JudgmentClient
	notifier ports.Notifier
	delay    time.Duration
	logger   *slog.Logger
}

// EnricherDeps wires the enrichment phase's collaborators.
type EnricherDeps struct {
	Store    ports.Store
	Judge    ports.JudgmentClient
	Notifier ports.Notifier
	Delay    time.Duration
	Logger   *slog.Logger
}

// NewEnricher constructs the enrichment phase.
func NewEnricher(deps EnricherDeps) *Enricher {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		store:    deps.Store,
		judge:    deps.Judge,
		notifier: deps.Notifier,
		delay:    deps.Delay,
		logger:   logger,
	}
}

// Enrich processes at most batchSize pending items sequentially. A failed
// judgment leaves the item at status=new for a future cycle; a profitable
// verdict triggers a synchronous notification whose failure never rolls
// back the status write.
func (e *Enricher) Enrich(ctx context.Context, batchSize int) error {
	items, err := e.store.ListItemsByStatus(ctx, domain.StatusNew, batchSize)
	if err != nil {
		return fmt.Errorf("list pending items: %w", err)
	}
	if len(items) == 0 {
		e.logger.Info("no items awaiting analysis")
		return nil
	}

	e.logger.Info("analyzing batch", "count", len(items))

	for _, item := range items {
		e.enrichOne(ctx, item)

		// Fixed pause between items regardless of outcome; the judgment
		// service rate-limits aggressively.
		if err := sleepCtx(ctx, e.delay); err != nil {
			return err
		}
	}

	return nil
}

func (e *Enricher) enrichOne(ctx context.Context, item domain.ListingItem) {
	e.logger.Info("analyzing item", "item", item.ItemID, "title", item.Title, "price", item.Price)

	verdict, err := e.judge.Judge(ctx, item.Title, item.Price)
	if err != nil {
		// The item stays at status=new and is retried in a later cycle.
		e.logger.Warn("judgment failed, leaving item pending", "item", item.ItemID, "error", err)
		return
	}

	status := domain.StatusForVerdict(verdict)
	if err := e.store.UpdateItemAnalysis(ctx, item.ID, verdict, status); err != nil {
		e.logger.Warn("analysis write failed, leaving item pending", "item", item.ItemID, "error", err)
		return
	}

	e.logger.Info("verdict stored", "item", item.ItemID, "rank", verdict.InvestmentValue, "status", status)

	if status != domain.StatusProfitable || e.notifier == nil {
		return
	}

	// At-most-once alert: a failed send is logged and swallowed, the status
	// write above stands either way.
	if err := e.notifier.NotifyProfitable(ctx, item, verdict); err != nil {
		e.logger.Warn("notification failed", "item", item.ItemID, "error", err)
	}
}
