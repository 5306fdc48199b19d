package app

import (
	"context"
	"log/slog"

	"TrendScout/internal/config"
	"TrendScout/internal/domain"
	"TrendScout/internal/infrastructure/discord"
	"TrendScout/internal/infrastructure/llm"
	"TrendScout/internal/infrastructure/marketplace"
	"TrendScout/internal/infrastructure/storage"
	"TrendScout/internal/infrastructure/trends"
	"TrendScout/internal/logging"
	"TrendScout/internal/source"
	"TrendScout/internal/usecase"
)

// Application wires configuration to use cases and lifecycle orchestration.
type Application struct {
	cfg          config.Config
	store        *storage.PostgresStore
	harvester    *usecase.Harvester
	collector    *usecase.Collector
	enricher     *usecase.Enricher
	orchestrator *usecase.Orchestrator
}

// New builds a runnable application instance; the only construction failure
// is an unreachable store.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	gemini := llm.NewGeminiClient(cfg.Gemini)

	registry := source.NewRegistry()
	registry.Register(trends.NewRSSSource(nil, cfg.Marketplace.UserAgent))
	registry.Register(trends.NewNewsSource(nil, cfg.Marketplace.UserAgent, gemini))

	harvester := usecase.NewHarvester(usecase.HarvesterDeps{
		Store:         store,
		Registry:      registry,
		Sources:       cfg.Sources,
		MaxCandidates: cfg.Scout.MaxCandidates,
		TargetProfit:  cfg.Scout.TargetProfit,
		Delay:         cfg.Scout.HarvestDelay(),
		Logger:        baseLogger.With("component", "harvester"),
	})

	collector := usecase.NewCollector(usecase.CollectorDeps{
		Store:      store,
		Market:     marketplace.NewMercari(cfg.Marketplace.BaseURL, cfg.Marketplace.UserAgent, cfg.Marketplace.SettleDelay()),
		PerKeyword: cfg.Scout.ListingsPerKeyword,
		Delay:      cfg.Scout.PolitenessDelay(),
		Logger:     baseLogger.With("component", "collector"),
	})

	enricher := usecase.NewEnricher(usecase.EnricherDeps{
		Store:    store,
		Judge:    gemini,
		Notifier: discord.NewNotifier(cfg.Discord.WebhookURL),
		Delay:    cfg.Scout.JudgmentDelay(),
		Logger:   baseLogger.With("component", "enricher"),
	})

	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Harvester: harvester,
		Collector: collector,
		Enricher:  enricher,
		Interval:  cfg.Scout.CycleInterval(),
		Backoff:   cfg.Scout.CrashBackoff(),
		BatchSize: cfg.Scout.BatchSize,
		Logger:    baseLogger.With("component", "orchestrator"),
	})

	return &Application{
		cfg:          cfg,
		store:        store,
		harvester:    harvester,
		collector:    collector,
		enricher:     enricher,
		orchestrator: orchestrator,
	}, nil
}

// Run drives the cycle loop until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	return a.orchestrator.Run(ctx)
}

// HarvestOnce executes a single harvesting pass.
func (a *Application) HarvestOnce(ctx context.Context) (int, error) {
	return a.harvester.Harvest(ctx)
}

// CollectOnce executes a single collection pass.
func (a *Application) CollectOnce(ctx context.Context) error {
	return a.collector.Collect(ctx)
}

// EnrichOnce executes a single enrichment pass over one batch.
func (a *Application) EnrichOnce(ctx context.Context) error {
	return a.enricher.Enrich(ctx, a.cfg.Scout.BatchSize)
}

// ResetAnalyzed returns all judged items to the pending state for
// re-analysis.
func (a *Application) ResetAnalyzed(ctx context.Context) (int64, error) {
	return a.store.ResetItems(ctx, []domain.Status{domain.StatusProfitable, domain.StatusDiscarded})
}

// Close releases the store connection.
func (a *Application) Close() error {
	return a.store.Close()
}
