package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Orchestrator drives harvest, collect and enrich in sequence on a fixed
// interval, isolating failures per phase.
type Orchestrator struct {
	harvester *Harvester
	collector *Collector
	enricher  *Enricher
	interval  time.Duration
	backoff   time.Duration
	batchSize int
	logger    *slog.Logger
}

// OrchestratorDeps wires the cycle loop.
type OrchestratorDeps struct {
	Harvester *Harvester
	Collector *Collector
	Enricher  *Enricher
	Interval  time.Duration
	Backoff   time.Duration
	BatchSize int
	Logger    *slog.Logger
}

// NewOrchestrator constructs the cycle loop.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		harvester: deps.Harvester,
		collector: deps.Collector,
		enricher:  deps.Enricher,
		interval:  deps.Interval,
		backoff:   deps.Backoff,
		batchSize: deps.BatchSize,
		logger:    logger,
	}
}

// Run loops cycles until the context is cancelled. After a normal cycle the
// loop waits the full interval; a cycle that crashes past every phase
// wrapper gets the short backoff instead, so a transient crash retries fast.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("scout loop started", "interval", o.interval, "backoff", o.backoff)

	for {
		wait := o.interval
		if err := o.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				o.logger.Info("scout loop stopped")
				return nil
			}
			o.logger.Error("cycle crashed, backing off", "error", err)
			wait = o.backoff
		}

		o.logger.Info("cycle finished, waiting", "wait", wait)
		if err := sleepCtx(ctx, wait); err != nil {
			o.logger.Info("scout loop stopped")
			return nil
		}
	}
}

// RunCycle executes one harvest→collect→enrich pass. Each phase is wrapped
// independently: its error or panic is logged and the cycle proceeds. The
// returned error is the defensive outer catch and should not normally fire.
func (o *Orchestrator) RunCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()

	o.logger.Info("cycle starting")

	o.runPhase(ctx, "harvest", func(ctx context.Context) error {
		_, err := o.harvester.Harvest(ctx)
		return err
	})
	o.runPhase(ctx, "collect", o.collector.Collect)
	o.runPhase(ctx, "enrich", func(ctx context.Context) error {
		return o.enricher.Enrich(ctx, o.batchSize)
	})

	return nil
}

// runPhase contains one phase's failure: a harvester failure must not block
// collection, a collection failure must not block enrichment.
func (o *Orchestrator) runPhase(ctx context.Context, name string, phase func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("phase panicked", "phase", name, "panic", r)
		}
	}()

	if ctx.Err() != nil {
		return
	}

	if err := phase(ctx); err != nil {
		o.logger.Error("phase failed", "phase", name, "error", err)
	}
}
