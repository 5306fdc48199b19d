package usecase

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendScout/internal/domain"
	"TrendScout/internal/ports"
)

func TestCycleEndToEnd(t *testing.T) {
	store := watchStore(t, "iPad Air")
	market := &fakeMarket{listings: map[string][]ports.RawListing{
		"iPad Air": {
			{
				Title:        "iPad Air 4",
				ImageURL:     "https://cdn.example/m1.jpg",
				PriceText:    "¥28,000",
				CanonicalURL: "https://jp.mercari.com/item/m1",
			},
		},
	}}
	judge := &fakeJudge{verdicts: map[string]domain.Verdict{
		"iPad Air 4": verdict(domain.RankA),
	}}
	notifier := &fakeNotifier{}

	o := NewOrchestrator(OrchestratorDeps{
		Harvester: newTestHarvester(t, store),
		Collector: newTestCollector(t, store, market),
		Enricher:  newTestEnricher(t, store, judge, notifier),
		BatchSize: 30,
		Logger:    slog.Default(),
	})

	require.NoError(t, o.RunCycle(context.Background()))

	item, ok := store.itemByKey(domain.PlatformMercari, "m1")
	require.True(t, ok)
	assert.Equal(t, 28000, item.Price)
	assert.Equal(t, domain.StatusProfitable, item.Status)
	require.NotNil(t, item.Analysis)
	assert.Equal(t, domain.RankA, item.Analysis.InvestmentValue)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "m1", notifier.sent[0].ItemID)
}

func TestCycleIsolatesPhaseFailures(t *testing.T) {
	// Collection cannot even list keywords, but enrichment still runs.
	collectStore := &memStore{listKeywordsErr: assert.AnError}
	enrichStore := &memStore{}
	pendingItem(t, enrichStore, "m1", "rank C item", 1000)

	judge := &fakeJudge{verdicts: map[string]domain.Verdict{
		"rank C item": verdict(domain.RankC),
	}}

	o := NewOrchestrator(OrchestratorDeps{
		Harvester: newTestHarvester(t, &memStore{}),
		Collector: newTestCollector(t, collectStore, &fakeMarket{}),
		Enricher:  newTestEnricher(t, enrichStore, judge, &fakeNotifier{}),
		BatchSize: 30,
		Logger:    slog.Default(),
	})

	require.NoError(t, o.RunCycle(context.Background()))
	assert.Equal(t, 1, judge.calls)
}

func TestCycleContainsPhasePanics(t *testing.T) {
	store := &memStore{}
	pendingItem(t, store, "m1", "rank C item", 1000)

	judge := &fakeJudge{verdicts: map[string]domain.Verdict{
		"rank C item": verdict(domain.RankC),
	}}

	// A nil collector panics inside its phase wrapper; the cycle must still
	// reach enrichment and report a clean cycle.
	o := NewOrchestrator(OrchestratorDeps{
		Harvester: newTestHarvester(t, store),
		Collector: nil,
		Enricher:  newTestEnricher(t, store, judge, &fakeNotifier{}),
		BatchSize: 30,
		Logger:    slog.Default(),
	})

	require.NoError(t, o.RunCycle(context.Background()))
	assert.Equal(t, 1, judge.calls)
}
