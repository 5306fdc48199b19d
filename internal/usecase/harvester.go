package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"TrendScout/internal/config"
	"TrendScout/internal/ports"
	"TrendScout/internal/source"
)

// Harvester derives candidate watch keywords from external trend/news
// sources and upserts them into the watch-list.
type Harvester struct {
	store         ports.Store
	registry      *source.Registry
	sources       []config.SourceConfig
	maxCandidates int
	targetProfit  int
	delay         time.Duration
	logger        *slog.Logger
}

// HarvesterDeps wires the harvester's collaborators.
type HarvesterDeps struct {
	Store         ports.Store
	Registry      *source.Registry
	Sources       []config.SourceConfig
	MaxCandidates int
	TargetProfit  int
	Delay         time.Duration
	Logger        *slog.Logger
}

// NewHarvester constructs the keyword harvesting phase.
func NewHarvester(deps HarvesterDeps) *Harvester {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Harvester{
		store:         deps.Store,
		registry:      deps.Registry,
		sources:       deps.Sources,
		maxCandidates: deps.MaxCandidates,
		targetProfit:  deps.TargetProfit,
		delay:         deps.Delay,
		logger:        logger,
	}
}

// Harvest pulls candidates from every configured source and inserts the
// ones not already on the watch-list. A failing source is skipped; a store
// failure aborts the phase. Returns the number of newly added keywords.
func (h *Harvester) Harvest(ctx context.Context) (int, error) {
	var candidates []string

	for _, src := range h.sources {
		impl, err := h.registry.Resolve(src.Source)
		if err != nil {
			h.logger.Warn("skipping unknown source", "source", src.Name, "error", err)
			continue
		}

		fetched, err := impl.Fetch(ctx, source.Request{
			Name:  src.Name,
			URL:   src.URL,
			Limit: h.maxCandidates,
		})
		if err != nil {
			h.logger.Warn("source unavailable, skipping", "source", src.Name, "error", err)
			continue
		}

		h.logger.Info("source fetched", "source", src.Name, "candidates", len(fetched))
		candidates = append(candidates, fetched...)
	}

	if len(candidates) == 0 {
		h.logger.Info("no keyword candidates from any source")
		return 0, nil
	}

	added := 0
	for i, raw := range candidates {
		keyword := CleanCandidate(raw)
		if utf8.RuneCountInString(keyword) < 2 {
			h.logger.Debug("dropping short candidate", "raw", raw)
			continue
		}

		exists, err := h.store.KeywordExists(ctx, keyword)
		if err != nil {
			return added, err
		}
		if exists {
			h.logger.Debug("keyword already watched", "keyword", keyword)
		} else {
			if err := h.store.InsertKeyword(ctx, keyword, h.targetProfit); err != nil {
				return added, err
			}
			h.logger.Info("watch keyword added", "keyword", keyword)
			added++
		}

		// Spread existence-check/insert pairs out so the hosted store does
		// not see a burst; nothing follows the last pair, so no wait there.
		if i < len(candidates)-1 {
			if err := sleepCtx(ctx, h.delay); err != nil {
				return added, err
			}
		}
	}

	h.logger.Info("harvest finished", "added", added)
	return added, nil
}

// CleanCandidate strips leading enumeration markers ("1.", "・", "-") and
// surrounding whitespace from a raw candidate string.
func CleanCandidate(raw string) string {
	cleaned := strings.TrimLeftFunc(raw, func(r rune) bool {
		return unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	return strings.TrimSpace(cleaned)
}

// sleepCtx waits for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
