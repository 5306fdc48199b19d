package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"TrendScout/internal/domain"
	"TrendScout/internal/ports"
)

// Collector fetches current marketplace listings for every active watch
// keyword and stores previously-unseen ones in the unanalyzed state.
type Collector struct {
	store      ports.Store
	market     ports.Marketplace
	perKeyword int
	delay      time.Duration
	logger     *slog.Logger
}

// CollectorDeps wires the collector's collaborators.
type CollectorDeps struct {
	Store      ports.Store
	Market     ports.Marketplace
	PerKeyword int
	Delay      time.Duration
	Logger     *slog.Logger
}

// NewCollector constructs the listing collection phase.
func NewCollector(deps CollectorDeps) *Collector {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	perKeyword := deps.PerKeyword
	if perKeyword <= 0 {
		perKeyword = 10
	}
	return &Collector{
		store:      deps.Store,
		market:     deps.Market,
		perKeyword: perKeyword,
		delay:      deps.Delay,
		logger:     logger,
	}
}

// Collect walks the active watch-list in store order, searching newest-first
// and inserting unseen listings with status=new. One marketplace session is
// shared across all keywords and closed at the end regardless of per-keyword
// outcomes.
func (c *Collector) Collect(ctx context.Context) error {
	keywords, err := c.store.ListActiveKeywords(ctx)
	if err != nil {
		return fmt.Errorf("list active keywords: %w", err)
	}
	if len(keywords) == 0 {
		c.logger.Info("no active watch keywords, nothing to collect")
		return nil
	}

	session, err := c.market.OpenSession(ctx)
	if err != nil {
		return fmt.Errorf("open marketplace session: %w", err)
	}
	defer session.Close()

	for _, kw := range keywords {
		if err := c.collectKeyword(ctx, session, kw.Keyword); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("keyword search failed, moving on", "keyword", kw.Keyword, "error", err)
		}
	}

	return nil
}

func (c *Collector) collectKeyword(ctx context.Context, session ports.MarketplaceSession, keyword string) error {
	listings, err := session.SearchNewest(ctx, keyword, c.perKeyword)
	if err != nil {
		return err
	}

	c.logger.Info("search returned listings", "keyword", keyword, "count", len(listings))

	for _, raw := range listings {
		itemID, err := ItemIDFromURL(raw.CanonicalURL)
		if err != nil {
			c.logger.Warn("cannot derive item id, skipping", "url", raw.CanonicalURL, "error", err)
			continue
		}
		platform := c.market.Platform()

		// Dedup gate before any further extraction; the common case on a
		// frequent schedule is that the listing is already known.
		exists, err := c.store.ItemExists(ctx, platform, itemID)
		if err != nil {
			c.logger.Warn("existence check failed, skipping item", "item", itemID, "error", err)
			continue
		}
		if exists {
			c.logger.Debug("skipping known item", "item", itemID)
			continue
		}

		price, err := ParsePrice(raw.PriceText)
		if err != nil || price == 0 {
			// Price 0 means extraction failed, not a free listing.
			c.logger.Warn("unparsable price, skipping item", "item", itemID, "price", raw.PriceText)
			continue
		}

		title := raw.Title
		if title == "" {
			title = "No Title"
		}

		id, err := c.store.InsertItem(ctx, domain.ListingItem{
			Platform:   platform,
			ItemID:     itemID,
			Title:      title,
			Price:      price,
			ImageURL:   raw.ImageURL,
			ProductURL: raw.CanonicalURL,
			Status:     domain.StatusNew,
		})
		if err != nil {
			c.logger.Warn("insert failed, skipping item", "item", itemID, "error", err)
			continue
		}
		if id == "" {
			c.logger.Debug("duplicate item dropped by store", "item", itemID)
			continue
		}

		c.logger.Info("new listing stored", "item", itemID, "title", title, "price", price)

		if err := sleepCtx(ctx, c.delay); err != nil {
			return err
		}
	}

	return nil
}

// ItemIDFromURL extracts the platform-scoped item id from a canonical
// listing URL of the form .../item/<id>.
func ItemIDFromURL(canonicalURL string) (string, error) {
	_, id, found := strings.Cut(canonicalURL, "/item/")
	if !found {
		return "", fmt.Errorf("url %q has no item segment", canonicalURL)
	}

	id = strings.TrimSuffix(id, "/")
	if i := strings.IndexAny(id, "?#"); i >= 0 {
		id = id[:i]
	}
	if id == "" {
		return "", fmt.Errorf("url %q has an empty item id", canonicalURL)
	}

	return id, nil
}

// ParsePrice converts listing price text like "¥4,999" to an integer 4999.
func ParsePrice(priceText string) (int, error) {
	clean := strings.NewReplacer("¥", "", "￥", "", ",", "", "，", "", " ", "", " ", "").Replace(priceText)
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return 0, fmt.Errorf("empty price text")
	}

	price, err := strconv.Atoi(clean)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", priceText, err)
	}
	if price < 0 {
		return 0, fmt.Errorf("negative price %q", priceText)
	}

	return price, nil
}
