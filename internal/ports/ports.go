package ports

import (
	"context"

	"TrendScout/internal/domain"
)

// Store is the narrow read/write contract against the hosted item/keyword
// store. The dashboard shares the same tables and may flip an item's status
// between our read and our write; callers must tolerate that.
type Store interface {
	ListActiveKeywords(ctx context.Context) ([]domain.WatchKeyword, error)
	KeywordExists(ctx context.Context, keyword string) (bool, error)
	InsertKeyword(ctx context.Context, keyword string, targetProfit int) error

	ItemExists(ctx context.Context, platform domain.Platform, itemID string) (bool, error)
	// InsertItem returns the new row id, or "" when the (platform, item_id)
	// pair already exists. A duplicate is a normal skip, not an error.
	InsertItem(ctx context.Context, item domain.ListingItem) (string, error)
	ListItemsByStatus(ctx context.Context, status domain.Status, limit int) ([]domain.ListingItem, error)
	UpdateItemAnalysis(ctx context.Context, id string, verdict domain.Verdict, status domain.Status) error
	// ResetItems returns analyzed items to status=new with the verdict
	// cleared, making them eligible for re-analysis.
	ResetItems(ctx context.Context, statuses []domain.Status) (int64, error)
}

// RawListing is what a marketplace session hands back for one search hit.
// The collector derives the item id from CanonicalURL and parses PriceText
// itself.
type RawListing struct {
	Title        string
	ImageURL     string
	PriceText    string
	CanonicalURL string
}

// MarketplaceSession is a live session against the marketplace, shared
// across all keywords within one collection run.
type MarketplaceSession interface {
	// SearchNewest returns up to limit of the most recently listed results
	// for the keyword, in page order.
	SearchNewest(ctx context.Context, keyword string, limit int) ([]RawListing, error)
	Close() error
}

// Marketplace opens sessions against one marketplace.
type Marketplace interface {
	Platform() domain.Platform
	OpenSession(ctx context.Context) (MarketplaceSession, error)
}

// JudgmentClient asks the external text-understanding service for a verdict
// on one listing. Any response that does not parse into the verdict shape is
// a recoverable per-item error.
type JudgmentClient interface {
	Judge(ctx context.Context, title string, price int) (domain.Verdict, error)
}

// KeywordExtractor pulls a bounded number of concrete product-identifying
// terms out of free headline text.
type KeywordExtractor interface {
	ExtractKeywords(ctx context.Context, headlines []string, limit int) ([]string, error)
}

// Notifier pushes a profitable find to the outbound channel. Implementations
// with no endpoint configured are silent no-ops.
type Notifier interface {
	NotifyProfitable(ctx context.Context, item domain.ListingItem, verdict domain.Verdict) error
}
