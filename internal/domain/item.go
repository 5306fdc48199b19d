package domain

import "time"

// Platform names the marketplace a listing was discovered on.
type Platform string

const (
	PlatformMercari Platform = "mercari"
)

// Status enumerates the lifecycle of a discovered listing.
type Status string

const (
	// StatusNew marks an item that has been collected but not yet judged.
	StatusNew Status = "new"
	// StatusProfitable marks an item the judgment service ranked S, A or B.
	StatusProfitable Status = "profitable"
	// StatusDiscarded marks an item ranked C.
	StatusDiscarded Status = "discarded"
)

// InvestmentRank is the four-level classification driving the
// profitable/discarded split. S is the highest, C the lowest.
type InvestmentRank string

const (
	RankS InvestmentRank = "S"
	RankA InvestmentRank = "A"
	RankB InvestmentRank = "B"
	RankC InvestmentRank = "C"
)

// WatchKeyword is a search term the collector polls the marketplace for.
type WatchKeyword struct {
	ID           string
	Keyword      string
	TargetProfit int
	IsActive     bool
	CreatedAt    time.Time
}

// Verdict is the structured output of the judgment service for one item.
// It is immutable once attached; re-analysis replaces it wholesale.
type Verdict struct {
	TrendReason      string         `json:"trend_reason"`
	HeatLevel        string         `json:"heat_level"`
	FuturePrediction string         `json:"future_prediction"`
	InvestmentValue  InvestmentRank `json:"investment_value"`
	Genre            string         `json:"genre"`
}

// ListingItem is a single discovered marketplace entry tracked through its
// lifecycle. (Platform, ItemID) is the natural key: no two stored items may
// share it.
type ListingItem struct {
	ID         string
	Platform   Platform
	ItemID     string
	Title      string
	Price      int
	ImageURL   string
	ProductURL string
	Status     Status
	Analysis   *Verdict
	ScrapedAt  time.Time
}

// StatusForVerdict maps an investment rank onto the item lifecycle:
// profitable for S/A/B, discarded for C or anything unrecognized.
func StatusForVerdict(v Verdict) Status {
	switch v.InvestmentValue {
	case RankS, RankA, RankB:
		return StatusProfitable
	default:
		return StatusDiscarded
	}
}

// Alertable reports whether a verdict clears the notification gate.
// Rank B items are stored and shown, but never alerted.
func Alertable(v Verdict) bool {
	return v.InvestmentValue == RankS || v.InvestmentValue == RankA
}
