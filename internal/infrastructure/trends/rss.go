package trends

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"TrendScout/internal/source"
)

// RSSSource reads a ranked trending-searches feed and returns the top
// entries as keyword candidates.
type RSSSource struct {
	parser *gofeed.Parser
}

var _ source.Source = (*RSSSource)(nil)

// NewRSSSource wires an HTTP client; a browser-like user agent matters
// because the trends endpoint rejects default Go clients.
func NewRSSSource(client *http.Client, userAgent string) *RSSSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	parser := gofeed.NewParser()
	parser.Client = client
	if userAgent != "" {
		parser.UserAgent = userAgent
	}

	return &RSSSource{parser: parser}
}

// Name identifies the strategy inside the registry.
func (s *RSSSource) Name() string {
	return "trends-rss"
}

// Fetch pulls the feed and returns up to req.Limit entry titles in rank order.
func (s *RSSSource) Fetch(ctx context.Context, req source.Request) ([]string, error) {
	feed, err := s.parser.ParseURLWithContext(req.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse trends feed %s: %w", req.Name, err)
	}

	limit := req.Limit
	if limit <= 0 || limit > len(feed.Items) {
		limit = len(feed.Items)
	}

	candidates := make([]string, 0, limit)
	for _, item := range feed.Items[:limit] {
		candidates = append(candidates, item.Title)
	}

	return candidates, nil
}
