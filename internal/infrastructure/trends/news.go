package trends

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"TrendScout/internal/ports"
	"TrendScout/internal/source"
)

const headlineSample = 20

// NewsSource reads a news headline feed and asks the text-understanding
// service to extract concrete product names out of the headline text.
type NewsSource struct {
	parser    *gofeed.Parser
	extractor ports.KeywordExtractor
}

var _ source.Source = (*NewsSource)(nil)

// NewNewsSource builds a headline source backed by the given extractor.
func NewNewsSource(client *http.Client, userAgent string, extractor ports.KeywordExtractor) *NewsSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	parser := gofeed.NewParser()
	parser.Client = client
	if userAgent != "" {
		parser.UserAgent = userAgent
	}

	return &NewsSource{parser: parser, extractor: extractor}
}

// Name identifies the strategy inside the registry.
func (s *NewsSource) Name() string {
	return "news-llm"
}

// Fetch downloads the feed, samples recent headlines, and returns the
// product terms the extractor finds in them.
func (s *NewsSource) Fetch(ctx context.Context, req source.Request) ([]string, error) {
	if s.extractor == nil {
		return nil, fmt.Errorf("news source %s: no keyword extractor configured", req.Name)
	}

	feed, err := s.parser.ParseURLWithContext(req.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse news feed %s: %w", req.Name, err)
	}

	sample := len(feed.Items)
	if sample > headlineSample {
		sample = headlineSample
	}

	headlines := make([]string, 0, sample)
	for _, item := range feed.Items[:sample] {
		headlines = append(headlines, item.Title)
	}

	if len(headlines) == 0 {
		return nil, nil
	}

	keywords, err := s.extractor.ExtractKeywords(ctx, headlines, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("extract keywords from %s: %w", req.Name, err)
	}

	return keywords, nil
}
