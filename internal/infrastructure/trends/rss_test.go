package trends

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendScout/internal/source"
)

const trendsFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Daily Search Trends</title>
    <item><title>iPad Air</title></item>
    <item><title>GR86</title></item>
    <item><title>ポケカ 151</title></item>
    <item><title>Switch 2</title></item>
    <item><title>RTX 5090</title></item>
    <item><title>sixth entry</title></item>
  </channel>
</rss>`

func TestRSSSourceFetchesTopEntries(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(trendsFeed))
	}))
	defer server.Close()

	src := NewRSSSource(nil, "scout-test/1.0")
	candidates, err := src.Fetch(context.Background(), source.Request{
		Name:  "trends",
		URL:   server.URL,
		Limit: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, "scout-test/1.0", gotUA)
	assert.Equal(t, []string{"iPad Air", "GR86", "ポケカ 151", "Switch 2", "RTX 5090"}, candidates)
}

func TestRSSSourceOnUnreachableFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	src := NewRSSSource(nil, "")
	_, err := src.Fetch(context.Background(), source.Request{Name: "trends", URL: server.URL, Limit: 5})
	assert.Error(t, err)
}

type stubExtractor struct {
	gotHeadlines []string
	keywords     []string
}

func (s *stubExtractor) ExtractKeywords(_ context.Context, headlines []string, _ int) ([]string, error) {
	s.gotHeadlines = headlines
	return s.keywords, nil
}

func TestNewsSourceExtractsFromHeadlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(trendsFeed))
	}))
	defer server.Close()

	extractor := &stubExtractor{keywords: []string{"iPad Air"}}
	src := NewNewsSource(nil, "", extractor)

	candidates, err := src.Fetch(context.Background(), source.Request{
		Name:  "news",
		URL:   server.URL,
		Limit: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"iPad Air"}, candidates)
	assert.Len(t, extractor.gotHeadlines, 6)
	assert.Equal(t, "iPad Air", extractor.gotHeadlines[0])
}

func TestNewsSourceWithoutExtractor(t *testing.T) {
	src := NewNewsSource(nil, "", nil)
	_, err := src.Fetch(context.Background(), source.Request{Name: "news", URL: "https://example.invalid"})
	assert.Error(t, err)
}
