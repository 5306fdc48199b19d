package marketplace

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"TrendScout/internal/domain"
	"TrendScout/internal/ports"
)

// Mercari searches the Mercari frontend for freshly listed items.
type Mercari struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	settle    time.Duration
}

var _ ports.Marketplace = (*Mercari)(nil)

// NewMercari configures the marketplace against a base URL; tests point it
// at a local server. settle is the pause between successive page loads of
// one session (zero disables it); a random jitter of up to half of it is
// added so requests do not land on a fixed rhythm.
func NewMercari(baseURL, userAgent string, settle time.Duration) *Mercari {
	if baseURL == "" {
		baseURL = "https://jp.mercari.com"
	}
	return &Mercari{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		timeout:   20 * time.Second,
		settle:    settle,
	}
}

// Platform identifies listings collected through this marketplace.
func (m *Mercari) Platform() domain.Platform {
	return domain.PlatformMercari
}

// OpenSession starts one cookie-carrying session, shared across every
// keyword of a collect() run and closed at its end.
func (m *Mercari) OpenSession(ctx context.Context) (ports.MarketplaceSession, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("new cookie jar: %w", err)
	}

	return &session{
		market: m,
		client: &http.Client{Timeout: m.timeout, Jar: jar},
	}, nil
}

type session struct {
	market  *Mercari
	client  *http.Client
	fetched bool
}

var _ ports.MarketplaceSession = (*session)(nil)

// SearchNewest queries the marketplace sorted newest-first and returns up to
// limit raw listings in page order. From the second search on, the session
// settles for the configured jittered pause before loading the next page.
func (s *session) SearchNewest(ctx context.Context, keyword string, limit int) ([]ports.RawListing, error) {
	if s.client == nil {
		return nil, fmt.Errorf("session is closed")
	}

	if s.fetched {
		if err := s.settle(ctx); err != nil {
			return nil, err
		}
	}

	// Newest-first keeps the interesting listings at the top of one page.
	pageURL := fmt.Sprintf("%s/search?keyword=%s&sort=created_time&order=desc",
		s.market.baseURL, url.QueryEscape(keyword))

	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}
	s.fetched = true

	return s.extractListings(doc, limit), nil
}

// settle waits the configured pause plus jitter, or until the context is
// cancelled. The frontend rate-limits clients that page too rhythmically.
func (s *session) settle(ctx context.Context) error {
	wait := s.market.settle
	if wait <= 0 {
		return nil
	}
	wait += time.Duration(rand.Int63n(int64(wait)/2 + 1))

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Close drops the session client; further searches fail.
func (s *session) Close() error {
	s.client = nil
	return nil
}

func (s *session) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if s.market.userAgent != "" {
		req.Header.Set("User-Agent", s.market.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("marketplace returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (s *session) extractListings(doc *goquery.Document, limit int) []ports.RawListing {
	var listings []ports.RawListing

	doc.Find(`li[data-testid="item-cell"]`).EachWithBreak(func(i int, cell *goquery.Selection) bool {
		if limit > 0 && len(listings) >= limit {
			return false
		}

		href, ok := cell.Find("a").First().Attr("href")
		if !ok || href == "" {
			return true
		}
		if !strings.HasPrefix(href, "http") {
			href = s.market.baseURL + href
		}

		img := cell.Find("img").First()
		title, _ := img.Attr("alt")
		imageURL, _ := img.Attr("src")

		var priceText string
		cell.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
			text := strings.TrimSpace(span.Text())
			if strings.Contains(text, "¥") {
				priceText = text
				return false
			}
			return true
		})

		listings = append(listings, ports.RawListing{
			Title:        strings.TrimSpace(title),
			ImageURL:     imageURL,
			PriceText:    priceText,
			CanonicalURL: href,
		})
		return true
	})

	return listings
}
