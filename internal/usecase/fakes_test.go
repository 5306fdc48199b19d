package usecase

import (
	"context"
	"fmt"
	"sync"

	"TrendScout/internal/domain"
	"TrendScout/internal/ports"
	"TrendScout/internal/source"
)

// memStore is an in-memory stand-in for the hosted store.
type memStore struct {
	mu       sync.Mutex
	keywords []domain.WatchKeyword
	items    []domain.ListingItem
	nextID   int

	listKeywordsErr error
	insertItemErr   error
}

var _ ports.Store = (*memStore)(nil)

func (s *memStore) ListActiveKeywords(context.Context) ([]domain.WatchKeyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listKeywordsErr != nil {
		return nil, s.listKeywordsErr
	}

	var active []domain.WatchKeyword
	for _, kw := range s.keywords {
		if kw.IsActive {
			active = append(active, kw)
		}
	}
	return active, nil
}

func (s *memStore) KeywordExists(_ context.Context, keyword string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kw := range s.keywords {
		if kw.Keyword == keyword {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) InsertKeyword(_ context.Context, keyword string, targetProfit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.keywords = append(s.keywords, domain.WatchKeyword{
		ID:           fmt.Sprintf("kw-%d", s.nextID),
		Keyword:      keyword,
		TargetProfit: targetProfit,
		IsActive:     true,
	})
	return nil
}

func (s *memStore) ItemExists(_ context.Context, platform domain.Platform, itemID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findItem(platform, itemID) >= 0, nil
}

func (s *memStore) InsertItem(_ context.Context, item domain.ListingItem) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertItemErr != nil {
		return "", s.insertItemErr
	}
	if s.findItem(item.Platform, item.ItemID) >= 0 {
		return "", nil
	}

	s.nextID++
	item.ID = fmt.Sprintf("item-%d", s.nextID)
	item.Status = domain.StatusNew
	item.Analysis = nil
	s.items = append(s.items, item)
	return item.ID, nil
}

func (s *memStore) ListItemsByStatus(_ context.Context, status domain.Status, limit int) ([]domain.ListingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []domain.ListingItem
	for _, item := range s.items {
		if item.Status != status {
			continue
		}
		matched = append(matched, item)
		if limit > 0 && len(matched) == limit {
			break
		}
	}
	return matched, nil
}

func (s *memStore) UpdateItemAnalysis(_ context.Context, id string, verdict domain.Verdict, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			v := verdict
			s.items[i].Analysis = &v
			s.items[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("item %s not found", id)
}

func (s *memStore) ResetItems(_ context.Context, statuses []domain.Status) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reset int64
	for i := range s.items {
		for _, st := range statuses {
			if s.items[i].Status == st {
				s.items[i].Status = domain.StatusNew
				s.items[i].Analysis = nil
				reset++
				break
			}
		}
	}
	return reset, nil
}

func (s *memStore) findItem(platform domain.Platform, itemID string) int {
	for i, item := range s.items {
		if item.Platform == platform && item.ItemID == itemID {
			return i
		}
	}
	return -1
}

func (s *memStore) itemByKey(platform domain.Platform, itemID string) (domain.ListingItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.findItem(platform, itemID); i >= 0 {
		return s.items[i], true
	}
	return domain.ListingItem{}, false
}

func (s *memStore) itemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// fakeMarket serves canned listings per keyword over a session that records
// whether it was closed.
type fakeMarket struct {
	listings  map[string][]ports.RawListing
	searchErr map[string]error
	session   *fakeSession
}

var _ ports.Marketplace = (*fakeMarket)(nil)

func (m *fakeMarket) Platform() domain.Platform { return domain.PlatformMercari }

func (m *fakeMarket) OpenSession(context.Context) (ports.MarketplaceSession, error) {
	m.session = &fakeSession{market: m}
	return m.session, nil
}

type fakeSession struct {
	market   *fakeMarket
	closed   bool
	searches []string
}

func (s *fakeSession) SearchNewest(_ context.Context, keyword string, limit int) ([]ports.RawListing, error) {
	s.searches = append(s.searches, keyword)
	if err := s.market.searchErr[keyword]; err != nil {
		return nil, err
	}

	listings := s.market.listings[keyword]
	if limit > 0 && len(listings) > limit {
		listings = listings[:limit]
	}
	return listings, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

// fakeJudge returns a fixed verdict per title.
type fakeJudge struct {
	verdicts map[string]domain.Verdict
	errs     map[string]error
	calls    int
}

var _ ports.JudgmentClient = (*fakeJudge)(nil)

func (j *fakeJudge) Judge(_ context.Context, title string, _ int) (domain.Verdict, error) {
	j.calls++
	if err := j.errs[title]; err != nil {
		return domain.Verdict{}, err
	}
	if v, ok := j.verdicts[title]; ok {
		return v, nil
	}
	return domain.Verdict{}, fmt.Errorf("no canned verdict for %q", title)
}

// fakeNotifier records every dispatch.
type fakeNotifier struct {
	sent []domain.ListingItem
	err  error
}

var _ ports.Notifier = (*fakeNotifier)(nil)

func (n *fakeNotifier) NotifyProfitable(_ context.Context, item domain.ListingItem, _ domain.Verdict) error {
	n.sent = append(n.sent, item)
	return n.err
}

// fakeSource hands back canned candidate strings.
type fakeSource struct {
	name       string
	candidates []string
	err        error
}

var _ source.Source = (*fakeSource)(nil)

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Fetch(context.Context, source.Request) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}
