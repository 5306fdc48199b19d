// Package storage implements the store contract against Postgres.
//
// Expected schema:
//
//	CREATE TABLE watch_keywords (
//	    id            UUID PRIMARY KEY,
//	    keyword       TEXT NOT NULL,
//	    target_profit INTEGER NOT NULL,
//	    is_active     BOOLEAN NOT NULL DEFAULT TRUE,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
//	CREATE TABLE listing_items (
//	    id          UUID PRIMARY KEY,
//	    platform    TEXT NOT NULL,
//	    item_id     TEXT NOT NULL,
//	    title       TEXT NOT NULL,
//	    price       INTEGER NOT NULL,
//	    image_url   TEXT NOT NULL DEFAULT '',
//	    product_url TEXT NOT NULL DEFAULT '',
//	    status      TEXT NOT NULL DEFAULT 'new',
//	    ai_analysis JSONB,
//	    scraped_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    UNIQUE (platform, item_id)
//	);
//
// Keyword uniqueness is deliberately left to the harvester's existence
// check; the dashboard also inserts keywords manually.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"TrendScout/internal/domain"
	"TrendScout/internal/ports"
)

// PostgresStore persists watch keywords and listing items.
type PostgresStore struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

var _ ports.Store = (*PostgresStore)(nil)

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return New(db), nil
}

// New wires an existing connection.
func New(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type keywordRow struct {
	ID           string    `db:"id"`
	Keyword      string    `db:"keyword"`
	TargetProfit int       `db:"target_profit"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}

type itemRow struct {
	ID         string         `db:"id"`
	Platform   string         `db:"platform"`
	ItemID     string         `db:"item_id"`
	Title      string         `db:"title"`
	Price      int            `db:"price"`
	ImageURL   string         `db:"image_url"`
	ProductURL string         `db:"product_url"`
	Status     string         `db:"status"`
	Analysis   sql.NullString `db:"ai_analysis"`
	ScrapedAt  time.Time      `db:"scraped_at"`
}

// ListActiveKeywords returns active watch keywords in insertion order.
func (s *PostgresStore) ListActiveKeywords(ctx context.Context) ([]domain.WatchKeyword, error) {
	query, args, err := s.builder.
		Select("id", "keyword", "target_profit", "is_active", "created_at").
		From("watch_keywords").
		Where(sq.Eq{"is_active": true}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build keywords query: %w", err)
	}

	var rows []keywordRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list active keywords: %w", err)
	}

	keywords := make([]domain.WatchKeyword, 0, len(rows))
	for _, r := range rows {
		keywords = append(keywords, domain.WatchKeyword{
			ID:           r.ID,
			Keyword:      r.Keyword,
			TargetProfit: r.TargetProfit,
			IsActive:     r.IsActive,
			CreatedAt:    r.CreatedAt,
		})
	}

	return keywords, nil
}

// KeywordExists checks for an exact keyword match, active or not.
func (s *PostgresStore) KeywordExists(ctx context.Context, keyword string) (bool, error) {
	query, args, err := s.builder.
		Select("1").
		From("watch_keywords").
		Where(sq.Eq{"keyword": keyword}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build keyword exists query: %w", err)
	}

	var one int
	err = s.db.GetContext(ctx, &one, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("keyword exists: %w", err)
	}

	return true, nil
}

// InsertKeyword adds a new active watch keyword.
func (s *PostgresStore) InsertKeyword(ctx context.Context, keyword string, targetProfit int) error {
	query, args, err := s.builder.
		Insert("watch_keywords").
		Columns("id", "keyword", "target_profit", "is_active", "created_at").
		Values(uuid.NewString(), keyword, targetProfit, true, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build keyword insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert keyword %q: %w", keyword, err)
	}

	return nil
}

// ItemExists checks the (platform, item_id) natural key.
func (s *PostgresStore) ItemExists(ctx context.Context, platform domain.Platform, itemID string) (bool, error) {
	query, args, err := s.builder.
		Select("1").
		From("listing_items").
		Where(sq.Eq{"platform": string(platform), "item_id": itemID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build item exists query: %w", err)
	}

	var one int
	err = s.db.GetContext(ctx, &one, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("item exists: %w", err)
	}

	return true, nil
}

// InsertItem stores a freshly collected listing. A conflicting natural key
// is not an error: the insert is dropped and "" comes back.
func (s *PostgresStore) InsertItem(ctx context.Context, item domain.ListingItem) (string, error) {
	id := item.ID
	if id == "" {
		id = uuid.NewString()
	}
	scrapedAt := item.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now().UTC()
	}

	query, args, err := s.builder.
		Insert("listing_items").
		Columns("id", "platform", "item_id", "title", "price", "image_url", "product_url", "status", "scraped_at").
		Values(id, string(item.Platform), item.ItemID, item.Title, item.Price,
			item.ImageURL, item.ProductURL, string(domain.StatusNew), scrapedAt).
		Suffix("ON CONFLICT (platform, item_id) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build item insert: %w", err)
	}

	var inserted string
	err = s.db.GetContext(ctx, &inserted, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("insert item %s/%s: %w", item.Platform, item.ItemID, err)
	}

	return inserted, nil
}

// ListItemsByStatus returns up to limit items, oldest scrape first so long
// pending items are not starved by a steady stream of new arrivals.
func (s *PostgresStore) ListItemsByStatus(ctx context.Context, status domain.Status, limit int) ([]domain.ListingItem, error) {
	builder := s.builder.
		Select("id", "platform", "item_id", "title", "price", "image_url", "product_url", "status", "ai_analysis", "scraped_at").
		From("listing_items").
		Where(sq.Eq{"status": string(status)}).
		OrderBy("scraped_at ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	var rows []itemRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list items by status: %w", err)
	}

	items := make([]domain.ListingItem, 0, len(rows))
	for _, r := range rows {
		item := domain.ListingItem{
			ID:         r.ID,
			Platform:   domain.Platform(r.Platform),
			ItemID:     r.ItemID,
			Title:      r.Title,
			Price:      r.Price,
			ImageURL:   r.ImageURL,
			ProductURL: r.ProductURL,
			Status:     domain.Status(r.Status),
			ScrapedAt:  r.ScrapedAt,
		}

		if r.Analysis.Valid && r.Analysis.String != "" {
			var verdict domain.Verdict
			if err := json.Unmarshal([]byte(r.Analysis.String), &verdict); err != nil {
				return nil, fmt.Errorf("decode analysis for %s: %w", r.ID, err)
			}
			item.Analysis = &verdict
		}

		items = append(items, item)
	}

	return items, nil
}

// UpdateItemAnalysis writes the verdict and derived status in one statement.
func (s *PostgresStore) UpdateItemAnalysis(ctx context.Context, id string, verdict domain.Verdict, status domain.Status) error {
	analysis, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	query, args, err := s.builder.
		Update("listing_items").
		Set("ai_analysis", string(analysis)).
		Set("status", string(status)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build item update: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update item %s: %w", id, err)
	}

	return nil
}

// ResetItems returns items in the given statuses to status=new with the
// verdict cleared, making them eligible for re-analysis.
func (s *PostgresStore) ResetItems(ctx context.Context, statuses []domain.Status) (int64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}

	values := make([]string, 0, len(statuses))
	for _, st := range statuses {
		values = append(values, string(st))
	}

	query, args, err := s.builder.
		Update("listing_items").
		Set("status", string(domain.StatusNew)).
		Set("ai_analysis", nil).
		Where(sq.Eq{"status": values}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build reset update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset items: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset rows affected: %w", err)
	}

	return affected, nil
}
