package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DefaultListingCacheTTL is how long a scraped listing stays fresh. Listings
// change rarely; a week keeps re-runs cheap without serving stale postings.
const DefaultListingCacheTTL = 7 * 24 * time.Hour

// ScrapedListing is a cached scrape of a job listing URL.
type ScrapedListing struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetched_at"`
}

// UpsertScrapedListing stores or refreshes the cached scrape for a URL.
func (db *DB) UpsertScrapedListing(ctx context.Context, url, text string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO scraped_listings (url, text_content, fetched_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (url) DO UPDATE SET text_content = $2, fetched_at = NOW()`,
		url, text,
	)
	if err != nil {
		return fmt.Errorf("failed to cache scraped listing: %w", err)
	}
	return nil
}

// GetFreshScrapedListing returns the cached scrape for a URL if it is within
// the TTL, or nil when absent or stale.
func (db *DB) GetFreshScrapedListing(ctx context.Context, url string, ttl time.Duration) (*ScrapedListing, error) {
	var listing ScrapedListing
	err := db.pool.QueryRow(ctx,
		`SELECT id, url, text_content, fetched_at
		 FROM scraped_listings
		 WHERE url = $1 AND fetched_at > NOW() - $2::interval`,
		url, ttl.String(),
	).Scan(&listing.ID, &listing.URL, &listing.Text, &listing.FetchedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check listing cache: %w", err)
	}
	return &listing, nil
}
