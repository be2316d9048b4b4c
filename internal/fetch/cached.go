// Package fetch - cached.go wraps listing scraping with database-backed caching.
package fetch

import (
	"context"
	"time"

	"github.com/jonathan/interview-pilot/internal/db"
)

// CachedScraper wraps Scrape with a database-backed listing cache so repeat
// sessions against the same URL skip the network.
type CachedScraper struct {
	db        *db.DB
	opts      *ScrapeOptions
	cacheTTL  time.Duration
	skipCache bool // force fresh scrapes
}

// CachedScraperConfig holds configuration for the cached scraper.
type CachedScraperConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
	Options   *ScrapeOptions
}

// DefaultCachedScraperConfig returns sensible defaults.
func DefaultCachedScraperConfig() *CachedScraperConfig {
	return &CachedScraperConfig{
		CacheTTL:  db.DefaultListingCacheTTL,
		SkipCache: false,
		Options:   DefaultScrapeOptions(),
	}
}

// NewCachedScraper creates a new cached scraper. A nil database disables
// caching; every call scrapes fresh.
func NewCachedScraper(database *db.DB, config *CachedScraperConfig) *CachedScraper {
	if config == nil {
		config = DefaultCachedScraperConfig()
	}
	if config.Options == nil {
		config.Options = DefaultScrapeOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = db.DefaultListingCacheTTL
	}
	return &CachedScraper{
		db:        database,
		opts:      config.Options,
		cacheTTL:  config.CacheTTL,
		skipCache: config.SkipCache,
	}
}

// ScrapedText is a scrape result with cache provenance.
type ScrapedText struct {
	Text      string
	FromCache bool
}

// Scrape returns the listing text for a URL, serving from cache when fresh.
func (s *CachedScraper) Scrape(ctx context.Context, urlStr string) (*ScrapedText, error) {
	if !s.skipCache && s.db != nil {
		cached, err := s.db.GetFreshScrapedListing(ctx, urlStr, s.cacheTTL)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			return &ScrapedText{Text: cached.Text, FromCache: true}, nil
		}
	}

	text, err := Scrape(ctx, urlStr, s.opts)
	if err != nil {
		return nil, err
	}

	if s.db != nil {
		// Cache miss on write is not fatal; the scrape succeeded
		_ = s.db.UpsertScrapedListing(ctx, urlStr, text)
	}

	return &ScrapedText{Text: text, FromCache: false}, nil
}
