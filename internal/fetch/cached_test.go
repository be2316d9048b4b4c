package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCachedScraperConfig(t *testing.T) {
	config := DefaultCachedScraperConfig()

	assert.NotNil(t, config)
	assert.NotZero(t, config.CacheTTL)
	assert.False(t, config.SkipCache)
	assert.NotNil(t, config.Options)
}

func TestNewCachedScraper_NilConfigUsesDefaults(t *testing.T) {
	scraper := NewCachedScraper(nil, nil)

	assert.NotNil(t, scraper)
	assert.NotZero(t, scraper.cacheTTL)
	assert.NotNil(t, scraper.opts)
}

func TestNewCachedScraper_PartialConfigFilled(t *testing.T) {
	scraper := NewCachedScraper(nil, &CachedScraperConfig{SkipCache: true})

	assert.True(t, scraper.skipCache)
	assert.NotZero(t, scraper.cacheTTL)
	assert.NotNil(t, scraper.opts)
}
