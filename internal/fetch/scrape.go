// Package fetch - scrape.go is the listing-scrape entry point used by the pipeline.
package fetch

import (
	"context"
	"net/http"
	"time"
)

// ScrapeOptions configures a listing scrape.
type ScrapeOptions struct {
	Timeout    time.Duration
	UseBrowser bool // allow headless-browser fallback for SPA boards
	Verbose    bool
}

// DefaultScrapeOptions returns sensible defaults for listing scraping.
func DefaultScrapeOptions() *ScrapeOptions {
	return &ScrapeOptions{
		Timeout:    DefaultTimeout,
		UseBrowser: true,
	}
}

// Scrape retrieves a job listing URL and returns the extracted main text.
// It detects the board platform for selector tuning, fetches over HTTP, and
// falls back to headless-browser rendering when the extracted text is too
// short to be a real listing.
func Scrape(ctx context.Context, urlStr string, opts *ScrapeOptions) (string, error) {
	if opts == nil {
		opts = DefaultScrapeOptions()
	}

	platform := DetectPlatform(urlStr)
	if IsUnsupportedBoard(platform) {
		return "", &Error{
			URL:     urlStr,
			Message: UnsupportedBoardMessage,
		}
	}

	fetchOpts := DefaultOptions()
	if opts.Timeout > 0 {
		fetchOpts.Timeout = opts.Timeout
	}

	result, err := URL(ctx, urlStr, fetchOpts)
	if err != nil {
		// 403 from a board usually means scraper blocking, not a bad URL
		if result != nil && result.StatusCode == http.StatusForbidden {
			return "", &Error{
				URL:     urlStr,
				Message: UnsupportedBoardMessage,
				Cause:   err,
			}
		}
		return "", err
	}

	text, err := extractListingText(result.HTML, platform)
	if err != nil {
		return "", &Error{
			URL:     urlStr,
			Message: "failed to extract listing text",
			Cause:   err,
		}
	}

	if opts.UseBrowser && ShouldUseBrowser(text) {
		html, berr := WithBrowser(ctx, urlStr, fetchOpts.Timeout, opts.Verbose)
		if berr != nil {
			// Keep whatever the plain fetch produced if rendering fails
			if text != "" {
				return text, nil
			}
			return "", &Error{
				URL:     urlStr,
				Message: "page required browser rendering",
				Cause:   berr,
			}
		}
		rendered, rerr := extractListingText(html, platform)
		if rerr == nil && len(rendered) > len(text) {
			text = rendered
		}
	}

	if text == "" {
		return "", &Error{
			URL:     urlStr,
			Message: "no listing text found on page",
		}
	}

	return text, nil
}

// extractListingText pulls the main listing text using platform-tuned selectors.
func extractListingText(html string, platform Platform) (string, error) {
	selectors := PlatformContentSelectors(platform)
	noise := PlatformNoiseSelectors(platform)
	return ExtractMainText(html, selectors, noise...)
}
