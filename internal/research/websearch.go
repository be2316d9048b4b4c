package research

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// WebSearcher gathers public source links about the target company via
// Google Custom Search. It is optional: when no search key is configured,
// research proceeds on model knowledge alone.
type WebSearcher struct {
	svc *customsearch.Service
	cx  string
}

// NewWebSearcher creates a WebSearcher backed by a Custom Search engine.
func NewWebSearcher(ctx context.Context, apiKey string, cx string) (*WebSearcher, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &WebSearcher{svc: svc, cx: cx}, nil
}

// CompanyContext searches for the company's strategy and culture coverage and
// renders the results as a source list suitable for prompt injection. Failed
// queries are skipped; an empty string means nothing usable was found.
func (w *WebSearcher) CompanyContext(ctx context.Context, companyName string) (string, error) {
	if strings.TrimSpace(companyName) == "" {
		return "", fmt.Errorf("company name is required for web search")
	}

	queries := []string{
		fmt.Sprintf("%s company strategy news", companyName),
		fmt.Sprintf("%s engineering culture values", companyName),
	}

	var sb strings.Builder
	seen := make(map[string]bool)
	for _, q := range queries {
		resp, err := w.svc.Cse.List().Context(ctx).Cx(w.cx).Q(q).Num(3).Do()
		if err != nil {
			continue
		}
		for _, item := range resp.Items {
			if seen[item.Link] {
				continue
			}
			seen[item.Link] = true
			fmt.Fprintf(&sb, "- %s (%s): %s\n", item.Title, item.Link, item.Snippet)
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
