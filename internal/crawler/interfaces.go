package crawler

import (
	"context"
	"time"
)

// Fetcher retrieves a URL and returns the response body plus metadata. It is
// used for both page fetches and per-image fetches.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// Sink persists crawl artifacts. Implementations own the output layout; the
// engine and extractor only hand over data keyed by page path.
type Sink interface {
	// EnsurePageDir creates the directory skeleton for a page before any
	// artifact is written.
	EnsurePageDir(ctx context.Context, pathKey string) error
	// SaveText writes the flattened page text and returns its path relative
	// to the output root.
	SaveText(ctx context.Context, pathKey, originalURL string, pageType PageType, text string) (string, error)
	// SaveImage writes one downloaded image and returns its path relative to
	// the output root.
	SaveImage(ctx context.Context, pathKey, filename string, data []byte) (string, error)
	// SavePage writes the full page record.
	SavePage(ctx context.Context, record PageRecord) error
	// SaveHierarchy writes the site-wide hierarchy graph.
	SaveHierarchy(ctx context.Context, nodes map[string]*HierarchyNode) error
	// SaveListings writes the per-type page listings.
	SaveListings(ctx context.Context, listings Listings) error
	// SaveSummary writes the end-of-crawl summary.
	SaveSummary(ctx context.Context, summary Summary) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
