package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalPagesScraped tracks the number of pages fully extracted and persisted.
	TotalPagesScraped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_pages_scraped_total",
		Help: "The total number of pages successfully scraped and saved.",
	})
	// TotalPagesSkipped tracks pages abandoned after a fetch or parse failure.
	TotalPagesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_pages_skipped_total",
		Help: "The total number of pages skipped due to fetch or parse errors.",
	})
	// TotalImagesDownloaded tracks images saved alongside their pages.
	TotalImagesDownloaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_images_downloaded_total",
		Help: "The total number of images downloaded and saved.",
	})
	// TotalImageErrors tracks image fetches that failed and were dropped.
	TotalImageErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_image_errors_total",
		Help: "The total number of image downloads that failed.",
	})
	// TotalLinksDiscovered tracks same-domain links found across all pages.
	TotalLinksDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_links_discovered_total",
		Help: "The total number of same-domain links discovered.",
	})
)
