package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds the settings for one crawl run. It is decoupled from Viper so
// the engine can be constructed and tested independently.
type Config struct {
	SeedURL        string
	MaxPages       int // negative means unlimited; 0 processes nothing
	OutputDir      string
	Delay          time.Duration
	UserAgent      string
	RequestTimeout time.Duration
	// DisambiguateImages appends a numeric suffix when two images on a page
	// sanitize to the same filename. Off by default: later downloads then
	// silently overwrite earlier ones, like consumers of the stable names
	// expect.
	DisambiguateImages bool
}

// Engine drives the crawl: it owns the CrawlState and runs the sequential
// dequeue -> extract -> enqueue loop until the frontier drains, the page
// budget is hit, or the context is canceled.
type Engine struct {
	cfg       Config
	extractor *Extractor
	sink      Sink
	state     *CrawlState
	clock     Clock
	pause     pauseController
	logger    *zap.Logger
	runID     string
}

// NewEngine wires an Engine from its collaborators. A nil clock falls back to
// the system clock.
func NewEngine(cfg Config, fetcher Fetcher, sink Sink, clock Clock, logger *zap.Logger) *Engine {
	if clock == nil {
		clock = systemClock{}
	}
	return &Engine{
		cfg:       cfg,
		extractor: NewExtractor(cfg.SeedURL, fetcher, nil, sink, logger),
		sink:      sink,
		state:     NewCrawlState(),
		clock:     clock,
		pause:     &timerPauseController{},
		logger:    logger,
		runID:     uuid.NewString(),
	}
}

// State exposes the crawl bookkeeping for inspection after Run returns.
func (e *Engine) State() *CrawlState {
	return e.state
}

// Run executes the crawl. Context cancellation is a clean-stop signal: the
// page in flight finishes, the frontier is abandoned, and the summaries are
// still persisted. The returned error covers only final persistence; page
// failures never propagate.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	started := e.clock.Now()
	e.logger.Info("Starting crawl",
		zap.String("run_id", e.runID),
		zap.String("seed_url", e.cfg.SeedURL),
		zap.Int("max_pages", e.cfg.MaxPages),
		zap.String("output_dir", e.cfg.OutputDir),
	)

	e.state.Enqueue(e.cfg.SeedURL)
	processed := 0
	interrupted := false

	for e.state.HasPending() && (e.cfg.MaxPages < 0 || processed < e.cfg.MaxPages) {
		if ctx.Err() != nil {
			interrupted = true
			e.logger.Info("Crawl interrupted; keeping partial results",
				zap.Int("pages_processed", processed),
			)
			break
		}

		current, _ := e.state.Dequeue()
		e.processPage(ctx, current)
		processed++

		e.pause.Pause(ctx, e.cfg.Delay)
	}

	if ctx.Err() != nil {
		interrupted = true
	}

	summary := Summary{
		RunID:          e.runID,
		SeedURL:        e.cfg.SeedURL,
		PagesProcessed: processed,
		Interrupted:    interrupted,
		StartedAt:      started,
		FinishedAt:     e.clock.Now(),
	}
	listings := e.state.Listings()
	summary.Products = len(listings.Products)
	summary.Categories = len(listings.Categories)
	summary.ContentPages = len(listings.Content)

	if err := e.persistSummaries(ctx, summary, listings); err != nil {
		return summary, err
	}

	e.logger.Info("Crawl finished",
		zap.String("run_id", e.runID),
		zap.Int("pages_processed", summary.PagesProcessed),
		zap.Int("products", summary.Products),
		zap.Int("categories", summary.Categories),
		zap.Int("content_pages", summary.ContentPages),
		zap.Bool("interrupted", summary.Interrupted),
	)
	return summary, nil
}

// processPage visits one dequeued URL. Failures are page-scoped: the URL
// stays in the visited set so it is never retried, and the loop continues.
func (e *Engine) processPage(ctx context.Context, rawURL string) {
	normalized := NormalizeURL(rawURL)
	if !e.state.MarkVisited(normalized) {
		return
	}
	if !SameDomain(rawURL, e.cfg.SeedURL) {
		e.logger.Warn("Skipping off-domain URL", zap.String("url", rawURL))
		return
	}

	record, err := e.extractor.Extract(ctx, rawURL)
	if err != nil {
		TotalPagesSkipped.Inc()
		e.logger.Warn("Page skipped",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return
	}

	e.state.RecordNode(normalized, record.Metadata.Title, record.Type)

	// An edge is recorded only when the target is already a hierarchy node,
	// so the graph favors links to earlier-visited pages.
	for _, link := range record.Links {
		e.state.AddChild(normalized, link.URL)
	}
	for _, target := range record.Discovered {
		e.state.Enqueue(target)
	}

	TotalPagesScraped.Inc()
	e.logger.Info("Page scraped",
		zap.String("url", normalized),
		zap.String("type", string(record.Type)),
		zap.Int("images", len(record.Images)),
		zap.Int("links", len(record.Links)),
	)
}

// persistSummaries writes the hierarchy, listings, and run summary. It runs
// even after cancellation, so the sink gets a context detached from the
// crawl's.
func (e *Engine) persistSummaries(ctx context.Context, summary Summary, listings Listings) error {
	finalCtx := context.WithoutCancel(ctx)
	if err := e.sink.SaveHierarchy(finalCtx, e.state.Hierarchy()); err != nil {
		return fmt.Errorf("save hierarchy: %w", err)
	}
	if err := e.sink.SaveListings(finalCtx, listings); err != nil {
		return fmt.Errorf("save listings: %w", err)
	}
	if err := e.sink.SaveSummary(finalCtx, summary); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	return nil
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// pauseController abstracts how the engine waits between requests.
type pauseController interface {
	Pause(ctx context.Context, delay time.Duration)
}

type timerPauseController struct{}

func (p *timerPauseController) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
