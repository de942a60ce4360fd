package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hollis-b/sitesnap/internal/config"
	"github.com/hollis-b/sitesnap/internal/crawler"
	"github.com/hollis-b/sitesnap/internal/logging"
)

// newCrawlCmd creates and configures the 'crawl' subcommand. The seed URL is
// the single positional argument; flags override config file values.
func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a website starting from the given seed URL",
		Long: `Crawls the given website breadth-first, restricted to the seed's
domain, writing per-page records, text, and images under the output
directory, plus site_hierarchy.json and page_listings.json summaries.
Interrupt with Ctrl-C at any time; partial results are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawl,
	}

	cmd.Flags().Int("max-pages", -1, "maximum number of pages to process (negative = unlimited)")
	cmd.Flags().String("output-dir", "", "directory to save scraped content")
	cmd.Flags().Int("delay", 1, "inter-request delay in seconds")
	cmd.Flags().Bool("disambiguate-images", false, "suffix colliding image filenames instead of overwriting")

	return cmd
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg.Crawler.SeedURL = args[0]
	applyFlagOverrides(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	engineCfg := cfg.EngineConfig()

	fetcher, err := crawler.NewCollyFetcher(engineCfg, logger)
	if err != nil {
		return fmt.Errorf("init fetcher: %w", err)
	}
	sink, err := crawler.NewFileSystemSink(engineCfg.OutputDir, engineCfg.DisambiguateImages, logger)
	if err != nil {
		return fmt.Errorf("init sink: %w", err)
	}

	engine := crawler.NewEngine(engineCfg, fetcher, sink, nil, logger)
	summary, err := engine.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run crawl: %w", err)
	}

	logger.Info("Snapshot complete",
		zap.String("output_dir", engineCfg.OutputDir),
		zap.Int("pages_processed", summary.PagesProcessed),
		zap.Int("products", summary.Products),
		zap.Int("categories", summary.Categories),
		zap.Int("content_pages", summary.ContentPages),
	)
	return nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("max-pages") {
		cfg.Crawler.MaxPages, _ = flags.GetInt("max-pages")
	}
	if flags.Changed("output-dir") {
		cfg.Crawler.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("delay") {
		cfg.Crawler.DelaySeconds, _ = flags.GetInt("delay")
	}
	if flags.Changed("disambiguate-images") {
		cfg.Crawler.DisambiguateImages, _ = flags.GetBool("disambiguate-images")
	}
}
