// Package cmd defines and implements the CLI commands for the sitesnap
// executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitesnap",
		Short: "Download a website's content as a structured snapshot.",
		Long: `sitesnap crawls a single website breadth-first from a seed URL,
staying on the seed's domain, and materializes every visited page as a
structured record: extracted text, downloaded images, metadata, outbound
links, and a product/category/content classification. It also writes a
site-wide hierarchy graph and per-type page listings.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	cmd.AddCommand(newCrawlCmd())

	return cmd
}

// Execute is the main entry point. It installs the interrupt handler so a
// Ctrl-C becomes a clean-stop signal for the crawl rather than a hard kill.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
