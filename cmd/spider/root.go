package main

import (
	"fmt"
	"os"

	"github.com/nao1215/spider/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. The root command runs a crawl;
// maintenance tasks are subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spider [flags] <url>",
		Short: "Download every image of a web site",
		Long: `spider crawls a web site breadth-first starting at <url> and downloads
every image it references into a local directory.

Only links on the same host and port as <url> are followed. Each page is
fetched at most once and each image URL is downloaded at most once.
Without -r only the start page is processed.

Examples:
  # Download the images of a single page into ./data/
  spider https://example.com/

  # Follow links up to depth 3 and save into ./images
  spider -r -l 3 -p ./images https://example.com/

  # Keep a Markdown report and remember the run
  spider -r --report crawl.md --history https://example.com/`,
		Version:       getVersion(),
		Args:          cobra.ExactArgs(1),
		RunE:          runCrawlCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Crawl flags
	cmd.Flags().StringP("path", "p", config.DefaultOutputDir,
		"Directory the images are saved to (created if missing)")
	cmd.Flags().BoolP("recursive", "r", false,
		"Follow same-origin links instead of processing only the start page")
	cmd.Flags().IntP("level", "l", config.DefaultMaxDepth,
		"Maximum depth when -r is set; the start page is depth 1")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of images of a page downloaded concurrently")
	cmd.Flags().Float64("rate", 0,
		"Maximum requests per second (0 = unlimited)")
	cmd.Flags().Duration("page-timeout", config.DefaultPageTimeout,
		"Timeout for fetching one page")
	cmd.Flags().Duration("image-timeout", config.DefaultImageTimeout,
		"Timeout for downloading one image, body included")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum number of bytes read from a page")

	// Transport flags
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy (host:port)")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and route requests through it")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .spider in current or home directory)")

	// Output flags
	cmd.Flags().StringP("report", "o", "",
		"Write a crawl report to the file (.json for JSON, Markdown otherwise)")
	cmd.Flags().Bool("history", false,
		"Save the crawl to the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	// Add subcommands
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
