package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/spider/internal/config"
	"github.com/nao1215/spider/internal/crawler"
	"github.com/nao1215/spider/internal/history"
	"github.com/nao1215/spider/internal/log"
	"github.com/nao1215/spider/internal/model"
	"github.com/nao1215/spider/internal/report"
	"github.com/nao1215/spider/internal/transport"
	"github.com/spf13/cobra"
)

// runCrawlCmd executes the root command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, stopping crawl")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.OutputDir, err = flags.GetString("path"); err != nil {
		return nil, err
	}
	if cfg.Recursive, err = flags.GetBool("recursive"); err != nil {
		return nil, err
	}
	if cfg.Level, err = flags.GetInt("level"); err != nil {
		return nil, err
	}
	if cfg.Workers, err = flags.GetInt("workers"); err != nil {
		return nil, err
	}
	if cfg.Rate, err = flags.GetFloat64("rate"); err != nil {
		return nil, err
	}
	if cfg.PageTimeout, err = flags.GetDuration("page-timeout"); err != nil {
		return nil, err
	}
	if cfg.ImageTimeout, err = flags.GetDuration("image-timeout"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return nil, err
	}
	if cfg.SaveHistory, err = flags.GetBool("history"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if cfg.ProxyAddress != "" && !transport.IsValidProxyAddress(cfg.ProxyAddress) {
		return nil, fmt.Errorf("%w: %s", transport.ErrInvalidProxyAddress, cfg.ProxyAddress)
	}

	// Load per-host settings. An explicitly given file must exist; the
	// default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		if cfg.Sites, err = config.LoadConfigFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if len(args) > 0 {
		cfg.Seed = args[0]
	}
	return cfg, nil
}

// runCrawl performs one crawl described by cfg. Progress lines go to out,
// notices to errOut.
func runCrawl(ctx context.Context, cfg *config.Config, out, errOut io.Writer, logger *slog.Logger) error {
	client, stop, err := newHTTPClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stop()

	fetcher := crawler.NewFetcher(client,
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithPageTimeout(cfg.PageTimeout),
		crawler.WithImageTimeout(cfg.ImageTimeout),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithRateLimit(cfg.Rate),
		crawler.WithFetcherLogger(logger),
	)
	downloader := crawler.NewDownloader(fetcher, cfg.OutputDir)

	console := report.NewConsole(out)
	collector := report.NewCollector()

	spider := crawler.NewSpider(fetcher, downloader,
		crawler.WithRecursive(cfg.Recursive),
		crawler.WithMaxDepth(cfg.Level),
		crawler.WithWorkers(cfg.Workers),
		crawler.WithLogger(logger),
		crawler.WithObserver(crawler.MultiObserver{console, collector}),
	)

	logger.Debug("starting crawl",
		"seed", cfg.Seed,
		"recursive", cfg.Recursive,
		"maxDepth", cfg.MaxDepth(),
		"outputDir", cfg.OutputDir,
		"workers", cfg.Workers,
	)

	summary, crawlErr := spider.Crawl(ctx, cfg.Seed)
	if errors.Is(crawlErr, crawler.ErrInvalidSeed) {
		return crawlErr
	}
	var fsErr *crawler.FileSystemError
	if errors.As(crawlErr, &fsErr) && spider.State() == crawler.StateIdle {
		// The output directory could not be created; nothing ran.
		return fmt.Errorf("cannot start crawl: %w", crawlErr)
	}

	if crawlErr != nil {
		collector.Finish(summary)
	}
	record := collector.Record()

	if err := persist(ctx, cfg, record, errOut); err != nil {
		if crawlErr == nil {
			return err
		}
		logger.Error("failed to save crawl results", "error", err)
	}

	if err := console.Err(); err != nil {
		logger.Warn("progress output failed", "error", err)
	}

	switch {
	case crawlErr == nil:
		return nil
	case errors.Is(crawlErr, context.Canceled):
		return errors.New("crawl interrupted")
	default:
		return fmt.Errorf("crawl aborted: %w", crawlErr)
	}
}

// newHTTPClient builds the client for the configured transport. stop
// releases the embedded Tor daemon, if one was started.
func newHTTPClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*http.Client, func(), error) {
	if !cfg.UseTor {
		client, err := transport.NewClient(transport.Options{
			ProxyAddress: cfg.ProxyAddress,
			Sites:        cfg.Sites,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		return client, func() {}, nil
	}

	logger.Warn("starting embedded Tor daemon, this may take a while", "timeout", cfg.TorStartupTimeout)
	tor := transport.NewEmbeddedTor(transport.WithStartupTimeout(cfg.TorStartupTimeout))
	if err := tor.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start Tor: %w", err)
	}
	stop := func() {
		if err := tor.Stop(); err != nil {
			logger.Warn("failed to stop Tor daemon", "error", err)
		}
	}

	client, err := tor.NewClient(cfg.Sites)
	if err != nil {
		stop()
		return nil, nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	logger.Debug("Tor daemon ready", "socks", tor.SocksAddr())
	return client, stop, nil
}

// persist writes the report file and the history entry requested by cfg.
func persist(ctx context.Context, cfg *config.Config, record *model.CrawlRecord, errOut io.Writer) error {
	if cfg.SaveHistory {
		db, err := history.Open(cfg.DBDir, history.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()

		// A cancelled crawl is still worth recording.
		id, err := db.SaveRun(context.WithoutCancel(ctx), record)
		if err != nil {
			return fmt.Errorf("failed to save crawl history: %w", err)
		}
		fmt.Fprintf(errOut, "saved crawl run %s to %s\n", id, db.Path())
	}

	if cfg.ReportFile != "" {
		if err := writeReportFile(cfg.ReportFile, record); err != nil {
			return err
		}
		fmt.Fprintf(errOut, "report written to %s\n", cfg.ReportFile)
	}
	return nil
}

// writeReportFile renders record into path, choosing the format from the
// file extension.
func writeReportFile(path string, record *model.CrawlRecord) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	w := report.NewWriter(report.FormatFromPath(path), f, getVersion())
	if _, err := w.Write(record); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
