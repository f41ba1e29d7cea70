package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/spider/internal/config"
	"github.com/nao1215/spider/internal/history"
	"github.com/nao1215/spider/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List crawls saved with --history",
		Long: `History lists the crawls that were saved with --history, newest first.

Run IDs may be abbreviated to any unique prefix.

Examples:
  # List the last 20 crawls
  spider history

  # Show one crawl as a Markdown report
  spider history show 3f2a

  # Compare two crawls of the same site
  spider history diff 3f2a 9c1e

  # Remove a crawl
  spider history delete 3f2a`,
		Args: cobra.NoArgs,
		RunE: runHistoryListCmd,
	}

	cmd.PersistentFlags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list (0 = all)")

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryDiffCmd())
	cmd.AddCommand(newHistoryDeleteCmd())

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one saved crawl",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}
	cmd.Flags().BoolP("json", "j", false, "Output JSON instead of Markdown")
	return cmd
}

func newHistoryDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <previous-run-id> <current-run-id>",
		Short: "Compare the pages and images of two saved crawls",
		Args:  cobra.ExactArgs(2),
		RunE:  runHistoryDiffCmd,
	}
	cmd.Flags().BoolP("json", "j", false, "Output JSON instead of Markdown")
	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a saved crawl",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryDeleteCmd,
	}
}

// openHistory opens the existing history database selected by --db-dir.
func openHistory(cmd *cobra.Command) (*history.DB, error) {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	db, err := history.Open(dir, history.Options{EnableWAL: true})
	if err != nil {
		if errors.Is(err, history.ErrDatabaseNotFound) {
			return nil, fmt.Errorf("%w (run a crawl with --history first)", err)
		}
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return db, nil
}

func runHistoryListCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No crawls found in the history database.")
		fmt.Fprintln(out, "\nUse 'spider --history <url>' to record a crawl.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			shortID(r.ID),
			r.Summary.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Seed,
			strconv.Itoa(r.MaxDepth),
			strconv.Itoa(r.Summary.PagesVisited),
			strconv.Itoa(r.Summary.ImagesDownloaded),
			strconv.Itoa(r.Summary.PagesFailed + r.Summary.ImagesFailed),
		})
	}

	md := markdown.NewMarkdown(out)
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Seed", "Depth", "Pages", "Images", "Failures"},
		Rows:   rows,
	})
	if err := md.Build(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nUse 'spider history show <id>' to see a crawl in detail.")
	return nil
}

func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	record, err := db.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	format := report.FormatMarkdown
	if asJSON {
		format = report.FormatJSON
	}
	_, err = report.NewWriter(format, cmd.OutOrStdout(), getVersion()).Write(record)
	return err
}

func runHistoryDiffCmd(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	previous, err := db.GetRun(ctx, args[0])
	if err != nil {
		return err
	}
	current, err := db.GetRun(ctx, args[1])
	if err != nil {
		return err
	}
	if previous.ID == current.ID {
		return fmt.Errorf("both IDs refer to run %s", previous.ID)
	}

	comparison := history.Compare(previous, current)
	if asJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(comparison)
	}
	return writeComparisonMarkdown(cmd.OutOrStdout(), comparison)
}

func runHistoryDeleteCmd(cmd *cobra.Command, args []string) error {
	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	record, err := db.GetRun(ctx, args[0])
	if err != nil {
		return err
	}
	if err := db.DeleteRun(ctx, record.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted crawl run %s\n", record.ID)
	return nil
}

// writeComparisonMarkdown renders a comparison of two runs.
func writeComparisonMarkdown(w io.Writer, c *history.Comparison) error {
	md := markdown.NewMarkdown(w)

	md.H1("Crawl Comparison")
	md.PlainText("")

	prev, cur := c.Previous.Summary, c.Current.Summary
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Run", "`" + shortID(c.Previous.ID) + "`", "`" + shortID(c.Current.ID) + "`", "-"},
			{"Started",
				prev.StartedAt.Local().Format("2006-01-02 15:04"),
				cur.StartedAt.Local().Format("2006-01-02 15:04"),
				"-"},
			{"Pages Visited", strconv.Itoa(prev.PagesVisited), strconv.Itoa(cur.PagesVisited),
				formatDelta(cur.PagesVisited - prev.PagesVisited)},
			{"Images Downloaded", strconv.Itoa(prev.ImagesDownloaded), strconv.Itoa(cur.ImagesDownloaded),
				formatDelta(cur.ImagesDownloaded - prev.ImagesDownloaded)},
			{"Failures", strconv.Itoa(prev.PagesFailed + prev.ImagesFailed), strconv.Itoa(cur.PagesFailed + cur.ImagesFailed),
				formatDelta(cur.PagesFailed + cur.ImagesFailed - prev.PagesFailed - prev.ImagesFailed)},
		},
	})
	md.PlainText("")

	if !c.HasChanges() {
		md.Tip("No differences between the two crawls.")
		return md.Build()
	}

	for _, section := range []struct {
		title string
		urls  []string
	}{
		{"New Pages", c.NewPages},
		{"Removed Pages", c.RemovedPages},
		{"New Images", c.NewImages},
		{"Removed Images", c.RemovedImages},
		{"Changed Images", c.ChangedImages},
		{"New Failures", c.NewFailures},
		{"Resolved Failures", c.ResolvedFailures},
	} {
		if len(section.urls) == 0 {
			continue
		}
		md.H2(fmt.Sprintf("%s (%d)", section.title, len(section.urls)))
		md.PlainText("")
		md.BulletList(section.urls...)
		md.PlainText("")
	}

	if c.UnchangedImages > 0 {
		md.HorizontalRule()
		md.PlainText("")
		md.PlainTextf("*%d images unchanged*", c.UnchangedImages)
	}
	return md.Build()
}

// formatDelta formats a count change with an explicit sign.
func formatDelta(delta int) string {
	switch {
	case delta > 0:
		return "+" + strconv.Itoa(delta)
	case delta < 0:
		return strconv.Itoa(delta)
	default:
		return "0"
	}
}

// shortID abbreviates a run ID for tables.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
