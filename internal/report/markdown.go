package report

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/spider/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MarkdownWriter outputs a crawl record as a Markdown document: a summary
// table, an outcome pie chart, the visited pages, the downloaded images and
// the failures.
type MarkdownWriter struct {
	baseWriter

	generator string
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithGenerator sets the version printed in the footer.
func WithGenerator(version string) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.generator = version
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the record in Markdown format.
func (w *MarkdownWriter) Write(record *model.CrawlRecord) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, record)
	w.writeOutcome(md, record)
	w.writePages(md, record)
	w.writeImages(md, record)
	w.writeFailures(md, record)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the crawl parameters and counters.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, r *model.CrawlRecord) {
	md.H1("Spider Crawl Report")
	md.PlainText("")

	rows := [][]string{
		{"Seed", "`" + r.Seed + "`"},
		{"Recursive", strconv.FormatBool(r.Recursive)},
		{"Max Depth", strconv.Itoa(r.MaxDepth)},
		{"Output Directory", "`" + r.OutputDir + "`"},
		{"Started", r.Summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Duration", r.Summary.Duration().Round(time.Millisecond).String()},
		{"Pages Visited", strconv.Itoa(r.Summary.PagesVisited)},
		{"Pages Failed", strconv.Itoa(r.Summary.PagesFailed)},
		{"Images Downloaded", strconv.Itoa(r.Summary.ImagesDownloaded)},
		{"Images Failed", strconv.Itoa(r.Summary.ImagesFailed)},
		{"Bytes Written", formatBytes(r.Summary.BytesWritten)},
	}
	if r.ID != "" {
		rows = append([][]string{{"Run ID", "`" + r.ID + "`"}}, rows...)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeOutcome writes the pie chart and an alert summarizing failures.
func (w *MarkdownWriter) writeOutcome(md *markdown.Markdown, r *model.CrawlRecord) {
	md.H2("Outcome")
	md.PlainText("")

	s := r.Summary
	okPages := s.PagesVisited - s.PagesFailed
	if okPages+s.PagesFailed+s.ImagesDownloaded+s.ImagesFailed > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Crawl Outcome"),
			piechart.WithShowData(true),
		)
		for _, slice := range []struct {
			kind  model.EventKind
			count int
		}{
			{model.EventPage, okPages},
			{model.EventPageFailed, s.PagesFailed},
			{model.EventImage, s.ImagesDownloaded},
			{model.EventImageFailed, s.ImagesFailed},
		} {
			if slice.count > 0 {
				chart.LabelAndIntValue(kindLabel(slice.kind), uint64(slice.count)) //nolint:gosec // count is positive
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case s.PagesVisited > 0 && s.PagesFailed == s.PagesVisited:
		md.Cautionf("Every page failed to load (%d of %d).", s.PagesFailed, s.PagesVisited)
	case s.PagesFailed > 0 || s.ImagesFailed > 0:
		md.Warningf("%d page(s) and %d image(s) failed.", s.PagesFailed, s.ImagesFailed)
	case s.ImagesDownloaded == 0:
		md.Note("No images were found.")
	default:
		md.Tip("All pages and images were retrieved.")
	}
	md.PlainText("")
}

// writePages lists visited pages in visit order.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, r *model.CrawlRecord) {
	md.H2("Pages")
	md.PlainText("")

	if len(r.Pages) == 0 {
		md.PlainText("No pages visited.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		status := kindLabel(model.EventPage)
		if p.Failed {
			status = kindLabel(model.EventPageFailed)
		}
		rows = append(rows, []string{strconv.Itoa(p.Depth), truncateString(p.URL, 80), status})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Depth", "URL", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeImages lists the files written to disk.
func (w *MarkdownWriter) writeImages(md *markdown.Markdown, r *model.CrawlRecord) {
	md.H2("Images")
	md.PlainText("")

	downloaded := r.DownloadedImages()
	if len(downloaded) == 0 {
		md.PlainText("No images downloaded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(downloaded))
	for _, img := range downloaded {
		digest := img.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		rows = append(rows, []string{
			strconv.Itoa(img.Index),
			filepath.Base(img.Path),
			formatBytes(img.Bytes),
			"`" + digest + "`",
			truncateString(img.URL, 60),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "File", "Size", "SHA3", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFailures lists every failed page and image with its reason.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, r *model.CrawlRecord) {
	pages := r.FailedPages()
	images := r.FailedImages()
	if len(pages) == 0 && len(images) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, 0, len(pages)+len(images))
	for _, p := range pages {
		rows = append(rows, []string{kindLabel(model.EventPageFailed), truncateString(p.URL, 70), p.Reason})
	}
	for _, img := range images {
		rows = append(rows, []string{kindLabel(model.EventImageFailed), truncateString(img.URL, 70), img.Reason})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "URL", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	if w.generator != "" {
		md.PlainTextf("*Report generated by spider %s*", w.generator)
		return
	}
	md.PlainText("*Report generated by spider*")
}

// kindLabel turns an event kind such as "page_failed" into "Page Failed".
func kindLabel(kind model.EventKind) string {
	return cases.Title(language.English).String(strings.ReplaceAll(kind.String(), "_", " "))
}

// formatBytes renders n with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(n)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
