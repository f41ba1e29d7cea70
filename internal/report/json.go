package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/spider/internal/model"
)

// JSONWriter outputs a crawl record as a single JSON document.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is recorded in the document when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the spider version in the document.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the record in JSON format.
func (w *JSONWriter) Write(record *model.CrawlRecord) (int, error) {
	return w.writeJSON(newJSONReport(record, w.version))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport is the serialized form of a crawl record. It is kept apart
// from model.CrawlRecord so the JSON field names are stable.
type JSONReport struct {
	Version   string      `json:"version,omitempty"`
	ID        string      `json:"id,omitempty"`
	Seed      string      `json:"seed"`
	Recursive bool        `json:"recursive"`
	MaxDepth  int         `json:"maxDepth"`
	OutputDir string      `json:"outputDir"`
	Summary   JSONSummary `json:"summary"`
	Pages     []JSONPage  `json:"pages"`
	Images    []JSONImage `json:"images"`
}

// JSONSummary mirrors model.Summary.
type JSONSummary struct {
	PagesVisited     int       `json:"pagesVisited"`
	PagesFailed      int       `json:"pagesFailed"`
	ImagesAttempted  int       `json:"imagesAttempted"`
	ImagesDownloaded int       `json:"imagesDownloaded"`
	ImagesFailed     int       `json:"imagesFailed"`
	BytesWritten     int64     `json:"bytesWritten"`
	StartedAt        time.Time `json:"startedAt"`
	FinishedAt       time.Time `json:"finishedAt"`
	DurationMillis   int64     `json:"durationMillis"`
}

// JSONPage mirrors model.PageRecord.
type JSONPage struct {
	URL        string `json:"url"`
	Depth      int    `json:"depth"`
	Failed     bool   `json:"failed,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// JSONImage mirrors model.ImageRecord.
type JSONImage struct {
	URL    string `json:"url"`
	Index  int    `json:"index"`
	Path   string `json:"path,omitempty"`
	Bytes  int64  `json:"bytes,omitempty"`
	Digest string `json:"sha3,omitempty"`
	Failed bool   `json:"failed,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func newJSONReport(r *model.CrawlRecord, version string) *JSONReport {
	out := &JSONReport{
		Version:   version,
		ID:        r.ID,
		Seed:      r.Seed,
		Recursive: r.Recursive,
		MaxDepth:  r.MaxDepth,
		OutputDir: r.OutputDir,
		Summary: JSONSummary{
			PagesVisited:     r.Summary.PagesVisited,
			PagesFailed:      r.Summary.PagesFailed,
			ImagesAttempted:  r.Summary.ImagesAttempted,
			ImagesDownloaded: r.Summary.ImagesDownloaded,
			ImagesFailed:     r.Summary.ImagesFailed,
			BytesWritten:     r.Summary.BytesWritten,
			StartedAt:        r.Summary.StartedAt,
			FinishedAt:       r.Summary.FinishedAt,
			DurationMillis:   r.Summary.Duration().Milliseconds(),
		},
		Pages:  make([]JSONPage, 0, len(r.Pages)),
		Images: make([]JSONImage, 0, len(r.Images)),
	}
	for _, p := range r.Pages {
		out.Pages = append(out.Pages, JSONPage(p))
	}
	for _, img := range r.Images {
		out.Images = append(out.Images, JSONImage(img))
	}
	return out
}
