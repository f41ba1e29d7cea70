package report

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/nao1215/spider/internal/model"
)

// Writer renders a finished crawl.
type Writer interface {
	// Write outputs the record and returns the number of bytes written.
	Write(record *model.CrawlRecord) (int, error)
}

// MultiWriter writes a record to several Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the record to every Writer and stops on the first error.
func (m *MultiWriter) Write(record *model.CrawlRecord) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(record)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Format is a report file format.
type Format string

const (
	// FormatMarkdown is the default report format.
	FormatMarkdown Format = "markdown"
	// FormatJSON is selected by a .json extension.
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatMarkdown
}

// NewWriter returns the Writer for format.
func NewWriter(format Format, output io.Writer, version string) Writer {
	if format == FormatJSON {
		return NewJSONWriter(output, WithPrettyPrint(), WithVersion(version))
	}
	return NewMarkdownWriter(output, WithGenerator(version))
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
