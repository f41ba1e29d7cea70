package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/nao1215/spider/internal/model"
)

// Console prints one progress line per event. Its output format is stable
// and meant to be read by people and by scripts.
//
//	[start] recursive=true depth=5 dir=/abs/data
//	[page] depth=1 http://example.com/
//	[img] photo.jpg
//	[!] page fetch failed http://example.com/missing: HTTP 404 Not Found
//	[done] pages visitees=3 | images telechargees=2
type Console struct {
	output io.Writer
	err    error
}

// NewConsole creates a Console writing to output.
func NewConsole(output io.Writer) *Console {
	return &Console{output: output}
}

// Observe prints the line for ev. Write errors are remembered and
// reported by Err; later events are dropped.
func (c *Console) Observe(ev model.Event) {
	if c.err != nil {
		return
	}
	line, ok := FormatEvent(ev)
	if !ok {
		return
	}
	if _, err := fmt.Fprintln(c.output, line); err != nil {
		c.err = err
	}
}

// Err returns the first write error, if any.
func (c *Console) Err() error {
	return c.err
}

// FormatEvent returns the progress line for ev. The second result is false
// for events that have no line.
func FormatEvent(ev model.Event) (string, bool) {
	switch ev.Kind {
	case model.EventStart:
		if ev.Start == nil {
			return "", false
		}
		return fmt.Sprintf("[start] recursive=%t depth=%d dir=%s",
			ev.Start.Recursive, ev.Start.MaxDepth, ev.Start.OutputDir), true
	case model.EventPage:
		return fmt.Sprintf("[page] depth=%d %s", ev.Depth, ev.URL), true
	case model.EventImage:
		return "[img] " + filepath.Base(ev.Path), true
	case model.EventPageFailed:
		return fmt.Sprintf("[!] page fetch failed %s: %s", ev.URL, ev.Reason), true
	case model.EventImageFailed:
		return fmt.Sprintf("[!] image download failed %s: %s", ev.URL, ev.Reason), true
	case model.EventDone:
		if ev.Summary == nil {
			return "", false
		}
		return fmt.Sprintf("[done] pages visitees=%d | images telechargees=%d",
			ev.Summary.PagesVisited, ev.Summary.ImagesDownloaded), true
	default:
		return "", false
	}
}
