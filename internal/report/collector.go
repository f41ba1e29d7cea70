package report

import "github.com/nao1215/spider/internal/model"

// Collector accumulates the event stream of one crawl into a
// model.CrawlRecord. Events must be delivered serially, which the crawler
// guarantees.
type Collector struct {
	record model.CrawlRecord

	// pageIndex maps a page URL to its position in record.Pages so that
	// a failure can be attached to the page entry.
	pageIndex map[string]int
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{pageIndex: make(map[string]int)}
}

// Observe records ev.
func (c *Collector) Observe(ev model.Event) {
	switch ev.Kind {
	case model.EventStart:
		if ev.Start != nil {
			c.record.Seed = ev.Start.Seed
			c.record.Recursive = ev.Start.Recursive
			c.record.MaxDepth = ev.Start.MaxDepth
			c.record.OutputDir = ev.Start.OutputDir
		}
		c.record.Summary.StartedAt = ev.Time
	case model.EventPage:
		c.pageIndex[ev.URL] = len(c.record.Pages)
		c.record.Pages = append(c.record.Pages, model.PageRecord{
			URL:   ev.URL,
			Depth: ev.Depth,
		})
		c.record.Summary.PagesVisited++
	case model.EventPageFailed:
		i, ok := c.pageIndex[ev.URL]
		if !ok {
			c.pageIndex[ev.URL] = len(c.record.Pages)
			c.record.Pages = append(c.record.Pages, model.PageRecord{URL: ev.URL, Depth: ev.Depth})
			i = len(c.record.Pages) - 1
		}
		c.record.Pages[i].Failed = true
		c.record.Pages[i].StatusCode = ev.StatusCode
		c.record.Pages[i].Reason = ev.Reason
		c.record.Summary.PagesFailed++
	case model.EventImage:
		c.record.Images = append(c.record.Images, model.ImageRecord{
			URL:    ev.URL,
			Index:  ev.Index,
			Path:   ev.Path,
			Bytes:  ev.Bytes,
			Digest: ev.Digest,
		})
		c.record.Summary.ImagesAttempted++
		c.record.Summary.ImagesDownloaded++
		c.record.Summary.BytesWritten += ev.Bytes
	case model.EventImageFailed:
		c.record.Images = append(c.record.Images, model.ImageRecord{
			URL:    ev.URL,
			Index:  ev.Index,
			Failed: true,
			Reason: ev.Reason,
		})
		c.record.Summary.ImagesAttempted++
		c.record.Summary.ImagesFailed++
	case model.EventDone:
		if ev.Summary != nil {
			c.record.Summary = *ev.Summary
		}
	}
}

// Record returns the collected record. Summary is final only after the
// done event; for an aborted crawl it reflects the events seen so far.
func (c *Collector) Record() *model.CrawlRecord {
	r := c.record
	r.Pages = append([]model.PageRecord(nil), c.record.Pages...)
	r.Images = append([]model.ImageRecord(nil), c.record.Images...)
	return &r
}

// Finish sets the summary of an aborted crawl, for which no done event
// was emitted.
func (c *Collector) Finish(summary model.Summary) {
	c.record.Summary = summary
}
