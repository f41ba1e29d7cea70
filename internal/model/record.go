package model

// PageRecord is a visited page as seen by reports.
type PageRecord struct {
	URL        string
	Depth      int
	Failed     bool
	StatusCode int
	Reason     string
}

// ImageRecord is an image download attempt as seen by reports.
type ImageRecord struct {
	URL    string
	Index  int
	Path   string
	Bytes  int64
	Digest string
	Failed bool
	Reason string
}

// CrawlRecord aggregates the whole event stream of one crawl.
// It is assembled by report.Collector and consumed by the Markdown report
// and the history database.
type CrawlRecord struct {
	// ID identifies the run in the history database. Empty until saved.
	ID string

	Seed      string
	Recursive bool
	MaxDepth  int
	OutputDir string

	Pages   []PageRecord
	Images  []ImageRecord
	Summary Summary
}

// FailedPages returns the pages that could not be fetched.
func (r *CrawlRecord) FailedPages() []PageRecord {
	failed := make([]PageRecord, 0)
	for _, p := range r.Pages {
		if p.Failed {
			failed = append(failed, p)
		}
	}
	return failed
}

// FailedImages returns the image downloads that did not succeed.
func (r *CrawlRecord) FailedImages() []ImageRecord {
	failed := make([]ImageRecord, 0)
	for _, img := range r.Images {
		if img.Failed {
			failed = append(failed, img)
		}
	}
	return failed
}

// DownloadedImages returns the images written to disk.
func (r *CrawlRecord) DownloadedImages() []ImageRecord {
	ok := make([]ImageRecord, 0)
	for _, img := range r.Images {
		if !img.Failed {
			ok = append(ok, img)
		}
	}
	return ok
}
