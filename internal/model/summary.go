package model

import "time"

// Summary is produced once at the end of a crawl and never modified
// afterwards.
type Summary struct {
	// PagesVisited is the size of the visited set, failed pages included.
	PagesVisited int

	// PagesFailed counts pages that returned a network or status error.
	PagesFailed int

	// ImagesAttempted counts distinct image URLs a download was tried for.
	ImagesAttempted int

	// ImagesDownloaded counts images successfully written to disk.
	ImagesDownloaded int

	// ImagesFailed counts image downloads that failed.
	ImagesFailed int

	// BytesWritten is the total size of all written images.
	BytesWritten int64

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the crawl ran.
func (s Summary) Duration() time.Duration {
	if s.FinishedAt.Before(s.StartedAt) {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
