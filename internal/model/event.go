package model

import "time"

// EventKind identifies what happened during a crawl.
type EventKind int

const (
	// EventStart is emitted once, before the seed page is fetched.
	EventStart EventKind = iota

	// EventPage is emitted when a page is dequeued and about to be fetched.
	EventPage

	// EventPageFailed is emitted when a page fetch fails with a network
	// error or a non-2xx status.
	EventPageFailed

	// EventImage is emitted when an image has been written to disk.
	EventImage

	// EventImageFailed is emitted when an image download fails.
	EventImageFailed

	// EventDone is emitted once, when the frontier is empty.
	EventDone
)

// String returns the stable name of the kind. The names are persisted by
// the history database, so they must not change.
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventPage:
		return "page"
	case EventPageFailed:
		return "page_failed"
	case EventImage:
		return "image"
	case EventImageFailed:
		return "image_failed"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event is a single entry of the crawl event stream.
// Only the fields relevant to Kind are populated.
type Event struct {
	Kind EventKind
	Time time.Time

	// URL is the page or image URL the event refers to.
	URL string

	// Depth is the 1-based depth of the page (page events only).
	Depth int

	// Index is the image counter value assigned to the image.
	Index int

	// Path is the file written for a successful image download.
	Path string

	// Bytes is the size of the written file.
	Bytes int64

	// Digest is the hex SHA3-256 of the written file.
	Digest string

	// StatusCode is set for HTTP status failures.
	StatusCode int

	// Reason is a human readable failure description.
	Reason string

	// Err is the underlying failure, if any.
	Err error

	// Start carries the crawl parameters (EventStart only).
	Start *StartInfo

	// Summary is set on EventDone.
	Summary *Summary
}

// StartInfo describes the parameters a crawl was started with.
type StartInfo struct {
	Seed      string
	Recursive bool
	MaxDepth  int
	OutputDir string
}
