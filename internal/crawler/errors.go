package crawler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrInvalidSeed is returned by Spider.Crawl when the seed is not an
// absolute http(s) URL.
var ErrInvalidSeed = errors.New("invalid seed URL: expected an absolute http or https URL")

// ErrBodyTooLarge is wrapped in a NetworkError when a page body exceeds
// the configured limit.
var ErrBodyTooLarge = errors.New("page body exceeds size limit")

// NetworkError reports a transport-level failure: DNS, refused
// connection, timeout, TLS, or a body that could not be read in full.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Reason returns the cause without the request URL.
func (e *NetworkError) Reason() string {
	var uerr *url.Error
	if errors.As(e.Err, &uerr) {
		return uerr.Err.Error()
	}
	return e.Err.Error()
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status fetching %s: %s", e.URL, e.Reason())
}

// Reason returns "HTTP <code> <text>".
func (e *StatusError) Reason() string {
	if text := http.StatusText(e.StatusCode); text != "" {
		return fmt.Sprintf("HTTP %d %s", e.StatusCode, text)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// FileSystemError reports a failure to create the output directory or to
// write an image. It aborts the crawl.
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error { return e.Err }

// reason extracts a short failure description for progress output.
func reason(err error) string {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Reason()
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Reason()
	}
	return err.Error()
}

// statusCode returns the HTTP status carried by err, or 0.
func statusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
