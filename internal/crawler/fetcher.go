package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/spider/internal/config"
	"golang.org/x/time/rate"
)

// Page is a successfully fetched HTML page.
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Stream is a successful image response whose body has not been read yet.
// Close must be called; it releases the connection and the request's
// deadline.
type Stream struct {
	URL           string
	StatusCode    int
	ContentType   string
	ContentLength int64

	body   io.ReadCloser
	cancel context.CancelFunc
}

// Read reads from the response body.
func (s *Stream) Read(p []byte) (int, error) {
	return s.body.Read(p)
}

// Close closes the body and cancels the request context.
func (s *Stream) Close() error {
	err := s.body.Close()
	s.cancel()
	return err
}

// PageFetcher fetches HTML pages.
type PageFetcher interface {
	FetchPage(ctx context.Context, rawURL string) (*Page, error)
}

// ImageFetcher opens image streams.
type ImageFetcher interface {
	FetchImage(ctx context.Context, rawURL string) (*Stream, error)
}

// Fetcher issues one GET per call with a fixed User-Agent and a per-kind
// timeout. Every error it returns is a *NetworkError or a *StatusError.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	pageTimeout  time.Duration
	imageTimeout time.Duration
	maxBodySize  int64
	limiter      *rate.Limiter
	logger       *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithPageTimeout bounds page requests, body included.
func WithPageTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.pageTimeout = d
		}
	}
}

// WithImageTimeout bounds image requests, body included.
func WithImageTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.imageTimeout = d
		}
	}
}

// WithMaxBodySize limits how many bytes of a page are read. 0 keeps the
// default.
func WithMaxBodySize(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithRateLimit caps requests per second across pages and images.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64) FetcherOption {
	return func(f *Fetcher) {
		if perSecond <= 0 {
			f.limiter = nil
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithFetcherLogger sets the logger used for request diagnostics.
func WithFetcherLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher creates a Fetcher using client. The client should not set its
// own Timeout; deadlines are applied per request.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &Fetcher{
		client:       client,
		userAgent:    config.DefaultUserAgent,
		pageTimeout:  config.DefaultPageTimeout,
		imageTimeout: config.DefaultImageTimeout,
		maxBodySize:  config.DefaultMaxBodySize,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchPage downloads a page body. A body larger than the configured limit
// is a *NetworkError wrapping ErrBodyTooLarge.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.pageTimeout)
	defer cancel()

	resp, err := f.do(ctx, rawURL, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024)) //nolint:errcheck // drain for connection reuse
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, &NetworkError{
			URL: rawURL,
			Err: fmt.Errorf("%w of %d bytes", ErrBodyTooLarge, f.maxBodySize),
		}
	}

	return &Page{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// FetchImage opens an image response. The returned Stream stays bound to
// the image timeout until closed.
func (f *Fetcher) FetchImage(ctx context.Context, rawURL string) (*Stream, error) {
	ctx, cancel := context.WithTimeout(ctx, f.imageTimeout)

	resp, err := f.do(ctx, rawURL, "image/*,*/*;q=0.8")
	if err != nil {
		cancel()
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		cancel()
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	return &Stream{
		URL:           rawURL,
		StatusCode:    resp.StatusCode,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		body:          resp.Body,
		cancel:        cancel,
	}, nil
}

func (f *Fetcher) do(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{URL: rawURL, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Debug("request failed", "url", rawURL, "error", err, "elapsed", time.Since(start))
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	f.logger.Debug("response received",
		"url", rawURL,
		"status", resp.StatusCode,
		"contentType", resp.Header.Get("Content-Type"),
		"elapsed", time.Since(start),
	)
	return resp, nil
}
