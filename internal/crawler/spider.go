package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/nao1215/spider/internal/config"
	"github.com/nao1215/spider/internal/model"
	"golang.org/x/sync/errgroup"
)

// State is the lifecycle stage of a Spider.
type State int

const (
	// StateIdle is the state before Crawl is called.
	StateIdle State = iota
	// StateRunning is the state while the frontier is being drained.
	StateRunning
	// StateDone is the state once the frontier is empty.
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Spider crawls a site breadth-first from a seed URL, staying on the
// seed's host:port, and downloads every distinct image it finds once.
//
// The frontier, the visited set, the downloaded-image set and the image
// counter are only touched by the goroutine running Crawl. Image downloads
// may run on worker goroutines (WithWorkers), but they are handed their
// URL and counter value up front and report back through emit.
type Spider struct {
	fetcher    PageFetcher
	downloader ImageDownloader
	extractor  Extractor
	observer   Observer
	logger     *slog.Logger

	recursive bool
	level     int
	workers   int
	outputDir string
	now       func() time.Time

	// mu serializes observer calls and guards state and summary.
	mu      sync.Mutex
	state   State
	summary model.Summary

	visited    map[string]struct{}
	downloaded map[string]struct{}
	counter    int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithRecursive enables following same-origin links.
func WithRecursive(recursive bool) SpiderOption {
	return func(s *Spider) {
		s.recursive = recursive
	}
}

// WithMaxDepth sets the requested depth. It only matters with recursion;
// non-positive values select config.DefaultMaxDepth.
func WithMaxDepth(level int) SpiderOption {
	return func(s *Spider) {
		s.level = level
	}
}

// WithWorkers sets how many images of one page are downloaded concurrently.
func WithWorkers(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithObserver sets the receiver of the event stream.
func WithObserver(o Observer) SpiderOption {
	return func(s *Spider) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithExtractor replaces the HTML extractor.
func WithExtractor(e Extractor) SpiderOption {
	return func(s *Spider) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOutputDir records the output directory reported in the start event.
// When the downloader is a *Downloader its directory is used by default.
func WithOutputDir(dir string) SpiderOption {
	return func(s *Spider) {
		s.outputDir = dir
	}
}

// NewSpider creates a Spider. Without options it processes the seed page
// only, downloading images sequentially.
func NewSpider(fetcher PageFetcher, downloader ImageDownloader, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:    fetcher,
		downloader: downloader,
		extractor:  HTMLExtractor{},
		observer:   discardObserver{},
		logger:     slog.New(slog.DiscardHandler),
		workers:    1,
		now:        time.Now,
	}
	if d, ok := downloader.(*Downloader); ok {
		s.outputDir = d.Dir()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxDepth returns the effective depth bound.
func (s *Spider) MaxDepth() int {
	return config.EffectiveMaxDepth(s.recursive, s.level)
}

// State returns the current lifecycle state.
func (s *Spider) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Crawl processes the frontier starting with seed at depth 1 until it is
// empty and returns the summary.
//
// Page and image failures are reported as events and never returned. The
// error is non-nil only for an invalid seed, a *FileSystemError or a
// cancelled context; the summary then covers the work done so far.
func (s *Spider) Crawl(ctx context.Context, seed string) (model.Summary, error) {
	if err := validateSeed(seed); err != nil {
		return model.Summary{}, err
	}

	if p, ok := s.downloader.(interface{ Prepare() error }); ok {
		if err := p.Prepare(); err != nil {
			return model.Summary{}, err
		}
	}

	s.reset()
	maxDepth := s.MaxDepth()
	s.emit(model.Event{
		Kind: model.EventStart,
		URL:  seed,
		Start: &model.StartInfo{
			Seed:      seed,
			Recursive: s.recursive,
			MaxDepth:  maxDepth,
			OutputDir: absPath(s.outputDir),
		},
	})

	queue := &frontier{}
	queue.push(seed, 1)

	for {
		if err := ctx.Err(); err != nil {
			return s.snapshot(), err
		}

		e, ok := queue.pop()
		if !ok {
			break
		}
		if _, seen := s.visited[e.url]; seen {
			continue
		}
		s.visited[e.url] = struct{}{}
		s.emit(model.Event{Kind: model.EventPage, URL: e.url, Depth: e.depth})

		page, err := s.fetcher.FetchPage(ctx, e.url)
		if err != nil {
			if ctx.Err() != nil {
				return s.snapshot(), ctx.Err()
			}
			s.emit(model.Event{
				Kind:       model.EventPageFailed,
				URL:        e.url,
				Depth:      e.depth,
				StatusCode: statusCode(err),
				Reason:     reason(err),
				Err:        err,
			})
			continue
		}

		links := s.extractor.Extract(e.url, bytes.NewReader(page.Body))
		s.logger.Debug("page extracted",
			"url", e.url,
			"depth", e.depth,
			"images", len(links.Images),
			"links", len(links.Pages),
			"queued", queue.len(),
		)

		if err := s.downloadImages(ctx, links.Images); err != nil {
			return s.snapshot(), err
		}

		if e.depth < maxDepth {
			for _, next := range links.Pages {
				if _, seen := s.visited[next]; !seen {
					queue.push(next, e.depth+1)
				}
			}
		}
	}

	s.mu.Lock()
	s.state = StateDone
	s.summary.FinishedAt = s.now()
	summary := s.summary
	s.mu.Unlock()

	s.emit(model.Event{Kind: model.EventDone, Summary: &summary})
	return summary, nil
}

// imageJob is an image URL paired with its counter value.
type imageJob struct {
	url   string
	index int
}

// downloadImages claims every image URL not seen before and downloads
// them, at most s.workers at a time. It returns only fatal errors.
func (s *Spider) downloadImages(ctx context.Context, urls []string) error {
	jobs := make([]imageJob, 0, len(urls))
	for _, u := range urls {
		if _, seen := s.downloaded[u]; seen {
			continue
		}
		s.downloaded[u] = struct{}{}
		s.counter++
		jobs = append(jobs, imageJob{url: u, index: s.counter})
	}
	if len(jobs) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, job := range jobs {
		g.Go(func() error {
			return s.downloadOne(gctx, job)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Spider) downloadOne(ctx context.Context, job imageJob) error {
	if ctx.Err() != nil {
		// A sibling hit a fatal error or the crawl was cancelled.
		return nil
	}

	d, err := s.downloader.Download(ctx, job.url, job.index)
	if err != nil {
		var fsErr *FileSystemError
		if ctx.Err() != nil && !errors.As(err, &fsErr) {
			// Cancelled mid-transfer; not a failure of this image.
			return nil
		}
		s.emit(model.Event{
			Kind:       model.EventImageFailed,
			URL:        job.url,
			Index:      job.index,
			StatusCode: statusCode(err),
			Reason:     reason(err),
			Err:        err,
		})
		if errors.As(err, &fsErr) {
			return err
		}
		return nil
	}

	s.emit(model.Event{
		Kind:   model.EventImage,
		URL:    job.url,
		Index:  job.index,
		Path:   d.Path,
		Bytes:  d.Bytes,
		Digest: d.Digest,
	})
	return nil
}

// emit stamps ev, updates the summary and hands ev to the observer while
// holding mu.
func (s *Spider) emit(ev model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.Time = s.now()
	switch ev.Kind {
	case model.EventPage:
		s.summary.PagesVisited++
	case model.EventPageFailed:
		s.summary.PagesFailed++
	case model.EventImage:
		s.summary.ImagesAttempted++
		s.summary.ImagesDownloaded++
		s.summary.BytesWritten += ev.Bytes
	case model.EventImageFailed:
		s.summary.ImagesAttempted++
		s.summary.ImagesFailed++
	}
	s.observer.Observe(ev)
}

func (s *Spider) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateRunning
	s.summary = model.Summary{StartedAt: s.now()}
	s.visited = make(map[string]struct{})
	s.downloaded = make(map[string]struct{})
	s.counter = 0
}

func (s *Spider) snapshot() model.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary := s.summary
	summary.FinishedAt = s.now()
	return summary
}

// validateSeed checks that seed is an absolute http(s) URL with a host.
func validateSeed(seed string) error {
	u, err := url.Parse(seed)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidSeed, seed)
	}
	return nil
}

func absPath(dir string) string {
	if dir == "" {
		return ""
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
