package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/spider/internal/model"
)

// site is a test web site serving fixed HTML pages and images while
// counting requests per path.
type site struct {
	*httptest.Server

	mu     sync.Mutex
	hits   map[string]int
	pages  map[string]string
	images map[string]string
}

func newSite(t *testing.T, pages map[string]string, images map[string]string) *site {
	t.Helper()

	s := &site{hits: make(map[string]int), pages: pages, images: images}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()

		if body, ok := s.pages[r.URL.Path]; ok {
			w.Header().Set("Content-Type", "text/html")
			_, _ = io.WriteString(w, body)
			return
		}
		if body, ok := s.images[r.URL.Path]; ok {
			w.Header().Set("Content-Type", "image/png")
			_, _ = io.WriteString(w, body)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *site) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// recorder collects events. The Spider serializes Observe calls.
type recorder struct {
	events []model.Event
}

func (r *recorder) Observe(ev model.Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) ofKind(kind model.EventKind) []model.Event {
	var out []model.Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func newTestSpider(t *testing.T, srv *site, dir string, opts ...SpiderOption) (*Spider, *recorder) {
	t.Helper()

	rec := &recorder{}
	fetcher := NewFetcher(srv.Client())
	opts = append([]SpiderOption{WithObserver(rec)}, opts...)
	return NewSpider(fetcher, NewDownloader(fetcher, dir), opts...), rec
}

func TestSpiderNonRecursive(t *testing.T) {
	t.Parallel()

	srv := newSite(t, map[string]string{
		"/":  `<img src="/a.png"><a href="/b">b</a>`,
		"/b": `<img src="/b.png">`,
	}, map[string]string{
		"/a.png": "A",
		"/b.png": "B",
	})
	dir := t.TempDir()
	sp, rec := newTestSpider(t, srv, dir)

	summary, err := sp.Crawl(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if srv.hitCount("/b") != 0 {
		t.Error("non-recursive crawl must not follow links")
	}
	if summary.PagesVisited != 1 || summary.ImagesDownloaded != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.png")); err != nil {
		t.Errorf("a.png not written: %v", err)
	}
	if sp.MaxDepth() != 1 {
		t.Errorf("MaxDepth() = %d, want 1", sp.MaxDepth())
	}
	if pages := rec.ofKind(model.EventPage); len(pages) != 1 || pages[0].Depth != 1 {
		t.Errorf("page events = %+v", pages)
	}
}

func TestSpiderVisitsEachPageOnce(t *testing.T) {
	t.Parallel()

	srv := newSite(t, map[string]string{
		"/":  `<a href="/a">a</a><a href="/b">b</a>`,
		"/a": `<a href="/b">b</a><a href="/">home</a><a href="/a">self</a>`,
		"/b": `<a href="/a">a</a><a href="/">home</a>`,
	}, nil)
	sp, rec := newTestSpider(t, srv, t.TempDir(), WithRecursive(true), WithMaxDepth(10))

	summary, err := sp.Crawl(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, p := range []string{"/", "/a", "/b"} {
		if got := srv.hitCount(p); got != 1 {
			t.Errorf("%s fetched %d times, want 1", p, got)
		}
	}
	if summary.PagesVisited != 3 {
		t.Errorf("PagesVisited = %d, want 3", summary.PagesVisited)
	}
	if got := len(rec.ofKind(model.EventPage)); got != 3 {
		t.Errorf("page events = %d, want 3", got)
	}
}

func TestSpiderBreadthFirstOrder(t *testing.T) {
	t.Parallel()

	srv := newSite(t, map[string]string{
		"/":   `<a href="/a">a</a><a href="/b">b</a>`,
		"/a":  `<a href="/a1">a1</a>`,
		"/b":  `<a href="/b1">b1</a>`,
		"/a1": ``,
		"/b1": ``,
	}, nil)
	sp, rec := newTestSpider(t, srv, t.TempDir(), WithRecursive(true))

	if _, err := sp.Crawl(context.Background(), srv.URL+"/"); err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, ev := range rec.ofKind(model.EventPage) {
		got = append(got, fmt.Sprintf("%d %s", ev.Depth, strings.TrimPrefix(ev.URL, srv.URL)))
	}
	want := []string{"1 /", "2 /a", "2 /b", "3 /a1", "3 /b1"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("visit order = %v, want %v", got, want)
	}
}

func TestSpiderDepthBound(t *testing.T) {
	t.Parallel()

	srv := newSite(t, map[string]string{
		"/":  `<a href="/b">b</a>`,
		"/b": `<a href="/c">c</a>`,
		"/c": `<img src="/c.png">`,
	}, map[string]string{"/c.png": "C"})
	sp, _ := newTestSpider(t, srv, t.TempDir(), WithRecursive(true), WithMaxDepth(2))

	summary, err := sp.Crawl(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatal(err)
	}

	if srv.hitCount("/b") != 1 {
		t.Error("/b should be visited at depth 2")
	}
	if srv.hitCount("/c") != 0 {
		t.Error("/c is at depth 3 and must not be fetched")
	}
	if summary.PagesVisited != 2 {
		t.Errorf("PagesVisited = %d, want 2", summary.PagesVisited)
	}
}

func TestSpiderDefaultDepthWhenRecursive(t *testing.T) {
	t.Parallel()

	pages := map[string]string{}
	for i := 0; i < 8; i++ {
		pages[fmt.Sprintf("/p%d", i)] = fmt.Sprintf(`<a href="/p%d">next</a>`, i+1)
	}
	srv := newSite(t, pages, nil)
	sp, _ := newTestSpider(t, srv, t.TempDir(), WithRecursive(true))

	summary, err := sp.Crawl(context.Background(), srv.URL+"/p0")
	if err != nil {
		t.Fatal(err)
	}
	if summary.PagesVisited != 5 {
		t.Errorf("PagesVisited = %d, want 5", summary.PagesVisited)
	}
	if srv.hitCount("/p5") != 0 {
		t.Error("/p5 is beyond the default depth")
	}
}

func TestSpiderImageDownloadedOnce(t *testing.T) {
	t.Parallel()

	srv := newSite(t, map[string]string{
		"/":  `<img src="/shared.png"><img src="/shared.png"><a href="/a">a</a><a href="/b">b</a>`,
		"/a": `<img src="/shared.png">`,
		"/b": `<img src="/shared.png"><img src="/only-b.png">`,
	}, map[string]string{
		"/shared.png": "S",
		"/only-b.png": "B",
	})
	dir := t.TempDir()
	sp, rec := newTestSpider(t, srv, dir, WithRecursive(true))

	summary, err := sp.Crawl(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatal(err)
	}

	if got := srv.hitCount("/shared.png"); got != 1 {
		t.Errorf("shared image fetched %d times, want 1", got)
	}
	if summary.ImagesDownloaded != 2 {
		t.Errorf("ImagesDownloaded = %d, want 2", summary.ImagesDownloaded)
	}

	images := rec.ofKind(model.EventImage)
	if len(images) != 2 || images[0].Index != 1 || images[1].Index != 2 {
		t.Errorf("image events = %+v", images)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("files on disk = %d, want 2", len(entries))
	}
}

func TestSpiderIgnoresOtherOrigins(t *testing.T) {
	t.Parallel()

	other := newSite(t, map[string]string{"/": `<a href="/deeper">d</a>`}, nil)
	srv := newSite(t, map[string]string{
		"/": fmt.Sprintf(`<a href="%s/">elsewhere</a><a href="mailto:x@example.com">mail</a>`, other.URL),
	}, nil)
	sp, _ := newTestSpider(t, srv, t.TempDir(), WithRecursive(true))

	if _, err := sp.Crawl(context.Background(), srv.URL+"/"); err != nil {
		t.Fatal(err)
	}
	if other.hitCount("/") != 0 {
		t.Error("cross-origin page must not be fetched")
	}
}

func TestSpiderDownloadsCrossOriginImages(t *testing.T) {
	t.Parallel()

	cdn := newSite(t, nil, map[string]string{"/logo.png": "L"})
	srv := newSite(t, map[string]string{
		"/": fmt.Sprintf(`<img src="%s/logo.png">`, cdn.URL),
	}, nil)
	sp, _ := newTestSpider(t, srv, t.TempDir())

	summary, err := sp.Crawl(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatal(err)
	}
	if cdn.hitCount("/logo.png") != 1 || summary.ImagesDownloaded != 1 {
		t.Errorf("cross-origin image not downloaded: %+v", summary)
	}
}

func TestSpiderContinuesAfterFailures(t *testing.T) {
	t.Parallel()

	srv := newSite(t, map[string]string{
		"/":   `<a href="/missing">x</a><a href="/ok">ok</a><img src="/gone.png"><img src="/here.png">`,
		"/ok": `<img src="/ok.png">`,
	}, map[string]string{
		"/here.png": "H",
		"/ok.png":   "O",
	})
	sp, rec := newTestSpider(t, srv, t.TempDir(), WithRecursive(true))

	summary, err := sp.Crawl(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("per-URL failures must not abort the crawl: %v", err)
	}

	if srv.hitCount("/ok") != 1 {
		t.Error("/ok must still be visited after /missing failed")
	}

	failedPages := rec.ofKind(model.EventPageFailed)
	if len(failedPages) != 1 {
		t.Fatalf("page failures = %d, want 1", len(failedPages))
	}
	if failedPages[0].StatusCode != http.StatusNotFound || failedPages[0].Reason != "HTTP 404 Not Found" {
		t.Errorf("page failure = %+v", failedPages[0])
	}
	var statusErr *StatusError
	if !errors.As(failedPages[0].Err, &statusErr) {
		t.Errorf("page failure error = %T", failedPages[0].Err)
	}

	failedImages := rec.ofKind(model.EventImageFailed)
	if len(failedImages) != 1 || !strings.HasSuffix(failedImages[0].URL, "/gone.png") {
		t.Errorf("image failures = %+v", failedImages)
	}

	if summary.PagesVisited != 3 || summary.PagesFailed != 1 {
		t.Errorf("page counters = %+v", summary)
	}
	if summary.ImagesAttempted != 3 || summary.ImagesDownloaded != 2 || summary.ImagesFailed != 1 {
		t.Errorf("image counters = %+v", summary)
	}

	// the failed image still consumed counter value 1
	if images := rec.ofKind(model.EventImage); len(images) != 2 || images[0].Index != 2 {
		t.Errorf("image events = %+v", images)
	}
}

func TestSpiderOversizedPageFails(t *testing.T) {
	t.Parallel()

	srv := newSite(t, map[string]string{
		"/":     `<a href="/big">big</a><a href="/next">next</a>`,
		"/big":  `<img src="/hidden.png">` + strings.Repeat("x", 512),
		"/next": `<img src="/a.png">`,
	}, map[string]string{
		"/a.png":      "A",
		"/hidden.png": "H",
	})

	rec := &recorder{}
	fetcher := NewFetcher(srv.Client(), WithMaxBodySize(256))
	sp := NewSpider(fetcher, NewDownloader(fetcher, t.TempDir()),
		WithObserver(rec), WithRecursive(true), WithMaxDepth(2))

	summary, err := sp.Crawl(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	failed := rec.ofKind(model.EventPageFailed)
	if len(failed) != 1 || failed[0].URL != srv.URL+"/big" {
		t.Fatalf("page failures = %+v", failed)
	}
	if !errors.Is(failed[0].Err, ErrBodyTooLarge) {
		t.Errorf("failure cause = %v, want ErrBodyTooLarge", failed[0].Err)
	}
	if srv.hitCount("/hidden.png") != 0 {
		t.Error("images of an oversized page must not be downloaded")
	}
	if srv.hitCount("/next") != 1 || summary.ImagesDownloaded != 1 {
		t.Errorf("crawl should continue past the oversized page: %+v", summary)
	}
	if summary.PagesVisited != 3 || summary.PagesFailed != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestSpiderEventStream(t *testing.T) {
	t.Parallel()

	srv := newSite(t, map[string]string{"/": `<img src="/a.png">`}, map[string]string{"/a.png": "A"})
	dir := t.TempDir()
	sp, rec := newTestSpider(t, srv, dir, WithRecursive(true), WithMaxDepth(3))

	if _, err := sp.Crawl(context.Background(), srv.URL+"/"); err != nil {
		t.Fatal(err)
	}

	kinds := make([]model.EventKind, 0, len(rec.events))
	for _, ev := range rec.events {
		kinds = append(kinds, ev.Kind)
		if ev.Time.IsZero() {
			t.Errorf("%s event has no timestamp", ev.Kind)
		}
	}
	want := []model.EventKind{model.EventStart, model.EventPage, model.EventImage, model.EventDone}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}

	start := rec.events[0].Start
	if start == nil || !start.Recursive || start.MaxDepth != 3 || start.OutputDir != dir {
		t.Errorf("start info = %+v", start)
	}
	done := rec.events[len(rec.events)-1].Summary
	if done == nil || done.PagesVisited != 1 || done.ImagesDownloaded != 1 || done.FinishedAt.IsZero() {
		t.Errorf("done summary = %+v", done)
	}
}

func TestSpiderInvalidSeed(t *testing.T) {
	t.Parallel()

	tests := []string{
		"",
		"example.com",
		"ftp://example.com/",
		"http://",
		"http://[bad",
	}

	for _, seed := range tests {
		t.Run(seed, func(t *testing.T) {
			t.Parallel()

			rec := &recorder{}
			sp := NewSpider(NewFetcher(nil), NewDownloader(nil, t.TempDir()), WithObserver(rec))

			_, err := sp.Crawl(context.Background(), seed)
			if !errors.Is(err, ErrInvalidSeed) {
				t.Errorf("expected ErrInvalidSeed, got %v", err)
			}
			if len(rec.events) != 0 {
				t.Errorf("no events expected, got %d", len(rec.events))
			}
			if sp.State() != StateIdle {
				t.Errorf("state = %s, want idle", sp.State())
			}
		})
	}
}

// fetcherFunc adapts a function to PageFetcher.
type fetcherFunc func(ctx context.Context, rawURL string) (*Page, error)

func (f fetcherFunc) FetchPage(ctx context.Context, rawURL string) (*Page, error) {
	return f(ctx, rawURL)
}

// downloaderFunc adapts a function to ImageDownloader.
type downloaderFunc func(ctx context.Context, rawURL string, index int) (*Download, error)

func (f downloaderFunc) Download(ctx context.Context, rawURL string, index int) (*Download, error) {
	return f(ctx, rawURL, index)
}

func TestSpiderState(t *testing.T) {
	t.Parallel()

	var sp *Spider
	var during State
	fetch := fetcherFunc(func(_ context.Context, rawURL string) (*Page, error) {
		during = sp.State()
		return &Page{URL: rawURL, Body: []byte("<p>empty</p>")}, nil
	})
	sp = NewSpider(fetch, NewDownloader(nil, t.TempDir()))

	if sp.State() != StateIdle {
		t.Errorf("before crawl: %s", sp.State())
	}
	if _, err := sp.Crawl(context.Background(), "http://example.com/"); err != nil {
		t.Fatal(err)
	}
	if during != StateRunning {
		t.Errorf("during crawl: %s", during)
	}
	if sp.State() != StateDone {
		t.Errorf("after crawl: %s", sp.State())
	}
}

func TestSpiderConcurrentDownloads(t *testing.T) {
	t.Parallel()

	var body strings.Builder
	images := map[string]string{}
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&body, `<img src="/img/%d.png">`, i)
		images[fmt.Sprintf("/img/%d.png", i)] = fmt.Sprintf("data-%d", i)
	}
	// every image shares the name "same.png" to exercise collision handling
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&body, `<img src="/dup%d/same.png">`, i)
		images[fmt.Sprintf("/dup%d/same.png", i)] = "dup"
	}
	srv := newSite(t, map[string]string{"/": body.String()}, images)
	dir := t.TempDir()
	sp, rec := newTestSpider(t, srv, dir, WithWorkers(4))

	summary, err := sp.Crawl(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatal(err)
	}
	if summary.ImagesDownloaded != 25 {
		t.Errorf("ImagesDownloaded = %d, want 25", summary.ImagesDownloaded)
	}

	indexes := make([]int, 0, 25)
	for _, ev := range rec.ofKind(model.EventImage) {
		indexes = append(indexes, ev.Index)
	}
	sort.Ints(indexes)
	for i, idx := range indexes {
		if idx != i+1 {
			t.Fatalf("indexes = %v, want 1..25", indexes)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 25 {
		t.Errorf("files on disk = %d, want 25", len(entries))
	}
}

func TestSpiderFatalFileSystemError(t *testing.T) {
	t.Parallel()

	t.Run("output directory cannot be created", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "occupied")
		if err := os.WriteFile(file, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
		rec := &recorder{}
		sp := NewSpider(NewFetcher(nil), NewDownloader(nil, file), WithObserver(rec))

		_, err := sp.Crawl(context.Background(), "http://example.com/")
		var fsErr *FileSystemError
		if !errors.As(err, &fsErr) {
			t.Fatalf("expected *FileSystemError, got %v", err)
		}
		if len(rec.events) != 0 {
			t.Errorf("no events expected before start, got %d", len(rec.events))
		}
	})

	t.Run("write failure aborts the crawl", func(t *testing.T) {
		t.Parallel()

		fetched := map[string]bool{}
		fetch := fetcherFunc(func(_ context.Context, rawURL string) (*Page, error) {
			fetched[rawURL] = true
			return &Page{URL: rawURL, Body: []byte(`<img src="/a.png"><a href="/next">n</a>`)}, nil
		})
		download := downloaderFunc(func(_ context.Context, rawURL string, _ int) (*Download, error) {
			return nil, &FileSystemError{Op: "write", Path: "/full/a.png", Err: errors.New("no space left on device")}
		})
		rec := &recorder{}
		sp := NewSpider(fetch, download, WithRecursive(true), WithObserver(rec))

		summary, err := sp.Crawl(context.Background(), "http://example.com/")
		var fsErr *FileSystemError
		if !errors.As(err, &fsErr) {
			t.Fatalf("expected *FileSystemError, got %v", err)
		}
		if fetched["http://example.com/next"] {
			t.Error("crawl continued after a fatal error")
		}
		if summary.ImagesFailed != 1 {
			t.Errorf("ImagesFailed = %d, want 1", summary.ImagesFailed)
		}
		if len(rec.ofKind(model.EventDone)) != 0 {
			t.Error("done must not be emitted after a fatal error")
		}
	})
}

func TestSpiderCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	fetch := fetcherFunc(func(ctx context.Context, rawURL string) (*Page, error) {
		calls++
		cancel()
		return nil, &NetworkError{URL: rawURL, Err: ctx.Err()}
	})
	sp := NewSpider(fetch, NewDownloader(nil, t.TempDir()), WithRecursive(true))

	_, err := sp.Crawl(ctx, "http://example.com/")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1", calls)
	}
}

func TestSpiderCancellationDuringDownload(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetch := fetcherFunc(func(_ context.Context, rawURL string) (*Page, error) {
		return &Page{URL: rawURL, StatusCode: http.StatusOK, Body: []byte(`<img src="/a.png"><img src="/b.png">`)}, nil
	})
	download := downloaderFunc(func(ctx context.Context, rawURL string, _ int) (*Download, error) {
		cancel()
		return nil, &NetworkError{URL: rawURL, Err: ctx.Err()}
	})
	rec := &recorder{}
	sp := NewSpider(fetch, download, WithObserver(rec))

	summary, err := sp.Crawl(ctx, "http://example.com/")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if failed := rec.ofKind(model.EventImageFailed); len(failed) != 0 {
		t.Errorf("cancelled transfers reported as failures: %+v", failed)
	}
	if summary.ImagesFailed != 0 || summary.ImagesAttempted != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if done := rec.ofKind(model.EventDone); len(done) != 0 {
		t.Error("done event emitted for a cancelled crawl")
	}
}

func TestSpiderReuse(t *testing.T) {
	t.Parallel()

	srv := newSite(t, map[string]string{"/": `<img src="/a.png">`}, map[string]string{"/a.png": "A"})
	sp, _ := newTestSpider(t, srv, t.TempDir())

	first, err := sp.Crawl(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatal(err)
	}
	second, err := sp.Crawl(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatal(err)
	}
	if first.PagesVisited != 1 || second.PagesVisited != 1 {
		t.Errorf("each crawl starts from a clean state: %+v / %+v", first, second)
	}
	if srv.hitCount("/a.png") != 2 {
		t.Errorf("image fetched %d times across two crawls, want 2", srv.hitCount("/a.png"))
	}
}

func TestObservers(t *testing.T) {
	t.Parallel()

	var a, b []model.EventKind
	m := MultiObserver{
		ObserverFunc(func(ev model.Event) { a = append(a, ev.Kind) }),
		nil,
		ObserverFunc(func(ev model.Event) { b = append(b, ev.Kind) }),
	}
	m.Observe(model.Event{Kind: model.EventPage})

	if len(a) != 1 || len(b) != 1 {
		t.Errorf("a=%v b=%v", a, b)
	}
}

func TestFrontier(t *testing.T) {
	t.Parallel()

	f := &frontier{}
	for i := 0; i < 200; i++ {
		f.push(fmt.Sprint(i), i)
	}
	for i := 0; i < 200; i++ {
		e, ok := f.pop()
		if !ok || e.url != fmt.Sprint(i) || e.depth != i {
			t.Fatalf("pop %d = %+v, %v", i, e, ok)
		}
		if i == 150 {
			f.push("tail", 999)
		}
	}
	if e, ok := f.pop(); !ok || e.url != "tail" {
		t.Fatalf("expected tail, got %+v", e)
	}
	if _, ok := f.pop(); ok || f.len() != 0 {
		t.Error("frontier should be empty")
	}
}
