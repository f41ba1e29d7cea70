// Package crawler implements the breadth-first image crawler.
//
// # Components
//
//   - Extractor: turns an HTML document into image URLs and same-origin
//     page URLs, both absolute and in document order
//   - Fetcher: one GET per call; full body for pages, a stream for images
//   - ResolveName: maps an image URL to a local file name
//   - Downloader: streams an image to disk without overwriting anything
//   - Spider: owns the frontier, the visited set, the downloaded-image set
//     and the image counter, and drives the other components
//
// # Failures
//
// Per-URL failures are values, not control flow: a fetch returns either a
// *NetworkError (transport, DNS, timeout, TLS) or a *StatusError (non-2xx),
// and the Spider logs them through its Observer and moves on. Only a
// *FileSystemError, an invalid seed or context cancellation stop a crawl.
//
// # Usage
//
//	fetcher := crawler.NewFetcher(client)
//	spider := crawler.NewSpider(fetcher, crawler.NewDownloader(fetcher, "./data"),
//	    crawler.WithRecursive(true), crawler.WithMaxDepth(3))
//	summary, err := spider.Crawl(ctx, "https://example.com/")
package crawler
