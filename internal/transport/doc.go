// Package transport builds the *http.Client used by the crawler.
//
// The crawler only needs "GET a URL, give me a status and a body"; how the
// bytes travel is decided here. Three routes exist:
//
//   - direct connections (default)
//   - a SOCKS5 proxy given as host:port (--proxy)
//   - an embedded Tor daemon started with tornago (--tor)
//
// Per-host cookies and headers from the configuration file are injected by
// a RoundTripper so that every request, redirects included, carries them.
package transport
