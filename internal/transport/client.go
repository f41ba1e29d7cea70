package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/nao1215/spider/internal/config"
	"golang.org/x/net/proxy"
)

// maxRedirects bounds redirect chains.
const maxRedirects = 10

// Options configures NewClient.
type Options struct {
	// ProxyAddress is a SOCKS5 proxy in host:port form. Empty means direct.
	ProxyAddress string

	// Sites provides per-host cookies, headers and user agents.
	Sites *config.File

	// DialTimeout bounds TCP connection setup. Zero uses 30s.
	DialTimeout time.Duration
}

// NewClient returns an HTTP client routed according to opts.
// The client has no overall timeout: the crawler bounds each request with
// its own context deadline so that page and image timeouts can differ.
func NewClient(opts Options) (*http.Client, error) {
	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 30 * time.Second
	}

	base := &net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		Proxy:               nil,
		DialContext:         base.DialContext,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if opts.ProxyAddress != "" {
		if !IsValidProxyAddress(opts.ProxyAddress) {
			return nil, ErrInvalidProxyAddress
		}
		dialer, err := proxy.SOCKS5("tcp", opts.ProxyAddress, nil, base)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.DialContext = contextDialer(dialer)
	}

	return &http.Client{
		Transport: &siteTransport{base: transport, sites: opts.Sites},
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// contextDialer adapts a proxy.Dialer to the DialContext signature.
// x/net/proxy's SOCKS5 dialer implements proxy.ContextDialer; older dialers
// fall back to a plain Dial raced against the context.
func contextDialer(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type result struct {
			conn net.Conn
			err  error
		}
		ch := make(chan result, 1)
		go func() {
			conn, err := d.Dial(network, addr)
			ch <- result{conn, err}
		}()
		select {
		case r := <-ch:
			return r.conn, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// IsValidProxyAddress reports whether address is host:port with a
// non-empty host and a port in 1..65535.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// siteTransport injects the per-host settings of the config file.
type siteTransport struct {
	base  http.RoundTripper
	sites *config.File
}

// RoundTrip implements http.RoundTripper.
func (t *siteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.sites == nil {
		return t.base.RoundTrip(req)
	}
	site := t.sites.ForHost(req.URL.Host)
	if site.Cookie == "" && site.UserAgent == "" && len(site.Headers) == 0 {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	if site.Cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+site.Cookie)
		} else {
			clone.Header.Set("Cookie", site.Cookie)
		}
	}
	if site.UserAgent != "" {
		clone.Header.Set("User-Agent", site.UserAgent)
	}
	for k, v := range site.Headers {
		clone.Header.Set(k, v)
	}
	return t.base.RoundTrip(clone)
}
