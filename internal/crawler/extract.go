package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Links is the result of extracting one HTML document.
type Links struct {
	// Images holds the absolute src of every <img>, in document order.
	Images []string

	// Pages holds the absolute href of every <a> that shares the base URL's
	// scheme family (http/https) and host:port, in document order.
	Pages []string
}

// Extractor maps a document fetched from baseURL to its links.
// Implementations must not fail: unparsable input yields fewer links.
type Extractor interface {
	Extract(baseURL string, r io.Reader) Links
}

// HTMLExtractor is the Extractor backed by golang.org/x/net/html.
type HTMLExtractor struct{}

// Extract implements Extractor.
func (HTMLExtractor) Extract(baseURL string, r io.Reader) Links {
	return Extract(baseURL, r)
}

// Extract parses r as HTML and collects image sources and same-origin
// anchors resolved against baseURL. Empty attributes are skipped; no
// filtering by file extension is done. An invalid base URL or a document
// the parser rejects yields empty, non-nil slices.
func Extract(baseURL string, r io.Reader) Links {
	links := Links{
		Images: make([]string, 0),
		Pages:  make([]string, 0),
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return links
	}

	doc, err := html.Parse(r)
	if err != nil {
		return links
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "img":
				if abs := resolve(base, getAttr(n, "src")); abs != nil {
					links.Images = append(links.Images, abs.String())
				}
			case "a":
				if abs := resolve(base, getAttr(n, "href")); abs != nil && sameOrigin(base, abs) {
					links.Pages = append(links.Pages, abs.String())
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links
}

// resolve returns ref resolved against base, or nil if ref is empty or
// cannot be parsed.
func resolve(base *url.URL, ref string) *url.URL {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return nil
	}
	return base.ResolveReference(u)
}

// sameOrigin reports whether u is an http(s) URL whose host:port equals
// the base's exactly.
func sameOrigin(base, u *url.URL) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host == base.Host
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
