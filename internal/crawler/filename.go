package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// ImageExtensions are the extensions recognized as images, checked in
// this order.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg"}

// ResolveName maps an image URL and its counter value to a file name:
//
//  1. the last path segment, verbatim, if it ends with an image extension
//     (case-insensitive)
//  2. image_<index><ext> if the whole URL ends with an image extension
//  3. image_<index>.bin otherwise
//
// It never fails. Collisions are handled by the Downloader.
func ResolveName(rawURL string, index int) string {
	if base := lastSegment(rawURL); usableName(base) && hasImageExtension(base) {
		return base
	}

	lower := strings.ToLower(rawURL)
	for _, ext := range ImageExtensions {
		if strings.HasSuffix(lower, ext) {
			return fmt.Sprintf("image_%d%s", index, ext)
		}
	}
	return fmt.Sprintf("image_%d.bin", index)
}

// lastSegment returns what follows the final "/" of the URL's escaped path,
// or "" if the URL cannot be parsed or its path ends with "/". Percent
// escapes are kept as they appear in the URL.
func lastSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := u.EscapedPath()
	return p[strings.LastIndex(p, "/")+1:]
}

// usableName rejects names that cannot be used as a single file name.
func usableName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "\x00\\")
}

func hasImageExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range ImageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// candidateName returns name for attempt 0 and "stem (n)ext" afterwards.
func candidateName(name string, n int) string {
	if n == 0 {
		return name
	}
	stem, ext := splitExt(name)
	return fmt.Sprintf("%s (%d)%s", stem, n, ext)
}

// splitExt splits name at its last dot. Leading dots belong to the stem,
// so ".png" has no extension.
func splitExt(name string) (stem, ext string) {
	rest := strings.TrimLeft(name, ".")
	i := strings.LastIndex(rest, ".")
	if i < 0 {
		return name, ""
	}
	cut := len(name) - len(rest) + i
	return name[:cut], name[cut:]
}
