package crawler

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/sha3"
)

const (
	// copyBufferSize is the chunk size used to stream images to disk.
	copyBufferSize = 8192

	// maxCollisionAttempts bounds the "name (n).ext" search.
	maxCollisionAttempts = 10000
)

// Download describes an image written to disk.
type Download struct {
	URL    string
	Path   string
	Bytes  int64
	Digest string
}

// ImageDownloader saves one image.
type ImageDownloader interface {
	Download(ctx context.Context, rawURL string, index int) (*Download, error)
}

// Downloader streams images into a directory. It never overwrites an
// existing file and never leaves a partial file behind.
type Downloader struct {
	fetcher ImageFetcher
	dir     string
}

// NewDownloader creates a Downloader writing into dir.
func NewDownloader(fetcher ImageFetcher, dir string) *Downloader {
	return &Downloader{fetcher: fetcher, dir: dir}
}

// Dir returns the output directory.
func (d *Downloader) Dir() string {
	return d.dir
}

// Prepare creates the output directory and its parents.
func (d *Downloader) Prepare() error {
	if err := os.MkdirAll(d.dir, 0750); err != nil {
		return &FileSystemError{Op: "create output directory", Path: d.dir, Err: err}
	}
	return nil
}

// Download fetches rawURL and writes it under the name ResolveName picks,
// suffixed with " (n)" if that name is taken. Fetch failures are returned
// as *NetworkError or *StatusError; write failures as *FileSystemError.
func (d *Downloader) Download(ctx context.Context, rawURL string, index int) (*Download, error) {
	stream, err := d.fetcher.FetchImage(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	f, path, err := createUnique(d.dir, ResolveName(rawURL, index))
	if err != nil {
		return nil, err
	}

	hash := sha3.New256()
	w := &trackingWriter{w: io.MultiWriter(f, hash)}
	n, copyErr := io.CopyBuffer(w, stream, make([]byte, copyBufferSize))
	closeErr := f.Close()

	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path) //nolint:errcheck
		switch {
		case w.err != nil:
			return nil, &FileSystemError{Op: "write", Path: path, Err: w.err}
		case copyErr != nil:
			return nil, &NetworkError{URL: rawURL, Err: copyErr}
		default:
			return nil, &FileSystemError{Op: "close", Path: path, Err: closeErr}
		}
	}

	return &Download{
		URL:    rawURL,
		Path:   path,
		Bytes:  n,
		Digest: hex.EncodeToString(hash.Sum(nil)),
	}, nil
}

// createUnique creates the first free "name", "name (1)", "name (2)", ...
// in dir. O_EXCL makes the check and the creation one step, so concurrent
// downloads resolving to the same name never share a file.
func createUnique(dir, name string) (*os.File, string, error) {
	for n := 0; n < maxCollisionAttempts; n++ {
		path := filepath.Join(dir, candidateName(name, n))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644) //nolint:gosec // name is sanitized by ResolveName
		if err == nil {
			return f, path, nil
		}
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return nil, "", &FileSystemError{Op: "create", Path: path, Err: err}
	}
	return nil, "", &FileSystemError{
		Op:   "create",
		Path: filepath.Join(dir, name),
		Err:  errors.New("too many files with the same name"),
	}
}

// trackingWriter remembers write errors so that a failed copy can be
// attributed to the disk rather than the network.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		t.err = err
	}
	return n, err
}
