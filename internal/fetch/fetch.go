// Package fetch downloads release archives over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"

	"github.com/agentx-labs/codex-installer/internal/installerr"
)

const defaultUserAgent = "codex-installer"

// Fetcher downloads a URL to a local file.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	progress   io.Writer
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithProgress reports download percentage to w when the server sends a
// Content-Length. A nil writer disables progress.
func WithProgress(w io.Writer) Option {
	return func(f *Fetcher) {
		f.progress = w
	}
}

// New creates a Fetcher with the given options.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: http.DefaultClient,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FileName returns the last path segment of rawURL, without query or
// fragment. The archive format is detected from this name.
func FileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", installerr.Wrap(installerr.FetchFailed, err, "invalid download URL %q", rawURL)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", installerr.New(installerr.FetchFailed, "download URL %q has no file name", rawURL)
	}
	return name, nil
}

// Fetch downloads rawURL to destPath. The body is written to a sibling
// temp file and renamed into place, so destPath only ever holds a
// complete download.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return installerr.Wrap(installerr.FetchFailed, err, "creating download request")
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return installerr.Wrap(installerr.FetchFailed, err, "downloading %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return installerr.New(installerr.FetchFailed, "download of %s returned status %d", rawURL, resp.StatusCode)
	}

	partPath := destPath + ".part"
	out, err := os.Create(partPath)
	if err != nil {
		return installerr.Wrap(installerr.FetchFailed, err, "creating download file")
	}

	if err := f.copy(out, resp.Body, resp.ContentLength); err != nil {
		out.Close()
		os.Remove(partPath)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(partPath)
		return installerr.Wrap(installerr.FetchFailed, err, "writing download")
	}
	if err := os.Rename(partPath, destPath); err != nil {
		os.Remove(partPath)
		return installerr.Wrap(installerr.FetchFailed, err, "saving download")
	}
	return nil
}

func (f *Fetcher) copy(dst io.Writer, src io.Reader, total int64) error {
	var downloaded int64
	lastPercent := -1

	buf := make([]byte, 32*1024)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return installerr.Wrap(installerr.FetchFailed, writeErr, "writing download")
			}
			downloaded += int64(n)
			if f.progress != nil && total > 0 {
				percent := int(downloaded * 100 / total)
				if percent != lastPercent {
					fmt.Fprintf(f.progress, "\rDownloading... %d%%", percent)
					lastPercent = percent
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return installerr.Wrap(installerr.FetchFailed, readErr, "reading download stream")
		}
	}
	if f.progress != nil && total > 0 {
		fmt.Fprintln(f.progress)
	}
	if total > 0 && downloaded != total {
		return installerr.New(installerr.FetchFailed, "download truncated: got %d of %d bytes", downloaded, total)
	}
	return nil
}
