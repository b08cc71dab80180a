// Package fetch retrieves remote source documents and the resource files
// they reference. Local paths bypass HTTP entirely.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "nbweave/1.0 (+https://github.com/dhruv-naik/nbweave)"
)

// Fetcher downloads documents and resources over HTTP.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with a sensible timeout.
func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// IsRemote reports whether source is an http(s) URL rather than a local path.
func IsRemote(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// Fetch retrieves the body of the given URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// Materialize makes a source document available as a local file. Local
// sources are returned as absolute paths unchanged; remote sources are
// downloaded into dir, keeping the URL's basename.
func (f *Fetcher) Materialize(ctx context.Context, source string, dir string) (string, error) {
	if !IsRemote(source) {
		abs, err := filepath.Abs(source)
		if err != nil {
			return "", fmt.Errorf("resolving source path %s: %w", source, err)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf("source document %s: %w", abs, err)
		}
		return abs, nil
	}

	body, err := f.Fetch(ctx, source)
	if err != nil {
		return "", err
	}

	u, _ := url.Parse(source)
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "index.html"
	}

	local := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(local, body, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", local, err)
	}
	return local, nil
}

// DownloadResource downloads a referenced resource (e.g. an image) into dir
// and returns its local absolute path. The caller records it as a resource
// file: referenced, never owned, never cleaned.
func (f *Fetcher) DownloadResource(ctx context.Context, rawURL string, dir string) (string, error) {
	body, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing resource URL: %w", err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("resource URL %s has no usable filename", rawURL)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating resource directory %s: %w", dir, err)
	}
	local := filepath.Join(dir, name)
	if err := os.WriteFile(local, body, 0644); err != nil {
		return "", fmt.Errorf("writing resource %s: %w", local, err)
	}
	return local, nil
}
