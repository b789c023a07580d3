// Package stage fetches remote media blobs into transient local storage.
// Staged files live only for the duration of one item's pipeline; the caller
// removes them on every exit path.
package stage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// FetchError reports a failed staging download.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("stage fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("stage fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher downloads attachments into Dir via streaming copy; payloads are
// never buffered whole in memory.
type Fetcher struct {
	Dir    string
	Client *http.Client
}

// NewFetcher returns a Fetcher staging into dir.
func NewFetcher(dir string) *Fetcher {
	return &Fetcher{
		Dir:    dir,
		Client: &http.Client{Timeout: 10 * time.Minute},
	}
}

// Stage downloads url into Dir under filename and returns the local path.
// A partial file left by a failed copy is removed before returning.
func (f *Fetcher) Stage(ctx context.Context, url, filename string) (string, error) {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	path := filepath.Join(f.Dir, filename)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()         //nolint:errcheck,gosec
		_ = os.Remove(path) // don't leave partial downloads behind
		return "", &FetchError{URL: url, Err: err}
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close staged file: %w", err)
	}
	return path, nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}
