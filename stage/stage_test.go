package stage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestStageDownloadsToLocalFile(t *testing.T) {
	body := []byte("mp4 bytes here")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(dir)
	path, err := f.Stage(context.Background(), srv.URL+"/clip.mp4", "123_1.mp4")
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if path != filepath.Join(dir, "123_1.mp4") {
		t.Fatalf("unexpected path %q", path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read staged file: %v", err)
	}
	if string(got) != string(body) {
		t.Fatalf("staged content mismatch: %q", got)
	}
}

func TestStageNon2xxIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	_, err := f.Stage(context.Background(), srv.URL+"/gone.mp4", "gone.mp4")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("want FetchError, got %v", err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Fatalf("StatusCode = %d, want 404", fe.StatusCode)
	}
	if got := mustReadDir(t, f.Dir); len(got) != 0 {
		t.Fatalf("failed stage left files behind: %v", got)
	}
}

func TestStageConnectionFailureIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listening anymore

	f := NewFetcher(t.TempDir())
	_, err := f.Stage(context.Background(), url+"/clip.mp4", "clip.mp4")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("want FetchError, got %v", err)
	}
}

func mustReadDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
