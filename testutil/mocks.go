package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// MediaOrigin is a test server standing in for the chat platform's CDN: it
// serves attachment bodies by path.
type MediaOrigin struct {
	*httptest.Server
	Files map[string][]byte
}

// NewMediaOrigin creates a media origin server. Paths not present in Files
// return 404.
func NewMediaOrigin(t *testing.T) *MediaOrigin {
	t.Helper()
	m := &MediaOrigin{Files: make(map[string][]byte)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := m.Files[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(body)
	}))
	t.Cleanup(m.Close)
	return m
}

// Add registers body under path and returns its absolute URL.
func (m *MediaOrigin) Add(path string, body []byte) string {
	m.Files[path] = body
	return m.URL + path
}
