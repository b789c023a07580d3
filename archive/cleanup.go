package archive

import (
	"log/slog"
	"os"
)

// discard removes a staged file. Removal is unconditional on every exit path
// of the per-item protocol; a failure here must never mask the pipeline's own
// error, so it is only logged.
func discard(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("staged file cleanup failed", slog.String("path", path), slog.Any("err", err))
	}
}
