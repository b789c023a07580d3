// Package media holds the optional ffmpeg re-encode step between staging and
// archival. It shells out to ffmpeg the same way the rest of the pipeline
// treats external tools: absent binary or failed encode is reported, and the
// caller decides whether to fall back to the original file.
package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// FFmpeg compresses staged videos with libx264 at a constant rate factor.
type FFmpeg struct {
	Dir string // output directory for compressed temp files
	CRF int    // 0-51; higher is smaller/worse
}

// Compress re-encodes inputPath into a new temp file and returns its path.
// The output file is owned by the caller and subject to the same cleanup
// guarantee as staged files.
func (f *FFmpeg) Compress(ctx context.Context, inputPath string) (string, error) {
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("ffmpeg not available: %w", err)
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create compress dir: %w", err)
	}
	out := filepath.Join(f.Dir, fmt.Sprintf("compressed_%d.mp4", time.Now().UnixMilli()))
	crf := f.CRF
	if crf == 0 {
		crf = 28
	}
	//nolint:gosec // G204: args are fixed flags plus controlled paths
	cmd := exec.CommandContext(ctx, bin,
		"-i", inputPath,
		"-c:v", "libx264",
		"-crf", strconv.Itoa(crf),
		"-y", out,
	)
	if outBytes, err := cmd.CombinedOutput(); err != nil {
		_ = os.Remove(out)
		tail := string(outBytes)
		if len(tail) > 400 {
			tail = tail[len(tail)-400:]
		}
		return "", fmt.Errorf("ffmpeg: %w: %s", err, tail)
	}
	return out, nil
}
