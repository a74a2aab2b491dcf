package transcribe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// downloadAudio fetches the audio track of a URL through yt-dlp, which
// handles podcast feeds and video sites alike. Returns the downloaded
// path and a cleanup func for the scratch directory.
func downloadAudio(ctx context.Context, url string) (string, func(), error) {
	if _, err := exec.LookPath("yt-dlp"); err != nil {
		return "", nil, fmt.Errorf("yt-dlp not found in PATH (install with: pip install yt-dlp): %w", err)
	}

	dir, err := os.MkdirTemp("", "transcribe-*")
	if err != nil {
		return "", nil, fmt.Errorf("create download dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	cmd := exec.CommandContext(ctx, "yt-dlp",
		"-x",
		"--audio-format", "mp3",
		"-o", filepath.Join(dir, "audio.%(ext)s"),
		url,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	cmd.Stdout = nil

	if err := cmd.Run(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("yt-dlp failed: %w\n%s", err, stderr.String())
	}

	path := filepath.Join(dir, "audio.mp3")
	if _, err := os.Stat(path); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("downloaded audio not found: %w", err)
	}
	return path, cleanup, nil
}
