package assembly

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Audio quality constants for consistent output across ffmpeg operations.
const (
	AudioBitrate    = "192k"
	AudioSampleRate = "44100"
	AudioChannels   = "2"
	AudioResampler  = "aresample=resampler=soxr"
)

// CheckFFmpeg verifies that ffmpeg and ffprobe are installed.
func CheckFFmpeg() error {
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%s not found in PATH (install ffmpeg to assemble audio): %w", tool, err)
		}
	}
	return nil
}

// codecArgs returns the encoder flags for the requested container.
func codecArgs(format string) []string {
	if format == "mp3" {
		return []string{"-c:a", "libmp3lame", "-b:a", AudioBitrate, "-q:a", "0"}
	}
	return []string{"-c:a", "pcm_s16le"}
}

func generateSilence(ctx context.Context, output, format string, d time.Duration) error {
	args := []string{
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=r=%s:cl=stereo", AudioSampleRate),
		"-t", fmt.Sprintf("%.3f", d.Seconds()),
	}
	args = append(args, codecArgs(format)...)
	args = append(args, "-y", output)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	cmd.Stdout = nil

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg silence generation failed: %w\n%s", err, stderr.String())
	}
	return nil
}

func buildConcatList(segments []string, silencePath, listPath string) error {
	var lines []string
	for i, seg := range segments {
		lines = append(lines, fmt.Sprintf("file '%s'", seg))
		// Silence between segments, not after the last one.
		if silencePath != "" && i < len(segments)-1 {
			lines = append(lines, fmt.Sprintf("file '%s'", silencePath))
		}
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(listPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

func runFFmpegConcat(ctx context.Context, listPath, format, output string) error {
	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-af", AudioResampler,
	}
	args = append(args, codecArgs(format)...)
	args = append(args,
		"-ar", AudioSampleRate,
		"-ac", AudioChannels,
		"-y", output,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	cmd.Stdout = nil

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w\n%s", err, stderr.String())
	}

	info, err := os.Stat(output)
	if err != nil {
		return fmt.Errorf("output file not created: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("output file is empty")
	}
	return nil
}

// probeDuration asks ffprobe for the playback length of an audio file.
func probeDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
