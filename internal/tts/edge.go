package tts

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/musclesugar/podcast-ai-pipeline/internal/cast"
)

// EdgeEngine synthesizes through the edge-tts command line tool, which
// fronts Microsoft's free neural voices. Requires network access but no
// API key.
type EdgeEngine struct{}

func NewEdgeEngine() (*EdgeEngine, error) {
	if _, err := exec.LookPath("edge-tts"); err != nil {
		return nil, fmt.Errorf("edge-tts not found in PATH (install with: pip install edge-tts): %w", err)
	}
	return &EdgeEngine{}, nil
}

func (e *EdgeEngine) Name() cast.Engine { return cast.EngineEdge }

func (e *EdgeEngine) Prepare(ctx context.Context, voice string) error { return nil }

func (e *EdgeEngine) Synthesize(ctx context.Context, text, voice string, speed float64) (Result, error) {
	tmp, err := os.CreateTemp("", "edge-*.mp3")
	if err != nil {
		return Result{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	args := []string{
		"--voice", voice,
		"--text", text,
		"--write-media", tmpPath,
	}
	if pct := ratePercent(speed); pct != "" {
		args = append(args, "--rate", pct)
	}

	cmd := exec.CommandContext(ctx, "edge-tts", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	cmd.Stdout = nil

	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("edge-tts failed: %w\n%s", err, stderr.String())
	}

	data, err := os.ReadFile(filepath.Clean(tmpPath))
	if err != nil {
		return Result{}, fmt.Errorf("read edge-tts output: %w", err)
	}
	return Result{Data: data, Format: FormatMP3}, nil
}

func (e *EdgeEngine) Close() error { return nil }

// ratePercent turns a length multiplier into the signed percentage string
// edge-tts expects ("+10%" speaks 10% faster). Returns "" at normal speed.
func ratePercent(speed float64) string {
	if speed == 0 || speed == 1.0 {
		return ""
	}
	pct := int(math.Round((1.0/speed - 1.0) * 100))
	if pct == 0 {
		return ""
	}
	return fmt.Sprintf("%+d%%", pct)
}
