package tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/musclesugar/podcast-ai-pipeline/internal/cast"
)

const coquiModel = "tts_models/en/vctk/vits"

// CoquiEngine synthesizes offline through the Coqui TTS command line
// tool, using the multi-speaker VCTK model. The voice is a VCTK speaker
// ID such as "p225".
type CoquiEngine struct{}

func NewCoquiEngine() (*CoquiEngine, error) {
	if _, err := exec.LookPath("tts"); err != nil {
		return nil, fmt.Errorf("coqui tts not found in PATH (install with: pip install TTS): %w", err)
	}
	return &CoquiEngine{}, nil
}

func (e *CoquiEngine) Name() cast.Engine { return cast.EngineCoqui }

// Prepare triggers the model download by synthesizing a short probe, so
// the first real line does not pay the multi-hundred-megabyte fetch.
func (e *CoquiEngine) Prepare(ctx context.Context, voice string) error {
	_, err := e.Synthesize(ctx, "ready", voice, 1.0)
	return err
}

// Synthesize ignores speed: the VCTK model has no rate parameter.
func (e *CoquiEngine) Synthesize(ctx context.Context, text, voice string, speed float64) (Result, error) {
	tmp, err := os.CreateTemp("", "coqui-*.wav")
	if err != nil {
		return Result{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(ctx, "tts",
		"--model_name", coquiModel,
		"--speaker_idx", voice,
		"--text", text,
		"--out_path", tmpPath,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	cmd.Stdout = nil

	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("coqui tts failed: %w\n%s", err, stderr.String())
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return Result{}, fmt.Errorf("read coqui output: %w", err)
	}
	return Result{Data: data, Format: FormatWAV}, nil
}

func (e *CoquiEngine) Close() error { return nil }
