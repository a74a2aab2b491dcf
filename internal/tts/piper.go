package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/musclesugar/podcast-ai-pipeline/internal/cast"
)

const piperVoiceBaseURL = "https://huggingface.co/rhasspy/piper-voices/resolve/main"

// PiperEngine synthesizes offline through the piper command line tool.
// Voice models are fetched from HuggingFace on first use and cached in
// the data directory.
type PiperEngine struct {
	dataDir string
	http    *http.Client

	mu       sync.Mutex
	prepared map[string]string // voice -> model path
}

func NewPiperEngine(dataDir string) (*PiperEngine, error) {
	if _, err := exec.LookPath("piper"); err != nil {
		return nil, fmt.Errorf("piper not found in PATH (install with: pip install piper-tts): %w", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create piper data dir: %w", err)
	}
	return &PiperEngine{
		dataDir:  dataDir,
		http:     &http.Client{},
		prepared: make(map[string]string),
	}, nil
}

func (e *PiperEngine) Name() cast.Engine { return cast.EnginePiper }

// Prepare ensures the voice model and its config sidecar are on disk,
// downloading both the first time a voice is used.
func (e *PiperEngine) Prepare(ctx context.Context, voice string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.prepared[voice]; ok {
		return nil
	}

	modelPath := filepath.Join(e.dataDir, voice+".onnx")
	configPath := modelPath + ".json"

	for _, f := range []struct{ path, url string }{
		{modelPath, piperVoiceURL(voice, ".onnx")},
		{configPath, piperVoiceURL(voice, ".onnx.json")},
	} {
		if _, err := os.Stat(f.path); err == nil {
			continue
		}
		if err := e.download(ctx, f.url, f.path); err != nil {
			return fmt.Errorf("download piper voice %s: %w", voice, err)
		}
	}

	e.prepared[voice] = modelPath
	return nil
}

func (e *PiperEngine) Synthesize(ctx context.Context, text, voice string, speed float64) (Result, error) {
	if err := e.Prepare(ctx, voice); err != nil {
		return Result{}, err
	}
	e.mu.Lock()
	modelPath := e.prepared[voice]
	e.mu.Unlock()

	tmp, err := os.CreateTemp("", "piper-*.wav")
	if err != nil {
		return Result{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	args := []string{
		"--model", modelPath,
		"--output_file", tmpPath,
	}
	if speed != 0 && speed != 1.0 {
		// length_scale is a duration multiplier, same convention as ours.
		args = append(args, "--length_scale", fmt.Sprintf("%.2f", speed))
	}

	cmd := exec.CommandContext(ctx, "piper", args...)
	cmd.Stdin = strings.NewReader(text)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	cmd.Stdout = nil

	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("piper failed: %w\n%s", err, stderr.String())
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return Result{}, fmt.Errorf("read piper output: %w", err)
	}
	return Result{Data: data, Format: FormatWAV}, nil
}

func (e *PiperEngine) Close() error { return nil }

func (e *PiperEngine) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	// Write to a temp file first so a partial download never poses as a
	// complete model.
	tmp, err := os.CreateTemp(e.dataDir, ".download-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, dest)
}

// piperVoiceURL builds the repository path for a voice like
// "en_US-lessac-medium": <lang>/<locale>/<name>/<quality>/<voice><ext>.
func piperVoiceURL(voice, ext string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) != 3 {
		return fmt.Sprintf("%s/%s%s", piperVoiceBaseURL, voice, ext)
	}
	locale := parts[0]
	lang := strings.SplitN(locale, "_", 2)[0]
	return fmt.Sprintf("%s/%s/%s/%s/%s/%s%s", piperVoiceBaseURL, lang, locale, parts[1], parts[2], voice, ext)
}
