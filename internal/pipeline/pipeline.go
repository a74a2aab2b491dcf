// Package pipeline runs the generate flow end to end: optional source
// ingest, script generation, dialogue parsing, per-speaker synthesis
// and final assembly into one episode file.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/musclesugar/podcast-ai-pipeline/internal/assembly"
	"github.com/musclesugar/podcast-ai-pipeline/internal/cast"
	"github.com/musclesugar/podcast-ai-pipeline/internal/config"
	"github.com/musclesugar/podcast-ai-pipeline/internal/dialogue"
	"github.com/musclesugar/podcast-ai-pipeline/internal/ingest"
	"github.com/musclesugar/podcast-ai-pipeline/internal/observability"
	"github.com/musclesugar/podcast-ai-pipeline/internal/progress"
	"github.com/musclesugar/podcast-ai-pipeline/internal/script"
	"github.com/musclesugar/podcast-ai-pipeline/internal/tts"
)

// Options configures a single generate run.
type Options struct {
	Prompt      string
	Minutes     int
	Cast        *cast.Cast
	Natural     bool
	Speed       float64
	PreviewOnly bool
	OutputDir   string
	Format      string
	Model       string
	Input       string // optional source material: URL, PDF or text file

	// Generator and Engines override the defaults built from config.
	// Tests inject stubs here.
	Generator script.Generator
	Engines   map[cast.Engine]tts.Engine

	OnProgress progress.Callback
	Logger     *slog.Logger
}

// Result describes what a completed run produced.
type Result struct {
	RunID      string
	SessionDir string
	Transcript string
	Audio      string
	Lines      int
	Words      int
	Duration   time.Duration
}

// Run executes the pipeline. Any stage failure aborts the run; no
// partial episode is written.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	start := time.Now()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	onEvent := opts.OnProgress
	if onEvent == nil {
		onEvent = progress.NopCallback
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runID := newRunID(start)
	ctx = observability.WithRunID(ctx, runID)
	logger.InfoContext(ctx, "pipeline started",
		slog.String("model", opts.Model),
		slog.Int("minutes", opts.Minutes),
		slog.Int("speakers", opts.Cast.Len()),
		slog.Bool("preview_only", opts.PreviewOnly),
	)

	dir, err := sessionDir(opts.OutputDir, opts.Prompt, start)
	if err != nil {
		return nil, &PipelineError{Stage: "setup", Message: "failed to create session directory", Err: err}
	}

	meta := Metadata{
		RunID:     runID,
		CreatedAt: start.UTC(),
		Prompt:    opts.Prompt,
		Minutes:   opts.Minutes,
		Model:     opts.Model,
		Natural:   opts.Natural,
		Speed:     opts.Speed,
		Format:    opts.Format,
		Speakers:  describeCast(opts.Cast),
	}

	// Stage 1: optional ingest of source material.
	var source string
	if opts.Input != "" {
		onEvent(progress.NewEvent(progress.StageIngest, "Reading source material", 0.05, start))
		content, err := ingest.NewIngester(opts.Input).Ingest(ctx, opts.Input)
		if err != nil {
			return nil, &PipelineError{Stage: "ingest", Message: "failed to extract source material", Err: err}
		}
		source = content.Text
		logger.DebugContext(ctx, "source material ingested",
			slog.String("source", content.Source),
			slog.Int("words", content.WordCount),
		)
	}

	// Stage 2: script generation.
	onEvent(progress.NewEvent(progress.StageScript, "Generating script", 0.1, start))
	gen := opts.Generator
	if gen == nil {
		gen, err = newGenerator(cfg, opts.Model)
		if err != nil {
			return nil, &PipelineError{Stage: "script", Message: "failed to create generator", Err: err}
		}
	}

	batches, err := gen.Generate(ctx, script.Request{
		Prompt:         opts.Prompt,
		Minutes:        opts.Minutes,
		Speakers:       opts.Cast.Speakers(),
		Natural:        opts.Natural,
		SourceMaterial: source,
	})
	if err != nil {
		return nil, &PipelineError{Stage: "script", Message: "failed to generate script", Err: err}
	}
	raw := script.Join(batches)
	logger.DebugContext(ctx, "script generated",
		slog.Int("batches", len(batches)),
		slog.Int("words", script.WordCount(raw)),
	)

	// Stage 3: parse into dialogue lines.
	lines, err := dialogue.Parse(raw, opts.Cast)
	if err != nil {
		return nil, &PipelineError{Stage: "script", Message: "failed to parse script", Err: err}
	}

	transcriptPath := filepath.Join(dir, "transcript.txt")
	if err := dialogue.WriteTranscript(lines, transcriptPath); err != nil {
		return nil, &PipelineError{Stage: "script", Message: "failed to write transcript", Err: err}
	}

	meta.Lines = len(lines)
	meta.Words = dialogue.WordCount(lines)
	if err := writeMetadata(dir, meta); err != nil {
		return nil, &PipelineError{Stage: "setup", Message: "failed to write metadata", Err: err}
	}

	res := &Result{
		RunID:      runID,
		SessionDir: dir,
		Transcript: transcriptPath,
		Lines:      len(lines),
		Words:      meta.Words,
	}

	if opts.PreviewOnly {
		onEvent(progress.Event{
			Stage:   progress.StageComplete,
			Message: fmt.Sprintf("Transcript saved to %s (%d lines, %d words)", transcriptPath, res.Lines, res.Words),
			Percent: 1.0,
			Elapsed: time.Since(start),
		})
		logger.InfoContext(ctx, "preview complete", slog.String("transcript", transcriptPath))
		return res, nil
	}

	// Stage 4: synthesis.
	engines := opts.Engines
	if engines == nil {
		needed := make([]cast.Engine, 0, opts.Cast.Len())
		for _, m := range opts.Cast.UniquePairs() {
			needed = append(needed, m.Engine)
		}
		engines, err = tts.NewEngines(ctx, cfg, needed)
		if err != nil {
			return nil, &PipelineError{Stage: "tts", Message: "failed to initialize engines", Err: err}
		}
		defer tts.CloseEngines(engines)
	}

	onEvent(progress.NewEvent(progress.StageTTS, "Synthesizing audio", 0.3, start))
	dispatcher := tts.NewDispatcher(engines, opts.Speed)
	segments, err := dispatcher.SynthesizeAll(ctx, lines, opts.Cast, func(done, total int) {
		onEvent(progress.Event{
			Stage:     progress.StageTTS,
			Message:   "Synthesizing audio",
			Percent:   0.3 + 0.55*float64(done)/float64(total),
			LineNum:   done,
			LineTotal: total,
			Elapsed:   time.Since(start),
		})
	})
	if err != nil {
		return nil, &PipelineError{Stage: "tts", Message: "failed to synthesize audio", Err: err}
	}

	// Stage 5: assembly.
	onEvent(progress.NewEvent(progress.StageAssembly, "Assembling episode", 0.9, start))
	tmpDir, err := os.MkdirTemp("", "podcastai-*")
	if err != nil {
		return nil, &PipelineError{Stage: "assembly", Message: "failed to create temp directory", Err: err}
	}
	defer os.RemoveAll(tmpDir)

	var pause time.Duration
	if opts.Natural {
		pause = assembly.DefaultPause
	}
	audioPath := filepath.Join(dir, "episode."+opts.Format)
	duration, err := assembly.Assemble(ctx, segments, assembly.Options{
		Output: audioPath,
		Format: opts.Format,
		Pause:  pause,
		TmpDir: tmpDir,
	})
	if err != nil {
		return nil, &PipelineError{Stage: "assembly", Message: "failed to assemble episode", Err: err}
	}

	res.Audio = audioPath
	res.Duration = duration
	meta.DurationS = duration.Seconds()
	meta.Audio = filepath.Base(audioPath)
	if err := writeMetadata(dir, meta); err != nil {
		return nil, &PipelineError{Stage: "assembly", Message: "failed to update metadata", Err: err}
	}

	var sizeMB float64
	if info, err := os.Stat(audioPath); err == nil {
		sizeMB = float64(info.Size()) / (1024 * 1024)
	}
	onEvent(progress.Event{
		Stage:      progress.StageComplete,
		Message:    "Episode complete",
		Percent:    1.0,
		Elapsed:    time.Since(start),
		OutputFile: audioPath,
		Duration:   formatDuration(duration),
		SizeMB:     sizeMB,
	})
	logger.InfoContext(ctx, "pipeline complete",
		slog.String("audio", audioPath),
		slog.Float64("duration_seconds", duration.Seconds()),
	)
	return res, nil
}

// newGenerator picks the backend from the model name: claude-* models go
// to Anthropic, everything else to OpenAI.
func newGenerator(cfg *config.Config, model string) (script.Generator, error) {
	if script.IsClaudeModel(model) {
		return script.NewClaudeGenerator(cfg, model)
	}
	return script.NewOpenAIGenerator(cfg, model)
}

func describeCast(c *cast.Cast) map[string]string {
	out := make(map[string]string, c.Len())
	for _, speaker := range c.Speakers() {
		m, err := c.Resolve(speaker)
		if err != nil {
			continue
		}
		out[speaker] = fmt.Sprintf("%s/%s", m.Engine, m.Voice)
	}
	return out
}

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
