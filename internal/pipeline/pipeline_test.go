package pipeline

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/musclesugar/podcast-ai-pipeline/internal/cast"
	"github.com/musclesugar/podcast-ai-pipeline/internal/config"
	"github.com/musclesugar/podcast-ai-pipeline/internal/script"
	"github.com/musclesugar/podcast-ai-pipeline/internal/tts"
)

// stubGenerator returns a fixed script regardless of the request.
type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) Generate(ctx context.Context, req script.Request) ([]script.Batch, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []script.Batch{{Text: s.text}}, nil
}

// wavEngine fabricates a short valid WAV for every line.
type wavEngine struct{}

func (wavEngine) Name() cast.Engine                            { return cast.EnginePiper }
func (wavEngine) Prepare(ctx context.Context, voice string) error { return nil }
func (wavEngine) Close() error                                 { return nil }

func (wavEngine) Synthesize(ctx context.Context, text, voice string, speed float64) (tts.Result, error) {
	pcm := make([]byte, 2205*2) // 100ms of 16-bit mono at 22050 Hz
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(22050))
	binary.Write(&buf, binary.LittleEndian, uint32(22050*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return tts.Result{Data: buf.Bytes(), Format: tts.FormatWAV}, nil
}

func pipelineCast(t *testing.T) *cast.Cast {
	t.Helper()
	c, err := cast.Parse(`{"HOST":"en_US-lessac-medium","GUEST":"en_US-ryan-high"}`, "")
	if err != nil {
		t.Fatalf("cast.Parse: %v", err)
	}
	return c
}

func baseOptions(t *testing.T, gen script.Generator) Options {
	t.Helper()
	return Options{
		Prompt:    "the history of container ships",
		Minutes:   5,
		Cast:      pipelineCast(t),
		Speed:     1.0,
		OutputDir: t.TempDir(),
		Format:    "wav",
		Model:     "gpt-4o-mini",
		Generator: gen,
	}
}

func TestRun_PreviewOnlyWritesTranscriptAndMetadata(t *testing.T) {
	gen := &stubGenerator{text: "HOST: Welcome aboard.\nGUEST: Happy to be here.\n"}
	opts := baseOptions(t, gen)
	opts.PreviewOnly = true

	res, err := Run(context.Background(), &config.Config{}, opts)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Audio != "" {
		t.Errorf("preview run must not produce audio, got %q", res.Audio)
	}
	if res.Lines != 2 {
		t.Errorf("Lines = %d, want 2", res.Lines)
	}

	data, err := os.ReadFile(res.Transcript)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	want := "HOST: Welcome aboard.\nGUEST: Happy to be here.\n"
	if string(data) != want {
		t.Errorf("transcript = %q, want %q", data, want)
	}

	metaData, err := os.ReadFile(filepath.Join(res.SessionDir, "metadata.json"))
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	var meta Metadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		t.Fatalf("unmarshal metadata: %v", err)
	}
	if meta.RunID != res.RunID {
		t.Errorf("metadata run_id = %q, want %q", meta.RunID, res.RunID)
	}
	if meta.Lines != 2 || meta.Words != 6 {
		t.Errorf("metadata counts = %d lines / %d words, want 2 / 6", meta.Lines, meta.Words)
	}
}

func TestRun_PreviewIsDeterministic(t *testing.T) {
	gen := &stubGenerator{text: "HOST: Same every time.\nGUEST: Indeed.\n"}

	read := func() string {
		opts := baseOptions(t, gen)
		opts.PreviewOnly = true
		res, err := Run(context.Background(), &config.Config{}, opts)
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		data, err := os.ReadFile(res.Transcript)
		if err != nil {
			t.Fatalf("read transcript: %v", err)
		}
		return string(data)
	}

	if a, b := read(), read(); a != b {
		t.Errorf("identical preview runs produced different transcripts:\n%q\n%q", a, b)
	}
}

func TestRun_FullEpisodeWithStubEngine(t *testing.T) {
	gen := &stubGenerator{text: "HOST: Hello there.\n"}
	opts := baseOptions(t, gen)
	opts.Engines = map[cast.Engine]tts.Engine{cast.EnginePiper: wavEngine{}}

	res, err := Run(context.Background(), &config.Config{}, opts)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Audio == "" {
		t.Fatal("full run must produce an audio path")
	}
	info, err := os.Stat(res.Audio)
	if err != nil {
		t.Fatalf("stat audio: %v", err)
	}
	if info.Size() <= 44 {
		t.Errorf("audio file is empty (%d bytes)", info.Size())
	}
	if res.Duration <= 0 {
		t.Errorf("duration = %v, want > 0", res.Duration)
	}
}

func TestRun_GenerationFailureAborts(t *testing.T) {
	gen := &stubGenerator{err: &script.GenerationError{Reason: "service down"}}
	opts := baseOptions(t, gen)
	opts.PreviewOnly = true

	_, err := Run(context.Background(), &config.Config{}, opts)
	var perr *PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PipelineError, got %v", err)
	}
	if perr.Stage != "script" {
		t.Errorf("Stage = %q, want script", perr.Stage)
	}
	var gerr *script.GenerationError
	if !errors.As(err, &gerr) {
		t.Error("PipelineError should wrap the GenerationError")
	}
}

func TestRun_UnmappedScriptSpeakerAborts(t *testing.T) {
	gen := &stubGenerator{text: "HOST: Hi.\nNARRATOR: I should not be here.\n"}
	opts := baseOptions(t, gen)
	opts.PreviewOnly = true

	_, err := Run(context.Background(), &config.Config{}, opts)
	if err == nil {
		t.Fatal("expected error for unmapped speaker in script")
	}
	var cerr *config.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected wrapped ConfigError, got %v", err)
	}
	if cerr.Subject != "NARRATOR" {
		t.Errorf("Subject = %q, want NARRATOR", cerr.Subject)
	}
}
