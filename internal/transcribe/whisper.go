// Package transcribe turns existing audio, local files or remote URLs,
// into a plain text transcript using the OpenAI audio API.
package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/musclesugar/podcast-ai-pipeline/internal/config"
)

// DefaultModel is the transcription model used unless overridden.
const DefaultModel = "whisper-1"

// TranscriptionError reports a failure transcribing a source.
type TranscriptionError struct {
	Source string
	Err    error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed for %s: %v", e.Source, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// audioTranscriber is the slice of the OpenAI client the transcriber needs.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

type Transcriber struct {
	client audioTranscriber
	model  string
}

func New(cfg *config.Config, model string) (*Transcriber, error) {
	if cfg.OpenAIKey == "" {
		return nil, &config.ConfigError{Subject: "OPENAI_API_KEY", Reason: "required for transcription"}
	}
	if model == "" {
		model = DefaultModel
	}
	return &Transcriber{client: openai.NewClient(cfg.OpenAIKey), model: model}, nil
}

// Transcribe accepts a local audio path or an http(s) URL. URLs are
// downloaded to a temporary file first.
func (t *Transcriber) Transcribe(ctx context.Context, source string) (string, error) {
	path := source
	if isURL(source) {
		dl, cleanup, err := downloadAudio(ctx, source)
		if err != nil {
			return "", &TranscriptionError{Source: source, Err: err}
		}
		defer cleanup()
		path = dl
	}

	if _, err := os.Stat(path); err != nil {
		return "", &TranscriptionError{Source: source, Err: err}
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: path,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return "", &TranscriptionError{Source: source, Err: err}
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", &TranscriptionError{Source: source, Err: fmt.Errorf("empty transcript returned")}
	}
	return text, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
