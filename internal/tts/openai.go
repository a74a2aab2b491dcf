package tts

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/musclesugar/podcast-ai-pipeline/internal/cast"
	"github.com/musclesugar/podcast-ai-pipeline/internal/config"
)

// speechSynthesizer is the slice of the OpenAI client the engine needs.
type speechSynthesizer interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// OpenAIEngine synthesizes with the OpenAI speech API (tts-1).
type OpenAIEngine struct {
	client speechSynthesizer
}

func NewOpenAIEngine(cfg *config.Config) (*OpenAIEngine, error) {
	if cfg.OpenAIKey == "" {
		return nil, &config.ConfigError{Subject: "OPENAI_API_KEY", Reason: "required for the openai TTS engine"}
	}
	return &OpenAIEngine{client: openai.NewClient(cfg.OpenAIKey)}, nil
}

func (e *OpenAIEngine) Name() cast.Engine { return cast.EngineOpenAI }

func (e *OpenAIEngine) Prepare(ctx context.Context, voice string) error { return nil }

func (e *OpenAIEngine) Synthesize(ctx context.Context, text, voice string, speed float64) (Result, error) {
	req := openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
	}
	if speed != 0 && speed != 1.0 {
		// The API takes a playback rate in [0.25, 4.0], the inverse of a
		// length multiplier.
		rate := 1.0 / speed
		if rate < 0.25 {
			rate = 0.25
		}
		if rate > 4.0 {
			rate = 4.0
		}
		req.Speed = rate
	}

	resp, err := e.client.CreateSpeech(ctx, req)
	if err != nil {
		return Result{}, classifyOpenAIError(err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return Result{}, fmt.Errorf("OpenAI speech read: %w", err)
	}
	return Result{Data: data, Format: FormatWAV}, nil
}

func (e *OpenAIEngine) Close() error { return nil }

// classifyOpenAIError maps throttling and server failures to
// RetryableError so the dispatcher retries them instead of aborting.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && retryableStatus(apiErr.HTTPStatusCode) {
		return &RetryableError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	return fmt.Errorf("OpenAI speech: %w", err)
}
