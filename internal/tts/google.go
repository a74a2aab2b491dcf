package tts

import (
	"context"
	"fmt"
	"net/http"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/musclesugar/podcast-ai-pipeline/internal/cast"
)

// GoogleEngine synthesizes with Google Cloud TTS (Chirp 3 HD voices).
// Credentials come from the standard GOOGLE_APPLICATION_CREDENTIALS chain.
type GoogleEngine struct {
	client *texttospeech.Client
}

func NewGoogleEngine(ctx context.Context) (*GoogleEngine, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create Google TTS client: %w", err)
	}
	return &GoogleEngine{client: client}, nil
}

func (e *GoogleEngine) Name() cast.Engine { return cast.EngineGoogle }

func (e *GoogleEngine) Prepare(ctx context.Context, voice string) error { return nil }

func (e *GoogleEngine) Synthesize(ctx context.Context, text, voice string, speed float64) (Result, error) {
	cfg := &texttospeechpb.AudioConfig{
		AudioEncoding: texttospeechpb.AudioEncoding_MP3,
	}
	if speed != 0 && speed != 1.0 {
		// Google takes a speaking rate, the inverse of a length multiplier.
		cfg.SpeakingRate = 1.0 / speed
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: "en-US",
			Name:         voice,
		},
		AudioConfig: cfg,
	}

	resp, err := e.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return Result{}, classifyGoogleError(err)
	}
	return Result{Data: resp.AudioContent, Format: FormatMP3}, nil
}

func (e *GoogleEngine) Close() error { return e.client.Close() }

// classifyGoogleError maps quota and availability gRPC codes to
// RetryableError so the dispatcher retries them instead of aborting.
func classifyGoogleError(err error) error {
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted:
			return &RetryableError{StatusCode: http.StatusTooManyRequests, Body: s.Message()}
		case codes.Unavailable, codes.Internal:
			return &RetryableError{StatusCode: http.StatusServiceUnavailable, Body: s.Message()}
		}
	}
	return fmt.Errorf("Google TTS synthesize: %w", err)
}
