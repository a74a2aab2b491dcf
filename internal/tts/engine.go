// Package tts synthesizes dialogue lines through a closed set of
// interchangeable speech backends and keeps the results in line order.
package tts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/musclesugar/podcast-ai-pipeline/internal/cast"
	"github.com/musclesugar/podcast-ai-pipeline/internal/dialogue"
)

// Format is the audio encoding an engine returns.
type Format string

const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
)

// Result is the output of one synthesis call.
type Result struct {
	Data   []byte
	Format Format
}

// Segment is the synthesized audio for exactly one dialogue line. Duration
// is exact for WAV data and zero for compressed formats until probed.
type Segment struct {
	Line     dialogue.Line
	Data     []byte
	Format   Format
	Duration time.Duration
}

// Engine synthesizes speech. speed is a length multiplier: 1.0 normal,
// 1.2 twenty percent slower, 0.8 twenty percent faster.
type Engine interface {
	Name() cast.Engine
	Synthesize(ctx context.Context, text, voice string, speed float64) (Result, error)

	// Prepare warms anything the voice needs (model downloads for local
	// engines). Called once per unique (engine, voice) pair per process.
	Prepare(ctx context.Context, voice string) error

	Close() error
}

// CompressedOutput reports whether the engine returns MP3 rather than
// PCM WAV. Any compressed segment forces assembly through ffmpeg even
// when the episode format is wav.
func CompressedOutput(e cast.Engine) bool {
	switch e {
	case cast.EngineEdge, cast.EngineGoogle, cast.EnginePolly:
		return true
	}
	return false
}

// SynthesisError names the speaker and backend that failed so the user can
// fix the configuration rather than guess.
type SynthesisError struct {
	Speaker string
	Engine  cast.Engine
	Err     error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed for speaker %q on engine %q: %v", e.Speaker, e.Engine, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// RetryableError signals a transient backend failure (throttling, 5xx).
// The cloud engines classify their provider errors into this type so the
// dispatcher's retry loop can tell transient failures from permanent ones.
type RetryableError struct {
	StatusCode int
	Body       string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// retryableStatus reports whether an HTTP status is worth retrying.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Retry constants shared by the cloud engines.
const (
	retryMaxAttempts    = 3
	retryInitialBackoff = 1 * time.Second
	retryBackoffMulti   = 2
	retryMaxBackoff     = 10 * time.Second
)

// WithRetry executes fn with exponential backoff on RetryableError. Other
// errors return immediately.
func WithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	backoff := retryInitialBackoff

	for attempt := 1; attempt <= retryMaxAttempts; attempt++ {
		var rerr *RetryableError
		if err := fn(); err == nil {
			return nil
		} else if !errors.As(err, &rerr) {
			return err
		} else {
			lastErr = err
		}

		if attempt < retryMaxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= time.Duration(retryBackoffMulti)
			if backoff > retryMaxBackoff {
				backoff = retryMaxBackoff
			}
		}
	}

	return lastErr
}
