package tts

import (
	"context"
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/musclesugar/podcast-ai-pipeline/internal/cast"
)

// failingSpeechClient returns a fixed error from CreateSpeech.
type failingSpeechClient struct {
	err error
}

func (f *failingSpeechClient) CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error) {
	return openai.RawResponse{}, f.err
}

func TestOpenAIEngine_ClassifiesTransientErrors(t *testing.T) {
	cases := []struct {
		status    int
		retryable bool
	}{
		{429, true},
		{500, true},
		{503, true},
		{400, false},
		{404, false},
	}
	for _, c := range cases {
		e := &OpenAIEngine{client: &failingSpeechClient{
			err: &openai.APIError{HTTPStatusCode: c.status, Message: "nope"},
		}}
		_, err := e.Synthesize(context.Background(), "hi", "alloy", 1.0)
		var rerr *RetryableError
		if got := errors.As(err, &rerr); got != c.retryable {
			t.Errorf("status %d: retryable = %v, want %v (err %v)", c.status, got, c.retryable, err)
		}
		if c.retryable && rerr.StatusCode != c.status {
			t.Errorf("status %d: RetryableError carries %d", c.status, rerr.StatusCode)
		}
	}
}

func TestClassifyGoogleError(t *testing.T) {
	var rerr *RetryableError
	if err := classifyGoogleError(status.Error(codes.ResourceExhausted, "quota")); !errors.As(err, &rerr) {
		t.Errorf("quota exhaustion must be retryable, got %v", err)
	}
	if err := classifyGoogleError(status.Error(codes.Unavailable, "backend down")); !errors.As(err, &rerr) {
		t.Errorf("unavailable must be retryable, got %v", err)
	}
	if err := classifyGoogleError(status.Error(codes.InvalidArgument, "bad voice")); errors.As(err, &rerr) {
		t.Errorf("invalid argument must not be retryable, got %v", err)
	}
}

// statusCodeError mimics the AWS SDK response errors, which expose the
// HTTP status of the failed call.
type statusCodeError struct {
	code int
}

func (e *statusCodeError) Error() string       { return fmt.Sprintf("status %d", e.code) }
func (e *statusCodeError) HTTPStatusCode() int { return e.code }

func TestClassifyPollyError(t *testing.T) {
	var rerr *RetryableError
	if err := classifyPollyError(&statusCodeError{code: 429}); !errors.As(err, &rerr) {
		t.Errorf("throttling must be retryable, got %v", err)
	}
	if err := classifyPollyError(&statusCodeError{code: 400}); errors.As(err, &rerr) {
		t.Errorf("client errors must not be retryable, got %v", err)
	}
	if err := classifyPollyError(errors.New("no credentials")); errors.As(err, &rerr) {
		t.Errorf("non-HTTP errors must not be retryable, got %v", err)
	}
}

func TestCompressedOutput(t *testing.T) {
	for _, e := range []cast.Engine{cast.EngineEdge, cast.EngineGoogle, cast.EnginePolly} {
		if !CompressedOutput(e) {
			t.Errorf("CompressedOutput(%s) = false, want true", e)
		}
	}
	for _, e := range []cast.Engine{cast.EnginePiper, cast.EngineCoqui, cast.EngineOpenAI} {
		if CompressedOutput(e) {
			t.Errorf("CompressedOutput(%s) = true, want false", e)
		}
	}
}

func TestRatePercent(t *testing.T) {
	cases := []struct {
		speed float64
		want  string
	}{
		{1.0, ""},
		{0, ""},
		{0.8, "+25%"},  // shorter episode = faster speech
		{1.25, "-20%"}, // longer episode = slower speech
	}
	for _, c := range cases {
		if got := ratePercent(c.speed); got != c.want {
			t.Errorf("ratePercent(%v) = %q, want %q", c.speed, got, c.want)
		}
	}
}

func TestPiperVoiceURL(t *testing.T) {
	got := piperVoiceURL("en_US-lessac-medium", ".onnx")
	want := piperVoiceBaseURL + "/en/en_US/lessac/medium/en_US-lessac-medium.onnx"
	if got != want {
		t.Errorf("piperVoiceURL = %q, want %q", got, want)
	}

	// Sidecar config lives next to the model.
	got = piperVoiceURL("en_US-lessac-medium", ".onnx.json")
	if got != want+".json" {
		t.Errorf("config URL = %q", got)
	}
}

func TestPiperVoiceURL_UnrecognizedShape(t *testing.T) {
	got := piperVoiceURL("custom", ".onnx")
	if got != piperVoiceBaseURL+"/custom.onnx" {
		t.Errorf("fallback URL = %q", got)
	}
}
