package tts

import (
	"context"
	"errors"
	"fmt"
	"io"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"

	"github.com/musclesugar/podcast-ai-pipeline/internal/cast"
)

// pollyVoiceLang maps voice IDs to their language codes.
var pollyVoiceLang = map[string]types.LanguageCode{
	"Matthew":  types.LanguageCodeEnUs,
	"Ruth":     types.LanguageCodeEnUs,
	"Stephen":  types.LanguageCodeEnUs,
	"Danielle": types.LanguageCodeEnUs,
	"Amy":      types.LanguageCodeEnGb,
	"Olivia":   types.LanguageCodeEnAu,
	"Kajal":    types.LanguageCodeEnIn,
}

// PollyEngine synthesizes with AWS Polly's Generative engine. Credentials
// come from the standard AWS SDK chain.
type PollyEngine struct {
	client *polly.Client
}

func NewPollyEngine(ctx context.Context) (*PollyEngine, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config for Polly: %w", err)
	}
	return &PollyEngine{client: polly.NewFromConfig(awsCfg)}, nil
}

func (e *PollyEngine) Name() cast.Engine { return cast.EnginePolly }

func (e *PollyEngine) Prepare(ctx context.Context, voice string) error { return nil }

// Synthesize ignores speed: the Generative engine has no rate control
// outside SSML, and SSML prosody is not supported there either.
func (e *PollyEngine) Synthesize(ctx context.Context, text, voice string, speed float64) (Result, error) {
	lang, ok := pollyVoiceLang[voice]
	if !ok {
		lang = types.LanguageCodeEnUs
	}

	input := &polly.SynthesizeSpeechInput{
		Engine:       types.EngineGenerative,
		OutputFormat: types.OutputFormatMp3,
		SampleRate:   strPtr("24000"),
		Text:         &text,
		TextType:     types.TextTypeText,
		VoiceId:      types.VoiceId(voice),
		LanguageCode: lang,
	}

	resp, err := e.client.SynthesizeSpeech(ctx, input)
	if err != nil {
		return Result{}, classifyPollyError(err)
	}
	defer resp.AudioStream.Close()

	data, err := io.ReadAll(resp.AudioStream)
	if err != nil {
		return Result{}, fmt.Errorf("Polly read audio: %w", err)
	}
	return Result{Data: data, Format: FormatMP3}, nil
}

func (e *PollyEngine) Close() error { return nil }

// classifyPollyError maps throttling and server failures to RetryableError
// so the dispatcher retries them instead of aborting. AWS response errors
// carry the HTTP status of the failed call.
func classifyPollyError(err error) error {
	var httpErr interface{ HTTPStatusCode() int }
	if errors.As(err, &httpErr) && retryableStatus(httpErr.HTTPStatusCode()) {
		return &RetryableError{StatusCode: httpErr.HTTPStatusCode(), Body: err.Error()}
	}
	return fmt.Errorf("Polly synthesize: %w", err)
}

func strPtr(s string) *string { return &s }
