package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/musclesugar/podcast-ai-pipeline/internal/config"
)

const (
	temperatureNatural      = 0.8
	temperatureProfessional = 0.7

	// One bounded retry with backoff: two attempts total per call.
	maxAttempts  = 2
	retryBackoff = 2 * time.Second
)

// chatCompleter is the slice of the OpenAI client the generator needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIGenerator implements Generator with the OpenAI chat completions API.
type OpenAIGenerator struct {
	client chatCompleter
	model  string
}

// NewOpenAIGenerator builds a generator for the given model (for example
// gpt-4o-mini) using the key from cfg.
func NewOpenAIGenerator(cfg *config.Config, model string) (*OpenAIGenerator, error) {
	if cfg.OpenAIKey == "" {
		return nil, &config.ConfigError{Subject: "OPENAI_API_KEY", Reason: "not set in environment or .env file"}
	}
	return &OpenAIGenerator{client: openai.NewClient(cfg.OpenAIKey), model: model}, nil
}

// Generate produces the episode's ordered batches. Long targets are split
// into sequential calls, each continuing from the previous batch's tail.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) ([]Batch, error) {
	plan := planBatches(TargetWords(req.Minutes, req.Natural))

	batches := make([]Batch, 0, plan.count)
	tail := ""
	for i := 1; i <= plan.count; i++ {
		system := buildSystemPrompt(req, plan.wordsPerCall, i, plan.count)
		user := buildUserPrompt(req, plan.wordsPerCall, i, plan.count, tail)

		text, err := g.complete(ctx, req, system, user)
		if err != nil {
			return nil, &GenerationError{Reason: fmt.Sprintf("batch %d of %d", i, plan.count), Err: err}
		}
		if strings.TrimSpace(text) == "" {
			return nil, &GenerationError{Reason: fmt.Sprintf("batch %d of %d returned an empty script", i, plan.count)}
		}

		b := Batch{Text: text, Tail: tailContext(text)}
		batches = append(batches, b)
		tail = b.Tail
	}

	return batches, nil
}

func (g *OpenAIGenerator) complete(ctx context.Context, req Request, system, user string) (string, error) {
	temperature := float32(temperatureProfessional)
	if req.Natural {
		temperature = temperatureNatural
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       g.model,
			Temperature: temperature,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
		})
		if err != nil {
			lastErr = err
		} else if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("response has no choices")
		} else {
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
	}
	return "", lastErr
}
