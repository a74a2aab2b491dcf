package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/musclesugar/podcast-ai-pipeline/internal/config"
)

// claudeModels maps the CLI's short model names to Anthropic model IDs.
var claudeModels = map[string]string{
	"claude-haiku":  "claude-haiku-4-5-20251001",
	"claude-sonnet": "claude-sonnet-4-5-20250929",
}

// IsClaudeModel reports whether the CLI model name selects the Anthropic
// generator.
func IsClaudeModel(name string) bool {
	_, ok := claudeModels[name]
	return ok
}

const claudeMaxTokens = 8192

// ClaudeGenerator implements Generator with the Anthropic messages API.
type ClaudeGenerator struct {
	client anthropic.Client
	model  string
}

func NewClaudeGenerator(cfg *config.Config, model string) (*ClaudeGenerator, error) {
	if cfg.AnthropicKey == "" {
		return nil, &config.ConfigError{Subject: "ANTHROPIC_API_KEY", Reason: "not set in environment or .env file"}
	}
	modelID, ok := claudeModels[model]
	if !ok {
		return nil, &config.ConfigError{Subject: "model", Reason: fmt.Sprintf("unknown Claude model %q", model)}
	}
	return &ClaudeGenerator{
		client: anthropic.NewClient(option.WithAPIKey(cfg.AnthropicKey)),
		model:  modelID,
	}, nil
}

func (g *ClaudeGenerator) Generate(ctx context.Context, req Request) ([]Batch, error) {
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

func (g *ClaudeGenerator) complete(ctx context.Context, req Request, system, user string) (string, error) {
	temperature := temperatureProfessional
	if req.Natural {
		temperature = temperatureNatural
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:       anthropic.Model(g.model),
			MaxTokens:   claudeMaxTokens,
			Temperature: anthropic.Float(temperature),
			System: []anthropic.TextBlockParam{
				{Text: system},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
			},
		})
		if err != nil {
			lastErr = err
		} else if text := extractText(message); text != "" {
			return text, nil
		} else {
			lastErr = fmt.Errorf("response has no text content")
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

func extractText(msg *anthropic.Message) string {
	var parts []string
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			parts = append(parts, tb.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}
