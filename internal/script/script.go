// Package script turns a topic prompt into raw podcast dialogue text via a
// text-generation service, batching long episodes across sequential calls.
package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/musclesugar/podcast-ai-pipeline/internal/config"
)

// Request describes one episode to generate. Immutable once constructed.
type Request struct {
	Prompt   string
	Minutes  int
	Speakers []string // ordered speaker names from the cast
	Natural  bool     // conversational style with pauses and reactions

	// SourceMaterial is optional extracted content (URL/PDF/text ingest)
	// that grounds the script.
	SourceMaterial string
}

// Batch is the raw text produced by one generation call, plus the tail
// excerpt carried into the next call's prompt for continuity.
type Batch struct {
	Text string
	Tail string
}

// Generator produces the ordered batches for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]Batch, error)
}

// GenerationError reports a text-generation failure: a service error or an
// empty response.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("script generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("script generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// TargetWords estimates the word count needed to fill the requested
// duration, inflated for TTS speaking rate.
func TargetWords(minutes int, natural bool) int {
	wpm := config.WPMProfessional
	if natural {
		wpm = config.WPMNatural
	}
	return int(float64(minutes*wpm) * config.TTSMultiplier)
}

// batchPlan holds the batching decision for a request.
type batchPlan struct {
	count        int
	wordsPerCall int
}

// planBatches splits the word target across generation calls. Anything at
// or under the per-call ceiling is a single call; larger targets split into
// at least two sequential calls.
func planBatches(targetWords int) batchPlan {
	if targetWords <= config.MaxWordsPerBatch {
		return batchPlan{count: 1, wordsPerCall: targetWords}
	}
	n := (targetWords + config.MaxWordsPerBatch - 1) / config.MaxWordsPerBatch
	if n < 2 {
		n = 2
	}
	return batchPlan{count: n, wordsPerCall: targetWords / n}
}

// tailWords is roughly how much trailing context seeds the next batch.
const tailWords = 60

// tailContext extracts the last dialogue lines (~tailWords words) of a
// batch so the next call continues the conversation instead of restarting.
func tailContext(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	var tail []string
	words := 0
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		tail = append([]string{line}, tail...)
		words += len(strings.Fields(line))
		if words >= tailWords {
			break
		}
	}
	return strings.Join(tail, "\n")
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Join flattens batches into the full raw script.
func Join(batches []Batch) string {
	parts := make([]string, 0, len(batches))
	for _, b := range batches {
		parts = append(parts, strings.TrimSpace(b.Text))
	}
	return strings.Join(parts, "\n")
}
