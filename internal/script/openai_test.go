package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

// fakeCompleter scripts chat completion responses and records requests.
type fakeCompleter struct {
	requests []openai.ChatCompletionRequest
	replies  []string
	errs     []error
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	i := len(f.requests)
	f.requests = append(f.requests, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return openai.ChatCompletionResponse{}, f.errs[i]
	}
	reply := ""
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: reply}},
		},
	}, nil
}

func scriptedBatch(closing string) string {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("HOST: We keep the conversation moving with plenty of detail here.\n")
	}
	b.WriteString("GUEST: " + closing + "\n")
	return b.String()
}

func TestGenerate_SingleBatch(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"HOST: Hello.\nGUEST: Hi."}}
	g := &OpenAIGenerator{client: fake, model: "gpt-4o-mini"}

	batches, err := g.Generate(context.Background(), Request{
		Prompt: "go generics", Minutes: 5, Speakers: []string{"HOST", "GUEST"},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch for a 5-minute episode, got %d", len(batches))
	}
	if len(fake.requests) != 1 {
		t.Fatalf("expected 1 API call, got %d", len(fake.requests))
	}
}

func TestGenerate_LongEpisodeCarriesTail(t *testing.T) {
	var replies []string
	for i := 0; i < 16; i++ {
		replies = append(replies, scriptedBatch(fmt.Sprintf("closing line of batch %d.", i+1)))
	}
	fake := &fakeCompleter{replies: replies}
	g := &OpenAIGenerator{client: fake, model: "gpt-4o-mini"}

	batches, err := g.Generate(context.Background(), Request{
		Prompt: "distributed systems", Minutes: 40, Speakers: []string{"HOST", "GUEST"},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(batches) < 2 {
		t.Fatalf("a 40-minute episode must span multiple batches, got %d", len(batches))
	}
	if len(fake.requests) != len(batches) {
		t.Fatalf("expected %d API calls, got %d", len(batches), len(fake.requests))
	}

	// The second call's user prompt must carry the first batch's closing
	// lines so the conversation continues instead of restarting.
	secondUser := fake.requests[1].Messages[1].Content
	if !strings.Contains(secondUser, "closing line of batch 1.") {
		t.Error("second batch prompt does not contain the first batch tail")
	}
	// The first call must not carry any tail.
	firstUser := fake.requests[0].Messages[1].Content
	if strings.Contains(firstUser, "episode so far ends") {
		t.Error("first batch prompt should not reference previous dialogue")
	}
}

func TestGenerate_EmptyResponseIsGenerationError(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"   \n  "}}
	g := &OpenAIGenerator{client: fake, model: "gpt-4o-mini"}

	_, err := g.Generate(context.Background(), Request{
		Prompt: "x", Minutes: 5, Speakers: []string{"HOST"},
	})
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestGenerate_RetriesOnceThenSucceeds(t *testing.T) {
	fake := &fakeCompleter{
		errs:    []error{errors.New("rate limited"), nil},
		replies: []string{"", "HOST: Recovered."},
	}
	g := &OpenAIGenerator{client: fake, model: "gpt-4o-mini"}

	batches, err := g.Generate(context.Background(), Request{
		Prompt: "x", Minutes: 5, Speakers: []string{"HOST"},
	})
	if err != nil {
		t.Fatalf("Generate returned error after retry: %v", err)
	}
	if len(fake.requests) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(fake.requests))
	}
	if batches[0].Text != "HOST: Recovered." {
		t.Errorf("batch text = %q", batches[0].Text)
	}
}

func TestGenerate_GivesUpAfterTwoAttempts(t *testing.T) {
	fake := &fakeCompleter{
		errs: []error{errors.New("boom"), errors.New("boom again")},
	}
	g := &OpenAIGenerator{client: fake, model: "gpt-4o-mini"}

	_, err := g.Generate(context.Background(), Request{
		Prompt: "x", Minutes: 5, Speakers: []string{"HOST"},
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if len(fake.requests) != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", len(fake.requests))
	}
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GenerationError, got %T", err)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	req := Request{Prompt: "repeat", Minutes: 5, Speakers: []string{"HOST", "GUEST"}}

	run := func() []openai.ChatCompletionRequest {
		fake := &fakeCompleter{replies: []string{"HOST: Same."}}
		g := &OpenAIGenerator{client: fake, model: "gpt-4o-mini"}
		if _, err := g.Generate(context.Background(), req); err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		return fake.requests
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("call counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Messages[0].Content != b[i].Messages[0].Content ||
			a[i].Messages[1].Content != b[i].Messages[1].Content {
			t.Errorf("prompts for call %d differ between identical requests", i)
		}
	}
}
