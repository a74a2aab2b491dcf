package script

import (
	"strings"
	"testing"

	"github.com/musclesugar/podcast-ai-pipeline/internal/config"
)

func TestTargetWords(t *testing.T) {
	// 8 min professional: 8 * 130 * 2.5 = 2600
	if got := TargetWords(8, false); got != 2600 {
		t.Errorf("TargetWords(8, professional) = %d, want 2600", got)
	}
	// 8 min natural: 8 * 110 * 2.5 = 2200
	if got := TargetWords(8, true); got != 2200 {
		t.Errorf("TargetWords(8, natural) = %d, want 2200", got)
	}
}

func TestPlanBatches_SingleCallAtCeiling(t *testing.T) {
	p := planBatches(config.MaxWordsPerBatch)
	if p.count != 1 {
		t.Errorf("count = %d, want 1", p.count)
	}
	if p.wordsPerCall != config.MaxWordsPerBatch {
		t.Errorf("wordsPerCall = %d, want %d", p.wordsPerCall, config.MaxWordsPerBatch)
	}
}

func TestPlanBatches_SplitsAboveCeiling(t *testing.T) {
	p := planBatches(config.MaxWordsPerBatch + 1)
	if p.count < 2 {
		t.Errorf("count = %d, want >= 2", p.count)
	}
	if p.wordsPerCall > config.MaxWordsPerBatch {
		t.Errorf("wordsPerCall = %d exceeds ceiling", p.wordsPerCall)
	}
}

func TestPlanBatches_FortyMinuteEpisode(t *testing.T) {
	// 40 min professional: 13000 words -> 8 calls of 1625.
	target := TargetWords(40, false)
	p := planBatches(target)
	if p.count < 2 {
		t.Fatalf("a 40-minute episode must use multiple batches, got %d", p.count)
	}
	if p.wordsPerCall > config.MaxWordsPerBatch {
		t.Errorf("wordsPerCall = %d exceeds ceiling", p.wordsPerCall)
	}
}

func TestTailContext_TakesClosingLines(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString("HOST: filler filler filler filler filler filler filler filler filler filler\n")
	}
	b.WriteString("GUEST: And that is the closing thought of this segment.\n")

	tail := tailContext(b.String())
	if !strings.Contains(tail, "closing thought") {
		t.Errorf("tail should end with the final line, got %q", tail)
	}
	if WordCount(tail) < tailWords {
		t.Errorf("tail has %d words, want at least %d", WordCount(tail), tailWords)
	}
	if WordCount(tail) > tailWords+20 {
		t.Errorf("tail has %d words, should stop shortly after %d", WordCount(tail), tailWords)
	}
}

func TestTailContext_ShortScript(t *testing.T) {
	tail := tailContext("HOST: Hi.\nGUEST: Hello.")
	if tail != "HOST: Hi.\nGUEST: Hello." {
		t.Errorf("short script should be its own tail, got %q", tail)
	}
}

func TestJoin(t *testing.T) {
	got := Join([]Batch{{Text: "HOST: One.\n"}, {Text: "GUEST: Two."}})
	want := "HOST: One.\nGUEST: Two."
	if got != want {
		t.Errorf("Join = %q, want %q", got, want)
	}
}

func TestBuildUserPrompt_EmbedsTail(t *testing.T) {
	req := Request{Prompt: "testing", Minutes: 40, Speakers: []string{"HOST", "GUEST"}}
	p := buildUserPrompt(req, 1600, 2, 4, "HOST: previous closing line.")
	if !strings.Contains(p, "HOST: previous closing line.") {
		t.Error("continuation prompt must embed the previous batch tail")
	}
	if !strings.Contains(p, "Segment 2 of 4") {
		t.Errorf("prompt should state the segment position, got %q", p)
	}
}

func TestBuildSystemPrompt_SegmentRoles(t *testing.T) {
	req := Request{Prompt: "x", Speakers: []string{"HOST"}}
	open := buildSystemPrompt(req, 1600, 1, 3)
	mid := buildSystemPrompt(req, 1600, 2, 3)
	closing := buildSystemPrompt(req, 1600, 3, 3)

	if !strings.Contains(open, "OPENING") {
		t.Error("first segment should be marked as the opening")
	}
	if !strings.Contains(mid, "MIDDLE") {
		t.Error("middle segment should be marked as such")
	}
	if !strings.Contains(closing, "CLOSING") {
		t.Error("last segment should be marked as the closing")
	}
}
