package tts

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/musclesugar/podcast-ai-pipeline/internal/cast"
	"github.com/musclesugar/podcast-ai-pipeline/internal/dialogue"
)

// stubEngine fabricates audio whose payload encodes the input text, with
// an optional per-call delay and failure trigger.
type stubEngine struct {
	name     cast.Engine
	delay    func(text string) time.Duration
	failOn   string
	prepared atomic.Int32
}

func (s *stubEngine) Name() cast.Engine { return s.name }

func (s *stubEngine) Prepare(ctx context.Context, voice string) error {
	s.prepared.Add(1)
	return nil
}

func (s *stubEngine) Synthesize(ctx context.Context, text, voice string, speed float64) (Result, error) {
	if s.delay != nil {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(s.delay(text)):
		}
	}
	if s.failOn != "" && strings.Contains(text, s.failOn) {
		return Result{}, errors.New("synthetic backend failure")
	}
	return Result{Data: []byte("audio:" + text), Format: FormatMP3}, nil
}

func (s *stubEngine) Close() error { return nil }

func testLines(n int) []dialogue.Line {
	lines := make([]dialogue.Line, n)
	for i := range lines {
		speaker := "HOST"
		if i%2 == 1 {
			speaker = "GUEST"
		}
		lines[i] = dialogue.Line{Speaker: speaker, Text: fmt.Sprintf("line number %d", i), Index: i}
	}
	return lines
}

func dispatchCast(t *testing.T) *cast.Cast {
	t.Helper()
	c, err := cast.Parse(`{"HOST":"v1","GUEST":"v2"}`, `{"HOST":"edge","GUEST":"edge"}`)
	if err != nil {
		t.Fatalf("cast.Parse: %v", err)
	}
	return c
}

func TestSynthesizeAll_OrderSurvivesConcurrency(t *testing.T) {
	// Earlier lines take longer, so completion order is reversed from
	// line order.
	stub := &stubEngine{
		name: cast.EngineEdge,
		delay: func(text string) time.Duration {
			var i int
			fmt.Sscanf(text, "line number %d", &i)
			return time.Duration(10-i) * 5 * time.Millisecond
		},
	}
	d := NewDispatcher(map[cast.Engine]Engine{cast.EngineEdge: stub}, 1.0)
	d.limiter.SetLimit(1e6) // no throttling in tests

	lines := testLines(10)
	segments, err := d.SynthesizeAll(context.Background(), lines, dispatchCast(t), nil)
	if err != nil {
		t.Fatalf("SynthesizeAll returned error: %v", err)
	}
	if len(segments) != len(lines) {
		t.Fatalf("expected %d segments, got %d", len(lines), len(segments))
	}
	for i, seg := range segments {
		if seg.Line.Index != i {
			t.Errorf("segment %d carries line index %d; order must match line order", i, seg.Line.Index)
		}
		want := fmt.Sprintf("audio:line number %d", i)
		if string(seg.Data) != want {
			t.Errorf("segment %d data = %q, want %q", i, seg.Data, want)
		}
	}
}

func TestSynthesizeAll_FailureNamesSpeakerAndEngine(t *testing.T) {
	stub := &stubEngine{name: cast.EngineEdge, failOn: "line number 3"}
	d := NewDispatcher(map[cast.Engine]Engine{cast.EngineEdge: stub}, 1.0)
	d.limiter.SetLimit(1e6)

	_, err := d.SynthesizeAll(context.Background(), testLines(6), dispatchCast(t), nil)
	if err == nil {
		t.Fatal("expected error when a line fails")
	}
	var serr *SynthesisError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SynthesisError, got %T: %v", err, err)
	}
	if serr.Speaker != "GUEST" {
		t.Errorf("Speaker = %q, want GUEST (line 3)", serr.Speaker)
	}
	if serr.Engine != cast.EngineEdge {
		t.Errorf("Engine = %q, want edge", serr.Engine)
	}
}

func TestSynthesizeAll_PreparesOncePerPair(t *testing.T) {
	stub := &stubEngine{name: cast.EngineEdge}
	d := NewDispatcher(map[cast.Engine]Engine{cast.EngineEdge: stub}, 1.0)
	d.limiter.SetLimit(1e6)

	if _, err := d.SynthesizeAll(context.Background(), testLines(8), dispatchCast(t), nil); err != nil {
		t.Fatalf("SynthesizeAll returned error: %v", err)
	}
	// Two unique (engine, voice) pairs regardless of line count.
	if got := stub.prepared.Load(); got != 2 {
		t.Errorf("Prepare called %d times, want 2", got)
	}
}

func TestSynthesizeAll_MissingEngine(t *testing.T) {
	d := NewDispatcher(map[cast.Engine]Engine{}, 1.0)
	d.limiter.SetLimit(1e6)

	_, err := d.SynthesizeAll(context.Background(), testLines(1), dispatchCast(t), nil)
	var serr *SynthesisError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SynthesisError for uninitialized engine, got %v", err)
	}
}

func TestSegmentDuration_WAVHeader(t *testing.T) {
	// 1 second of 16-bit mono at 22050 Hz.
	byteRate := uint32(22050 * 2)
	data := make([]byte, 44)
	copy(data[0:4], "RIFF")
	copy(data[8:12], "WAVE")
	binary.LittleEndian.PutUint32(data[28:32], byteRate)
	binary.LittleEndian.PutUint32(data[40:44], byteRate)

	d := segmentDuration(Result{Data: data, Format: FormatWAV})
	if d != time.Second {
		t.Errorf("duration = %v, want 1s", d)
	}

	if got := segmentDuration(Result{Data: data, Format: FormatMP3}); got != 0 {
		t.Errorf("compressed formats must report zero until probed, got %v", got)
	}
}

// throttledEngine fails with a transient error until the third call.
type throttledEngine struct {
	calls atomic.Int32
}

func (e *throttledEngine) Name() cast.Engine                               { return cast.EngineEdge }
func (e *throttledEngine) Prepare(ctx context.Context, voice string) error { return nil }
func (e *throttledEngine) Close() error                                    { return nil }

func (e *throttledEngine) Synthesize(ctx context.Context, text, voice string, speed float64) (Result, error) {
	if e.calls.Add(1) < 3 {
		return Result{}, &RetryableError{StatusCode: 429, Body: "slow down"}
	}
	return Result{Data: []byte("audio"), Format: FormatMP3}, nil
}

func TestSynthesizeAll_RecoversFromThrottling(t *testing.T) {
	stub := &throttledEngine{}
	d := NewDispatcher(map[cast.Engine]Engine{cast.EngineEdge: stub}, 1.0)
	d.limiter.SetLimit(1e6)

	segments, err := d.SynthesizeAll(context.Background(), testLines(1), dispatchCast(t), nil)
	if err != nil {
		t.Fatalf("SynthesizeAll returned error after transient failures: %v", err)
	}
	if got := stub.calls.Load(); got != 3 {
		t.Errorf("backend called %d times, want 3 (two throttled attempts, then success)", got)
	}
	if string(segments[0].Data) != "audio" {
		t.Errorf("segment data = %q", segments[0].Data)
	}
}

func TestWithRetry_RetryableIsRetried(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 2 {
			return &RetryableError{StatusCode: 429, Body: "slow down"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithRetry returned error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestWithRetry_PermanentFailsFast(t *testing.T) {
	calls := 0
	permanent := errors.New("bad voice id")
	err := WithRetry(context.Background(), func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected the permanent error back, got %v", err)
	}
	if calls != 1 {
		t.Errorf("permanent errors must not be retried, calls = %d", calls)
	}
}
