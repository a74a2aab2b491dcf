package tts

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/musclesugar/podcast-ai-pipeline/internal/cast"
	"github.com/musclesugar/podcast-ai-pipeline/internal/config"
	"github.com/musclesugar/podcast-ai-pipeline/internal/dialogue"
)

const (
	// Per-line synthesis calls are independent, so a small pool overlaps
	// the network waits. Final order is by line index, not completion.
	defaultWorkers = 4

	// requestsPerMinute caps the combined call rate across engines.
	requestsPerMinute = 90
)

// NewEngines constructs exactly the engines named in needed. Cloud clients
// are only created for engines actually assigned to a speaker.
func NewEngines(ctx context.Context, cfg *config.Config, needed []cast.Engine) (map[cast.Engine]Engine, error) {
	engines := make(map[cast.Engine]Engine, len(needed))
	for _, name := range needed {
		if _, ok := engines[name]; ok {
			continue
		}
		var (
			e   Engine
			err error
		)
		switch name {
		case cast.EngineEdge:
			e, err = NewEdgeEngine()
		case cast.EnginePiper:
			e, err = NewPiperEngine(cfg.PiperDataDir)
		case cast.EngineCoqui:
			e, err = NewCoquiEngine()
		case cast.EngineOpenAI:
			e, err = NewOpenAIEngine(cfg)
		case cast.EngineGoogle:
			e, err = NewGoogleEngine(ctx)
		case cast.EnginePolly:
			e, err = NewPollyEngine(ctx)
		default:
			err = fmt.Errorf("unknown TTS engine %q", name)
		}
		if err != nil {
			return nil, err
		}
		engines[name] = e
	}
	return engines, nil
}

// CloseEngines closes every engine, keeping the first error.
func CloseEngines(engines map[cast.Engine]Engine) error {
	var first error
	for _, e := range engines {
		if err := e.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Dispatcher fans dialogue lines out to the per-speaker engines.
type Dispatcher struct {
	engines map[cast.Engine]Engine
	speed   float64
	workers int
	limiter *rate.Limiter
}

func NewDispatcher(engines map[cast.Engine]Engine, speed float64) *Dispatcher {
	return &Dispatcher{
		engines: engines,
		speed:   speed,
		workers: defaultWorkers,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
	}
}

// SynthesizeAll produces one segment per line, in line order. Results are
// written by index, never appended, so concurrent completion cannot
// reorder them. Any failure cancels the remaining work and aborts.
func (d *Dispatcher) SynthesizeAll(ctx context.Context, lines []dialogue.Line, c *cast.Cast, onLine func(done, total int)) ([]Segment, error) {
	if err := d.prepareVoices(ctx, c); err != nil {
		return nil, err
	}

	segments := make([]Segment, len(lines))

	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for i, line := range lines {
		g.Go(func() error {
			member, err := c.Resolve(line.Speaker)
			if err != nil {
				return err
			}
			engine, ok := d.engines[member.Engine]
			if !ok {
				return &SynthesisError{Speaker: line.Speaker, Engine: member.Engine, Err: fmt.Errorf("engine not initialized")}
			}

			if err := d.limiter.Wait(gctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}

			var res Result
			err = WithRetry(gctx, func() error {
				var synthErr error
				res, synthErr = engine.Synthesize(gctx, line.Text, member.Voice, d.speed)
				return synthErr
			})
			if err != nil {
				return &SynthesisError{Speaker: line.Speaker, Engine: member.Engine, Err: err}
			}
			if len(res.Data) == 0 {
				return &SynthesisError{Speaker: line.Speaker, Engine: member.Engine, Err: fmt.Errorf("empty audio returned")}
			}

			segments[i] = Segment{
				Line:     line,
				Data:     res.Data,
				Format:   res.Format,
				Duration: segmentDuration(res),
			}

			if onLine != nil {
				mu.Lock()
				done++
				n := done
				mu.Unlock()
				onLine(n, len(lines))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return segments, nil
}

// prepareVoices warms each unique (engine, voice) pair once, so local
// model downloads happen up front instead of mid-episode.
func (d *Dispatcher) prepareVoices(ctx context.Context, c *cast.Cast) error {
	for _, m := range c.UniquePairs() {
		engine, ok := d.engines[m.Engine]
		if !ok {
			return &SynthesisError{Speaker: m.Speaker, Engine: m.Engine, Err: fmt.Errorf("engine not initialized")}
		}
		if err := engine.Prepare(ctx, m.Voice); err != nil {
			return &SynthesisError{Speaker: m.Speaker, Engine: m.Engine, Err: err}
		}
	}
	return nil
}

// segmentDuration reads the exact duration from a WAV header. Compressed
// formats are probed later during assembly.
func segmentDuration(res Result) time.Duration {
	if res.Format != FormatWAV || len(res.Data) < 44 {
		return 0
	}
	// fmt chunk at the fixed canonical offset: byte rate at 28, assuming
	// the common 44-byte header. Non-canonical layouts fall back to zero.
	if string(res.Data[0:4]) != "RIFF" || string(res.Data[8:12]) != "WAVE" {
		return 0
	}
	byteRate := binary.LittleEndian.Uint32(res.Data[28:32])
	dataSize := binary.LittleEndian.Uint32(res.Data[40:44])
	if byteRate == 0 {
		return 0
	}
	return time.Duration(float64(dataSize) / float64(byteRate) * float64(time.Second))
}
