package assembly

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/musclesugar/podcast-ai-pipeline/internal/tts"
)

// DefaultPause is the silence inserted between dialogue lines when the
// natural style is on.
const DefaultPause = 300 * time.Millisecond

// AssemblyError reports a failure while joining segments into the
// final episode file.
type AssemblyError struct {
	Reason string
	Err    error
}

func (e *AssemblyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("assembly failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("assembly failed: %s", e.Reason)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// Options controls how segments become an episode file.
type Options struct {
	Output string // final audio path
	Format string // "wav" or "mp3"
	Pause  time.Duration
	TmpDir string // scratch space for intermediate files
}

// Assemble joins the segments, in order, into a single episode and returns
// the episode duration. A non-zero Pause inserts that much silence between
// lines; zero joins them back to back.
//
// When every segment is PCM WAV in one shared format and the output is
// WAV, the join is done in process, sample for sample, with zero-sample
// gaps. Every other combination goes through ffmpeg.
func Assemble(ctx context.Context, segments []tts.Segment, opts Options) (time.Duration, error) {
	if len(segments) == 0 {
		return 0, &AssemblyError{Reason: "no audio segments"}
	}

	if opts.Format == "wav" {
		if d, ok, err := concatPCM(segments, opts); err != nil {
			return 0, err
		} else if ok {
			return d, nil
		}
	}
	return assembleFFmpeg(ctx, segments, opts)
}

// concatPCM attempts the lossless in-process join. It reports ok=false
// when the segments are not uniform PCM, leaving the work to ffmpeg.
func concatPCM(segments []tts.Segment, opts Options) (time.Duration, bool, error) {
	var (
		format  wavFormat
		streams [][]byte
	)
	for i, seg := range segments {
		if seg.Format != tts.FormatWAV {
			return 0, false, nil
		}
		f, pcm, err := parseWAV(seg.Data)
		if err != nil {
			return 0, false, &AssemblyError{Reason: fmt.Sprintf("segment %d (%s)", seg.Line.Index, seg.Line.Speaker), Err: err}
		}
		if i == 0 {
			format = f
		} else if f != format {
			return 0, false, nil
		}
		streams = append(streams, pcm)
	}

	gap := silencePCM(format, opts.Pause)
	var joined []byte
	for i, pcm := range streams {
		if i > 0 {
			joined = append(joined, gap...)
		}
		joined = append(joined, pcm...)
	}

	if err := os.WriteFile(opts.Output, encodeWAV(format, joined), 0644); err != nil {
		return 0, false, &AssemblyError{Reason: "write episode file", Err: err}
	}
	return pcmDuration(format, joined), true, nil
}

// assembleFFmpeg writes each segment to scratch, then concatenates and
// re-encodes through ffmpeg.
func assembleFFmpeg(ctx context.Context, segments []tts.Segment, opts Options) (time.Duration, error) {
	paths := make([]string, len(segments))
	for i, seg := range segments {
		ext := "wav"
		if seg.Format == tts.FormatMP3 {
			ext = "mp3"
		}
		p := filepath.Join(opts.TmpDir, fmt.Sprintf("segment_%03d.%s", seg.Line.Index, ext))
		if err := os.WriteFile(p, seg.Data, 0644); err != nil {
			return 0, &AssemblyError{Reason: fmt.Sprintf("write segment %d", seg.Line.Index), Err: err}
		}
		paths[i] = p
	}

	var silencePath string
	if opts.Pause > 0 {
		silencePath = filepath.Join(opts.TmpDir, "silence."+opts.Format)
		if err := generateSilence(ctx, silencePath, opts.Format, opts.Pause); err != nil {
			return 0, &AssemblyError{Reason: "generate silence", Err: err}
		}
	}

	listPath := filepath.Join(opts.TmpDir, "concat.txt")
	if err := buildConcatList(paths, silencePath, listPath); err != nil {
		return 0, &AssemblyError{Reason: "build concat list", Err: err}
	}

	if err := runFFmpegConcat(ctx, listPath, opts.Format, opts.Output); err != nil {
		return 0, &AssemblyError{Reason: "ffmpeg concat", Err: err}
	}

	d, err := probeDuration(ctx, opts.Output)
	if err != nil {
		return 0, &AssemblyError{Reason: "probe episode duration", Err: err}
	}
	return d, nil
}
