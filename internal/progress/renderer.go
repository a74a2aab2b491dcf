package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

// BarRenderer draws a two-line progress display (status + bar) on a TTY,
// or prints timestamped single lines on a non-TTY.
type BarRenderer struct {
	out       io.Writer
	start     time.Time
	isTTY     bool
	width     int
	lastEvent Event
	lines     int // lines currently drawn, for TTY overwrite
}

// NewBarRenderer creates a renderer that writes to out. It auto-detects
// TTY mode and terminal width.
func NewBarRenderer(out *os.File) *BarRenderer {
	tty := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())

	width := 80
	if tty {
		if w, _, err := term.GetSize(out.Fd()); err == nil && w > 0 {
			width = w
		}
	}

	return &BarRenderer{
		out:   out,
		start: time.Now(),
		isTTY: tty,
		width: width,
	}
}

// Handle processes a progress event. It satisfies the Callback type.
func (r *BarRenderer) Handle(e Event) {
	e.Elapsed = time.Since(r.start)
	if e.Stage == StageComplete {
		e.Percent = 1.0
	}
	r.lastEvent = e

	if r.isTTY {
		r.renderTTY(e)
	} else {
		r.renderPlain(e)
	}
}

// Finish clears the progress display and prints a final summary.
func (r *BarRenderer) Finish() {
	e := r.lastEvent
	if r.isTTY && r.lines > 0 {
		r.clearLines()
	}

	if e.Error != nil {
		fmt.Fprintf(r.out, "\n  Error: %v\n", e.Error)
		return
	}
	if e.Stage != StageComplete {
		return
	}

	if e.OutputFile != "" {
		if e.Duration != "" {
			fmt.Fprintf(r.out, "\n  Saved %s (%s, %.1f MB)\n", e.OutputFile, e.Duration, e.SizeMB)
		} else {
			fmt.Fprintf(r.out, "\n  Saved %s\n", e.OutputFile)
		}
		fmt.Fprintf(r.out, "  Total: %s\n", formatElapsed(e.Elapsed))
	} else {
		// Preview or transcript-only completion.
		fmt.Fprintf(r.out, "\n  %s (%s)\n", e.Message, formatElapsed(e.Elapsed))
	}
}

func (r *BarRenderer) renderTTY(e Event) {
	if r.lines > 0 {
		r.clearLines()
	}

	msg := fmt.Sprintf("  %s", e.Message)
	if e.LineTotal > 0 {
		msg = fmt.Sprintf("  %s (%d/%d)", e.Message, e.LineNum, e.LineTotal)
	}
	bar := renderBar(e.Percent, r.barWidth())
	line2 := fmt.Sprintf("  %s %3d%%  %s", bar, int(e.Percent*100), formatElapsed(e.Elapsed))

	fmt.Fprintf(r.out, "%s\n%s", msg, line2)
	r.lines = 2
}

func (r *BarRenderer) renderPlain(e Event) {
	fmt.Fprintf(r.out, "[%s] %s\n", formatElapsed(e.Elapsed), e.Message)
}

func (r *BarRenderer) clearLines() {
	for i := 0; i < r.lines; i++ {
		if i == 0 {
			fmt.Fprint(r.out, "\r\033[2K")
		} else {
			fmt.Fprint(r.out, "\033[A\033[2K")
		}
	}
	fmt.Fprint(r.out, "\r")
	r.lines = 0
}

// barWidth is the width available for the bar after brackets, percent
// and elapsed time.
func (r *BarRenderer) barWidth() int {
	w := r.width - 16
	if w < 20 {
		w = 20
	}
	if w > 60 {
		w = 60
	}
	return w
}

func renderBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// formatElapsed formats a duration as M:SS.
func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
