package dialogue

import (
	"fmt"
	"os"
	"strings"
)

// Transcript renders the ordered lines in the `SPEAKER: text` form they
// were parsed from. It is a projection of the lines, not a separate entity.
func Transcript(lines []Line) string {
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%s: %s\n", l.Speaker, l.Text)
	}
	return b.String()
}

// WriteTranscript persists the transcript to path.
func WriteTranscript(lines []Line, path string) error {
	if err := os.WriteFile(path, []byte(Transcript(lines)), 0644); err != nil {
		return fmt.Errorf("write transcript to %s: %w", path, err)
	}
	return nil
}
