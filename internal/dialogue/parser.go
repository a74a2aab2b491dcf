// Package dialogue extracts ordered speaker turns from raw generated
// script text.
//
// Policy for malformed lines: text that does not look like dialogue at all
// (stage directions, markdown, fences, labels) is silently dropped, but a
// line shaped like `NAME: text` whose upper-case NAME is not in the cast is
// a configuration error naming that speaker. Zero surviving lines is always
// a parse error, never empty output.
package dialogue

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/musclesugar/podcast-ai-pipeline/internal/cast"
	"github.com/musclesugar/podcast-ai-pipeline/internal/config"
)

// Line is a single speaker turn. Index defines playback order and is
// contiguous from 0 across the whole episode.
type Line struct {
	Speaker string
	Text    string
	Index   int
}

// ParseError reports that no valid dialogue lines were found.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("script parse failed: %s", e.Reason)
}

// speakerLineRe matches the upper-case `NAME: text` convention, with
// optional markdown bold around the name.
var speakerLineRe = regexp.MustCompile(`^\*{0,2}([A-Z][A-Z0-9_]*)\*{0,2}\s*:\s*(.+)$`)

// artifactLabels are upper-case prefixes the generation service sometimes
// emits that look like speakers but are not dialogue.
var artifactLabels = map[string]bool{
	"TEXT": true, "VOICE": true, "DIALOGUE": true, "SPEAKER": true,
	"SAYS": true, "SPEAKS": true, "RESPONSE": true, "NOTE": true,
	"EXAMPLE": true, "SCRIPT": true, "SEGMENT": true, "TITLE": true,
}

// artifactPrefixes are labels sometimes prepended to the spoken text
// itself; they are stripped before use.
var artifactPrefixes = []string{
	"text:", "Text:", "TEXT:",
	"voice:", "Voice:", "VOICE:",
	"dialogue:", "Dialogue:", "DIALOGUE:",
	"says:", "Says:", "SAYS:",
	"speaks:", "Speaks:", "SPEAKS:",
	"response:", "Response:", "RESPONSE:",
}

// Parse extracts the ordered dialogue lines from raw script text. Every
// recognized speaker must be a member of the cast.
func Parse(raw string, c *cast.Cast) ([]Line, error) {
	var lines []Line

	for _, rawLine := range strings.Split(raw, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		speaker, text, ok := matchCastLine(line, c)
		if !ok {
			m := speakerLineRe.FindStringSubmatch(line)
			if m == nil {
				// Not dialogue: preamble, headers, stage directions,
				// markdown. Dropped.
				continue
			}
			name := m[1]
			if !c.Has(name) {
				if artifactLabels[name] {
					continue
				}
				return nil, &config.ConfigError{Subject: name, Reason: "speaker appears in the script but has no voice mapping"}
			}
			speaker, text = name, strings.TrimSpace(m[2])
		}

		text = cleanText(text)
		if !validText(text) {
			continue
		}

		lines = append(lines, Line{Speaker: speaker, Text: text, Index: len(lines)})
	}

	if len(lines) == 0 {
		return nil, &ParseError{Reason: "no valid dialogue lines found in the generated script"}
	}
	return lines, nil
}

// matchCastLine recognizes a line opening with an exact cast member name,
// whatever its casing. The upper-case convention is handled separately so
// unmapped speakers can be reported.
func matchCastLine(line string, c *cast.Cast) (speaker, text string, ok bool) {
	for _, name := range c.Speakers() {
		prefix := name + ":"
		if strings.HasPrefix(line, prefix) {
			return name, strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return "", "", false
}

func cleanText(text string) string {
	text = strings.TrimSpace(text)
	for _, p := range artifactPrefixes {
		if strings.HasPrefix(text, p) {
			text = strings.TrimSpace(text[len(p):])
			break
		}
	}
	return text
}

// validText rejects leftovers that are clearly not speech after cleaning.
func validText(text string) bool {
	if len(text) < 3 {
		return false
	}
	switch strings.ToLower(text) {
	case "text", "voice", "speaker", "dialogue", "...", "---", "***", "```":
		return false
	}
	return true
}

// WordCount sums the words across all lines.
func WordCount(lines []Line) int {
	total := 0
	for _, l := range lines {
		total += len(strings.Fields(l.Text))
	}
	return total
}
