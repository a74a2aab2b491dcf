package pipeline

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Metadata is written to metadata.json in the session directory so a
// run can be reconstructed later.
type Metadata struct {
	RunID     string            `json:"run_id"`
	CreatedAt time.Time         `json:"created_at"`
	Prompt    string            `json:"prompt"`
	Minutes   int               `json:"minutes"`
	Model     string            `json:"model"`
	Natural   bool              `json:"natural"`
	Speed     float64           `json:"speed"`
	Format    string            `json:"format"`
	Speakers  map[string]string `json:"speakers"` // speaker -> engine/voice
	Lines     int               `json:"lines,omitempty"`
	Words     int               `json:"words,omitempty"`
	DurationS float64           `json:"duration_seconds,omitempty"`
	Audio     string            `json:"audio,omitempty"`
}

// newRunID returns a ULID, sortable by creation time.
func newRunID(now time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(now.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

// sessionDir creates output/<timestamp>_<slug> and returns its path.
func sessionDir(outputDir, prompt string, now time.Time) (string, error) {
	dir := filepath.Join(outputDir, fmt.Sprintf("%s_%s", now.Format("20060102_150405"), slugify(prompt)))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create session directory: %w", err)
	}
	return dir, nil
}

// slugify reduces a prompt to a short filesystem-safe name.
func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if len(slug) > 40 {
		slug = strings.Trim(slug[:40], "-")
	}
	if slug == "" {
		slug = "episode"
	}
	return slug
}

func writeMetadata(dir string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "metadata.json"), append(data, '\n'), 0644)
}
