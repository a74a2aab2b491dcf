// Package ingest pulls source material from URLs, PDFs and text files
// so a generated script can be grounded in real content.
package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"
)

type SourceType string

const (
	SourceURL  SourceType = "url"
	SourcePDF  SourceType = "pdf"
	SourceText SourceType = "text"

	// maxInputSize caps raw input reads (25 MB).
	maxInputSize = 25 * 1024 * 1024

	// maxMaterialWords caps how much extracted text is carried into the
	// generation prompt.
	maxMaterialWords = 6000
)

func (s SourceType) String() string {
	return string(s)
}

// Material is the extracted text of a source, trimmed to prompt size.
type Material struct {
	Text      string
	Title     string
	Source    string
	WordCount int
}

type Ingester interface {
	Ingest(ctx context.Context, source string) (*Material, error)
}

func DetectSource(input string) SourceType {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return SourceURL
	}
	if strings.HasSuffix(strings.ToLower(input), ".pdf") {
		return SourcePDF
	}
	return SourceText
}

func NewIngester(input string) Ingester {
	switch DetectSource(input) {
	case SourceURL:
		return &URLIngester{}
	case SourcePDF:
		return &PDFIngester{}
	default:
		return &TextIngester{}
	}
}

// newMaterial applies the word cap and fills in derived fields.
func newMaterial(text, title, source string) *Material {
	words := strings.Fields(text)
	if len(words) > maxMaterialWords {
		text = strings.Join(words[:maxMaterialWords], " ")
		words = words[:maxMaterialWords]
	}
	if title == "" {
		title = titleFromText(text, 80)
	}
	return &Material{
		Text:      text,
		Title:     title,
		Source:    source,
		WordCount: len(words),
	}
}

func titleFromText(text string, maxLen int) string {
	line := text
	if idx := strings.IndexByte(text, '\n'); idx > 0 {
		line = text[:idx]
	}
	line = strings.TrimSpace(line)
	if len(line) > maxLen {
		line = line[:maxLen] + "..."
	}
	if line == "" {
		return "Untitled"
	}
	return line
}

func validateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() > maxInputSize {
		return fmt.Errorf("%s is too large (%d MB, max %d MB)", path, info.Size()/(1024*1024), maxInputSize/(1024*1024))
	}
	return nil
}
