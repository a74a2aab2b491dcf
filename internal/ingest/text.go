package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type TextIngester struct{}

func (t *TextIngester) Ingest(ctx context.Context, source string) (*Material, error) {
	if err := validateFile(source); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("could not read file %s: %w", source, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("file %s is empty", source)
	}
	return newMaterial(string(data), "", filepath.Base(source)), nil
}
