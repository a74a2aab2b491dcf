// Package config holds the explicit runtime configuration for the pipeline.
// Components receive a Config at construction instead of reading the
// environment ad hoc, so tests can stub credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Speech pacing constants. TTS voices speak noticeably faster than humans,
// so the word target is inflated by TTSMultiplier.
const (
	WPMNatural      = 110
	WPMProfessional = 130
	TTSMultiplier   = 2.5

	// MaxWordsPerBatch is the largest script a single generation call can
	// reliably produce before quality degrades. Longer targets are split
	// into sequential batches.
	MaxWordsPerBatch = 1800
)

// Config is built once by the CLI and passed into every component.
type Config struct {
	OpenAIKey    string
	AnthropicKey string

	// PiperDataDir is where downloaded Piper voice models live.
	PiperDataDir string

	// OutputFormat is the final audio container: "wav" or "mp3".
	OutputFormat string
}

// SupportedFormats lists the valid values for Config.OutputFormat.
var SupportedFormats = []string{"wav", "mp3"}

// Load reads configuration from the environment. A .env file in the working
// directory is merged first; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := os.Getenv("PIPER_DATA_DIR")
	if dataDir == "" {
		dataDir = filepath.Join(home, ".local", "share", "piper")
	}

	format := os.Getenv("OUTPUT_FORMAT")
	if format == "" {
		format = "wav"
	}
	if !validFormat(format) {
		return nil, &ConfigError{Subject: "OUTPUT_FORMAT", Reason: fmt.Sprintf("unsupported format %q, must be one of %v", format, SupportedFormats)}
	}

	return &Config{
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		PiperDataDir: dataDir,
		OutputFormat: format,
	}, nil
}

func validFormat(f string) bool {
	for _, s := range SupportedFormats {
		if s == f {
			return true
		}
	}
	return false
}

// ConfigError reports an invalid or missing configuration value. Subject
// names the offending key, speaker, voice, or engine so the user can fix it.
type ConfigError struct {
	Subject string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Subject, e.Reason)
}
