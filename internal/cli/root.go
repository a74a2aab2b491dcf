// Package cli wires the commands: generate, transcribe, list-voices.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/musclesugar/podcast-ai-pipeline/internal/assembly"
	"github.com/musclesugar/podcast-ai-pipeline/internal/cast"
	"github.com/musclesugar/podcast-ai-pipeline/internal/config"
	"github.com/musclesugar/podcast-ai-pipeline/internal/observability"
	"github.com/musclesugar/podcast-ai-pipeline/internal/pipeline"
	"github.com/musclesugar/podcast-ai-pipeline/internal/progress"
	"github.com/musclesugar/podcast-ai-pipeline/internal/script"
	"github.com/musclesugar/podcast-ai-pipeline/internal/transcribe"
	"github.com/musclesugar/podcast-ai-pipeline/internal/tts"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "podcastai",
	Short: "Generate podcast episodes from a prompt with AI script generation and TTS",
	RunE: func(cmd *cobra.Command, args []string) error {
		flagInteractive = true
		return runGenerate(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("podcastai %s\n", Version)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a podcast episode from a topic prompt",
	RunE:  runGenerate,
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe existing audio (local file or URL) to text",
	RunE:  runTranscribe,
}

var listVoicesCmd = &cobra.Command{
	Use:   "list-voices",
	Short: "List available voices for all TTS engines",
	RunE:  runListVoices,
}

var (
	flagPrompt      string
	flagMinutes     int
	flagSpeakers    string
	flagEngines     string
	flagNatural     bool
	flagSpeed       float64
	flagPreviewOnly bool
	flagOutput      string
	flagFormat      string
	flagModel       string
	flagInput       string
	flagInteractive bool
	flagVerbose     bool

	flagSource      string
	flagTransOut    string
	flagTransModel  string
)

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(listVoicesCmd)

	generateCmd.Flags().StringVarP(&flagPrompt, "prompt", "p", "", "Topic prompt for the episode")
	generateCmd.Flags().IntVarP(&flagMinutes, "minutes", "d", 8, "Target episode length in minutes")
	generateCmd.Flags().StringVarP(&flagSpeakers, "speakers", "s", "", `Speaker voices as JSON, e.g. '{"HOST":"en_US-lessac-medium","GUEST":"en_US-ryan-high"}'`)
	generateCmd.Flags().StringVarP(&flagEngines, "engines", "e", "", `Per-speaker engines as JSON, e.g. '{"HOST":"piper","GUEST":"openai"}' (default piper for all)`)
	generateCmd.Flags().BoolVarP(&flagNatural, "natural", "n", false, "Conversational style with a slower speaking pace")
	generateCmd.Flags().Float64Var(&flagSpeed, "speed", 1.0, "Speech length multiplier (1.2 = slower, 0.8 = faster)")
	generateCmd.Flags().BoolVarP(&flagPreviewOnly, "preview-only", "P", false, "Stop after the transcript, skip synthesis and assembly")
	generateCmd.Flags().StringVarP(&flagOutput, "output", "o", "output", "Directory for session output")
	generateCmd.Flags().StringVarP(&flagFormat, "format", "F", "", "Episode audio format: wav or mp3 (default from OUTPUT_FORMAT or wav)")
	generateCmd.Flags().StringVarP(&flagModel, "model", "m", "gpt-4o-mini", "Script model: any OpenAI chat model, or claude-haiku / claude-sonnet")
	generateCmd.Flags().StringVarP(&flagInput, "input", "i", "", "Optional source material to ground the script (URL, PDF or text file)")
	generateCmd.Flags().BoolVarP(&flagInteractive, "interactive", "t", false, "Interactive setup wizard")
	generateCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Structured debug logging instead of the progress bar")

	transcribeCmd.Flags().StringVarP(&flagSource, "source", "s", "", "Audio to transcribe: local file or http(s) URL")
	transcribeCmd.Flags().StringVarP(&flagTransOut, "output", "o", "output", "Directory for the transcript file")
	transcribeCmd.Flags().StringVarP(&flagTransModel, "model", "m", transcribe.DefaultModel, "Transcription model")
}

func Execute() error {
	return rootCmd.Execute()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if flagInteractive {
		if err := runInteractiveSetup(cfg); err != nil {
			return err
		}
	}

	if flagPrompt == "" {
		return fmt.Errorf("--prompt (-p) is required")
	}
	if flagSpeakers == "" {
		return fmt.Errorf("--speakers (-s) is required")
	}
	if flagMinutes < 1 || flagMinutes > 120 {
		return fmt.Errorf("invalid minutes %d: must be between 1 and 120", flagMinutes)
	}
	if flagSpeed < 0.5 || flagSpeed > 2.0 {
		return fmt.Errorf("invalid speed %.2f: must be between 0.5 and 2.0", flagSpeed)
	}

	format := flagFormat
	if format == "" {
		format = cfg.OutputFormat
	}
	if format != "wav" && format != "mp3" {
		return fmt.Errorf("invalid format %q: must be wav or mp3", format)
	}

	c, err := cast.Parse(flagSpeakers, flagEngines)
	if err != nil {
		return err
	}

	if err := checkAPIKeys(cfg, c, flagModel, flagPreviewOnly); err != nil {
		return err
	}
	if !flagPreviewOnly && needsFFmpeg(c, format) {
		if err := assembly.CheckFFmpeg(); err != nil {
			return err
		}
	}

	opts := pipeline.Options{
		Prompt:      flagPrompt,
		Minutes:     flagMinutes,
		Cast:        c,
		Natural:     flagNatural,
		Speed:       flagSpeed,
		PreviewOnly: flagPreviewOnly,
		OutputDir:   flagOutput,
		Format:      format,
		Model:       flagModel,
		Input:       flagInput,
	}

	if flagVerbose {
		opts.Logger = observability.InitLogger(true)
	} else {
		r := progress.NewBarRenderer(os.Stdout)
		defer r.Finish()
		opts.OnProgress = r.Handle
		opts.Logger = observability.InitLogger(false)
	}

	_, err = pipeline.Run(cmd.Context(), cfg, opts)
	return err
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	if flagSource == "" {
		return fmt.Errorf("--source (-s) is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	t, err := transcribe.New(cfg, flagTransModel)
	if err != nil {
		return err
	}

	text, err := t.Transcribe(cmd.Context(), flagSource)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(flagTransOut, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(flagTransOut, "podcast_transcript.txt")
	if err := os.WriteFile(path, []byte(text+"\n"), 0644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	fmt.Printf("Transcript saved to %s\n", path)
	return nil
}

var (
	engineHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	voiceIDStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func runListVoices(cmd *cobra.Command, args []string) error {
	fmt.Println("\nAvailable voices:")

	for _, engine := range cast.Engines {
		voices := cast.AvailableVoices(engine)
		if len(voices) == 0 {
			continue
		}

		fmt.Printf("\n  %s\n", engineHeaderStyle.Render(strings.ToUpper(string(engine))))
		fmt.Printf("  %s\n", strings.Repeat("─", 50))
		fmt.Printf("  %-28s %-8s %s\n", "ID", "GENDER", "DESCRIPTION")
		for _, v := range voices {
			fmt.Println(voiceRow(v))
		}
	}
	fmt.Println()
	return nil
}

// voiceRow renders one list-voices table line. The ID is padded before
// styling so ANSI escape bytes do not count toward the column width.
func voiceRow(v cast.VoiceInfo) string {
	return fmt.Sprintf("  %s %-8s %s", voiceIDStyle.Render(fmt.Sprintf("%-28s", v.ID)), v.Gender, v.Description)
}

// needsFFmpeg reports whether assembly will shell out to ffmpeg: always
// for mp3 episodes, and for wav episodes whenever any assigned engine
// returns compressed audio that must be re-encoded.
func needsFFmpeg(c *cast.Cast, format string) bool {
	if format == "mp3" {
		return true
	}
	for _, m := range c.UniquePairs() {
		if tts.CompressedOutput(m.Engine) {
			return true
		}
	}
	return false
}

// checkAPIKeys reports every missing credential up front, before any
// network work starts. The key values themselves are never printed.
func checkAPIKeys(cfg *config.Config, c *cast.Cast, model string, previewOnly bool) error {
	needed := map[string]bool{}

	if script.IsClaudeModel(model) {
		if cfg.AnthropicKey == "" {
			needed["ANTHROPIC_API_KEY"] = true
		}
	} else if cfg.OpenAIKey == "" {
		needed["OPENAI_API_KEY"] = true
	}

	if !previewOnly {
		for _, m := range c.UniquePairs() {
			switch m.Engine {
			case cast.EngineOpenAI:
				if cfg.OpenAIKey == "" {
					needed["OPENAI_API_KEY"] = true
				}
			case cast.EngineGoogle, cast.EnginePolly:
				// Application Default Credentials / AWS SDK chain; the
				// client constructors surface their own errors.
			}
		}
	}

	if len(needed) > 0 {
		var missing []string
		for k := range needed {
			missing = append(missing, k)
		}
		sort.Strings(missing)
		return fmt.Errorf("missing required environment variable(s): %s\nSet them in the environment or a .env file", strings.Join(missing, ", "))
	}
	return nil
}
