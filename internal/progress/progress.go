package progress

import "time"

// Stage identifies which pipeline stage is active.
type Stage string

const (
	StageIngest     Stage = "ingest"
	StageScript     Stage = "script"
	StageTTS        Stage = "tts"
	StageAssembly   Stage = "assembly"
	StageTranscribe Stage = "transcribe"
	StageComplete   Stage = "complete"
)

// Event carries progress information from the pipeline to the renderer.
type Event struct {
	Stage     Stage
	Message   string
	Percent   float64 // 0.0-1.0
	LineNum   int     // current dialogue line during synthesis
	LineTotal int
	Elapsed   time.Duration
	Error     error
	// OutputFile, Duration and SizeMB are set on StageComplete.
	OutputFile string
	Duration   string // episode length, M:SS
	SizeMB     float64
}

// Callback is the function signature for progress event handlers.
type Callback func(Event)

// NopCallback is a no-op progress callback for tests and silent mode.
func NopCallback(Event) {}

// NewEvent creates an Event with common fields populated.
func NewEvent(stage Stage, msg string, pct float64, start time.Time) Event {
	return Event{
		Stage:   stage,
		Message: msg,
		Percent: pct,
		Elapsed: time.Since(start),
	}
}
