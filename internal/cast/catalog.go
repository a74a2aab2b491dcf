package cast

// VoiceInfo describes an available voice for display in list-voices.
type VoiceInfo struct {
	ID          string
	Gender      string
	Description string
}

// AvailableVoices returns the voice catalog for the named engine. The
// engine set is closed, so an unknown engine yields an empty catalog.
func AvailableVoices(engine Engine) []VoiceInfo {
	switch engine {
	case EngineEdge:
		return edgeVoices
	case EnginePiper:
		return piperVoices
	case EngineCoqui:
		return coquiVoices
	case EngineOpenAI:
		return openaiVoices
	case EngineGoogle:
		return googleVoices
	case EnginePolly:
		return pollyVoices
	default:
		return nil
	}
}

var piperVoices = []VoiceInfo{
	{ID: "en_US-lessac-high", Gender: "female", Description: "Clear, professional; best overall choice"},
	{ID: "en_US-lessac-medium", Gender: "female", Description: "Most used female voice, quality/speed balance"},
	{ID: "en_US-ryan-high", Gender: "male", Description: "Warm, friendly; top male voice"},
	{ID: "en_US-ryan-medium", Gender: "male", Description: "Warm male voice, faster synthesis"},
	{ID: "en_US-amy-medium", Gender: "female", Description: "Pleasant, conversational"},
	{ID: "en_US-joe-medium", Gender: "male", Description: "Casual, approachable"},
	{ID: "en_US-danny-low", Gender: "male", Description: "Energetic, youthful"},
	{ID: "en_US-kathleen-low", Gender: "female", Description: "Mature, authoritative"},
	{ID: "en_GB-alan-medium", Gender: "male", Description: "British, BBC-like and formal"},
	{ID: "en_GB-jenny_dioco-medium", Gender: "female", Description: "British, conversational"},
}

var edgeVoices = []VoiceInfo{
	{ID: "en-US-AndrewNeural", Gender: "male", Description: "Professional, clear"},
	{ID: "en-US-BrianNeural", Gender: "male", Description: "Casual, approachable"},
	{ID: "en-US-ChristopherNeural", Gender: "male", Description: "Steady narrator"},
	{ID: "en-US-GuyNeural", Gender: "male", Description: "Bright, energetic"},
	{ID: "en-US-AvaNeural", Gender: "female", Description: "Friendly, natural"},
	{ID: "en-US-EmmaNeural", Gender: "female", Description: "Warm, engaging"},
	{ID: "en-US-JennyNeural", Gender: "female", Description: "Versatile assistant voice"},
	{ID: "en-GB-RyanNeural", Gender: "male", Description: "British, professional"},
	{ID: "en-GB-SoniaNeural", Gender: "female", Description: "British, refined"},
	{ID: "en-AU-NatashaNeural", Gender: "female", Description: "Australian, relaxed"},
}

var openaiVoices = []VoiceInfo{
	{ID: "alloy", Gender: "neutral", Description: "Balanced"},
	{ID: "echo", Gender: "male", Description: "Warm"},
	{ID: "fable", Gender: "male", Description: "Dramatic"},
	{ID: "onyx", Gender: "male", Description: "Deep"},
	{ID: "nova", Gender: "female", Description: "Bright"},
	{ID: "shimmer", Gender: "female", Description: "Soft"},
}

// Coqui voices are VCTK speaker IDs for the multi-speaker VITS model.
var coquiVoices = []VoiceInfo{
	{ID: "p225", Gender: "female", Description: "VCTK, clear Southern English"},
	{ID: "p226", Gender: "male", Description: "VCTK, measured Surrey accent"},
	{ID: "p231", Gender: "female", Description: "VCTK, bright and quick"},
	{ID: "p240", Gender: "female", Description: "VCTK, soft Irish lilt"},
	{ID: "p254", Gender: "male", Description: "VCTK, deep and deliberate"},
	{ID: "p270", Gender: "male", Description: "VCTK, neutral narrator"},
}

var googleVoices = []VoiceInfo{
	{ID: "en-US-Chirp3-HD-Charon", Gender: "male", Description: "Informative, clear narrator"},
	{ID: "en-US-Chirp3-HD-Leda", Gender: "female", Description: "Youthful, bright"},
	{ID: "en-US-Chirp3-HD-Fenrir", Gender: "male", Description: "Deep, resonant"},
	{ID: "en-US-Chirp3-HD-Kore", Gender: "female", Description: "Firm, confident"},
	{ID: "en-US-Chirp3-HD-Puck", Gender: "male", Description: "Upbeat, energetic"},
	{ID: "en-US-Chirp3-HD-Zephyr", Gender: "female", Description: "Breezy, relaxed"},
}

var pollyVoices = []VoiceInfo{
	{ID: "Matthew", Gender: "male", Description: "en-US, Generative"},
	{ID: "Ruth", Gender: "female", Description: "en-US, Generative"},
	{ID: "Stephen", Gender: "male", Description: "en-US, Generative"},
	{ID: "Danielle", Gender: "female", Description: "en-US, Generative"},
	{ID: "Amy", Gender: "female", Description: "en-GB, Generative"},
	{ID: "Olivia", Gender: "female", Description: "en-AU, Generative"},
}
