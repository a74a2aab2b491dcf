// Package cast models the episode's speakers: a validated mapping from
// speaker name to (voice, engine), constructed once from the CLI's JSON
// flags and immutable afterwards.
package cast

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/musclesugar/podcast-ai-pipeline/internal/config"
)

// Engine identifies a TTS backend. The set is closed: backends are tagged
// variants, not plugins.
type Engine string

const (
	EngineEdge   Engine = "edge"   // Microsoft Edge neural voices (cloud, free)
	EnginePiper  Engine = "piper"  // local neural models, auto-downloaded
	EngineCoqui  Engine = "coqui"  // local neural models with voice cloning
	EngineOpenAI Engine = "openai" // OpenAI speech API (paid, premium)
	EngineGoogle Engine = "google" // Google Cloud TTS (Chirp 3 HD)
	EnginePolly  Engine = "polly"  // AWS Polly generative voices
)

// Engines lists every valid engine identifier.
var Engines = []Engine{EngineEdge, EnginePiper, EngineCoqui, EngineOpenAI, EngineGoogle, EnginePolly}

// DefaultEngine is used for speakers with no entry in the engines map.
const DefaultEngine = EnginePiper

// ValidEngine reports whether name is a member of the closed engine set.
func ValidEngine(name string) bool {
	for _, e := range Engines {
		if string(e) == name {
			return true
		}
	}
	return false
}

// Member is one speaker with a resolved voice and engine.
type Member struct {
	Speaker string
	Voice   string
	Engine  Engine
}

// Cast is the validated speaker roster. Speakers iterates in a stable
// order so prompts and previews are deterministic.
type Cast struct {
	members map[string]Member
	order   []string
}

// Parse builds a Cast from the raw --speakers and --engines JSON flags.
// Every engine identifier is checked against the closed set up front;
// a speaker appearing in engines but not in speakers is an error.
func Parse(speakersJSON, enginesJSON string) (*Cast, error) {
	if strings.TrimSpace(speakersJSON) == "" {
		return nil, &config.ConfigError{Subject: "speakers", Reason: "speaker map is required"}
	}

	var voices map[string]string
	if err := json.Unmarshal([]byte(speakersJSON), &voices); err != nil {
		return nil, &config.ConfigError{Subject: "speakers", Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if len(voices) == 0 {
		return nil, &config.ConfigError{Subject: "speakers", Reason: "speaker map is empty"}
	}

	engines := map[string]string{}
	if strings.TrimSpace(enginesJSON) != "" {
		if err := json.Unmarshal([]byte(enginesJSON), &engines); err != nil {
			return nil, &config.ConfigError{Subject: "engines", Reason: fmt.Sprintf("invalid JSON: %v", err)}
		}
	}

	for speaker, engine := range engines {
		if _, ok := voices[speaker]; !ok {
			return nil, &config.ConfigError{Subject: speaker, Reason: "engine assigned to a speaker that is not in the speakers map"}
		}
		if !ValidEngine(engine) {
			return nil, &config.ConfigError{Subject: speaker, Reason: fmt.Sprintf("unknown engine %q, must be one of %v", engine, Engines)}
		}
	}

	c := &Cast{members: make(map[string]Member, len(voices))}
	for speaker, voice := range voices {
		if strings.TrimSpace(speaker) == "" {
			return nil, &config.ConfigError{Subject: "speakers", Reason: "empty speaker name"}
		}
		if strings.TrimSpace(voice) == "" {
			return nil, &config.ConfigError{Subject: speaker, Reason: "empty voice identifier"}
		}
		engine := DefaultEngine
		if e, ok := engines[speaker]; ok {
			engine = Engine(e)
		}
		c.members[speaker] = Member{Speaker: speaker, Voice: voice, Engine: engine}
		c.order = append(c.order, speaker)
	}
	sort.Strings(c.order)

	return c, nil
}

// Speakers returns the speaker names in stable order.
func (c *Cast) Speakers() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of speakers.
func (c *Cast) Len() int { return len(c.members) }

// Has reports whether speaker is in the cast (case-sensitive).
func (c *Cast) Has(speaker string) bool {
	_, ok := c.members[speaker]
	return ok
}

// Resolve returns the member for speaker, or a ConfigError naming the
// speaker so an unmapped speaker is never silently dropped.
func (c *Cast) Resolve(speaker string) (Member, error) {
	m, ok := c.members[speaker]
	if !ok {
		return Member{}, &config.ConfigError{Subject: speaker, Reason: "speaker has no voice mapping"}
	}
	return m, nil
}

// UniquePairs returns the distinct (engine, voice) pairs in the cast, used
// to warm local voice models once per pair.
func (c *Cast) UniquePairs() []Member {
	seen := map[string]bool{}
	var out []Member
	for _, speaker := range c.order {
		m := c.members[speaker]
		key := string(m.Engine) + "\x00" + m.Voice
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}
