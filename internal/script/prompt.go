package script

import (
	"fmt"
	"strings"
)

// buildSystemPrompt produces the system prompt for one generation call.
// batchNum/batchTotal are 1-based; a single-call episode is batch 1 of 1.
func buildSystemPrompt(req Request, words, batchNum, batchTotal int) string {
	var b strings.Builder

	if batchTotal == 1 {
		b.WriteString("You are a professional podcast script writer. Write engaging dialogue between the specified speakers.")
	} else {
		b.WriteString("You are a professional podcast script writer creating one segment of a longer episode.")
	}
	fmt.Fprintf(&b, " This script should be approximately %d words - the word count matters for timing.", words)

	b.WriteString(" FORMAT REQUIREMENTS:")
	fmt.Fprintf(&b, " Each line must start with the speaker name followed by a colon, using ONLY these exact names: %s.", strings.Join(req.Speakers, ", "))
	b.WriteString(" One speaker turn per line." +
		" Never add prefixes like 'text:', 'voice:', 'says:', or 'dialogue:' before the speech." +
		" No stage directions, sound effects, timestamps, markdown, code fences, bullet points, or headers." +
		" Only the words the speakers would actually say out loud." +
		" Example: 'HOST: Welcome to the show!' and nothing else on the line.")

	switch {
	case batchTotal == 1:
		b.WriteString(" Include an introduction, thorough discussion with examples, and a conclusion.")
	case batchNum == 1:
		b.WriteString(" This is the OPENING segment: introduce the speakers and set up the topic. Do not conclude the episode.")
	case batchNum == batchTotal:
		b.WriteString(" This is the CLOSING segment: continue seamlessly from the previous dialogue and end with conclusions and a sign-off.")
	default:
		b.WriteString(" This is a MIDDLE segment: continue seamlessly from the previous dialogue. No re-introductions, no conclusions.")
	}

	if req.Natural {
		b.WriteString(" NATURAL CONVERSATION STYLE:" +
			" occasional thinking pauses with '...', some self-correction ('Actually, let me put it this way...')," +
			" genuine reactions ('That's fascinating!', 'Oh, that makes sense now')." +
			" Avoid 'um', 'uh', and 'like' - they sound awkward when synthesized." +
			" Aim for thoughtful, engaging conversation rather than robotic exchange.")
	} else {
		b.WriteString(" Keep the dialogue conversational but clear and professional.")
	}

	return b.String()
}

// buildUserPrompt produces the user prompt for one generation call. tail is
// the previous batch's closing lines; empty for the first call.
func buildUserPrompt(req Request, words, batchNum, batchTotal int, tail string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", req.Prompt)
	if batchTotal > 1 {
		fmt.Fprintf(&b, "Segment %d of %d.\n", batchNum, batchTotal)
	}
	fmt.Fprintf(&b, "Target length: approximately %d words of dialogue.\n", words)
	fmt.Fprintf(&b, "Speakers: %s\n", strings.Join(req.Speakers, ", "))

	if tail != "" {
		b.WriteString("\nThe episode so far ends with these lines - continue the conversation directly from them, without repeating them:\n")
		b.WriteString(tail)
		b.WriteString("\n")
	}

	b.WriteString("\nWrite substantial, detailed dialogue with thorough explanations and concrete examples. " +
		"Each speaker should take multiple longer turns; the host asks clarifying questions the way real hosts do.")

	if req.SourceMaterial != "" {
		b.WriteString("\n\nGround the conversation in this source material - do not invent facts beyond it:\n")
		b.WriteString(req.SourceMaterial)
	}

	return b.String()
}
