package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/musclesugar/podcast-ai-pipeline/internal/cast"
	"github.com/musclesugar/podcast-ai-pipeline/internal/config"
)

// wizardItem is a single configurable option in the setup wizard.
type wizardItem struct {
	label    string
	value    string
	options  []wizardOption
	required bool
	editing  bool
	cursor   int // cursor within options when editing
}

type wizardOption struct {
	label string
	value string
}

type wizardState int

const (
	stateMenu wizardState = iota
	stateEditing
)

// wizardModel is the Bubble Tea model for the setup wizard.
type wizardModel struct {
	items     []wizardItem
	cursor    int
	state     wizardState
	width     int
	err       error
	confirmed bool
	cancelled bool

	// speakersDirty is set once the user edits the speakers JSON, so an
	// engine change stops overwriting their text.
	speakersDirty bool
}

var (
	wizTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			MarginBottom(1)

	wizLabelStyle = lipgloss.NewStyle().
			Width(14).
			Align(lipgloss.Right).
			MarginRight(2)

	wizValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	wizDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555")).
			Italic(true)

	wizCursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	wizRequiredStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF5555")).
				Bold(true)

	wizOptionStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	wizSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#04B575")).
				Bold(true).
				PaddingLeft(2)

	wizButtonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 3)

	wizButtonDimStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#555555")).
				Padding(0, 3)

	wizHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			MarginTop(1)

	wizErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)
)

const (
	idxPrompt = iota
	idxMinutes
	idxModel
	idxEngine
	idxSpeakers
	idxInputSrc
	idxNatural
	idxFormat
	idxPreview
	idxGenerate
)

// defaultSpeakersJSON pairs HOST and GUEST with the first two catalog
// voices of an engine.
func defaultSpeakersJSON(engine cast.Engine) string {
	voices := cast.AvailableVoices(engine)
	if len(voices) < 2 {
		return ""
	}
	m := map[string]string{"HOST": voices[0].ID, "GUEST": voices[1].ID}
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(data)
}

func buildWizardItems(cfg *config.Config) []wizardItem {
	engineOpts := make([]wizardOption, 0, len(cast.Engines))
	for _, e := range cast.Engines {
		label := string(e)
		if e == cast.DefaultEngine {
			label += " (default)"
		}
		engineOpts = append(engineOpts, wizardOption{label: label, value: string(e)})
	}

	speakersVal := flagSpeakers
	if speakersVal == "" {
		speakersVal = defaultSpeakersJSON(cast.DefaultEngine)
	}

	format := flagFormat
	if format == "" {
		format = cfg.OutputFormat
	}

	items := []wizardItem{
		{
			label:    "Prompt",
			value:    flagPrompt,
			required: true,
		},
		{
			label: "Minutes",
			value: strconv.Itoa(flagMinutes),
			options: []wizardOption{
				{label: "5 - quick take", value: "5"},
				{label: "8 - standard (default)", value: "8"},
				{label: "15 - extended", value: "15"},
				{label: "30 - long form", value: "30"},
				{label: "40 - deep dive", value: "40"},
			},
		},
		{
			label: "Model",
			value: flagModel,
			options: []wizardOption{
				{label: "gpt-4o-mini (fast, affordable) (default)", value: "gpt-4o-mini"},
				{label: "gpt-4o (stronger)", value: "gpt-4o"},
				{label: "claude-haiku (fast, Anthropic)", value: "claude-haiku"},
				{label: "claude-sonnet (balanced, Anthropic)", value: "claude-sonnet"},
			},
		},
		{
			label:   "Engine",
			value:   string(cast.DefaultEngine),
			options: engineOpts,
		},
		{
			label:    "Speakers",
			value:    speakersVal,
			required: true,
		},
		{
			label: "Source",
			value: flagInput,
		},
		{
			label: "Style",
			value: boolValue(flagNatural),
			options: []wizardOption{
				{label: "professional - tighter pacing (default)", value: "false"},
				{label: "natural - conversational, slower", value: "true"},
			},
		},
		{
			label: "Format",
			value: format,
			options: []wizardOption{
				{label: "wav - lossless", value: "wav"},
				{label: "mp3 - compressed (needs ffmpeg)", value: "mp3"},
			},
		},
		{
			label: "Output",
			value: boolValue(flagPreviewOnly),
			options: []wizardOption{
				{label: "full episode - transcript + audio", value: "false"},
				{label: "preview - transcript only", value: "true"},
			},
		},
		{
			label: ">>> Generate <<<",
		},
	}

	for i := range items {
		for j, opt := range items[i].options {
			if opt.value == items[i].value {
				items[i].cursor = j
				break
			}
		}
	}
	return items
}

func boolValue(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func initialWizardModel(cfg *config.Config) wizardModel {
	return wizardModel{
		items:         buildWizardItems(cfg),
		cursor:        idxPrompt,
		state:         stateMenu,
		speakersDirty: flagSpeakers != "",
	}
}

func (m wizardModel) Init() tea.Cmd {
	return nil
}

func (m wizardModel) isTextInput(idx int) bool {
	return idx == idxPrompt || idx == idxSpeakers || idx == idxInputSrc
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.state == stateMenu {
			return m.updateMenu(msg)
		}
		return m.updateEditing(msg)
	}
	return m, nil
}

func (m wizardModel) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.cancelled = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case "enter", " ":
		if m.cursor == idxGenerate {
			if m.items[idxPrompt].value == "" {
				m.err = fmt.Errorf("Prompt is required")
				return m, nil
			}
			if m.items[idxSpeakers].value == "" {
				m.err = fmt.Errorf("Speakers is required")
				return m, nil
			}
			m.confirmed = true
			return m, tea.Quit
		}
		m.state = stateEditing
		m.items[m.cursor].editing = true
		m.err = nil
	}
	return m, nil
}

func (m wizardModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	idx := m.cursor
	item := &m.items[idx]

	if m.isTextInput(idx) {
		switch msg.String() {
		case "enter":
			item.editing = false
			m.state = stateMenu
			if idx == idxSpeakers {
				m.speakersDirty = true
			}
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "esc":
			item.editing = false
			m.state = stateMenu
		case "backspace":
			if len(item.value) > 0 {
				item.value = item.value[:len(item.value)-1]
			}
		case "ctrl+u":
			item.value = ""
		default:
			if msg.Type == tea.KeyRunes {
				item.value += string(msg.Runes)
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "enter", " ":
		if item.cursor >= 0 && item.cursor < len(item.options) {
			item.value = item.options[item.cursor].value
		}
		item.editing = false
		m.state = stateMenu

		// A new default engine refreshes the suggested speaker pairing
		// unless the user already wrote their own.
		if idx == idxEngine && !m.speakersDirty {
			m.items[idxSpeakers].value = defaultSpeakersJSON(cast.Engine(item.value))
		}

		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case "esc":
		item.editing = false
		m.state = stateMenu

	case "up", "k":
		if item.cursor > 0 {
			item.cursor--
		}

	case "down", "j":
		if item.cursor < len(item.options)-1 {
			item.cursor++
		}
	}
	return m, nil
}

func (m wizardModel) View() string {
	var b strings.Builder

	b.WriteString(wizTitleStyle.Render("PodcastAI"))
	b.WriteString("\n")

	for i, item := range m.items {
		isActive := m.cursor == i

		if i == idxGenerate {
			b.WriteString("\n")
			if isActive {
				b.WriteString("  " + wizButtonStyle.Render(" Generate "))
			} else {
				b.WriteString("  " + wizButtonDimStyle.Render(" Generate "))
			}
			b.WriteString("\n")
			continue
		}

		cursor := "  "
		if isActive {
			cursor = wizCursorStyle.Render("> ")
		}

		label := item.label
		if item.required {
			label = label + wizRequiredStyle.Render("*")
		}
		renderedLabel := wizLabelStyle.Render(label)

		var renderedValue string
		switch {
		case item.editing && m.isTextInput(i):
			renderedValue = wizValueStyle.Render(item.value + "_")
		case item.value == "":
			placeholder := "(not set)"
			if i == idxInputSrc {
				placeholder = "(optional - URL, PDF or text file)"
			}
			renderedValue = wizDimStyle.Render(placeholder)
		default:
			displayVal := item.value
			for _, opt := range item.options {
				if opt.value == item.value {
					displayVal = opt.label
					break
				}
			}
			renderedValue = wizValueStyle.Render(displayVal)
		}

		b.WriteString(cursor + renderedLabel + " " + renderedValue + "\n")

		if item.editing && len(item.options) > 0 {
			for j, opt := range item.options {
				if j == item.cursor {
					b.WriteString(wizSelectedStyle.Render("> "+opt.label) + "\n")
				} else {
					b.WriteString(wizOptionStyle.Render("  "+opt.label) + "\n")
				}
			}
		}
	}

	if m.err != nil {
		b.WriteString("\n" + wizErrorStyle.Render("  Error: "+m.err.Error()) + "\n")
	}

	switch m.state {
	case stateMenu:
		b.WriteString(wizHelpStyle.Render("  j/k or arrows to navigate | enter to edit | q to quit"))
	case stateEditing:
		if m.isTextInput(m.cursor) {
			b.WriteString(wizHelpStyle.Render("  type value | enter to confirm | esc to cancel | ctrl+u to clear"))
		} else {
			b.WriteString(wizHelpStyle.Render("  j/k or arrows to pick | enter to select | esc to cancel"))
		}
	}
	b.WriteString("\n")

	return b.String()
}

func runInteractiveSetup(cfg *config.Config) error {
	m := initialWizardModel(cfg)

	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("wizard error: %w", err)
	}

	final := result.(wizardModel)
	if final.cancelled || !final.confirmed {
		return fmt.Errorf("cancelled")
	}

	flagPrompt = final.items[idxPrompt].value
	flagSpeakers = final.items[idxSpeakers].value
	flagModel = final.items[idxModel].value
	flagInput = final.items[idxInputSrc].value
	flagNatural = final.items[idxNatural].value == "true"
	flagFormat = final.items[idxFormat].value
	flagPreviewOnly = final.items[idxPreview].value == "true"
	if n, err := strconv.Atoi(final.items[idxMinutes].value); err == nil {
		flagMinutes = n
	}

	// Every speaker rides the wizard's engine choice; per-speaker
	// engines stay a flag-only feature.
	engine := cast.Engine(final.items[idxEngine].value)
	if engine != cast.DefaultEngine && flagEngines == "" {
		var speakers map[string]string
		if err := json.Unmarshal([]byte(flagSpeakers), &speakers); err == nil {
			engines := make(map[string]string, len(speakers))
			for name := range speakers {
				engines[name] = string(engine)
			}
			if data, err := json.Marshal(engines); err == nil {
				flagEngines = string(data)
			}
		}
	}

	return nil
}
