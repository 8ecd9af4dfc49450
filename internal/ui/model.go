// ABOUTME: Bubbletea model for the voice assistant TUI
// ABOUTME: Defines application state and update logic
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bittu-ai/bittu-go/internal/assistant"
)

// visibleEntries caps how many completed transcript lines are rendered.
const visibleEntries = 8

// Model represents the TUI state
type Model struct {
	// Session
	state   assistant.State
	errText string

	// Transcript
	entries      []assistant.Entry
	pendingUser  string
	pendingModel string

	// Audio
	level  float64
	volume int
	muted  bool

	// Dimensions
	width  int
	height int

	control *Control
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StateMsg:
		m.state = msg.State
		m.errText = ""
		if msg.Err != nil {
			m.errText = msg.Err.Error()
		}
		if m.state != assistant.StateActive {
			m.level = 0
		}
	case TranscriptMsg:
		m.entries = msg.Entries
		m.pendingUser = msg.PendingUser
		m.pendingModel = msg.PendingModel
	case LevelMsg:
		m.level = msg.Level
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderTranscript()
	s += m.renderControls()
	s += m.renderHelp()

	return s
}

// renderHeader renders session status
func (m Model) renderHeader() string {
	status := m.state.String()
	errLine := ""
	if m.errText != "" {
		errLine = fmt.Sprintf("│ Error:  %-45s │\n", truncate(m.errText, 45))
	}

	return fmt.Sprintf(`┌─ Bittu Voice Assistant ──────────────────────────────┐
│ Status: %-45s │
`, status) + errLine + "├──────────────────────────────────────────────────────┤\n"
}

// renderTranscript renders the conversation so far
func (m Model) renderTranscript() string {
	if len(m.entries) == 0 && m.pendingUser == "" && m.pendingModel == "" {
		return "│ (No conversation yet)                                │\n"
	}

	s := ""
	entries := m.entries
	if len(entries) > visibleEntries {
		entries = entries[len(entries)-visibleEntries:]
	}
	for _, entry := range entries {
		s += fmt.Sprintf("│ %-5s %-46s │\n", speakerLabel(entry.Speaker), truncate(entry.Text, 46))
	}
	if m.pendingUser != "" {
		s += fmt.Sprintf("│ %-5s %-46s │\n", "you…", truncate(m.pendingUser, 46))
	}
	if m.pendingModel != "" {
		s += fmt.Sprintf("│ %-5s %-46s │\n", "bot…", truncate(m.pendingModel, 46))
	}
	return s
}

// renderControls renders mic level and volume
func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " 🔇"
	}

	levelBar := renderBar(int(m.level*100), 100, 10)
	volumeBar := renderBar(m.volume, 100, 10)

	return fmt.Sprintf("│                                                      │\n"+
		"│ Mic:    [%s]%-32s │\n"+
		"│ Volume: [%s] %d%%%s%-17s │\n",
		levelBar, "",
		volumeBar, m.volume, muteIcon, "")
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `├──────────────────────────────────────────────────────┤
│ space:Start/Stop  ↑/↓:Volume  m:Mute  q:Quit        │
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.control != nil {
			m.control.sendQuit()
		}
		return m, tea.Quit
	case " ", "enter":
		if m.control != nil {
			m.control.sendToggle()
		}
	case "up":
		m.volume += 5
		if m.volume > 100 {
			m.volume = 100
		}
		if m.control != nil {
			m.control.sendVolume(m.volume)
		}
	case "down":
		m.volume -= 5
		if m.volume < 0 {
			m.volume = 0
		}
		if m.control != nil {
			m.control.sendVolume(m.volume)
		}
	case "m":
		m.muted = !m.muted
		if m.control != nil {
			m.control.sendMute(m.muted)
		}
	}

	return m, nil
}

// StateMsg updates session status
type StateMsg struct {
	State assistant.State
	Err   error
}

// TranscriptMsg updates the conversation view
type TranscriptMsg struct {
	Entries      []assistant.Entry
	PendingUser  string
	PendingModel string
}

// LevelMsg updates the mic level meter
type LevelMsg struct {
	Level float64
}

// speakerLabel maps a speaker to its short display label
func speakerLabel(speaker assistant.Speaker) string {
	if speaker == assistant.SpeakerModel {
		return "bot:"
	}
	return "you:"
}

// truncate shortens a string to max characters
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}

// renderBar renders a progress bar of the given width
func renderBar(value, max, width int) string {
	if max <= 0 {
		max = 1
	}
	if value < 0 {
		value = 0
	}
	if value > max {
		value = max
	}
	filled := value * width / max
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
