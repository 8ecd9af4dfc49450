// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and the control channels
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Control carries key-driven commands out of the TUI.
type Control struct {
	Toggle chan struct{}
	Volume chan int
	Mute   chan bool
	Quit   chan struct{}
}

// NewControl creates the control channel set.
func NewControl() *Control {
	return &Control{
		Toggle: make(chan struct{}, 4),
		Volume: make(chan int, 10),
		Mute:   make(chan bool, 4),
		Quit:   make(chan struct{}, 1),
	}
}

func (c *Control) sendToggle() {
	select {
	case c.Toggle <- struct{}{}:
	default:
	}
}

func (c *Control) sendVolume(volume int) {
	select {
	case c.Volume <- volume:
	default:
	}
}

func (c *Control) sendMute(muted bool) {
	select {
	case c.Mute <- muted:
	default:
	}
}

func (c *Control) sendQuit() {
	select {
	case c.Quit <- struct{}{}:
	default:
	}
}

// NewModel creates a new TUI model
func NewModel(control *Control) Model {
	return Model{
		volume:  100,
		control: control,
	}
}

// Run starts the TUI
func Run(control *Control) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(control), tea.WithAltScreen())
	return p, nil
}
