// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, transcript rendering, and key handling
package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bittu-ai/bittu-go/internal/assistant"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil) // Control is optional for testing

	if model.state != assistant.StateIdle {
		t.Errorf("expected initial state idle, got %v", model.state)
	}

	if model.volume != 100 {
		t.Errorf("expected default volume 100, got %d", model.volume)
	}

	if model.muted {
		t.Error("expected muted to be false initially")
	}
}

func TestStateMsgUpdatesStatus(t *testing.T) {
	model := NewModel(nil)

	updated, _ := model.Update(StateMsg{State: assistant.StateActive})
	model = updated.(Model)

	if model.state != assistant.StateActive {
		t.Errorf("expected state active, got %v", model.state)
	}
	if model.errText != "" {
		t.Errorf("expected no error text, got %q", model.errText)
	}
}

func TestStateMsgCarriesError(t *testing.T) {
	model := NewModel(nil)

	updated, _ := model.Update(StateMsg{State: assistant.StateIdle, Err: errors.New("mic denied")})
	model = updated.(Model)

	if model.errText != "mic denied" {
		t.Errorf("expected error text 'mic denied', got %q", model.errText)
	}

	// The error banner is visible but start stays available.
	updated, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model = updated.(Model)
	if !strings.Contains(model.View(), "mic denied") {
		t.Error("expected error to appear in the view")
	}
}

func TestTranscriptMsg(t *testing.T) {
	model := NewModel(nil)

	updated, _ := model.Update(TranscriptMsg{
		Entries:     []assistant.Entry{{Speaker: assistant.SpeakerModel, Text: "Hello"}},
		PendingUser: "and wh",
	})
	model = updated.(Model)

	updated, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model = updated.(Model)

	view := model.View()
	if !strings.Contains(view, "Hello") {
		t.Error("expected completed entry in view")
	}
	if !strings.Contains(view, "and wh") {
		t.Error("expected pending transcript in view")
	}
}

func TestVolumeKeys(t *testing.T) {
	control := NewControl()
	model := NewModel(control)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model = updated.(Model)

	if model.volume != 95 {
		t.Errorf("expected volume 95 after down, got %d", model.volume)
	}

	select {
	case v := <-control.Volume:
		if v != 95 {
			t.Errorf("expected volume change 95, got %d", v)
		}
	default:
		t.Error("expected a volume change on the control channel")
	}
}

func TestVolumeClamps(t *testing.T) {
	model := NewModel(nil)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyUp})
	model = updated.(Model)
	if model.volume != 100 {
		t.Errorf("expected volume clamped at 100, got %d", model.volume)
	}
}

func TestMuteKey(t *testing.T) {
	control := NewControl()
	model := NewModel(control)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	model = updated.(Model)

	if !model.muted {
		t.Error("expected muted after m key")
	}

	select {
	case muted := <-control.Mute:
		if !muted {
			t.Error("expected mute=true on the control channel")
		}
	default:
		t.Error("expected a mute change on the control channel")
	}
}

func TestSpaceSendsToggle(t *testing.T) {
	control := NewControl()
	model := NewModel(control)

	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})

	select {
	case <-control.Toggle:
	default:
		t.Error("expected a toggle on the control channel")
	}
}

func TestLevelResetsWhenInactive(t *testing.T) {
	model := NewModel(nil)

	updated, _ := model.Update(LevelMsg{Level: 0.7})
	model = updated.(Model)
	if model.level != 0.7 {
		t.Errorf("expected level 0.7, got %f", model.level)
	}

	updated, _ = model.Update(StateMsg{State: assistant.StateIdle})
	model = updated.(Model)
	if model.level != 0 {
		t.Errorf("expected level reset on idle, got %f", model.level)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 10); got != "hello" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("hello world", 8); got != "hello w…" {
		t.Errorf("truncate long = %q", got)
	}
}

func TestRenderBar(t *testing.T) {
	if got := renderBar(50, 100, 10); got != "█████░░░░░" {
		t.Errorf("renderBar(50) = %q", got)
	}
	if got := renderBar(0, 100, 10); got != "░░░░░░░░░░" {
		t.Errorf("renderBar(0) = %q", got)
	}
	if got := renderBar(150, 100, 10); got != "██████████" {
		t.Errorf("renderBar(150) = %q", got)
	}
}
