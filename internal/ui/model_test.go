// ABOUTME: Tests for the transport TUI model
// ABOUTME: Covers status updates, rendering and quit handling
package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func testModel() Model {
	return NewModel(NewControl())
}

func TestApplyStatusUpdatesSession(t *testing.T) {
	m := testModel()

	updated, _ := m.Update(StatusMsg{
		ClientName: "jacktape",
		PlayFile:   "song.flac",
		SampleRate: 48000,
	})
	m = updated.(Model)

	if m.clientName != "jacktape" {
		t.Errorf("expected client name set, got %q", m.clientName)
	}
	if m.playFile != "song.flac" {
		t.Errorf("expected play file set, got %q", m.playFile)
	}
	if m.sampleRate != 48000 {
		t.Errorf("expected sample rate set, got %d", m.sampleRate)
	}
}

func TestApplyStatusKeepsIdentityOnProgress(t *testing.T) {
	m := testModel()

	updated, _ := m.Update(StatusMsg{ClientName: "jacktape", PlayFile: "a.wav", PlayTotal: 100})
	m = updated.(Model)
	updated, _ = m.Update(StatusMsg{PlayFrames: 50, PlayFill: 80})
	m = updated.(Model)

	if m.clientName != "jacktape" || m.playFile != "a.wav" {
		t.Error("progress update clobbered session identity")
	}
	if m.playFrames != 50 || m.playTotal != 100 {
		t.Errorf("expected progress 50/100, got %d/%d", m.playFrames, m.playTotal)
	}
}

func TestViewShowsProgress(t *testing.T) {
	m := testModel()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(Model)
	updated, _ = m.Update(StatusMsg{
		ClientName:  "jacktape",
		PlayFile:    "song.wav",
		SampleRate:  44100,
		OutChannels: 2,
		PlayFrames:  10,
		PlayTotal:   20,
		PlayFill:    50,
	})
	m = updated.(Model)

	view := m.View()
	if !strings.Contains(view, "song.wav") {
		t.Error("view missing play file name")
	}
	if !strings.Contains(view, "44100Hz") {
		t.Error("view missing sample rate")
	}
	if !strings.Contains(view, "No recording") {
		t.Error("view should report missing recording")
	}
}

func TestViewBeforeSizing(t *testing.T) {
	m := testModel()
	if m.View() != "Loading..." {
		t.Error("expected placeholder before first window size")
	}
}

func TestQuitKeySignalsControl(t *testing.T) {
	ctrl := NewControl()
	m := NewModel(ctrl)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}

	select {
	case <-ctrl.Quit:
	default:
		t.Error("expected quit signal on the control channel")
	}
}

func TestRenderBar(t *testing.T) {
	if got := renderBar(50, 100, 10); strings.Count(got, "█") != 5 {
		t.Errorf("expected half filled bar, got %q", got)
	}
	if got := renderBar(0, 100, 10); strings.Count(got, "░") != 10 {
		t.Errorf("expected empty bar, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if got := truncate("a-very-long-file-name.wav", 10); got != "a-very-..." {
		t.Errorf("expected truncation with ellipsis, got %q", got)
	}
}
