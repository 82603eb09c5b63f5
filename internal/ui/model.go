// ABOUTME: Bubbletea model for the transport TUI
// ABOUTME: Defines application state and update logic
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Model represents the TUI state
type Model struct {
	// Session
	clientName string
	playFile   string
	recordFile string

	// Format
	sampleRate  int
	outChannels int
	inChannels  int

	// Progress
	playFrames  uint64
	playTotal   uint64
	recFrames   uint64
	recTotal    uint64
	playFill    int // playback ring fill, percent
	recFill     int // capture ring fill, percent

	// Dimensions
	width  int
	height int

	quit chan struct{}
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
	case StatusMsg:
		m.applyStatus(msg)
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
	s += m.renderPlayback()
	s += m.renderCapture()
	s += m.renderHelp()

	return s
}

// renderHeader renders the session line
func (m Model) renderHeader() string {
	return fmt.Sprintf(`┌─ jacktape ───────────────────────────────────────────┐
│ Client: %-44s │
│ Rate:   %dHz%-38s │
├──────────────────────────────────────────────────────┤
`, truncate(m.clientName, 44), m.sampleRate, "")
}

// renderPlayback renders playback progress
func (m Model) renderPlayback() string {
	if m.playFile == "" {
		return "│ No playback                                          │\n"
	}

	s := fmt.Sprintf("│ Playing: %-43s │\n", truncate(m.playFile, 43))
	s += fmt.Sprintf("│   %d channels, %d/%d frames%-20s │\n",
		m.outChannels, m.playFrames, m.playTotal, "")
	s += fmt.Sprintf("│   Queue: [%s] %3d%%%-28s │\n",
		renderBar(m.playFill, 100, 10), m.playFill, "")
	return s
}

// renderCapture renders recording progress
func (m Model) renderCapture() string {
	if m.recordFile == "" {
		return "│ No recording                                         │\n"
	}

	total := "∞"
	if m.recTotal != 0 {
		total = fmt.Sprintf("%d", m.recTotal)
	}
	s := fmt.Sprintf("│ Recording: %-41s │\n", truncate(m.recordFile, 41))
	s += fmt.Sprintf("│   %d channels, %d/%s frames%-20s │\n",
		m.inChannels, m.recFrames, total, "")
	s += fmt.Sprintf("│   Queue: [%s] %3d%%%-28s │\n",
		renderBar(m.recFill, 100, 10), m.recFill, "")
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `├──────────────────────────────────────────────────────┤
│ q:Stop                                               │
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		select {
		case m.quit <- struct{}{}:
		default:
		}
		return m, tea.Quit
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.ClientName != "" {
		m.clientName = msg.ClientName
	}
	if msg.PlayFile != "" {
		m.playFile = msg.PlayFile
	}
	if msg.RecordFile != "" {
		m.recordFile = msg.RecordFile
	}
	if msg.SampleRate != 0 {
		m.sampleRate = msg.SampleRate
	}
	if msg.OutChannels != 0 {
		m.outChannels = msg.OutChannels
	}
	if msg.InChannels != 0 {
		m.inChannels = msg.InChannels
	}
	if msg.PlayTotal != 0 {
		m.playTotal = msg.PlayTotal
	}
	if msg.RecTotal != 0 {
		m.recTotal = msg.RecTotal
	}
	m.playFrames = msg.PlayFrames
	m.recFrames = msg.RecFrames
	m.playFill = msg.PlayFill
	m.recFill = msg.RecFill
}

// StatusMsg updates TUI state
type StatusMsg struct {
	ClientName  string
	PlayFile    string
	RecordFile  string
	SampleRate  int
	OutChannels int
	InChannels  int
	PlayFrames  uint64
	PlayTotal   uint64
	RecFrames   uint64
	RecTotal    uint64
	PlayFill    int
	RecFill     int
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
