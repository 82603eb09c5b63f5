// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the transport UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Control carries user intent out of the TUI
type Control struct {
	Quit chan struct{}
}

// NewControl creates a control handler
func NewControl() *Control {
	return &Control{
		Quit: make(chan struct{}, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(ctrl *Control) Model {
	return Model{
		quit: ctrl.Quit,
	}
}

// Run starts the TUI
func Run(ctrl *Control) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
	return p, nil
}
