// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for the tone player UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Control carries the operator's terminate request out of the TUI
type Control struct {
	Quit chan struct{}
}

// NewControl creates a new control handler
func NewControl() *Control {
	return &Control{
		Quit: make(chan struct{}, 1),
	}
}

// requestQuit signals Quit once; repeated requests are ignored
func (c *Control) requestQuit() {
	if c == nil {
		return
	}
	select {
	case c.Quit <- struct{}{}:
	default:
	}
}

// NewModel creates a new TUI model
func NewModel(ctrl *Control) Model {
	return Model{
		state: "starting",
		ctrl:  ctrl,
	}
}

// Run creates the TUI program; the caller starts it with p.Run()
func Run(ctrl *Control) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
	return p, nil
}
