// ABOUTME: Bubbletea model for the tone player TUI
// ABOUTME: Shows device and buffer status; Escape is the only quit key
package ui

import (
	"fmt"

	"github.com/Sendspin/waveout/internal/version"
	tea "github.com/charmbracelet/bubbletea"
)

// Model represents the TUI state
type Model struct {
	// Device
	backend   string
	format    string
	sessionID string
	state     string

	// Buffers
	bufferCount int
	frames      int

	// Stats
	refills     uint64
	submits     uint64
	failures    uint64
	sampleIndex uint64
	lastError   string

	ctrl     *Control
	quitting bool

	// Dimensions
	width  int
	height int
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
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	s := m.renderHeader()
	s += m.renderBuffers()
	s += m.renderStats()
	s += m.renderHelp()
	return s
}

// renderHeader renders device status
func (m Model) renderHeader() string {
	device := "(opening)"
	if m.backend != "" {
		device = fmt.Sprintf("%s %s", m.backend, m.format)
	}

	return fmt.Sprintf(`┌─ %-10s v%-8s ───────────────────────────────┐
│ Device: %-45s │
│ State:  %-45s │
├──────────────────────────────────────────────────────┤
`, version.Product, version.Version, truncate(device, 45), truncate(m.state, 45))
}

// renderBuffers renders the ring configuration
func (m Model) renderBuffers() string {
	return fmt.Sprintf("│ Buffers: %d x %d frames%-31s │\n│ Session: %-44s │\n",
		m.bufferCount, m.frames, "", truncate(m.sessionID, 44))
}

// renderStats renders refill statistics
func (m Model) renderStats() string {
	s := fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Refills: %-10d Submits: %-10d Failed: %-6d │
│ Sample:  %-44d │
`, m.refills, m.submits, m.failures, m.sampleIndex)
	if m.lastError != "" {
		s += fmt.Sprintf("│ Error:   %-44s │\n", truncate(m.lastError, 44))
	}
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ Esc:Quit                                             │
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input. Every key except Escape is ignored.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyEsc {
		return m, nil
	}

	m.quitting = true
	m.ctrl.requestQuit()
	return m, tea.Quit
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Backend != "" {
		m.backend = msg.Backend
		m.format = msg.Format
	}
	if msg.SessionID != "" {
		m.sessionID = msg.SessionID
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.BufferCount != 0 {
		m.bufferCount = msg.BufferCount
		m.frames = msg.FramesPerBuffer
	}
	if msg.Refills != 0 || msg.Submits != 0 {
		m.refills = msg.Refills
		m.submits = msg.Submits
		m.failures = msg.SubmitFailures
		m.sampleIndex = msg.SampleIndex
	}
	if msg.Error != "" {
		m.lastError = msg.Error
	}
}

// StatusMsg updates TUI state
type StatusMsg struct {
	Backend         string
	Format          string
	SessionID       string
	State           string
	BufferCount     int
	FramesPerBuffer int
	Refills         uint64
	Submits         uint64
	SubmitFailures  uint64
	SampleIndex     uint64
	Error           string
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
