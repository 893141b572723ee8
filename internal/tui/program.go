package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"edharness/pkg/logging"
)

// NewProgram wraps a run view in a full-screen Bubble Tea program.
func NewProgram(updates <-chan tea.Msg, logs <-chan logging.LogEntry, debug bool, opts ...tea.ProgramOption) (*tea.Program, *Model) {
	m := NewModel(updates, logs, debug)
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return tea.NewProgram(m, opts...), m
}
