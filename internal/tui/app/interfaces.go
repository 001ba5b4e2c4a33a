// Package app provides TUI application adapters for command wiring.
package app

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ProgramRunner defines the interface for running a bubbletea program.
type ProgramRunner interface {
	// Run starts the bubbletea program with the given model.
	Run(model tea.Model) error
}

// DefaultProgramRunner is the default implementation of ProgramRunner
// that wraps tea.NewProgram with standard options.
type DefaultProgramRunner struct{}

// NewDefaultProgramRunner creates a new DefaultProgramRunner.
func NewDefaultProgramRunner() *DefaultProgramRunner {
	return &DefaultProgramRunner{}
}

// Run starts a bubbletea program on the alternate screen with mouse
// support, so the wheel scrolls the feed.
func (r *DefaultProgramRunner) Run(model tea.Model) error {
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}

