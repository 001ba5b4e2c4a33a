package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cristianoliveira/appfeed/internal/colors"
	"github.com/cristianoliveira/appfeed/internal/tui/state"
)

// Client defines dependencies needed by the feed command.
type Client interface {
	CreateModel(opts state.Options) (tea.Model, error)
	RunProgram(model tea.Model) error
}

// DefaultClient is the default adapter-based implementation used by CLI wiring.
type DefaultClient struct {
	programRunner ProgramRunner
}

// NewDefaultClient creates a default TUI client adapter.
// If programRunner is nil, a DefaultProgramRunner will be used.
func NewDefaultClient(programRunner ProgramRunner) *DefaultClient {
	if programRunner == nil {
		programRunner = NewDefaultProgramRunner()
	}
	return &DefaultClient{programRunner: programRunner}
}

// CreateModel builds the feed model for opts.
func (d *DefaultClient) CreateModel(opts state.Options) (tea.Model, error) {
	return state.New(opts)
}

// RunProgram starts the bubbletea program using the configured ProgramRunner.
func (d *DefaultClient) RunProgram(model tea.Model) error {
	err := d.programRunner.Run(model)
	if err != nil {
		colors.Error(fmt.Sprintf("Error running TUI: %v", err))
		return err
	}
	return nil
}
