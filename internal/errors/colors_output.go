package errors

import "github.com/cristianoliveira/appfeed/internal/colors"

// ColorsOutput adapts the colors package to implement ColorOutput.
type ColorsOutput struct{}

var _ ColorOutput = ColorsOutput{}

func (ColorsOutput) Error(msgs ...string)   { colors.Error(msgs...) }
func (ColorsOutput) Warning(msgs ...string) { colors.Warning(msgs...) }
func (ColorsOutput) Info(msgs ...string)    { colors.Info(msgs...) }
func (ColorsOutput) Success(msgs ...string) { colors.Success(msgs...) }

// NewDefaultCLIHandler creates a CLI handler using ColorsOutput.
func NewDefaultCLIHandler() *CLIHandler {
	return NewCLIHandler(ColorsOutput{})
}
