package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/appfeed/cmd"
	"github.com/cristianoliveira/appfeed/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show version information.

USAGE:
    appfeed version`,
		Args: cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			info := version.Current()
			fmt.Fprintf(c.OutOrStdout(), "appfeed %s\n", version.String())
			if info.Date != "" {
				fmt.Fprintf(c.OutOrStdout(), "built:   %s\n", info.Date)
			}
			fmt.Fprintf(c.OutOrStdout(), "go:      %s\n", info.Go)
		},
	}
}

func init() {
	cmd.RootCmd.AddCommand(NewVersionCmd())
}
