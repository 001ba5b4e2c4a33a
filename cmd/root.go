/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/appfeed/internal/colors"
	"github.com/cristianoliveira/appfeed/internal/config"
	apperrors "github.com/cristianoliveira/appfeed/internal/errors"
	"github.com/cristianoliveira/appfeed/internal/logging"
	"github.com/cristianoliveira/appfeed/internal/version"
)

// commandOrder is the order commands are listed in the help text.
var commandOrder = []string{
	"feed",
	"list",
	"add",
	"mark-read",
	"subscribe",
	"subscriptions",
	"serve",
	"token",
	"cleanup",
	"version",
}

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:           "appfeed",
	Short:         "Per-application notification feeds in your terminal.",
	Long:          `Per-application notification feeds in your terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := logging.ShutdownGlobal(); err != nil {
			colors.Debug("logger shutdown:", err.Error())
		}
	},
}

// Execute runs the root command with ctx and reports a failure on stderr.
func Execute(ctx context.Context) error {
	err := RootCmd.ExecuteContext(ctx)
	if err != nil {
		apperrors.NewDefaultCLIHandler().Error(apperrors.Describe(err))
	}
	return err
}

func init() {
	RootCmd.Version = version.String()
	RootCmd.CompletionOptions.HiddenDefaultCmd = true

	RootCmd.PersistentFlags().String("account", "", "account the feeds belong to (overrides config)")
	RootCmd.PersistentFlags().Bool("debug", false, "print debug output")
	RootCmd.PersistentFlags().Bool("quiet", false, "only print errors and warnings")

	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != RootCmd {
			fmt.Fprintln(cmd.OutOrStdout(), cmd.Long)
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), helpText(cmd))
	})
}

// setup loads configuration, applies persistent flags on top of it and
// starts the global logger.
func setup(cmd *cobra.Command) error {
	config.Load()

	flags := cmd.Flags()
	for _, name := range []string{"account", "debug", "quiet"} {
		if flag := flags.Lookup(name); flag != nil && flag.Changed {
			config.Set(name, flag.Value.String())
		}
	}
	colors.SetDebug(config.GetBool("debug", false))
	colors.SetQuiet(config.GetBool("quiet", false))

	if err := logging.InitGlobal(); err != nil {
		colors.Warning(fmt.Sprintf("logging disabled: %v", err))
	}
	logging.Debug("command started", "command", cmd.CommandPath(), "version", version.String())
	return nil
}

func helpText(cmd *cobra.Command) string {
	var lines []string
	for _, name := range commandOrder {
		for _, c := range cmd.Commands() {
			if c.Name() == name {
				lines = append(lines, fmt.Sprintf("    %-28s %s", c.Use, c.Short))
				break
			}
		}
	}

	return fmt.Sprintf(`appfeed %s

Per-application notification feeds in your terminal.

USAGE:
    appfeed [COMMAND] [OPTIONS]

COMMANDS:
%s

OPTIONS:
    --account <id>  Account the feeds belong to
    --debug         Print debug output
    --quiet         Only print errors and warnings
    -h, --help      Show help message
`, version.String(), strings.Join(lines, "\n"))
}
