package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/appfeed/cmd"
	"github.com/cristianoliveira/appfeed/internal/colors"
	"github.com/cristianoliveira/appfeed/internal/config"
)

type cleanupClient interface {
	CleanupRead(ctx context.Context, olderThanDays int, dryRun bool) (int64, error)
}

// NewCleanupCmd creates the cleanup command with explicit dependencies.
func NewCleanupCmd(client cleanupClient) *cobra.Command {
	if client == nil {
		panic("NewCleanupCmd: client dependency cannot be nil")
	}

	var days int
	var dryRun bool

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove old read notifications",
		Long: `Remove read notifications older than a number of days from the
local database. Unread notifications are never removed.

USAGE:
    appfeed cleanup [OPTIONS]

OPTIONS:
    --days <n>           Age threshold in days (default: cleanup_days)
    --dry-run            Only report what would be removed
    -h, --help           Show this help`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if !c.Flags().Changed("days") {
				days = config.GetInt("cleanup_days", 30)
			}
			if days < 0 {
				return fmt.Errorf("cleanup: --days must be >= 0")
			}
			n, err := client.CleanupRead(c.Context(), days, dryRun)
			if err != nil {
				return fmt.Errorf("cleanup: %w", err)
			}
			if dryRun {
				colors.Info(fmt.Sprintf("Would remove %d read notifications older than %d days", n, days))
				return nil
			}
			colors.Success(fmt.Sprintf("Removed %d read notifications older than %d days", n, days))
			return nil
		},
	}

	cleanupCmd.Flags().IntVar(&days, "days", 0, "age threshold in days")
	cleanupCmd.Flags().BoolVar(&dryRun, "dry-run", false, "only report what would be removed")

	return cleanupCmd
}

func init() {
	cmd.RootCmd.AddCommand(NewCleanupCmd(store))
}
