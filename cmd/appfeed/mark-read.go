package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/appfeed/cmd"
	"github.com/cristianoliveira/appfeed/internal/colors"
	"github.com/cristianoliveira/appfeed/internal/domain"
)

type markReadClient interface {
	MarkRead(ctx context.Context, scope domain.Scope, id string) error
	MarkAllRead(ctx context.Context, scope domain.Scope) (int64, error)
}

// NewMarkReadCmd creates the mark-read command with explicit dependencies.
func NewMarkReadCmd(client markReadClient) *cobra.Command {
	if client == nil {
		panic("NewMarkReadCmd: client dependency cannot be nil")
	}

	var all bool

	markReadCmd := &cobra.Command{
		Use:   "mark-read <domain> [id]",
		Short: "Mark notifications as read",
		Long: `Mark a notification, or every notification of a feed, as read.

USAGE:
    appfeed mark-read <domain> <id>
    appfeed mark-read <domain> --all

OPTIONS:
    --all                Mark every notification of the feed read
    -h, --help           Show this help`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(c *cobra.Command, args []string) error {
			account, err := currentAccount()
			if err != nil {
				return err
			}
			scope := scopeFor(account, args[0])

			if all {
				if len(args) == 2 {
					return fmt.Errorf("mark-read: --all does not take an id")
				}
				n, err := client.MarkAllRead(c.Context(), scope)
				if err != nil {
					return fmt.Errorf("mark-read: %w", err)
				}
				colors.Success(fmt.Sprintf("Marked %d notifications read", n))
				return nil
			}

			if len(args) != 2 {
				return fmt.Errorf("mark-read: an id or --all is required")
			}
			id := args[1]
			if err := client.MarkRead(c.Context(), scope, id); err != nil {
				return fmt.Errorf("mark-read: %w", err)
			}
			colors.Success(fmt.Sprintf("Notification %s marked as read", id))
			return nil
		},
	}
	markReadCmd.Flags().BoolVar(&all, "all", false, "mark every notification of the feed read")

	return markReadCmd
}

func init() {
	cmd.RootCmd.AddCommand(NewMarkReadCmd(store))
}
