package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/appfeed/cmd"
	"github.com/cristianoliveira/appfeed/internal/config"
	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/format"
)

type subscriptionsClient interface {
	ListSubscriptions(ctx context.Context, account string) ([]domain.Subscription, error)
}

// NewSubscriptionsCmd creates the subscriptions command with explicit dependencies.
func NewSubscriptionsCmd(client subscriptionsClient) *cobra.Command {
	if client == nil {
		panic("NewSubscriptionsCmd: client dependency cannot be nil")
	}

	var listFormat string

	subscriptionsCmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "List subscribed applications",
		Long: `List the applications the account is subscribed to.

USAGE:
    appfeed subscriptions [OPTIONS]

OPTIONS:
    --format=<format>    Output format: simple (default), table, json, yaml
    -h, --help           Show this help`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if listFormat == "" {
				listFormat = config.Get("list_format", string(format.FormatterTypeSimple))
			}
			ftype, err := format.ParseType(listFormat)
			if err != nil {
				return fmt.Errorf("subscriptions: %w", err)
			}
			account, err := currentAccount()
			if err != nil {
				return err
			}
			subs, err := client.ListSubscriptions(c.Context(), account)
			if err != nil {
				return fmt.Errorf("subscriptions: %w", err)
			}
			return format.NewFormatter(ftype).FormatSubscriptions(subs, c.OutOrStdout())
		},
	}
	subscriptionsCmd.Flags().StringVar(&listFormat, "format", "", "output format: simple, table, json, yaml")

	return subscriptionsCmd
}

func init() {
	cmd.RootCmd.AddCommand(NewSubscriptionsCmd(store))
}
