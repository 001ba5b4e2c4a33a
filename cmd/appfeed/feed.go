package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/appfeed/cmd"
	"github.com/cristianoliveira/appfeed/internal/config"
	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/tui/app"
	"github.com/cristianoliveira/appfeed/internal/tui/state"
)

const feedCommandLong = `Open the interactive feed of an application.

USAGE:
    appfeed feed [domain] [OPTIONS]

Without a domain the first subscription is opened.

OPTIONS:
    --page-size <n>      Notifications per page (default: page_size)
    -h, --help           Show this help

KEY BINDINGS:
    j/k         Move up/down
    g/G         Jump to top/bottom
    enter       Mark the selected notification read
    A           Mark every notification read
    r           Reload from the first page
    tab         Switch to the next subscription
    q           Quit`

// NewFeedCmd creates the feed command with explicit dependencies.
func NewFeedCmd(backend domain.FeedBackend, tui app.Client) *cobra.Command {
	if backend == nil || tui == nil {
		panic("NewFeedCmd: dependencies cannot be nil")
	}

	var pageSize int

	feedCmd := &cobra.Command{
		Use:   "feed [domain]",
		Short: "Open the interactive feed of an application",
		Long:  feedCommandLong,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			account, err := currentAccount()
			if err != nil {
				return err
			}
			appDomain := ""
			if len(args) == 1 {
				appDomain = args[0]
			} else {
				subs, err := backend.ListSubscriptions(c.Context(), account)
				if err != nil {
					return fmt.Errorf("feed: %w", err)
				}
				if len(subs) == 0 {
					return fmt.Errorf("feed: no subscriptions yet, run appfeed subscribe <domain> first")
				}
				appDomain = subs[0].AppDomain
			}
			if pageSize <= 0 {
				pageSize = config.GetInt("page_size", domain.DefaultPageSize)
			}

			model, err := tui.CreateModel(state.Options{
				Account:  account,
				Domain:   appDomain,
				PageSize: pageSize,
				Backend:  backend,
				Context:  c.Context(),
			})
			if err != nil {
				return fmt.Errorf("feed: %w", err)
			}
			return tui.RunProgram(model)
		},
	}
	feedCmd.Flags().IntVar(&pageSize, "page-size", 0, "notifications per page")

	return feedCmd
}

func init() {
	cmd.RootCmd.AddCommand(NewFeedCmd(store, app.NewDefaultClient(nil)))
}
