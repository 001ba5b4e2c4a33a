package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/appfeed/cmd"
	"github.com/cristianoliveira/appfeed/internal/colors"
	"github.com/cristianoliveira/appfeed/internal/config"
	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/feed"
	"github.com/cristianoliveira/appfeed/internal/format"
)

type listClient interface {
	FetchPage(ctx context.Context, req domain.PageRequest) (domain.Page, error)
}

const listCommandLong = `List the notifications of an application, split into
the Unread and Latest sections.

USAGE:
    appfeed list <domain> [OPTIONS]

OPTIONS:
    --pages <n>          Pages to fetch, 0 fetches everything (default: 1)
    --page-size <n>      Notifications per page (default: page_size)
    --format=<format>    Output format: simple (default), table, json, yaml
    --unread-only        Only print the Unread section
    --type <type>        Only print notifications of this type
    --search <text>      Only print notifications whose title or body contains text
    --newer-than <days>  Only print notifications sent in the last N days
    -h, --help           Show this help`

// NewListCmd creates the list command with explicit dependencies.
func NewListCmd(client listClient) *cobra.Command {
	if client == nil {
		panic("NewListCmd: client dependency cannot be nil")
	}

	var pages int
	var pageSize int
	var listFormat string
	var unreadOnly bool
	var filterOpts domain.FilterOptions

	listCmd := &cobra.Command{
		Use:   "list <domain>",
		Short: "List the notifications of an application",
		Long:  listCommandLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if pages < 0 {
				return fmt.Errorf("list: --pages must be >= 0")
			}
			if listFormat == "" {
				listFormat = config.Get("list_format", string(format.FormatterTypeSimple))
			}
			ftype, err := format.ParseType(listFormat)
			if err != nil {
				return fmt.Errorf("list: %w", err)
			}
			filter, err := filterOpts.ToFilter(time.Now())
			if err != nil {
				return fmt.Errorf("list: %w", err)
			}
			account, err := currentAccount()
			if err != nil {
				return err
			}
			if pageSize <= 0 {
				pageSize = config.GetInt("page_size", domain.DefaultPageSize)
			}

			f := feed.New(scopeFor(account, args[0]), pageSize)
			if err := f.Collect(c.Context(), client, pages); err != nil {
				return fmt.Errorf("list: %w", err)
			}
			state := f.State()
			state.Unread = domain.FilterNotifications(state.Unread, filter)
			state.Latest = domain.FilterNotifications(state.Latest, filter)
			if unreadOnly {
				state.Latest = nil
			}
			if err := format.NewFormatter(ftype).FormatFeed(state, c.OutOrStdout()); err != nil {
				return fmt.Errorf("list: %w", err)
			}
			if f.HasMore() {
				colors.LogInfo("more notifications available, use --pages 0 to fetch all")
			}
			return nil
		},
	}

	listCmd.Flags().IntVar(&pages, "pages", 1, "pages to fetch, 0 for all")
	listCmd.Flags().IntVar(&pageSize, "page-size", 0, "notifications per page")
	listCmd.Flags().StringVar(&listFormat, "format", "", "output format: simple, table, json, yaml")
	listCmd.Flags().BoolVar(&unreadOnly, "unread-only", false, "only print the Unread section")
	listCmd.Flags().StringVar(&filterOpts.Type, "type", "", "only print notifications of this type")
	listCmd.Flags().StringVar(&filterOpts.Search, "search", "", "only print notifications containing text")
	listCmd.Flags().IntVar(&filterOpts.NewerThan, "newer-than", 0, "only print notifications sent in the last N days")

	return listCmd
}

func init() {
	cmd.RootCmd.AddCommand(NewListCmd(store))
}
