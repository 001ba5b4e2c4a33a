package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/appfeed/cmd"
	"github.com/cristianoliveira/appfeed/internal/colors"
	"github.com/cristianoliveira/appfeed/internal/domain"
)

type addClient interface {
	AddNotification(ctx context.Context, n domain.Notification) (domain.Notification, error)
}

const addCommandLong = `Send a notification to an application feed.

USAGE:
    appfeed add <domain> <body>... [OPTIONS]

OPTIONS:
    --title <text>       Notification title
    --type <type>        Notification type, selects the subscription image
    --url <url>          Link opened from the notification
    --id <id>            Explicit id (default: generated)
    -h, --help           Show this help`

// NewAddCmd creates the add command with explicit dependencies.
func NewAddCmd(client addClient) *cobra.Command {
	if client == nil {
		panic("NewAddCmd: client dependency cannot be nil")
	}

	var title, notificationType, link, id string

	addCmd := &cobra.Command{
		Use:   "add <domain> <body>...",
		Short: "Send a notification to an application feed",
		Long:  addCommandLong,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			account, err := currentAccount()
			if err != nil {
				return err
			}
			n := domain.Notification{
				ID:        id,
				Account:   account,
				AppDomain: args[0],
				Title:     title,
				Body:      strings.Join(args[1:], " "),
				Type:      notificationType,
				URL:       link,
				SentAt:    time.Now().UTC(),
			}
			added, err := client.AddNotification(c.Context(), n)
			if err != nil {
				return fmt.Errorf("add: %w", err)
			}
			colors.Success(fmt.Sprintf("Notification %s added to %s", added.ID, args[0]))
			return nil
		},
	}

	addCmd.Flags().StringVar(&title, "title", "", "notification title")
	addCmd.Flags().StringVar(&notificationType, "type", "", "notification type")
	addCmd.Flags().StringVar(&link, "url", "", "link opened from the notification")
	addCmd.Flags().StringVar(&id, "id", "", "explicit notification id")

	return addCmd
}

func init() {
	cmd.RootCmd.AddCommand(NewAddCmd(store))
}
