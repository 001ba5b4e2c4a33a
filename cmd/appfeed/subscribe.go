package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/appfeed/cmd"
	"github.com/cristianoliveira/appfeed/internal/colors"
	"github.com/cristianoliveira/appfeed/internal/domain"
)

type subscribeClient interface {
	UpsertSubscription(ctx context.Context, account string, sub domain.Subscription) error
}

const subscribeCommandLong = `Create or update the subscription to an application.

USAGE:
    appfeed subscribe <domain> [OPTIONS]

OPTIONS:
    --name <name>            Display name shown in the feed header
    --description <text>     Short description
    --icon <url>             Icon URL, repeatable
    --scope <type>=<url>     Notification type and its image, repeatable
    -h, --help               Show this help`

// NewSubscribeCmd creates the subscribe command with explicit dependencies.
func NewSubscribeCmd(client subscribeClient) *cobra.Command {
	if client == nil {
		panic("NewSubscribeCmd: client dependency cannot be nil")
	}

	var name, description string
	var icons, scopes []string

	subscribeCmd := &cobra.Command{
		Use:   "subscribe <domain>",
		Short: "Subscribe to an application",
		Long:  subscribeCommandLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			account, err := currentAccount()
			if err != nil {
				return err
			}
			scope, err := parseScopes(scopes)
			if err != nil {
				return fmt.Errorf("subscribe: %w", err)
			}
			sub := domain.Subscription{
				AppDomain:   args[0],
				Name:        name,
				Description: description,
				Icons:       icons,
				Scope:       scope,
			}
			if err := sub.Validate(); err != nil {
				return fmt.Errorf("subscribe: %w", err)
			}
			if err := client.UpsertSubscription(c.Context(), account, sub); err != nil {
				return fmt.Errorf("subscribe: %w", err)
			}
			colors.Success(fmt.Sprintf("Subscribed to %s", sub.DisplayName()))
			return nil
		},
	}

	subscribeCmd.Flags().StringVar(&name, "name", "", "display name")
	subscribeCmd.Flags().StringVar(&description, "description", "", "short description")
	subscribeCmd.Flags().StringArrayVar(&icons, "icon", nil, "icon URL")
	subscribeCmd.Flags().StringArrayVar(&scopes, "scope", nil, "notification type and image as type=url")

	return subscribeCmd
}

// parseScopes turns type=url pairs into scope entries keyed by type.
func parseScopes(pairs []string) (map[string]domain.ScopeEntry, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	scope := make(map[string]domain.ScopeEntry, len(pairs))
	for _, pair := range pairs {
		notificationType, image, ok := strings.Cut(pair, "=")
		notificationType = strings.TrimSpace(notificationType)
		if !ok || notificationType == "" {
			return nil, fmt.Errorf("invalid --scope %q: want type=url", pair)
		}
		scope[notificationType] = domain.ScopeEntry{
			Name:      notificationType,
			ImageURLs: domain.ImageURLs{MD: strings.TrimSpace(image)},
		}
	}
	return scope, nil
}

func init() {
	cmd.RootCmd.AddCommand(NewSubscribeCmd(store))
}
