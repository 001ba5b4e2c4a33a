package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/appfeed/cmd"
	"github.com/cristianoliveira/appfeed/internal/config"
	"github.com/cristianoliveira/appfeed/internal/server"
)

type tokenIssuer func(secret, account string, ttl time.Duration) (string, error)

// NewTokenCmd creates the token command with explicit dependencies.
func NewTokenCmd(issue tokenIssuer) *cobra.Command {
	if issue == nil {
		panic("NewTokenCmd: issuer dependency cannot be nil")
	}

	var ttl time.Duration

	tokenCmd := &cobra.Command{
		Use:   "token [account]",
		Short: "Issue an API token for an account",
		Long: `Issue a bearer token for the HTTP API, signed with jwt_secret.

USAGE:
    appfeed token [account] [OPTIONS]

Without an account the configured account is used. Put the token in
server_token on the client machine.

OPTIONS:
    --ttl <duration>     Token lifetime, e.g. 720h (default: jwt_ttl_hours)
    -h, --help           Show this help`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			secret := config.Get("jwt_secret", "")
			if secret == "" {
				return fmt.Errorf("token: jwt_secret is not configured")
			}
			account := config.Get("account", "")
			if len(args) == 1 {
				account = args[0]
			}
			if ttl <= 0 {
				ttl = config.GetDuration("jwt_ttl_hours", time.Hour, 24*time.Hour)
			}
			tok, err := issue(secret, account, ttl)
			if err != nil {
				return fmt.Errorf("token: %w", err)
			}
			fmt.Fprintln(c.OutOrStdout(), tok)
			return nil
		},
	}
	tokenCmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime")

	return tokenCmd
}

func init() {
	cmd.RootCmd.AddCommand(NewTokenCmd(server.IssueToken))
}
