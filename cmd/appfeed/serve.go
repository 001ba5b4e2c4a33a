package main

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/cristianoliveira/appfeed/cmd"
	"github.com/cristianoliveira/appfeed/internal/config"
	"github.com/cristianoliveira/appfeed/internal/logging"
	"github.com/cristianoliveira/appfeed/internal/retention"
	"github.com/cristianoliveira/appfeed/internal/server"
	"github.com/cristianoliveira/appfeed/internal/storage"
)

type serveStore interface {
	server.Store
	retention.Cleaner
	Close() error
}

const serveCommandLong = `Serve the local database over the HTTP API.

USAGE:
    appfeed serve [OPTIONS]

Requests authenticate with a bearer token from "appfeed token". Read
notifications older than cleanup_days are removed on cleanup_schedule.

OPTIONS:
    --addr <host:port>   Listen address (default: listen_addr)
    --no-cleanup         Do not schedule the retention job
    -h, --help           Show this help`

// NewServeCmd creates the serve command with explicit dependencies.
func NewServeCmd(open func() (serveStore, error)) *cobra.Command {
	if open == nil {
		panic("NewServeCmd: open dependency cannot be nil")
	}

	var addr string
	var noCleanup bool

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve feeds over the HTTP API",
		Long:  serveCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			secret := config.Get("jwt_secret", "")
			if secret == "" {
				return fmt.Errorf("serve: jwt_secret is not configured")
			}
			if addr == "" {
				addr = config.Get("listen_addr", "127.0.0.1:8080")
			}

			logCfg := logging.FromGlobalConfig()
			logCfg.Enabled = true
			logCfg.Command = "serve"
			logCfg.Console = c.ErrOrStderr()
			logger, err := logging.Init(logCfg)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			if !config.GetBool("debug", false) {
				gin.SetMode(gin.ReleaseMode)
			}

			st, err := open()
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer st.Close()

			srv, err := server.New(st, server.Options{
				Secret:        secret,
				RatePerSecond: config.GetFloat("rate_limit_rps", 10),
				Burst:         config.GetInt("rate_limit_burst", 20),
				Logger:        logger,
			})
			if err != nil {
				return err
			}

			if !noCleanup {
				schedule := config.Get("cleanup_schedule", "@daily")
				job, err := retention.New(st, schedule, config.GetInt("cleanup_days", 30))
				if err != nil {
					return fmt.Errorf("serve: %w", err)
				}
				job.Start(c.Context())
				defer job.Stop()
				logger.Info("retention scheduled", "schedule", schedule, "next", job.Next(time.Now()).Format(time.RFC3339))
			}

			return srv.Run(c.Context(), addr)
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address")
	serveCmd.Flags().BoolVar(&noCleanup, "no-cleanup", false, "do not schedule the retention job")

	return serveCmd
}

func openLocalStore() (serveStore, error) {
	st, err := storage.OpenSQLite(config.Get("db_path", ""))
	if err != nil {
		return nil, err
	}
	return st, nil
}

func init() {
	cmd.RootCmd.AddCommand(NewServeCmd(openLocalStore))
}
