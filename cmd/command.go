// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/LeeDigitalWorks/storageclient/pkg/debug"
	"github.com/LeeDigitalWorks/storageclient/pkg/env"
	"github.com/LeeDigitalWorks/storageclient/pkg/logger"
	"github.com/LeeDigitalWorks/storageclient/pkg/utils"
)

var rootCmd = &cobra.Command{
	Use:   "storageclient",
	Short: "Client for the object storage service",
	Long: `storageclient uploads, downloads and lists objects in the storage service.
Large files are uploaded in parts, concurrently, with retries.`,
	SilenceUsage:      true,
	PersistentPreRunE: initialize,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&utils.ConfigurationFileDirectory, "config_dir", "", "Directory searched first for storageclient.{toml,yaml,json}")
	f.String("server_url", "", "Base URL of the storage service (env STORAGECLIENT_SERVER_URL)")
	f.String("api_key", "", "API key sent as X-API-Key (env STORAGECLIENT_API_KEY)")
	f.String("bearer_token", "", "OAuth2 access token sent as Authorization: Bearer (env STORAGECLIENT_BEARER_TOKEN)")
	f.Duration("timeout", 0, "HTTP client timeout (0 uses the default of 5m)")
	f.String("log_level", "", "Log level: debug, info, warn, error")
	f.Bool("log_json", false, "Log JSON instead of console output")
	f.String("debug_addr", "", "Serve /metrics and pprof on this address while the command runs")

	_ = viper.BindPFlags(f)
}

func initialize(cmd *cobra.Command, args []string) error {
	utils.LoadConfiguration("storageclient", false)
	flags := NewFlagLoader(cmd)
	env.Load()

	// Production defaults to JSON logs unless --log_json=false is passed
	jsonLogs := flags.Bool("log_json")
	if env.IsProduction() && !cmd.Flags().Changed("log_json") {
		jsonLogs = true
	}
	if jsonLogs {
		logger.SetOutput(os.Stderr, true)
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("environment", env.Env)
		scope.SetTag("command", cmd.CommandPath())
	})
	if lvl := flags.String("log_level"); lvl != "" {
		level, err := zerolog.ParseLevel(lvl)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
	}

	if addr := flags.String("debug_addr"); addr != "" {
		bound, _, err := debug.Serve(cmd.Context(), addr)
		if err != nil {
			return err
		}
		logger.Info().Str("addr", bound.String()).Msg("debug server started")
	}
	return nil
}

// Execute runs the CLI until the command finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
