// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/LeeDigitalWorks/storageclient/pkg/apikey"
	"github.com/LeeDigitalWorks/storageclient/pkg/debug"
	"github.com/LeeDigitalWorks/storageclient/pkg/logger"
	"github.com/LeeDigitalWorks/storageclient/pkg/storageapi"
	"github.com/LeeDigitalWorks/storageclient/pkg/transfer"
)

var (
	metricsOnce     sync.Once
	pipelineMetrics *storageapi.PipelineMetrics
	transferMetrics *transfer.Metrics
)

func registerMetrics() {
	metricsOnce.Do(func() {
		pipelineMetrics = storageapi.NewPipelineMetrics()
		if err := pipelineMetrics.Register(debug.Registry()); err != nil {
			logger.Debug().Err(err).Msg("failed to register pipeline metrics")
		}
		transferMetrics = transfer.NewMetrics()
		if err := transferMetrics.Register(debug.Registry()); err != nil {
			logger.Debug().Err(err).Msg("failed to register transfer metrics")
		}
	})
}

// newConfiguration builds the SDK configuration from flags, env and config file
func newConfiguration(cmd *cobra.Command, requireKey bool) (*storageapi.Configuration, error) {
	flags := NewFlagLoader(cmd)
	serverURL := flags.String("server_url")
	if serverURL == "" {
		return nil, errors.New("--server_url is required")
	}
	key := flags.String("api_key")
	bearer := flags.String("bearer_token")
	if requireKey && key == "" && bearer == "" {
		return nil, errors.New("--api_key is required")
	}
	if key != "" {
		warnIfExpired(key)
	}

	registerMetrics()
	httpClient := storageapi.NewHTTPClient(storageapi.HTTPClientConfig{Timeout: flags.Duration("timeout")})

	opts := []storageapi.ConfigOption{
		storageapi.WithTransport(storageapi.NewHTTPTransport(httpClient)),
		storageapi.WithMetrics(pipelineMetrics),
		storageapi.WithMiddleware(
			storageapi.RequestIDMiddleware(),
			storageapi.UserAgentMiddleware(UserAgent()),
			storageapi.LoggingMiddleware(),
		),
	}
	if key != "" {
		opts = append(opts, storageapi.WithAPIKey(key))
	}
	if bearer != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: bearer, TokenType: "Bearer"})
		opts = append(opts, storageapi.WithDefaultAuth(&storageapi.OAuth2Auth{
			Source: oauth2.ReuseTokenSource(nil, src),
		}))
	}
	return storageapi.NewConfiguration(serverURL, opts...)
}

func newAPI(cmd *cobra.Command) (*storageapi.DefaultAPI, error) {
	cfg, err := newConfiguration(cmd, true)
	if err != nil {
		return nil, err
	}
	return storageapi.NewDefaultAPI(cfg), nil
}

func newTransferClient(cmd *cobra.Command) (*transfer.Client, error) {
	cfg, err := newConfiguration(cmd, true)
	if err != nil {
		return nil, err
	}
	flags := NewFlagLoader(cmd)
	partSize, err := flags.Bytes("part_size")
	if err != nil {
		return nil, err
	}
	return transfer.NewClient(storageapi.NewDefaultAPI(cfg), transfer.Config{
		BaseURL:        cfg.Server.URL,
		PartSize:       partSize,
		Concurrency:    flags.Int("concurrency"),
		PartsPerSecond: flags.Float64("parts_per_second"),
	}, transfer.WithMetrics(transferMetrics))
}

func warnIfExpired(key string) {
	id, err := apikey.Inspect(key)
	if err != nil {
		logger.Debug().Err(err).Msg("api key is not an inspectable JWT")
		return
	}
	if id.Expired(time.Now()) {
		logger.Warn().
			Time("expired_at", id.ExpiresAt).
			Msg("api key has expired; requests will be rejected")
	}
}

// addTransferFlags registers the upload tuning flags on cmd
func addTransferFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("part_size", "", "Part size for multipart uploads, e.g. 10MiB (max 100MiB)")
	f.Int("concurrency", transfer.DefaultConcurrency, "Parts uploaded at once")
	f.Float64("parts_per_second", 0, "Limit on part uploads started per second (0 = unlimited)")
}
