// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/LeeDigitalWorks/storageclient/pkg/logger"
	"github.com/LeeDigitalWorks/storageclient/pkg/s3client"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy objects from an S3 bucket into the storage service",
	Long: `Copy every object under --prefix in an S3-compatible bucket. Source
credentials come from the --s3_* flags, the [s3] config section, or the
default AWS credential chain.

Examples:
  storageclient import --bucket photos --prefix 2024/ --dest_prefix archive/
  storageclient import --bucket photos --s3_endpoint http://localhost:9000 --s3_path_style --dry_run`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	f := importCmd.Flags()
	f.String("s3_endpoint", "", "S3 endpoint (default: AWS)")
	f.String("s3_region", "", "S3 region (default: us-east-1)")
	f.String("s3_access_key_id", "", "S3 access key id")
	f.String("s3_secret_access_key", "", "S3 secret access key")
	f.Bool("s3_path_style", false, "Use path-style bucket addressing")

	f.String("bucket", "", "Source bucket (required)")
	f.String("prefix", "", "Only import keys under this prefix")
	f.String("dest_prefix", "", "Prepend this to every destination key")
	f.Bool("strip_prefix", false, "Remove --prefix from destination keys")
	f.String("visibility", "", "INTERNAL, PRIVATE or PUBLIC")
	f.Int("parallel_objects", 4, "Objects copied at once")
	f.Bool("continue_on_error", false, "Keep going when an object fails")
	f.Bool("dry_run", false, "List what would be imported without copying")
	addTransferFlags(importCmd)
}

// s3Config reads the source config from the [s3] section, then applies flags
func s3Config(cmd *cobra.Command) (*s3client.Config, error) {
	var cfg s3client.Config
	if err := viper.UnmarshalKey("s3", &cfg); err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}
	f := cmd.Flags()
	set := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	set("s3_endpoint", &cfg.Endpoint)
	set("s3_region", &cfg.Region)
	set("s3_access_key_id", &cfg.AccessKeyID)
	set("s3_secret_access_key", &cfg.SecretAccessKey)
	if f.Changed("s3_path_style") {
		cfg.PathStyle, _ = f.GetBool("s3_path_style")
	}
	return &cfg, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	bucket, _ := f.GetString("bucket")
	if bucket == "" {
		return errors.New("--bucket is required")
	}
	vis, err := visibilityFlag(cmd)
	if err != nil {
		return err
	}
	s3cfg, err := s3Config(cmd)
	if err != nil {
		return err
	}
	client, err := newTransferClient(cmd)
	if err != nil {
		return err
	}

	pool := s3client.NewPool(0, 0)
	defer pool.Close()
	s3c, err := pool.Client(cmd.Context(), s3cfg)
	if err != nil {
		return err
	}

	opts := s3client.ImportOptions{Visibility: vis}
	opts.Prefix, _ = f.GetString("prefix")
	opts.DestPrefix, _ = f.GetString("dest_prefix")
	opts.StripPrefix, _ = f.GetBool("strip_prefix")
	opts.Concurrency, _ = f.GetInt("parallel_objects")
	opts.ContinueOnError, _ = f.GetBool("continue_on_error")
	opts.DryRun, _ = f.GetBool("dry_run")

	logger.Info().
		Str("bucket", bucket).
		Str("prefix", opts.Prefix).
		Bool("dry_run", opts.DryRun).
		Msg("starting import")

	start := time.Now()
	stats, err := s3client.NewImporter(s3client.NewSource(s3c, bucket), client).Run(cmd.Context(), opts)

	verb := "Imported"
	if opts.DryRun {
		verb = "Would import"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d objects (%s) in %s\n",
		verb, stats.Objects, humanize.Bytes(uint64(stats.Bytes)), time.Since(start).Round(time.Millisecond))
	if stats.Failed > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "  Failed:  %d\n", stats.Failed)
	}
	if stats.Skipped > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "  Skipped: %d\n", stats.Skipped)
	}
	return err
}
