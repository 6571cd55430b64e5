// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/LeeDigitalWorks/storageclient/pkg/apikey"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show who the configured API key belongs to",
	Long: `Decode the API key and print its claims. The signature is only checked
when --jwt_secret (or STORAGECLIENT_JWT_SECRET) is set.`,
	Args: cobra.NoArgs,
	RunE: runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	whoamiCmd.Flags().String("jwt_secret", "", "HMAC secret used to verify the key signature")
}

func runWhoami(cmd *cobra.Command, args []string) error {
	flags := NewFlagLoader(cmd)
	key := flags.String("api_key")
	if key == "" {
		return errors.New("--api_key is required")
	}

	var (
		id  *apikey.Identity
		err error
	)
	verified := false
	if secret := flags.String("jwt_secret"); secret != "" {
		id, err = apikey.Verify(key, []byte(secret))
		verified = err == nil
	} else {
		id, err = apikey.Inspect(key)
	}
	if err != nil {
		return err
	}

	now := time.Now()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Employee:   %s\n", id.EmployeeID)
	fmt.Fprintf(out, "Company:    %s\n", id.CompanyID)
	fmt.Fprintf(out, "Permission: %s\n", id.PermissionLevel)
	if id.Expired(now) {
		fmt.Fprintf(out, "Expires:    expired %s\n", humanize.Time(id.ExpiresAt))
	} else {
		fmt.Fprintf(out, "Expires:    %s (%s)\n", id.ExpiresAt.Format(time.RFC3339), humanize.Time(id.ExpiresAt))
	}
	fmt.Fprintf(out, "Verified:   %t\n", verified)
	return nil
}
