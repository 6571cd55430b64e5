// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package env

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	Local      = "local"
	Production = "production"
	Testing    = "testing"
)

// Env is the environment the CLI runs in. It stays Local until Load is called.
var Env = Local

// Load reads "env" from viper (STORAGECLIENT_ENV or the config file)
func Load() string {
	if v := strings.ToLower(strings.TrimSpace(viper.GetString("env"))); v != "" {
		Env = v
	}
	return Env
}

func IsLocal() bool {
	return Env == Local
}

func IsProduction() bool {
	return Env == Production
}

func IsTesting() bool {
	return Env == Testing
}
