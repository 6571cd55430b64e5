// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	"github.com/LeeDigitalWorks/storageclient/pkg/logger"
)

// ConfigurationFileDirectory is searched before the default locations
var ConfigurationFileDirectory string

// ConfigPaths lists the directories searched for a config file, in order
func ConfigPaths() []string {
	paths := []string{}
	if ConfigurationFileDirectory != "" {
		paths = append(paths, ResolvePath(ConfigurationFileDirectory))
	}
	return append(paths, ".", "$HOME/.storageclient", "/etc/storageclient/")
}

// LoadConfiguration merges configFileName into viper. Environment variables
// override file values, with "." in keys read as "_". It returns false when no
// file was found or it could not be read.
func LoadConfiguration(configFileName string, required bool) bool {
	viper.SetConfigName(configFileName)
	for _, p := range ConfigPaths() {
		viper.AddConfigPath(p)
	}
	viper.SetEnvPrefix("STORAGECLIENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if required {
				logger.Fatal().Msgf("Config file not found: %s", configFileName)
			}
			logger.Debug().Msgf("Config file not found: %s", configFileName)
			return false
		}

		if required {
			logger.Fatal().Err(err).Msgf("Failed to load required config file: %s", configFileName)
		}
		logger.Warn().Err(err).Msgf("Failed to load config file: %s", configFileName)
		return false
	}
	logger.Debug().Msgf("Loaded config file: %s", viper.ConfigFileUsed())

	return true
}
