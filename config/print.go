// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

const redactedValue = "[redacted]"

// Redacted returns a shallow copy of cfg with secrets replaced by a marker.
func (cfg *ServerConfig) Redacted() ServerConfig {
	printable := *cfg

	if printable.Basic.Secret != "" {
		printable.Basic.Secret = redactedValue
	}

	if printable.Gemini.APIKey != "" {
		printable.Gemini.APIKey = redactedValue
	}

	return printable
}

func (cfg *ServerConfig) print() {
	log.Info().
		Str("version", BuildVersion).
		Str("revision", cfg.Build.Revision()).
		Str("cacheid", cfg.Instance.FileServerCacheID).
		Str("backend", string(cfg.Frontend.Backend)).
		Int("fields", cfg.Frontend.Fields).
		Msg("Starting Plae")

	configYAML, err := yaml.MarshalWithOptions(cfg.Redacted(), GetDurationEncoderOption())
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal config to YAML for printing")

		return
	}

	log.Info().Msg("Application configuration:")
	fmt.Fprintln(os.Stderr, string(configYAML))
}
