// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

// readYAML merges the YAML file at path into cfg. A missing file is skipped.
// Unknown keys are rejected, so a misspelled setting is reported instead of
// silently keeping its default.
func (cfg *ServerConfig) readYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path of the configuration file
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Info().
			Str("path", path).
			Msg("No YAML configuration file found, skipping")

		return nil
	case err != nil:
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
		log.Error().
			Str("path", path).
			Msg("Invalid configuration file:\n" + yaml.FormatError(err, false, true))

		return fmt.Errorf("failed to parse YAML from %s: %w", path, err)
	}

	log.Info().
		Str("path", path).
		Msg("Loaded configuration file")

	return nil
}
