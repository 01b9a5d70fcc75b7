// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// useDotEnv loads environment variables from a .env file, checking
// the current working directory, then the directory of the binary.
//
// Missing files are not an error.
func useDotEnv() error {
	candidates := make([]string, 0, 2)

	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, ".env"))
	} else {
		log.Warn().Err(err).Msg("Could not get current working directory")
	}

	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), ".env"))
	}

	for _, envPath := range candidates {
		// #nosec G304 - envPath is built from the working directory or the binary location
		data, err := os.ReadFile(envPath)
		if os.IsNotExist(err) {
			continue
		}

		if err != nil {
			log.Warn().Err(err).Str("path", envPath).Msg("Could not read .env file")

			continue
		}

		applyDotEnv(envPath, data)

		return nil
	}

	log.Info().Msg("No .env file found, skipping")

	return nil
}

// applyDotEnv sets every variable from data that is not already present in the environment.
func applyDotEnv(envPath string, data []byte) {
	values, badLines := parseDotEnv(data)

	for _, line := range badLines {
		log.Warn().
			Str("path", envPath).
			Int("line", line).
			Msg("Invalid format in .env file")
	}

	for key, value := range values {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}

		if err := os.Setenv(key, value); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Could not set environment variable")
		}
	}

	log.Info().
		Str("path", envPath).
		Int("count", len(values)).
		Msg("Loaded configuration from .env file")
}

// parseDotEnv parses KEY=VALUE lines, skipping blanks and # comments.
//
// Values wrapped in matching single or double quotes are unquoted.
// It returns the 1-based numbers of lines that could not be parsed.
func parseDotEnv(data []byte) (map[string]string, []int) {
	values := make(map[string]string)

	var badLines []int

	for i, rawLine := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))

		if !ok || key == "" {
			badLines = append(badLines, i+1)

			continue
		}

		value = strings.TrimSpace(value)
		if len(value) >= 2 && value[0] == value[len(value)-1] && (value[0] == '"' || value[0] == '\'') {
			value = value[1 : len(value)-1]
		}

		values[key] = value
	}

	return values, badLines
}
