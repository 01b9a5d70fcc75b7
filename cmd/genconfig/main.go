// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command genconfig writes the example configuration files under deploy/.
package main

import (
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	"codeberg.org/plae/plae/config"
	"codeberg.org/plae/plae/core/audit"
)

const (
	envOutputFile  = "deploy/.env.example"
	yamlOutputFile = "deploy/config.yaml.example"
	filePerm       = 0o644

	placeholderAPIKey = "your-gemini-api-key"

	envFileHeader = `# Plae configuration (via environment variables)
#
# Copy this file to .env and customize the values below.
#
# Generate PLAE_SECRET with: openssl rand -hex 64
#
# This file was auto-generated using go run ./cmd/genconfig.

`
	yamlFileHeader = `# Plae configuration (via configuration file)
#
# Copy this file to config.yaml and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.
`
	proxySettingsComment = `
## Network proxy settings for outbound translation requests
## ref: https://pkg.go.dev/net/http#ProxyFromEnvironment
# HTTPS_PROXY=
# HTTP_PROXY=`

	apiKeyYAMLComment = `  # -- Needed by /api/translate and the gemini backend
  # ref: https://ai.google.dev/gemini-api/docs/api-key`
)

// essentialEnvVars are written uncommented.
var essentialEnvVars = []string{"PLAE_HOST", "PLAE_PORT", "PLAE_BACKEND"}

func main() {
	audit.SetDefaultLogger()
	generateEnvFile()
	generateYAMLFile()
}

// generateEnvFile generates the deploy/.env.example file.
func generateEnvFile() {
	cfg := &config.ServerConfig{}
	cfg.SetDefaults()

	var sb strings.Builder
	sb.WriteString(envFileHeader)

	val := reflect.ValueOf(*cfg)
	typ := val.Type()

	// Iterate over the top-level struct fields.
	for i := range typ.NumField() {
		structField := typ.Field(i)
		structValue := val.Field(i)

		if structValue.Kind() != reflect.Struct || structField.Name == "Build" {
			continue
		}

		fmt.Fprintf(&sb, "## %s\n", structField.Name)

		innerTyp := structValue.Type()
		for j := range innerTyp.NumField() {
			tag, ok := innerTyp.Field(j).Tag.Lookup("env")
			if !ok {
				continue
			}

			writeEnvLine(&sb, strings.Split(tag, ",")[0], structValue.Field(j))
		}

		sb.WriteString("\n")
	}

	sb.WriteString(strings.TrimSpace(proxySettingsComment) + "\n\n")

	if err := os.WriteFile(envOutputFile, []byte(sb.String()), filePerm); err != nil {
		log.Fatal().Err(err).Str("path", envOutputFile).Msg("Failed to write .env.example file")
	}

	log.Info().Str("path", envOutputFile).Msg("Successfully generated .env.example")
}

func writeEnvLine(sb *strings.Builder, envVarName string, value reflect.Value) {
	switch {
	case envVarName == "PLAE_GEMINI_API_KEY":
		fmt.Fprintf(sb, "# %s=\"%s\"\n", envVarName, placeholderAPIKey)
	case envVarName == "PLAE_GEMINI_INSTRUCTION":
		// too long for one line, and the default is fine
		fmt.Fprintf(sb, "# %s=\n", envVarName)
	case slices.Contains(essentialEnvVars, envVarName):
		fmt.Fprintf(sb, "%s=\"%v\"\n", envVarName, value.Interface())
	case value.Kind() == reflect.Slice || (value.Kind() == reflect.String && value.Len() == 0):
		// prompt for a value
		fmt.Fprintf(sb, "# %s=\n", envVarName)
	default:
		fmt.Fprintf(sb, "# %s=%v\n", envVarName, value.Interface())
	}
}

// generateYAMLFile generates the deploy/config.yaml.example file.
func generateYAMLFile() {
	cfg := &config.ServerConfig{}
	cfg.SetDefaults()

	cfg.Gemini.APIKey = placeholderAPIKey

	var yamlContent strings.Builder

	encoderOpts := []yaml.EncodeOption{
		config.GetDurationEncoderOption(),
		yaml.Indent(2),
	}
	if err := yaml.NewEncoder(&yamlContent, encoderOpts...).Encode(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal config to YAML")
	}

	var sb strings.Builder
	sb.WriteString(yamlFileHeader)

	// Process the marshaled YAML line-by-line to create a clean template.
	for line := range strings.SplitSeq(yamlContent.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Top-level keys (e.g., "gemini:") are treated as section headers.
		if !strings.HasPrefix(line, " ") {
			fmt.Fprintf(&sb, "\n%s\n", line)

			continue
		}

		// Keep the API key uncommented so it stands out.
		if strings.HasPrefix(trimmed, "apiKey:") {
			sb.WriteString(apiKeyYAMLComment + "\n")
			sb.WriteString(line + "\n")

			continue
		}

		indentSize := len(line) - len(strings.TrimLeft(line, " "))
		fmt.Fprintf(&sb, "%s# %s\n", strings.Repeat(" ", indentSize), trimmed)
	}

	if err := os.WriteFile(yamlOutputFile, []byte(sb.String()), filePerm); err != nil {
		log.Fatal().Err(err).Str("path", yamlOutputFile).Msg("Failed to write config file")
	}

	log.Info().Str("path", yamlOutputFile).Msg("Successfully generated config.yaml.example")
}
