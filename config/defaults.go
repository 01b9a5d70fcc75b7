// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

const (
	// DefaultGeminiEndpoint is the base URL of the generative-language API.
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultGeminiInstruction is prepended to the source HTML in every prompt.
	DefaultGeminiInstruction = "Translate the following Thai HTML into natural English. " +
		"Keep every HTML tag and its formatting (bold, italic) exactly where it applies. " +
		"Reply with the translated HTML only, without explanations or code fences."

	// Default inbound request budget for the limiter, per client network.
	defaultLimiterRate  = 1.0
	defaultLimiterBurst = 30
)

// SetDefaults populates the configuration with default values.
func (cfg *ServerConfig) SetDefaults() {
	cfg.Basic.Host = "localhost"
	cfg.Basic.Port = "8080"

	cfg.Frontend.Fields = 1
	cfg.Frontend.Backend = ServiceBackend

	cfg.Service.URL = "http://localhost:8080/api/translate"
	cfg.Service.Timeout = 0

	cfg.Gemini.Model = "gemini-2.0-flash"
	cfg.Gemini.Endpoint = DefaultGeminiEndpoint
	cfg.Gemini.Instruction = DefaultGeminiInstruction

	cfg.Instance.RepoURL = "https://codeberg.org/plae/plae"

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"

	cfg.Limiter.Enabled = false
	cfg.Limiter.IPv4Prefix = 24
	cfg.Limiter.IPv6Prefix = 48
	cfg.Limiter.Rate = defaultLimiterRate
	cfg.Limiter.Burst = defaultLimiterBurst

	cfg.Internationalization.StrictMissingKeys = false
}
