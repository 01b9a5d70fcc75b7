// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"regexp"
	"strconv"

	"github.com/rs/zerolog/log"

	"codeberg.org/plae/plae/core/authenticated"
	"codeberg.org/plae/plae/server/utils"
)

const maxFields = 20

// validation errors.
var (
	errUnixSocketInvalidPermissions = errors.New("invalid Basic.UnixSocketPermissions value")
	errUnixSocketUserDoesNotExist   = errors.New("user does not exist")
	errUnixSocketGroupDoesNotExist  = errors.New("group does not exist")
	errInvalidBackend               = errors.New("invalid Frontend.Backend value, expected 'service' or 'gemini'")
	errInvalidFields                = fmt.Errorf("Frontend.Fields must be between 1 and %d", maxFields)
	errNegativeTimeout              = errors.New("Service.Timeout cannot be negative")
	errEmptyGeminiModel             = errors.New("Gemini.Model cannot be empty")
	errInvalidIPv4Prefix            = errors.New("IPv4 prefix must be between 0 and 32")
	errInvalidIPv6Prefix            = errors.New("IPv6 prefix must be between 0 and 128")
	errInvalidLimiterRate           = errors.New("Limiter.Rate and Limiter.Burst must be positive")
)

var (
	fileModeOctalRegexp  = regexp.MustCompile(`^0?[0-7]{3}$`)
	fileModeStringRegexp = regexp.MustCompile(`^(?:[r-][w-][x-]){3}$`)
	digitsRegexp         = regexp.MustCompile(`^[0-9]+$`)
)

// validateAndSet validates the server configuration and populates some fields.
func (cfg *ServerConfig) validateAndSet() error {
	if err := cfg.validateListener(); err != nil {
		return err
	}

	if err := cfg.loadSecret(); err != nil {
		return err
	}

	switch cfg.Frontend.Backend {
	case ServiceBackend, GeminiBackend:
	default:
		return errInvalidBackend
	}

	if cfg.Frontend.Fields < 1 || cfg.Frontend.Fields > maxFields {
		return errInvalidFields
	}

	if cfg.Frontend.Backend == ServiceBackend {
		serviceURL, err := utils.ParseURL(cfg.Service.URL, "Service")
		if err != nil {
			return fmt.Errorf("invalid service URL: %w", err)
		}

		cfg.Service.URL = serviceURL.String()
	}

	if cfg.Service.Timeout < 0 {
		return errNegativeTimeout
	}

	if cfg.Gemini.Model == "" {
		return errEmptyGeminiModel
	}

	geminiURL, err := utils.ParseURL(cfg.Gemini.Endpoint, "Gemini")
	if err != nil {
		return fmt.Errorf("invalid Gemini endpoint: %w", err)
	}

	cfg.Gemini.Endpoint = geminiURL.String()

	if cfg.Gemini.Instruction == "" {
		cfg.Gemini.Instruction = DefaultGeminiInstruction
	}

	// A missing key is reported to the user on every translation attempt instead.
	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("No Gemini API key configured; /api/translate and the gemini backend will report an error")
	}

	if _, err := utils.ParsePrefixes(cfg.Basic.TrustedProxies); err != nil {
		return fmt.Errorf("invalid Basic.TrustedProxies: %w", err)
	}

	repoURL, err := utils.ParseURL(cfg.Instance.RepoURL, "Repo")
	if err != nil {
		return fmt.Errorf("invalid repo URL: %w", err)
	}

	cfg.Instance.RepoURL = repoURL.String()

	// Skip validating Limiter configuration if it's not enabled
	if !cfg.Limiter.Enabled {
		return nil
	}

	if cfg.Limiter.IPv4Prefix < 0 || cfg.Limiter.IPv4Prefix > 32 {
		return errInvalidIPv4Prefix
	}

	if cfg.Limiter.IPv6Prefix < 0 || cfg.Limiter.IPv6Prefix > 128 {
		return errInvalidIPv6Prefix
	}

	if cfg.Limiter.Rate <= 0 || cfg.Limiter.Burst <= 0 {
		return errInvalidLimiterRate
	}

	if _, err := utils.ParsePrefixes(cfg.Limiter.PassIPs); err != nil {
		return fmt.Errorf("invalid Limiter.PassIPs: %w", err)
	}

	if _, err := utils.ParsePrefixes(cfg.Limiter.BlockIPs); err != nil {
		return fmt.Errorf("invalid Limiter.BlockIPs: %w", err)
	}

	return nil
}

// loadSecret loads the form token key, generating a throwaway one when none is set.
func (cfg *ServerConfig) loadSecret() error {
	if cfg.Basic.Secret == "" {
		log.Warn().Msg("No secret configured; generated a temporary key, so open forms stop working after a restart")

		return PasetoValidator.LoadSecretKeyFromHex(authenticated.NewSecretKeyHex())
	}

	if err := PasetoValidator.LoadSecretKeyFromHex(cfg.Basic.Secret); err != nil {
		return fmt.Errorf("invalid Basic.Secret: %w", err)
	}

	return nil
}

// validateListener checks the TCP or unix socket listener settings.
func (cfg *ServerConfig) validateListener() error {
	if cfg.Basic.UnixSocket == "" {
		if cfg.Basic.Host == "" {
			cfg.Basic.Host = "localhost"
			log.Info().
				Str("host", cfg.Basic.Host).
				Msg("Binding to default host")
		}

		if cfg.Basic.Port == "" {
			cfg.Basic.Port = "8080"
			log.Info().
				Str("port", cfg.Basic.Port).
				Msg("Using default port")
		}

		return nil
	}

	if cfg.Basic.Host != "" || cfg.Basic.Port != "" {
		log.Info().
			Str("socket", cfg.Basic.UnixSocket).
			Msg("Unix socket configured, ignoring host and port")

		cfg.Basic.Host, cfg.Basic.Port = "", ""
	}

	mode, err := parseFileMode(cfg.Basic.RawUnixSocketPermissions)
	if err != nil {
		return err
	}

	cfg.Basic.UnixSocketPermissions = mode

	if cfg.Basic.UnixSocketUser != "" && !accountExists(cfg.Basic.UnixSocketUser, user.LookupId, user.Lookup) {
		return errUnixSocketUserDoesNotExist
	}

	if cfg.Basic.UnixSocketGroup != "" && !accountExists(cfg.Basic.UnixSocketGroup, user.LookupGroupId, user.LookupGroup) {
		return errUnixSocketGroupDoesNotExist
	}

	return nil
}

// parseFileMode accepts "", octal ("660", "0660") or symbolic ("rw-rw----") permissions.
func parseFileMode(raw string) (os.FileMode, error) {
	switch {
	case raw == "":
		return 0o666, nil
	case fileModeOctalRegexp.MatchString(raw):
		mode, _ := strconv.ParseUint(raw, 8, 32)

		return os.FileMode(mode), nil
	case fileModeStringRegexp.MatchString(raw):
		mode := os.FileMode(0)

		for i, c := range raw {
			if c != '-' {
				const bitsInByte = 8

				mode |= 1 << (bitsInByte - i)
			}
		}

		return mode, nil
	default:
		return 0, errUnixSocketInvalidPermissions
	}
}

// accountExists looks a user or group up either by numeric ID or by name.
func accountExists[T any](value string, byID, byName func(string) (T, error)) bool {
	lookup := byName
	if digitsRegexp.MatchString(value) {
		lookup = byID
	}

	_, err := lookup(value)

	return err == nil
}
