// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"flag"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	_ "codeberg.org/plae/plae/core/audit" // setup better logging format
	"codeberg.org/plae/plae/core/authenticated"
	"codeberg.org/plae/plae/core/idgen"
	"codeberg.org/plae/plae/server/utils"
)

var (
	// Global exposes the server configuration.
	Global ServerConfig

	// PasetoValidator signs form tokens with the key from Basic.Secret.
	PasetoValidator authenticated.Validator
)

// Possible values for Frontend.Backend.
const (
	// ServiceBackend sends each field to the local translation service over HTTP.
	ServiceBackend BackendMode = "service"
	// GeminiBackend calls the generative-language API directly.
	GeminiBackend BackendMode = "gemini"
)

// BackendMode selects which translation backend the translator page uses.
type BackendMode string

// ServerConfig holds the application configuration.
type ServerConfig struct {
	Build buildInfo `yaml:"-"`

	Basic struct {
		Host                     string      `env:"PLAE_HOST,overwrite" yaml:"host"`
		Port                     string      `env:"PLAE_PORT,overwrite" yaml:"port"`
		UnixSocket               string      `env:"PLAE_UNIXSOCKET" yaml:"unixSocket"`
		RawUnixSocketPermissions string      `env:"PLAE_UNIXSOCKET_PERMISSIONS" yaml:"unixSocketPermissions"`
		UnixSocketPermissions    os.FileMode `yaml:"-"`
		UnixSocketUser           string      `env:"PLAE_UNIXSOCKET_USER" yaml:"unixSocketUser"`
		UnixSocketGroup          string      `env:"PLAE_UNIXSOCKET_GROUP" yaml:"unixSocketGroup"`
		// hex encoded v4.public secret key used to sign form tokens
		Secret string `env:"PLAE_SECRET" yaml:"secret"`
		// Reverse proxies with public addresses whose forwarding headers are
		// believed. Loopback and private peers are always trusted.
		TrustedProxies []string `env:"PLAE_TRUSTED_PROXIES,overwrite" yaml:"trustedProxies"`
	} `yaml:"basic"`

	Frontend struct {
		// Fields is the number of source/target pairs on the translator page.
		Fields  int         `env:"PLAE_FIELDS,overwrite" yaml:"fields"`
		Backend BackendMode `env:"PLAE_BACKEND,overwrite" yaml:"backend"`
	} `yaml:"frontend"`

	Service struct {
		URL string `env:"PLAE_SERVICE_URL,overwrite" yaml:"url"`
		// Timeout bounds a single backend call. Zero waits for as long as the
		// transport allows.
		Timeout time.Duration `env:"PLAE_TIMEOUT,overwrite" yaml:"timeout"`
	} `yaml:"service"`

	Gemini struct {
		APIKey      string `env:"PLAE_GEMINI_API_KEY" yaml:"apiKey"`
		Model       string `env:"PLAE_GEMINI_MODEL,overwrite" yaml:"model"`
		Endpoint    string `env:"PLAE_GEMINI_ENDPOINT,overwrite" yaml:"endpoint"`
		Instruction string `env:"PLAE_GEMINI_INSTRUCTION,overwrite" yaml:"instruction"`
	} `yaml:"gemini"`

	Instance struct {
		StartingTime      string `yaml:"-"`
		FileServerCacheID string `yaml:"-"`
		RepoURL           string `env:"PLAE_REPO_URL,overwrite" yaml:"repoUrl"`
	} `yaml:"instance"`

	Development struct {
		InDevelopment bool `env:"PLAE_DEV" yaml:"inDevelopment"`
	} `yaml:"development"`

	Log struct {
		Level   string   `env:"PLAE_LOG_LEVEL,overwrite" yaml:"logLevel"`
		Outputs []string `env:"PLAE_LOG_OUTPUTS,overwrite" yaml:"logOutputs"`
		Format  string   `env:"PLAE_LOG_FORMAT,overwrite" yaml:"logFormat"`
	} `yaml:"log"`

	Limiter struct {
		Enabled    bool     `env:"PLAE_LIMITER,overwrite" yaml:"enabled"`
		PassIPs    []string `env:"PLAE_LIMITER_PASS_IPS,overwrite" yaml:"passList"`
		BlockIPs   []string `env:"PLAE_LIMITER_BLOCK_IPS,overwrite" yaml:"blockList"`
		IPv4Prefix int      `env:"PLAE_LIMITER_IPV4_PREFIX,overwrite" yaml:"ipv4Prefix"`
		IPv6Prefix int      `env:"PLAE_LIMITER_IPV6_PREFIX,overwrite" yaml:"ipv6Prefix"`
		Rate       float64  `env:"PLAE_LIMITER_RATE,overwrite" yaml:"rate"`
		Burst      int      `env:"PLAE_LIMITER_BURST,overwrite" yaml:"burst"`
	} `yaml:"limiter"`

	Internationalization struct {
		// Strict mode for missing keys.
		//
		// When enabled, missing keys are logged (deduplicated per locale+key) and
		// visibly wrapped using markers.
		StrictMissingKeys bool `env:"PLAE_STRICT_MISSING_KEYS" yaml:"strictMissingKeys"`
	} `yaml:"internationalization"`
}

// LoadConfig loads the configuration from various sources.
func (cfg *ServerConfig) LoadConfig() error {
	parsedConfigFlagValue := parseCommandLineArgs()

	// Check if the -config flag was explicitly set by the user.
	configFlagUserSet := false

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			configFlagUserSet = true
		}
	})

	var configFilePath string

	// Determine the config file path with the correct precedence:
	// 1. Command-line flag (-config)
	// 2. Environment variable (PLAE_CONFIGFILE)
	// 3. Default path with fallback check
	if configFlagUserSet {
		configFilePath = parsedConfigFlagValue
	} else if envVar := os.Getenv("PLAE_CONFIGFILE"); envVar != "" {
		configFilePath = envVar
	} else {
		configFilePath = parsedConfigFlagValue
		if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
			ymlPath := "./config.yml"
			if _, statErr := os.Stat(ymlPath); statErr == nil {
				configFilePath = ymlPath
			}
		}
	}

	cfg.SetDefaults()

	cfg.Build.load()

	cfg.Instance.FileServerCacheID = idgen.Make()
	cfg.Instance.StartingTime = time.Now().UTC().Format("2006-01-02 15:04")

	if err := cfg.readYAML(configFilePath); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := useDotEnv(); err != nil {
		return fmt.Errorf("error using .env file: %w", err)
	}

	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validateAndSet(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	cfg.setupAudit()

	cfg.print()

	// Heuristically check for containerized environment and warn if host is not a wildcard address.
	if isContainerized() && cfg.Basic.Host != "0.0.0.0" && cfg.Basic.Host != "::" {
		log.Warn().
			Str("host", cfg.Basic.Host).
			Msg("Running in a containerized environment but host is not a wildcard address (e.g., '0.0.0.0' or '::'). This may prevent the service from being accessible outside the container.")
	}

	return nil
}

// TrustedProxies parses Basic.TrustedProxies. Invalid entries are rejected
// when the configuration is loaded.
func (cfg *ServerConfig) TrustedProxies() []netip.Prefix {
	prefixes, _ := utils.ParsePrefixes(cfg.Basic.TrustedProxies)

	return prefixes
}

var staticSkippedPathPrefixes = []string{"/css/", "/js/"}

// ShouldSkipServerLogging determines if a request should bypass the logging middleware.
func (cfg *ServerConfig) ShouldSkipServerLogging(path string) bool {
	for _, prefix := range staticSkippedPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

// isContainerized checks for common indicators of a containerized environment.
//
// This is a heuristic and may not be 100% accurate.
func isContainerized() bool {
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true
	}

	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	if _, err := os.Stat("/.containerenv"); err == nil {
		return true
	}

	// #nosec G304 -- We are checking for the existence and content of a well-known system file for heuristics.
	cgroup, err := os.ReadFile("/proc/self/cgroup")
	if err == nil {
		content := string(cgroup)

		return strings.Contains(content, "docker") ||
			strings.Contains(content, "kubepods") ||
			strings.Contains(content, "containerd") ||
			strings.Contains(content, "lxc") ||
			strings.Contains(content, "crio") ||
			// systemd-nspawn containers
			strings.Contains(content, ".machine")
	}

	return false
}

// GetDurationEncoderOption returns a YAML encoder option that marshals
// time.Duration into a human-readable string format (e.g., "30m", "1h").
func GetDurationEncoderOption() yaml.EncodeOption {
	return yaml.CustomMarshaler[time.Duration](
		func(d time.Duration) ([]byte, error) {
			return yaml.Marshal(d.String())
		},
	)
}
