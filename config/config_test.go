// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfig verifies that environment variables are applied on top of
// the defaults and that invalid values are rejected.
//
// t.Setenv forbids t.Parallel, so these cases run sequentially.
func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *ServerConfig)
	}{
		{
			name: "Defaults",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *ServerConfig) {
				assert.Equal(t, "localhost", cfg.Basic.Host)
				assert.Equal(t, "8080", cfg.Basic.Port)
				assert.Equal(t, ServiceBackend, cfg.Frontend.Backend)
				assert.Equal(t, 1, cfg.Frontend.Fields)
				assert.Equal(t, "http://localhost:8080/api/translate", cfg.Service.URL)
				assert.NotEmpty(t, cfg.Instance.FileServerCacheID)
			},
		},
		{
			name: "Gemini multi-field",
			env: map[string]string{
				"PLAE_BACKEND":        "gemini",
				"PLAE_FIELDS":         "3",
				"PLAE_GEMINI_API_KEY": "key",
				"PLAE_TIMEOUT":        "45s",
			},
			check: func(t *testing.T, cfg *ServerConfig) {
				assert.Equal(t, GeminiBackend, cfg.Frontend.Backend)
				assert.Equal(t, 3, cfg.Frontend.Fields)
				assert.Equal(t, "key", cfg.Gemini.APIKey)
				assert.Equal(t, 45*time.Second, cfg.Service.Timeout)
			},
		},
		{
			name:    "Invalid backend",
			env:     map[string]string{"PLAE_BACKEND": "deepl"},
			wantErr: true,
		},
		{
			name:    "Too many fields",
			env:     map[string]string{"PLAE_FIELDS": "99"},
			wantErr: true,
		},
		{
			name:    "Invalid service URL",
			env:     map[string]string{"PLAE_SERVICE_URL": "localhost/api/translate"},
			wantErr: true,
		},
		{
			name:    "Unparsable timeout",
			env:     map[string]string{"PLAE_TIMEOUT": "soon"},
			wantErr: true,
		},
		{
			name:    "Invalid secret",
			env:     map[string]string{"PLAE_SECRET": "zz"},
			wantErr: true,
		},
		{
			name: "Trusted proxies",
			env:  map[string]string{"PLAE_TRUSTED_PROXIES": "203.0.113.7, 198.51.100.0/24"},
			check: func(t *testing.T, cfg *ServerConfig) {
				assert.Equal(t, []netip.Prefix{
					netip.MustParsePrefix("203.0.113.7/32"),
					netip.MustParsePrefix("198.51.100.0/24"),
				}, cfg.TrustedProxies())
			},
		},
		{
			name:    "Invalid trusted proxy",
			env:     map[string]string{"PLAE_TRUSTED_PROXIES": "proxy.example"},
			wantErr: true,
		},
		{
			name: "Invalid limiter block list",
			env: map[string]string{
				"PLAE_LIMITER":           "true",
				"PLAE_LIMITER_BLOCK_IPS": "10.0.0.0/33",
			},
			wantErr: true,
		},
		{
			name: "Invalid limiter prefix",
			env: map[string]string{
				"PLAE_LIMITER":             "true",
				"PLAE_LIMITER_IPV4_PREFIX": "33",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := &ServerConfig{}

			err := cfg.LoadConfig()
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)

			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestReadEnvRespectsOverwrite(t *testing.T) {
	t.Setenv("PLAE_SECRET", "from-env")
	t.Setenv("PLAE_HOST", "0.0.0.0")
	t.Setenv("PLAE_LIMITER_PASS_IPS", "10.0.0.1, ,192.168.0.0/16")
	t.Setenv("PLAE_LIMITER_RATE", "2.5")

	cfg := &ServerConfig{}
	cfg.SetDefaults()
	cfg.Basic.Secret = "from-yaml"

	require.NoError(t, readEnv(cfg))

	assert.Equal(t, "from-yaml", cfg.Basic.Secret, "fields without overwrite keep their value")
	assert.Equal(t, "0.0.0.0", cfg.Basic.Host)
	assert.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, cfg.Limiter.PassIPs)
	assert.InDelta(t, 2.5, cfg.Limiter.Rate, 0.0001)
}

func TestReadEnvRejectsNonPointer(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, readEnv(ServerConfig{}), errExpectedPointerToStruct)
}

func TestParseDotEnv(t *testing.T) {
	t.Parallel()

	data := []byte(`# comment
PLAE_HOST=0.0.0.0
export PLAE_PORT = "9000"
PLAE_GEMINI_MODEL='gemini-2.5-flash'

not a pair
`)

	values, badLines := parseDotEnv(data)

	assert.Equal(t, map[string]string{
		"PLAE_HOST":         "0.0.0.0",
		"PLAE_PORT":         "9000",
		"PLAE_GEMINI_MODEL": "gemini-2.5-flash",
	}, values)
	assert.Equal(t, []int{6}, badLines)
}

func TestParseFileMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    os.FileMode
		wantErr bool
	}{
		{raw: "", want: 0o666},
		{raw: "660", want: 0o660},
		{raw: "0600", want: 0o600},
		{raw: "rw-rw----", want: 0o660},
		{raw: "rwxr-xr-x", want: 0o755},
		{raw: "999", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseFileMode(tt.raw)
		if tt.wantErr {
			assert.ErrorIs(t, err, errUnixSocketInvalidPermissions, tt.raw)

			continue
		}

		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestRedacted(t *testing.T) {
	t.Parallel()

	cfg := &ServerConfig{}
	cfg.SetDefaults()
	cfg.Gemini.APIKey = "AIza-secret"
	cfg.Basic.Secret = "deadbeef"

	printable := cfg.Redacted()

	assert.Equal(t, redactedValue, printable.Gemini.APIKey)
	assert.Equal(t, redactedValue, printable.Basic.Secret)
	assert.Equal(t, "AIza-secret", cfg.Gemini.APIKey, "original must be untouched")
}

func TestReadYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeConfig := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		return path
	}

	t.Run("Values", func(t *testing.T) {
		t.Parallel()

		cfg := &ServerConfig{}
		cfg.SetDefaults()

		path := writeConfig("config.yaml", `
basic:
  port: "9090"
  trustedProxies:
    - 198.51.100.0/24
frontend:
  fields: 4
service:
  timeout: 45s
`)

		require.NoError(t, cfg.readYAML(path))
		assert.Equal(t, "9090", cfg.Basic.Port)
		assert.Equal(t, []string{"198.51.100.0/24"}, cfg.Basic.TrustedProxies)
		assert.Equal(t, 4, cfg.Frontend.Fields)
		assert.Equal(t, 45*time.Second, cfg.Service.Timeout)
		assert.Equal(t, "localhost", cfg.Basic.Host, "unset keys keep their defaults")
	})

	t.Run("Unknown key", func(t *testing.T) {
		t.Parallel()

		path := writeConfig("typo.yaml", "frontend:\n  feilds: 4\n")

		assert.ErrorContains(t, (&ServerConfig{}).readYAML(path), "typo.yaml")
	})

	t.Run("Missing file", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, (&ServerConfig{}).readYAML(filepath.Join(dir, "missing.yaml")))
	})

	t.Run("Empty file", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, (&ServerConfig{}).readYAML(writeConfig("empty.yaml", "")))
	})
}
