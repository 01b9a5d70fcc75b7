// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils_test

import (
	"net/http"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/plae/plae/server/utils"
)

func TestParsePrefixes(t *testing.T) {
	t.Parallel()

	prefixes, err := utils.ParsePrefixes([]string{"192.168.1.7", " 10.1.2.3/8 ", "2001:db8::1", "::ffff:1.2.3.4"})
	require.NoError(t, err)

	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("192.168.1.7/32"),
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("2001:db8::1/128"),
		netip.MustParsePrefix("1.2.3.4/32"),
	}, prefixes)

	prefixes, err = utils.ParsePrefixes([]string{"proxy.example", "10.0.0.0/8", "10.0.0.0/40"})
	require.Error(t, err)
	assert.ErrorContains(t, err, `"proxy.example"`)
	assert.ErrorContains(t, err, `"10.0.0.0/40"`)
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}, prefixes, "valid entries are kept")
}

func TestPrefixesContain(t *testing.T) {
	t.Parallel()

	prefixes, err := utils.ParsePrefixes([]string{"192.168.1.1", "10.0.0.0/8"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		addr     string
		expected bool
	}{
		{name: "Exact entry", addr: "192.168.1.1", expected: true},
		{name: "Inside prefix", addr: "10.20.30.40", expected: true},
		{name: "IPv4-mapped IPv6", addr: "::ffff:10.0.0.1", expected: true},
		{name: "Outside", addr: "192.168.1.2", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, utils.PrefixesContain(prefixes, netip.MustParseAddr(tt.addr)))
		})
	}
}

func TestClientAddr(t *testing.T) {
	t.Parallel()

	cdn := []netip.Prefix{netip.MustParsePrefix("198.51.100.0/24")}

	tests := []struct {
		name       string
		remoteAddr string
		header     http.Header
		trusted    []netip.Prefix
		expected   string
	}{
		{
			name:       "X-Real-IP from a loopback proxy",
			remoteAddr: "127.0.0.1:12345",
			header:     http.Header{"X-Real-Ip": {"2.2.2.2"}},
			expected:   "2.2.2.2",
		},
		{
			name:       "Rightmost untrusted X-Forwarded-For hop",
			remoteAddr: "192.168.1.1:12345",
			header:     http.Header{"X-Forwarded-For": {"3.3.3.3, 4.4.4.4"}},
			expected:   "4.4.4.4",
		},
		{
			name:       "Trusted hops are skipped",
			remoteAddr: "192.168.1.1:12345",
			header:     http.Header{"X-Forwarded-For": {"6.6.6.6, 5.5.5.5, 10.0.0.3"}},
			expected:   "5.5.5.5",
		},
		{
			name:       "Repeated headers form one list",
			remoteAddr: "10.0.0.2:12345",
			header:     http.Header{"X-Forwarded-For": {"7.7.7.7", "10.0.0.9"}},
			expected:   "7.7.7.7",
		},
		{
			name:       "Unparsable hop stops the walk",
			remoteAddr: "10.0.0.2:12345",
			header:     http.Header{"X-Forwarded-For": {"8.8.8.8, unknown"}},
			expected:   "10.0.0.2",
		},
		{
			name:       "Headers from untrusted peers are ignored",
			remoteAddr: "5.5.5.5:12345",
			header:     http.Header{"X-Forwarded-For": {"6.6.6.6"}, "X-Real-Ip": {"6.6.6.6"}},
			expected:   "5.5.5.5",
		},
		{
			name:       "Configured public proxy",
			remoteAddr: "198.51.100.20:443",
			header:     http.Header{"X-Forwarded-For": {"9.9.9.9"}},
			trusted:    cdn,
			expected:   "9.9.9.9",
		},
		{
			name:       "IPv6 peer",
			remoteAddr: "[2001:db8::1]:8080",
			expected:   "2001:db8::1",
		},
		{
			name:       "RemoteAddr without port",
			remoteAddr: "1.1.1.1",
			expected:   "1.1.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &http.Request{RemoteAddr: tt.remoteAddr, Header: tt.header}

			addr, ok := utils.ClientAddr(r, tt.trusted)
			require.True(t, ok)
			assert.Equal(t, tt.expected, addr.String())
		})
	}

	_, ok := utils.ClientAddr(&http.Request{RemoteAddr: "@"}, nil)
	assert.False(t, ok)
}
