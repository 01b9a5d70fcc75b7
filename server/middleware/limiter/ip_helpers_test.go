// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		addr     string
		entries  []string
		expected bool
	}{
		{
			name:     "Exact entry",
			addr:     "192.168.1.1",
			entries:  []string{"192.168.1.1"},
			expected: true,
		},
		{
			name:     "Inside CIDR",
			addr:     "192.168.1.1",
			entries:  []string{"192.168.1.0/24"},
			expected: true,
		},
		{
			name:     "No match",
			addr:     "192.168.1.1",
			entries:  []string{"10.0.0.0/8"},
			expected: false,
		},
		{
			name:     "Invalid entries are skipped",
			addr:     "192.168.1.1",
			entries:  []string{"localhost", "192.168.0.0/16"},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, inList(netip.MustParseAddr(tt.addr), tt.entries))
		})
	}
}

func TestBucketPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		addr     string
		expected string
	}{
		{name: "IPv4", addr: "192.168.1.1", expected: "192.168.1.0/24"},
		{name: "IPv4-mapped IPv6", addr: "::ffff:192.168.1.1", expected: "192.168.1.0/24"},
		{name: "IPv6", addr: "2001:db8:1:2::1", expected: "2001:db8:1::/48"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, bucketPrefix(netip.MustParseAddr(tt.addr), 24, 48).String())
		})
	}

	assert.Equal(t, "10.0.0.1/32", bucketPrefix(netip.MustParseAddr("10.0.0.1"), 40, 48).String(), "out of range prefix")
}
