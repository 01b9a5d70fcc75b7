// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"net/netip"

	"codeberg.org/plae/plae/server/utils"
)

// inList reports whether addr matches an entry of a pass or block list.
func inList(addr netip.Addr, entries []string) bool {
	prefixes, _ := utils.ParsePrefixes(entries)

	return utils.PrefixesContain(prefixes, addr)
}

// bucketPrefix is the network whose clients share one rate limit bucket.
// The prefix lengths are range checked when the configuration is loaded.
func bucketPrefix(addr netip.Addr, ipv4Bits, ipv6Bits int) netip.Prefix {
	addr = addr.Unmap()

	bits := ipv6Bits
	if addr.Is4() {
		bits = ipv4Bits
	}

	prefix, err := addr.Prefix(bits)
	if err != nil {
		return netip.PrefixFrom(addr, addr.BitLen())
	}

	return prefix
}
