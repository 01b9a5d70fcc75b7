// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"strings"
)

// ParsePrefixes parses a list of addresses and CIDR prefixes. A bare address
// becomes a single-address prefix. Invalid entries are skipped and reported
// in the returned error.
func ParsePrefixes(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))

	var errs []error

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)

		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid prefix %q: %w", entry, err))

				continue
			}

			prefixes = append(prefixes, prefix.Masked())

			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid address %q: %w", entry, err))

			continue
		}

		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return prefixes, errors.Join(errs...)
}

// PrefixesContain reports whether addr lies in any of prefixes.
func PrefixesContain(prefixes []netip.Prefix, addr netip.Addr) bool {
	addr = addr.Unmap()

	for _, prefix := range prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}

	return false
}

// RemoteAddr is the peer address of r without its port.
func RemoteAddr(r *http.Request) (netip.Addr, bool) {
	if addrPort, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		return addrPort.Addr().Unmap(), true
	}

	addr, err := netip.ParseAddr(r.RemoteAddr)
	if err != nil {
		return netip.Addr{}, false
	}

	return addr.Unmap(), true
}

// TrustedProxy reports whether forwarding headers set by addr are believed.
// Loopback and private addresses are always trusted, others only when listed
// in extra.
func TrustedProxy(addr netip.Addr, extra []netip.Prefix) bool {
	return addr.IsLoopback() || addr.IsPrivate() || PrefixesContain(extra, addr)
}

// ClientAddr resolves the address of the client behind any trusted proxies.
//
// X-Real-IP from a trusted peer wins. Otherwise X-Forwarded-For is walked
// from the right, skipping hops that are trusted proxies themselves; the
// first untrusted hop is the client. Entries left of it are client supplied
// and never read.
func ClientAddr(r *http.Request, extra []netip.Prefix) (netip.Addr, bool) {
	peer, ok := RemoteAddr(r)
	if !ok {
		return netip.Addr{}, false
	}

	if !TrustedProxy(peer, extra) {
		return peer, true
	}

	if realIP, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return realIP.Unmap(), true
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	client := peer

	for i := len(hops) - 1; i >= 0 && TrustedProxy(client, extra); i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}

		client = hop.Unmap()
	}

	return client, true
}
