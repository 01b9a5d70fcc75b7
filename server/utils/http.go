// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils

import (
	"crypto/tls"
	"net/http"
	"net/netip"
)

const (
	// clientSessionCacheSize defines the size of the TLS session cache.
	clientSessionCacheSize = 8

	// maxIdleConnsPerHost defines maximum idle connections to keep per backend.
	maxIdleConnsPerHost = 8

	// bufferSize defines the read and write buffer size in bytes (32KB).
	bufferSize = 32 * 1024
)

// HTTPClient is the client used for every outbound call to a translation backend.
//
// It has no overall timeout; callers bound each call with a context.
var HTTPClient = &http.Client{
	Transport: &http.Transport{
		TLSClientConfig: &tls.Config{
			ClientSessionCache: tls.NewLRUClientSessionCache(clientSessionCacheSize),
			MinVersion:         tls.VersionTLS12,
		},
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		WriteBufferSize:     bufferSize,
		ReadBufferSize:      bufferSize,
		ForceAttemptHTTP2:   true,
	},
}

// IsConnectionSecure returns whether a connection is secure.
//
// X-Forwarded-Proto is only believed when the peer is a trusted proxy, see
// TrustedProxy.
func IsConnectionSecure(r *http.Request, trusted []netip.Prefix) bool {
	if r.TLS != nil {
		return true
	}

	peer, ok := RemoteAddr(r)

	return ok && TrustedProxy(peer, trusted) && r.Header.Get("X-Forwarded-Proto") == "https"
}
