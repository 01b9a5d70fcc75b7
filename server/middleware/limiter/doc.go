// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package limiter is a middleware that rate limits inbound HTTP requests.

Clients are grouped by their IP network (Limiter.IPv4Prefix and
Limiter.IPv6Prefix) and every network shares one token bucket. Addresses in
Limiter.PassIPs skip the limiter, addresses in Limiter.BlockIPs are refused.

The client address comes from utils.ClientAddr, so proxy headers count only
when the peer is a trusted proxy (Basic.TrustedProxies).
*/
package limiter
