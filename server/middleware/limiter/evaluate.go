// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/plae/plae/config"
	"codeberg.org/plae/plae/i18n"
	"codeberg.org/plae/plae/server/request_context"
	"codeberg.org/plae/plae/server/routes"
	"codeberg.org/plae/plae/server/utils"
)

// Rate limiting header names.
//
// ref: https://www.ietf.org/archive/id/draft-polli-ratelimit-headers-02.html
const (
	HeaderRateLimitLimit     string = "RateLimit-Limit" // This is intended.
	HeaderRateLimitRemaining string = "RateLimit-Remaining"
	HeaderRateLimitReset     string = "RateLimit-Reset"
)

// excludedPaths won't have traffic filtered by the limiter middleware.
var excludedPaths = []string{
	"/about",
	"/css/",
	"/js/",
	"/robots.txt",
}

// Evaluate is the entrypoint to the limiter middleware.
func Evaluate(w http.ResponseWriter, r *http.Request, next http.Handler) {
	defer DoCleanup()

	if isExcludedPath(r.URL.Path) {
		next.ServeHTTP(w, r)

		return
	}

	addr, ok := utils.ClientAddr(r, config.Global.TrustedProxies())
	if !ok {
		log.Error().
			Str("remote_addr", r.RemoteAddr).
			Msg("Could not determine client IP")

		reject(w, r, http.StatusBadRequest, "Could not determine your IP address.")

		return
	}

	// explicit allow/deny lists take precedence
	switch {
	case inList(addr, config.Global.Limiter.PassIPs):
		next.ServeHTTP(w, r)

		return
	case inList(addr, config.Global.Limiter.BlockIPs):
		log.Warn().
			Str("ip", addr.String()).
			Msg("Request blocked, IP in block-list")

		reject(w, r, http.StatusForbidden, "Your network is not allowed to use this instance.")

		return
	}

	bucket := bucketPrefix(addr, config.Global.Limiter.IPv4Prefix, config.Global.Limiter.IPv6Prefix)
	limiter := getOrCreateLimiter(bucket.String())

	if blockReason := checkRateLimit(limiter); blockReason != "" {
		addRateLimitHeaders(w, limiter)

		reject(w, r, http.StatusTooManyRequests, "Too many requests. Please wait a moment and try again.")

		return
	}

	addRateLimitHeaders(w, limiter)
	next.ServeHTTP(w, r)
}

func isExcludedPath(path string) bool {
	for _, prefix := range excludedPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

// reject answers with statusCode. API clients get plain text, browsers the error page.
func reject(w http.ResponseWriter, r *http.Request, statusCode int, msgid i18n.MsgKey) {
	message := msgid.Tr(r.Context())

	w.Header().Set("Cache-Control", "no-store")

	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(statusCode)

		_, _ = io.WriteString(w, message)

		return
	}

	rc := request_context.FromRequest(r)
	rc.StatusCode = statusCode
	rc.RequestError = i18n.NewUserError(r.Context(), string(msgid))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	routes.ErrorPage(w, r)
}

// addRateLimitHeaders adds rate limiting information to the response headers.
func addRateLimitHeaders(w http.ResponseWriter, lw *limiterWrapper) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	limiter := lw.limiter

	currentTokens := limiter.TokensAt(timeNow())
	burst := limiter.Burst()
	limit := limiter.Limit()

	// Calculate tokens remaining (can't exceed burst).
	remaining := max(int(math.Min(float64(burst), currentTokens)), 0)

	// Calculate seconds until full bucket replenishment (if not already full).
	var resetTime int64

	if currentTokens < float64(burst) && limit > 0 {
		resetTime = int64(math.Ceil((float64(burst) - currentTokens) / float64(limit)))
	}

	resetStr := strconv.FormatInt(resetTime, 10)

	w.Header().Set(HeaderRateLimitLimit, strconv.Itoa(burst))
	w.Header().Set(HeaderRateLimitRemaining, strconv.Itoa(remaining))
	w.Header().Set(HeaderRateLimitReset, resetStr)

	if remaining <= 0 {
		w.Header().Set("Retry-After", resetStr)
	}
}
