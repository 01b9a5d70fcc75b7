// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"codeberg.org/plae/plae/config"
)

const (
	LimiterExpiryDuration = time.Hour       // How long to keep limiters in memory before cleanup.
	CleanupInterval       = 5 * time.Minute // Interval between limiter cleanup runs.
)

var (
	limiters sync.Map   // In-memory storage for rate limiters, keyed by network.
	timeNow  = time.Now // Wrapper for time.Now, which allows us to mock it in tests.
)

// limiterWrapper holds a rate limiter and additional metadata.
type limiterWrapper struct {
	limiter    *rate.Limiter
	network    string     // Associated network identifier
	lastAccess time.Time  // Last time limiter was accessed
	mu         sync.Mutex // mutex for operations on this limiter
}

// Init clears any previous limiter state and logs the active budget.
func Init() {
	reset()

	log.Info().
		Float64("rate", config.Global.Limiter.Rate).
		Int("burst", config.Global.Limiter.Burst).
		Int("ipv4_prefix", config.Global.Limiter.IPv4Prefix).
		Int("ipv6_prefix", config.Global.Limiter.IPv6Prefix).
		Msg("Limiter enabled")
}

// Fini logs how many networks were being tracked and drops them.
func Fini() {
	count := 0

	limiters.Range(func(_, _ any) bool {
		count++

		return true
	})

	log.Info().Int("networks", count).Msg("Limiter stopped")

	reset()
}

func reset() {
	limiters.Range(func(key, _ any) bool {
		limiters.Delete(key)

		return true
	})

	lastCleanupAt.Store(0)
}

// checkRateLimit attempts to consume 1 token from the limiterWrapper.
//
// Returns an empty string if the request is allowed, or a non-empty string with
// the reason if the request is blocked due to rate limiting.
func checkRateLimit(limiter *limiterWrapper) string {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := timeNow()
	limiter.lastAccess = now

	if !limiter.limiter.AllowN(now, 1) {
		log.Warn().
			Str("network", limiter.network).
			Msg("Rate limit exceeded")

		return "Rate limit exceeded"
	}

	return ""
}

// getOrCreateLimiter returns the limiterWrapper for the given network,
// creating one with the configured rate and burst if needed.
func getOrCreateLimiter(networkStr string) *limiterWrapper {
	if value, ok := limiters.Load(networkStr); ok {
		if limWrapper, ok := value.(*limiterWrapper); ok {
			return limWrapper
		}
	}

	limWrapper := &limiterWrapper{
		limiter:    rate.NewLimiter(rate.Limit(config.Global.Limiter.Rate), config.Global.Limiter.Burst),
		network:    networkStr,
		lastAccess: timeNow(),
	}

	actual, _ := limiters.LoadOrStore(networkStr, limWrapper)

	stored, _ := actual.(*limiterWrapper)

	return stored
}

// cleanupExpiredLimiters removes limiters that haven't been accessed for the expiry duration.
func cleanupExpiredLimiters() {
	now := timeNow()

	var keysToDelete []any

	// Collect keys to delete in a slice to avoid deleting during Range()
	limiters.Range(func(key, value any) bool {
		limWrapper, ok := value.(*limiterWrapper)
		if !ok {
			keysToDelete = append(keysToDelete, key)

			return true
		}

		limWrapper.mu.Lock()
		lastAccess := limWrapper.lastAccess
		limWrapper.mu.Unlock()

		if now.Sub(lastAccess) > LimiterExpiryDuration {
			keysToDelete = append(keysToDelete, key)
		}

		return true
	})

	for _, key := range keysToDelete {
		limiters.Delete(key)
	}

	if len(keysToDelete) > 0 {
		log.Info().Int("count", len(keysToDelete)).
			Msg("Cleaned up expired limiters")
	}
}
