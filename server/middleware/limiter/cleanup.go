// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// lastCleanupAt holds the UnixNano time of the last cleanup run, 0 before the first request.
var lastCleanupAt atomic.Int64

// DoCleanup removes expired limiters in the background, at most once per CleanupInterval.
func DoCleanup() {
	now := timeNow()
	last := lastCleanupAt.Load()

	if last == 0 {
		lastCleanupAt.CompareAndSwap(0, now.UnixNano())

		return
	}

	if now.Sub(time.Unix(0, last)) < CleanupInterval {
		return
	}

	// only one caller wins the run
	if !lastCleanupAt.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	go func() {
		cleanupExpiredLimiters()

		log.Debug().Time("start", now).Dur("dur", time.Since(now)).Msg("limiter cleanup")
	}()
}
